package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/repositories"
	domainservices "github.com/AtRiskMedia/flexibuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

type memoryMedia struct {
	files []*repositories.MediaFile
}

func (m *memoryMedia) Store(ctx context.Context, f *repositories.MediaFile) error {
	m.files = append(m.files, f)
	return nil
}

func (m *memoryMedia) FindAll(ctx context.Context) ([]*repositories.MediaFile, error) {
	return m.files, nil
}

func (m *memoryMedia) Delete(ctx context.Context, id string) error {
	for i, f := range m.files {
		if f.ID == id {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return nil
		}
	}
	return nil
}

func tinyPNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestMediaUploadAndOrphans(t *testing.T) {
	ctx := context.Background()
	repo := &memoryMedia{}
	docs := newMemoryDocs()
	svc := NewMediaService(
		media.NewImageProcessor(t.TempDir(), "/media", 0, 4, 80),
		repo,
		docs,
		domainservices.NewDocumentIntegrityService(nil),
		"/media",
		1,
		logging.NewDiscardLogger(),
		performance.NewTracker(nil),
	)

	used, err := svc.Upload(ctx, tinyPNG(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	unused, err := svc.Upload(ctx, tinyPNG(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if used.URL != "/media/"+used.File.Filename || used.File.Thumbnail == "" {
		t.Fatalf("unexpected upload %+v", used)
	}

	docs.docs["page"] = &document.Payload{ID: "page", Sections: []*document.Node{
		{ID: "s", Type: "section", Props: map[string]any{}, Children: []*document.Node{
			{ID: "c", Type: "column", Props: map[string]any{}, Children: []*document.Node{
				{ID: "i", Type: "image", Props: map[string]any{"src": used.URL}},
			}},
		}},
	}}

	orphans, err := svc.Orphans(ctx)
	if err != nil {
		t.Fatalf("Orphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0] != unused.File.Filename {
		t.Fatalf("orphans = %v, want [%s]", orphans, unused.File.Filename)
	}

	if err := svc.Delete(ctx, unused.File.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one file left, got %d", len(list))
	}
	if err := svc.Delete(ctx, "nope"); err == nil {
		t.Fatal("deleting an unknown id should fail")
	}
}

func TestMediaUploadTooLarge(t *testing.T) {
	svc := NewMediaService(media.NewImageProcessor(t.TempDir(), "/media", 0, 0, 0), nil, nil, nil, "/media", 1, logging.NewDiscardLogger(), performance.NewTracker(nil))
	big := "data:image/png;base64," + string(bytes.Repeat([]byte("A"), 2*1024*1024))
	if _, err := svc.Upload(context.Background(), big); err == nil {
		t.Fatal("oversized upload accepted")
	}
}
