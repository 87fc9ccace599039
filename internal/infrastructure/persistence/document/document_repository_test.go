package document

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/repositories"
	schema "github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/persistence/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewConnection("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := schema.NewTableCreator(db.Dialect).CreateSchema(db.DB); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	return db
}

func TestDocumentRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewDocumentRepository(db, logging.NewDiscardLogger())
	ctx := context.Background()

	d := document.New("landing", document.WithTitle("Landing"))
	sec := d.InsertSection()
	h := d.InsertWidget(sec.Children[0].ID, "heading")
	d.UpdateProperty(h.ID, "text", "Stored")
	d.UpdateProperty(sec.ID, "boxed", false)

	if err := repo.Store(ctx, d.Payload()); err != nil {
		t.Fatalf("Store: %v", err)
	}
	p, err := repo.FindByID(ctx, "landing")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if p.Title != "Landing" || !document.EqualForest(p.Sections, d.Sections) {
		t.Fatalf("round trip changed document: %+v", p)
	}

	d.UpdateProperty(h.ID, "text", "Updated")
	if err := repo.Store(ctx, d.Payload()); err != nil {
		t.Fatalf("second Store: %v", err)
	}
	p, _ = repo.FindByID(ctx, "landing")
	if n, _ := document.FromPayload(p).Find(h.ID); n.String("text") != "Updated" {
		t.Fatal("upsert did not replace payload")
	}

	list, err := repo.FindAll(ctx)
	if err != nil || len(list) != 1 || list[0].ID != "landing" {
		t.Fatalf("FindAll: %v %v", list, err)
	}

	if err := repo.Delete(ctx, "landing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, "landing"); !errors.Is(err, repositories.ErrDocumentNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestCorruptPayload(t *testing.T) {
	db := openTestDB(t)
	repo := NewDocumentRepository(db, logging.NewDiscardLogger())
	now := time.Now().UTC().Format(stampLayout)
	if _, err := db.Exec(`INSERT INTO documents (id, title, payload, created_at, changed_at) VALUES (?, ?, ?, ?, ?)`,
		"broken", "Broken", "{not json", now, now); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := repo.FindByID(context.Background(), "broken")
	if !errors.Is(err, repositories.ErrCorruptDocument) {
		t.Fatalf("expected ErrCorruptDocument, got %v", err)
	}
}

func TestSeedInitialContent(t *testing.T) {
	db := openTestDB(t)
	tc := schema.NewTableCreator(db.Dialect)
	for i := 0; i < 2; i++ {
		if err := tc.SeedInitialContent(db.DB, "home"); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	p, err := NewDocumentRepository(db, logging.NewDiscardLogger()).FindByID(context.Background(), "home")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(p.Sections) != 1 {
		t.Fatalf("expected seeded section, got %d", len(p.Sections))
	}
}

func TestPublicationsAndMedia(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pubs := NewPublicationRepository(db, logging.NewDiscardLogger())

	if latest, err := pubs.FindLatest(ctx, "doc"); err != nil || latest != nil {
		t.Fatalf("expected no publication, got %v %v", latest, err)
	}
	older := &repositories.Publication{ID: "p1", DocumentID: "doc", HTML: "<p>1</p>", Markdown: "1", Created: time.Now().Add(-time.Hour)}
	newer := &repositories.Publication{ID: "p2", DocumentID: "doc", HTML: "<p>2</p>", Markdown: "2"}
	for _, p := range []*repositories.Publication{older, newer} {
		if err := pubs.Store(ctx, p); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	latest, err := pubs.FindLatest(ctx, "doc")
	if err != nil || latest.ID != "p2" {
		t.Fatalf("FindLatest: %+v %v", latest, err)
	}

	media := NewMediaRepository(db, logging.NewDiscardLogger())
	if err := media.Store(ctx, &repositories.MediaFile{ID: "m1", Filename: "a.webp", Thumbnail: "a_480.webp", Width: 800, Height: 600}); err != nil {
		t.Fatalf("media Store: %v", err)
	}
	files, err := media.FindAll(ctx)
	if err != nil || len(files) != 1 || files[0].Width != 800 {
		t.Fatalf("media FindAll: %v %v", files, err)
	}
	if err := media.Delete(ctx, "m1"); err != nil {
		t.Fatalf("media Delete: %v", err)
	}
}
