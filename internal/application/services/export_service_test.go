package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/repositories"
	emailtemplates "github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

type memoryPublications struct {
	pubs []*repositories.Publication
}

func (m *memoryPublications) Store(ctx context.Context, pub *repositories.Publication) error {
	m.pubs = append(m.pubs, pub)
	return nil
}

func (m *memoryPublications) FindLatest(ctx context.Context, documentID string) (*repositories.Publication, error) {
	for i := len(m.pubs) - 1; i >= 0; i-- {
		if m.pubs[i].DocumentID == documentID {
			return m.pubs[i], nil
		}
	}
	return nil, nil
}

type capturingMailer struct {
	to    string
	props emailtemplates.PublishNoticeProps
}

func (c *capturingMailer) SendPublishNotice(to string, props emailtemplates.PublishNoticeProps) error {
	c.to, c.props = to, props
	return nil
}

func headingDocument(t *testing.T, editor *EditorService) string {
	t.Helper()
	ctx := context.Background()
	state, err := editor.Create(ctx, "Bakery")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := state.DocumentID
	state, _ = editor.Apply(ctx, id, document.Command{Op: document.OpInsertSection})
	column := state.Sections[0].Children[0].ID
	state, _ = editor.Apply(ctx, id, document.Command{Op: document.OpInsertWidget, ParentID: column, Type: "heading"})
	if _, err := editor.Apply(ctx, id, document.Command{Op: document.OpUpdateProperty, NodeID: state.Result.NodeID, Key: "text", Value: "Fresh Bread"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	return id
}

func TestExportFormats(t *testing.T) {
	editor, _ := newTestEditor(t, nil, 0)
	svc := NewExportService(editor, nil, nil, "", "", logging.NewDiscardLogger(), performance.NewTracker(nil))
	id := headingDocument(t, editor)

	tests := []struct {
		format   string
		contains string
		filename string
	}{
		{FormatHTML, "Fresh Bread", id + ".html"},
		{FormatPage, "<html", id + ".html"},
		{FormatMarkdown, "# Bakery", id + ".md"},
		{FormatJSON, `"title":"Bakery"`, id + ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := svc.Export(context.Background(), id, tt.format)
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if !strings.Contains(out.Body, tt.contains) {
				t.Fatalf("%s export missing %q:\n%s", tt.format, tt.contains, out.Body)
			}
			if out.Filename != tt.filename {
				t.Fatalf("filename = %q", out.Filename)
			}
			if strings.Contains(out.Body, "data-id=") {
				t.Fatalf("%s export carries editor decoration", tt.format)
			}
		})
	}

	md, _ := svc.Export(context.Background(), id, FormatMarkdown)
	if !strings.Contains(md.Body, "Fresh Bread") {
		t.Fatalf("markdown lost heading text:\n%s", md.Body)
	}
	if _, err := svc.Export(context.Background(), id, "pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPublishStoresAndNotifies(t *testing.T) {
	editor, _ := newTestEditor(t, newMemoryDocs(), 0)
	pubs := &memoryPublications{}
	mailer := &capturingMailer{}
	svc := NewExportService(editor, pubs, mailer, "owner@example.com", "https://builder.example.com/", logging.NewDiscardLogger(), performance.NewTracker(nil))
	id := headingDocument(t, editor)

	pub, err := svc.Publish(context.Background(), id)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if pub.ID == "" || !strings.Contains(pub.HTML, "Fresh Bread") || !strings.Contains(pub.Markdown, "Fresh Bread") {
		t.Fatalf("unexpected publication %+v", pub)
	}
	latest, _ := svc.LatestPublication(context.Background(), id)
	if latest != pub {
		t.Fatal("latest publication mismatch")
	}
	if mailer.to != "owner@example.com" || mailer.props.Widgets != 1 || mailer.props.Sections != 1 {
		t.Fatalf("unexpected notice %s %+v", mailer.to, mailer.props)
	}
	if mailer.props.PreviewURL != "https://builder.example.com/publications/"+id {
		t.Fatalf("preview url = %q", mailer.props.PreviewURL)
	}
	state, _ := editor.State(context.Background(), id)
	if state.Unsaved {
		t.Fatal("publish should save the document")
	}
}

func TestPublishMatchesStoredRevision(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryDocs()
	editor, _ := newTestEditor(t, repo, 0)
	svc := NewExportService(editor, &memoryPublications{}, nil, "", "", logging.NewDiscardLogger(), performance.NewTracker(nil))
	id := headingDocument(t, editor)
	state, _ := editor.State(ctx, id)
	heading := state.Sections[0].Children[0].Children[0].ID

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			editor.Apply(ctx, id, document.Command{Op: document.OpUpdateProperty, NodeID: heading, Key: "text", Value: fmt.Sprintf("Loaf %d", i)})
		}
	}()

	for i := 0; i < 20; i++ {
		pub, err := svc.Publish(ctx, id)
		if err != nil {
			close(stop)
			wg.Wait()
			t.Fatalf("Publish: %v", err)
		}
		stored, err := repo.FindByID(ctx, id)
		if err != nil {
			close(stop)
			wg.Wait()
			t.Fatalf("FindByID: %v", err)
		}
		md, _ := ExportPayload(stored, FormatMarkdown)
		if md.Body != pub.Markdown {
			close(stop)
			wg.Wait()
			t.Fatalf("publication differs from the saved revision:\n%s\n---\n%s", pub.Markdown, md.Body)
		}
	}
	close(stop)
	wg.Wait()
}
