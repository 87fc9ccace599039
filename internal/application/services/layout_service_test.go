package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/generative"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

type staticProvider struct {
	raw string
	err error
}

func (p staticProvider) Name() string { return "static" }

func (p staticProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	return p.raw, p.err
}

func newTestLayout(t *testing.T, primary generative.Provider) (*LayoutService, *EditorService) {
	t.Helper()
	editor, _ := newTestEditor(t, nil, 0)
	svc := NewLayoutService(editor, primary, nil, time.Second, logging.NewDiscardLogger(), performance.NewTracker(nil))
	return svc, editor
}

func TestGenerateFallsBackToHeuristic(t *testing.T) {
	ctx := context.Background()
	svc, editor := newTestLayout(t, staticProvider{err: generative.ErrProviderUnavailable})
	editor.Open(ctx, "doc")

	res, err := svc.Generate(ctx, "doc", "coffee shop with a photo gallery")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Provider != "heuristic" {
		t.Fatalf("expected heuristic fallback, got %q", res.Provider)
	}
	if res.State == nil || len(res.State.Sections) != res.Stats.Sections || !res.State.CanUndo {
		t.Fatalf("layout not installed: %+v", res.State)
	}

	state, err := editor.Apply(ctx, "doc", document.Command{Op: document.OpUndo})
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(state.Sections) != 0 {
		t.Fatal("generation should undo in one step")
	}
}

func TestGenerateUsesPrimary(t *testing.T) {
	ctx := context.Background()
	svc, editor := newTestLayout(t, staticProvider{raw: "```json\n[{\"type\":\"heading\",\"text\":\"Hello\"},{\"type\":\"blink\"}]\n```"})
	editor.Open(ctx, "doc")

	res, err := svc.Generate(ctx, "doc", "greeting")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Provider != "static" || res.Stats.Widgets != 1 || res.Stats.Dropped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	heading := res.State.Sections[0].Children[0].Children[0]
	if heading.String("text") != "Hello" {
		t.Fatalf("unexpected heading %+v", heading)
	}
}

func TestGenerateErrorsLeaveDocumentUntouched(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		provider staticProvider
		want     error
	}{
		{"malformed", staticProvider{raw: "no layout here"}, generative.ErrMalformedLayout},
		{"no widgets", staticProvider{raw: `[{"type":"section"}]`}, generative.ErrNoValidWidgets},
		{"provider failure", staticProvider{err: context.DeadlineExceeded}, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, editor := newTestLayout(t, tt.provider)
			editor.Open(ctx, "doc")
			if _, err := svc.Generate(ctx, "doc", "anything"); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			state, _ := editor.State(ctx, "doc")
			if len(state.Sections) != 0 || state.CanUndo {
				t.Fatalf("document changed: %+v", state)
			}
			if _, err := editor.BeginGeneration("doc"); err != nil {
				t.Fatalf("generation slot leaked: %v", err)
			}
		})
	}
}

func TestGenerateRejectsConcurrentRun(t *testing.T) {
	ctx := context.Background()
	svc, editor := newTestLayout(t, nil)
	editor.Open(ctx, "doc")
	release, _ := editor.BeginGeneration("doc")
	defer release()

	if _, err := svc.Generate(ctx, "doc", "bakery"); !errors.Is(err, ErrGenerationInProgress) {
		t.Fatalf("expected ErrGenerationInProgress, got %v", err)
	}
}

func TestPreviewDoesNotNeedSession(t *testing.T) {
	svc, _ := newTestLayout(t, nil)
	res, err := svc.Preview(context.Background(), "portfolio")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(res.Sections) == 0 || res.State != nil {
		t.Fatalf("unexpected preview %+v", res)
	}
	if _, err := svc.Preview(context.Background(), "  "); err == nil {
		t.Fatal("empty prompt accepted")
	}
}
