package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/generative"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

// GenerationResult reports a generated layout and how it was produced.
type GenerationResult struct {
	Provider string                `json:"provider"`
	Stats    generative.BuildStats `json:"stats"`
	State    *EditorState          `json:"state,omitempty"`
	Sections []*document.Node      `json:"sections,omitempty"`
}

// LayoutService turns a prompt into a section forest and installs it in a
// document as one undoable replace_all.
type LayoutService struct {
	editor   *EditorService
	primary  generative.Provider
	fallback generative.Provider
	timeout  time.Duration
	logger   *logging.ChanneledLogger
	perf     *performance.Tracker
}

// NewLayoutService creates the layout service. fallback is used when the
// primary provider is not configured.
func NewLayoutService(editor *EditorService, primary, fallback generative.Provider, timeout time.Duration, logger *logging.ChanneledLogger, perf *performance.Tracker) *LayoutService {
	if fallback == nil {
		fallback = generative.HeuristicProvider{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LayoutService{
		editor:   editor,
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
		perf:     perf,
	}
}

// Generate builds a layout for prompt and replaces the document content with
// it. Only one generation per document may run at a time.
func (s *LayoutService) Generate(ctx context.Context, documentID, prompt string) (*GenerationResult, error) {
	release, err := s.editor.BeginGeneration(documentID)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.build(ctx, documentID, prompt)
	if err != nil {
		return nil, err
	}
	state, err := s.editor.Apply(ctx, documentID, document.Command{Op: document.OpReplaceAll, Sections: res.Sections})
	if err != nil {
		return nil, err
	}
	res.State = state
	res.Sections = nil
	return res, nil
}

// Preview builds a layout without touching any document.
func (s *LayoutService) Preview(ctx context.Context, prompt string) (*GenerationResult, error) {
	return s.build(ctx, "", prompt)
}

func (s *LayoutService) build(ctx context.Context, documentID, prompt string) (*GenerationResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	marker := s.perf.StartOperation("generative:layout", documentID)
	defer s.perf.CompleteOperation(marker)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	provider := s.primary
	if provider == nil {
		provider = s.fallback
	}
	raw, err := provider.Suggest(ctx, prompt)
	if errors.Is(err, generative.ErrProviderUnavailable) {
		s.logger.Generative().Debug("Primary provider unavailable, using fallback", "provider", provider.Name(), "fallback", s.fallback.Name())
		provider = s.fallback
		raw, err = provider.Suggest(ctx, prompt)
	}
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("layout generation failed: %w", err)
	}
	marker.AddMetadata("provider", provider.Name())

	candidates, err := generative.ParseCandidates(raw)
	if err != nil {
		marker.SetError(err)
		s.logger.Generative().Warn("Provider returned unparseable layout", "provider", provider.Name(), "documentId", documentID)
		return nil, err
	}
	sections, stats, err := generative.NewBuilder(s.editor.Catalog(), nil).Build(candidates)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Generative().Info("Layout generated",
		"documentId", documentID,
		"provider", provider.Name(),
		"sections", stats.Sections,
		"widgets", stats.Widgets,
		"dropped", stats.Dropped)
	return &GenerationResult{Provider: provider.Name(), Stats: stats, Sections: sections}, nil
}
