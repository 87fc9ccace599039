package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/repositories"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/email"
	emailtemplates "github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/flexibuilder-go/internal/presentation/templates"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Export formats.
const (
	FormatHTML     = "html"
	FormatPage     = "page"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Export is a rendered document ready to be written or served.
type Export struct {
	Format      string `json:"format"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
	Body        string `json:"body"`
}

// ExportService renders documents for publication.
type ExportService struct {
	editor         *EditorService
	publications   repositories.PublicationRepository
	mailer         email.Service
	notifyEmail    string
	previewBaseURL string
	logger         *logging.ChanneledLogger
	perf           *performance.Tracker
}

// NewExportService creates the export service. publications and mailer may
// be nil.
func NewExportService(editor *EditorService, publications repositories.PublicationRepository, mailer email.Service, notifyEmail, previewBaseURL string, logger *logging.ChanneledLogger, perf *performance.Tracker) *ExportService {
	return &ExportService{
		editor:         editor,
		publications:   publications,
		mailer:         mailer,
		notifyEmail:    notifyEmail,
		previewBaseURL: strings.TrimSuffix(previewBaseURL, "/"),
		logger:         logger,
		perf:           perf,
	}
}

// Export renders an open document in format.
func (s *ExportService) Export(ctx context.Context, documentID, format string) (*Export, error) {
	marker := s.perf.StartOperation("export:"+format, documentID)
	defer s.perf.CompleteOperation(marker)

	payload, err := s.editor.Payload(ctx, documentID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	out, err := ExportPayload(payload, format)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	s.logger.Export().Info("Document exported", "documentId", documentID, "format", format, "bytes", len(out.Body))
	return out, nil
}

// ExportPayload renders a payload in format without an editor session.
// Exports never carry editor decoration.
func ExportPayload(p *document.Payload, format string) (*Export, error) {
	name := p.ID
	if name == "" {
		name = "page"
	}
	ctx := rendering.NewRenderContext(p.Sections, "", p.Device, rendering.ModePublish)

	switch strings.ToLower(format) {
	case FormatHTML, "":
		return &Export{Format: FormatHTML, ContentType: "text/html; charset=utf-8", Filename: name + ".html", Body: templates.Render(ctx)}, nil
	case FormatPage:
		return &Export{Format: FormatPage, ContentType: "text/html; charset=utf-8", Filename: name + ".html", Body: templates.RenderPage(ctx)}, nil
	case FormatMarkdown, "md":
		md, err := toMarkdown(templates.Render(ctx))
		if err != nil {
			return nil, err
		}
		if p.Title != "" {
			md = "# " + p.Title + "\n\n" + md
		}
		return &Export{Format: FormatMarkdown, ContentType: "text/markdown; charset=utf-8", Filename: name + ".md", Body: md}, nil
	case FormatJSON:
		data, err := document.MarshalPayload(p)
		if err != nil {
			return nil, err
		}
		return &Export{Format: FormatJSON, ContentType: "application/json", Filename: name + ".json", Body: string(data)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func toMarkdown(html string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	md, err := conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}

// Publish stores an immutable rendering of the document and sends a notice
// when a mailer is configured. Unsaved edits are saved first.
func (s *ExportService) Publish(ctx context.Context, documentID string) (*repositories.Publication, error) {
	if s.publications == nil {
		return nil, fmt.Errorf("publishing requires a database")
	}
	payload, err := s.editor.SaveAndPayload(ctx, documentID)
	if err != nil {
		return nil, err
	}
	page, err := ExportPayload(payload, FormatPage)
	if err != nil {
		return nil, err
	}
	md, err := ExportPayload(payload, FormatMarkdown)
	if err != nil {
		return nil, err
	}

	pub := &repositories.Publication{
		ID:         strings.ToLower(security.GenerateULID()),
		DocumentID: documentID,
		HTML:       page.Body,
		Markdown:   md.Body,
		Created:    time.Now().UTC(),
	}
	if err := s.publications.Store(ctx, pub); err != nil {
		return nil, err
	}
	s.logger.Export().Info("Document published", "documentId", documentID, "publicationId", pub.ID)

	if s.mailer != nil && s.notifyEmail != "" {
		sections, widgetCount := countNodes(payload.Sections)
		props := emailtemplates.PublishNoticeProps{
			DocumentTitle: payload.Title,
			DocumentID:    documentID,
			PublicationID: pub.ID,
			Sections:      sections,
			Widgets:       widgetCount,
			PublishedAt:   pub.Created,
		}
		if s.previewBaseURL != "" {
			props.PreviewURL = fmt.Sprintf("%s/publications/%s", s.previewBaseURL, documentID)
		}
		if err := s.mailer.SendPublishNotice(s.notifyEmail, props); err != nil {
			s.logger.Export().Warn("Publish notice not sent", "documentId", documentID, "error", err.Error())
		}
	}
	return pub, nil
}

// LatestPublication returns the newest publication, or nil when none exists.
func (s *ExportService) LatestPublication(ctx context.Context, documentID string) (*repositories.Publication, error) {
	if s.publications == nil {
		return nil, nil
	}
	return s.publications.FindLatest(ctx, documentID)
}

func countNodes(sections []*document.Node) (int, int) {
	widgetCount := 0
	document.WalkForest(sections, func(n, parent *document.Node) bool {
		if parent != nil && parent.Type == widgets.TypeColumn {
			widgetCount++
		}
		return true
	})
	return len(sections), widgetCount
}
