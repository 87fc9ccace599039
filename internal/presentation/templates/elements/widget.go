package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

var widgetShellTemplates = template.Must(template.New("widgetShell").Parse(
	`{{define "open"}}<div class="relative group cursor-pointer"{{.Data}}>{{if .Selected}}<div class="absolute -top-3 right-0 bg-brand-500 text-white text-[9px] px-2 py-0.5 rounded flex gap-2 z-10"><i class="fas fa-pen"></i> <i class="fas fa-trash-alt cursor-pointer" data-action="delete" data-target="{{.ID}}"></i></div>{{end}}<div class="{{.WrapperClass}}">{{end}}`,
))

type widgetShellData struct {
	ID           string
	Data         template.HTMLAttr
	Selected     bool
	WrapperClass string
}

// WidgetShellRenderer wraps leaf widget markup with editor hover and selection chrome.
type WidgetShellRenderer struct {
	ctx          *rendering.RenderContext
	cssProcessor CSSProcessor
}

// NewWidgetShellRenderer creates a widget shell renderer
func NewWidgetShellRenderer(ctx *rendering.RenderContext, cssProcessor CSSProcessor) *WidgetShellRenderer {
	return &WidgetShellRenderer{ctx: ctx, cssProcessor: cssProcessor}
}

// Wrap returns inner unchanged in publish mode.
func (wr *WidgetShellRenderer) Wrap(nodeID, inner string) string {
	if !wr.ctx.Editing() {
		return inner
	}
	node, ok := wr.ctx.Node(nodeID)
	if !ok {
		return inner
	}

	var html strings.Builder
	data := widgetShellData{
		ID:           node.ID,
		Data:         dataAttrs(wr.ctx, node),
		Selected:     wr.ctx.IsSelected(node.ID),
		WrapperClass: wr.cssProcessor.WidgetWrapperClasses(node.ID),
	}
	if !executeTemplate(&html, widgetShellTemplates, "open", data, nodeID) {
		return inner
	}
	html.WriteString(inner)
	html.WriteString(`</div></div>`)
	return html.String()
}
