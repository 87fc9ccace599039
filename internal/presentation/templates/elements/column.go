package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

var columnOpenTmpl = template.Must(template.New("column").Parse(
	`<div id="{{.ID}}" class="{{.Class}}"{{.Data}}{{if .Empty}} data-empty="Drop widgets here"{{end}}>`,
))

type columnOpenData struct {
	ID    string
	Class string
	Data  template.HTMLAttr
	Empty bool
}

// ColumnRenderer renders a column and the widgets it holds.
type ColumnRenderer struct {
	ctx          *rendering.RenderContext
	nodeRenderer NodeRenderer
	cssProcessor CSSProcessor
}

// NewColumnRenderer creates a column renderer
func NewColumnRenderer(ctx *rendering.RenderContext, nodeRenderer NodeRenderer, cssProcessor CSSProcessor) *ColumnRenderer {
	return &ColumnRenderer{ctx: ctx, nodeRenderer: nodeRenderer, cssProcessor: cssProcessor}
}

// Render emits the column drop zone followed by each widget.
func (cr *ColumnRenderer) Render(nodeID string) string {
	node, ok := cr.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}

	childIDs := cr.nodeRenderer.GetChildNodeIDs(nodeID)
	var html strings.Builder
	data := columnOpenData{
		ID:    node.ID,
		Class: cr.cssProcessor.ColumnClasses(node),
		Data:  dataAttrs(cr.ctx, node),
		Empty: cr.ctx.Editing() && len(childIDs) == 0,
	}
	if err := columnOpenTmpl.Execute(&html, data); err != nil {
		return `<!-- error rendering column -->`
	}
	for _, childID := range childIDs {
		html.WriteString(cr.nodeRenderer.RenderNode(childID))
	}
	html.WriteString(`</div>`)
	return html.String()
}
