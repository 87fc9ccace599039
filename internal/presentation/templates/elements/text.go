package elements

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

// textPolicy allows user-authored inline markup (links, emphasis, lists) and
// strips scripts, event handlers and unsafe URLs.
var textPolicy = bluemonday.UGCPolicy()

// TextRenderer renders rich text widgets.
type TextRenderer struct {
	ctx *rendering.RenderContext
}

// NewTextRenderer creates a text renderer
func NewTextRenderer(ctx *rendering.RenderContext) *TextRenderer {
	return &TextRenderer{ctx: ctx}
}

// Render emits the sanitized text inside a prose container.
func (tr *TextRenderer) Render(nodeID string) string {
	node, ok := tr.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}

	classes := joinClasses(
		node.String("align"),
		node.String("color"),
		node.String("size"),
		node.String("margin"),
		"prose max-w-none",
	)

	var html strings.Builder
	html.WriteString("<div")
	html.WriteString(classAttr(classes))
	html.WriteString(">")
	html.WriteString(textPolicy.Sanitize(node.String("text")))
	html.WriteString("</div>")
	return html.String()
}
