package elements

import (
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

// SpacerRenderer renders vertical whitespace.
type SpacerRenderer struct {
	ctx *rendering.RenderContext
}

// NewSpacerRenderer creates a spacer renderer
func NewSpacerRenderer(ctx *rendering.RenderContext) *SpacerRenderer {
	return &SpacerRenderer{ctx: ctx}
}

func (sr *SpacerRenderer) Render(nodeID string) string {
	node, ok := sr.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}
	return "<div" + classAttr(node.String("height")) + "></div>"
}

// DividerRenderer renders a horizontal rule.
type DividerRenderer struct {
	ctx *rendering.RenderContext
}

// NewDividerRenderer creates a divider renderer
func NewDividerRenderer(ctx *rendering.RenderContext) *DividerRenderer {
	return &DividerRenderer{ctx: ctx}
}

func (dr *DividerRenderer) Render(nodeID string) string {
	node, ok := dr.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}
	var html strings.Builder
	html.WriteString("<div")
	html.WriteString(classAttr(joinClasses(node.String("margin"), "flex items-center justify-center")))
	html.WriteString("><div")
	html.WriteString(classAttr(joinClasses(node.String("width"), "border-t", node.String("style"))))
	html.WriteString("></div></div>")
	return html.String()
}
