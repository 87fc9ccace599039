package elements

import (
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HeadingRenderer renders heading widgets.
type HeadingRenderer struct {
	ctx *rendering.RenderContext
}

// NewHeadingRenderer creates a heading renderer
func NewHeadingRenderer(ctx *rendering.RenderContext) *HeadingRenderer {
	return &HeadingRenderer{ctx: ctx}
}

// Render emits <hN class="...">text</hN>. Tags outside h1-h6 fall back to h2.
func (hr *HeadingRenderer) Render(nodeID string) string {
	node, ok := hr.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}

	tag := strings.ToLower(strings.TrimSpace(node.String("tag")))
	if !headingTags[tag] {
		tag = "h2"
	}
	classes := joinClasses(
		node.String("align"),
		node.String("color"),
		node.String("size"),
		node.String("weight"),
		node.String("margin"),
		"leading-tight",
	)

	var html strings.Builder
	html.WriteString("<" + tag)
	html.WriteString(classAttr(classes))
	html.WriteString(">")
	html.WriteString(escapeText(node.String("text")))
	html.WriteString("</" + tag + ">")
	return html.String()
}

// joinClasses joins non-empty class fragments with single spaces.
func joinClasses(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
