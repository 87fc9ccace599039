// Package templates renders a document forest to HTML.
package templates

import (
	"html/template"
	"log"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/flexibuilder-go/internal/presentation/templates/elements"
)

var canvasTemplates = template.Must(template.New("canvas").Parse(
	`{{define "editorOpen"}}<div id="builder-canvas" class="{{.Class}}" data-device="{{.Device}}">{{end}}` +
		`{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script src="https://cdn.tailwindcss.com"></script>
<script>
tailwind.config = {
  theme: {
    extend: {
      fontFamily: { sans: ['Inter', 'sans-serif'] },
      colors: {
        brand: { 500: '#6366f1', 600: '#4f46e5', 700: '#4338ca' },
        dark: { 800: '#1e1e24', 900: '#18181b' },
        gray: { 750: '#2d3748' }
      }
    }
  }
}
</script>
<link href="https://fonts.googleapis.com/css2?family=Inter:wght@300;400;600;700;800&display=swap" rel="stylesheet">
</head>
<body class="font-sans antialiased text-gray-900 bg-white">
{{.Body}}
</body>
</html>
{{end}}`,
))

type editorOpenData struct {
	Class  string
	Device string
}

type pageData struct {
	Title string
	Body  template.HTML
}

// NodeRendererImpl dispatches a node to its element renderer by type.
type NodeRendererImpl struct {
	ctx          *rendering.RenderContext
	cssProcessor *CSSProcessorImpl
}

// NewNodeRenderer creates a new node renderer with context
func NewNodeRenderer(ctx *rendering.RenderContext) *NodeRendererImpl {
	renderer := &NodeRendererImpl{ctx: ctx}
	renderer.cssProcessor = NewCSSProcessorImpl(ctx)
	return renderer
}

// Render is the whole-canvas entry point: one full, deterministic pass over
// the forest in ctx.
func Render(ctx *rendering.RenderContext) string {
	return NewNodeRenderer(ctx).RenderCanvas()
}

// RenderPage renders the published canvas inside a standalone HTML document.
func RenderPage(ctx *rendering.RenderContext) string {
	publish := *ctx
	publish.Mode = rendering.ModePublish
	body := NewNodeRenderer(&publish).RenderCanvas()

	title := ctx.Title
	if title == "" {
		title = "Untitled Page"
	}
	var html strings.Builder
	if err := canvasTemplates.ExecuteTemplate(&html, "page", pageData{Title: title, Body: template.HTML(body)}); err != nil {
		log.Printf("ERROR: Failed to execute page template for document %s: %v", ctx.DocumentID, err)
		return body
	}
	return html.String()
}

// RenderCanvas renders every section in order. Editor output is wrapped in
// the device viewport frame; publish output in a plain main element.
func (nr *NodeRendererImpl) RenderCanvas() string {
	var html strings.Builder
	if nr.ctx.Editing() {
		vp := nr.ctx.GetViewport()
		data := editorOpenData{Class: vp.Class, Device: string(vp.Device)}
		if err := canvasTemplates.ExecuteTemplate(&html, "editorOpen", data); err != nil {
			log.Printf("ERROR: Failed to execute canvas template for document %s: %v", nr.ctx.DocumentID, err)
			return `<!-- error rendering canvas -->`
		}
	} else {
		html.WriteString(`<main class="w-full">`)
	}

	for _, sectionID := range nr.ctx.RootIDs() {
		html.WriteString(nr.RenderNode(sectionID))
	}

	if nr.ctx.Editing() {
		html.WriteString(`</div>`)
	} else {
		html.WriteString(`</main>`)
	}
	return html.String()
}

// RenderNode renders a node by ID. Unknown ids and types render an empty div.
func (nr *NodeRendererImpl) RenderNode(nodeID string) string {
	if nodeID == "" {
		return elements.RenderEmpty()
	}
	node, ok := nr.ctx.Node(nodeID)
	if !ok {
		return elements.RenderEmpty()
	}

	switch node.Type {
	case widgets.TypeSection:
		return elements.NewSectionRenderer(nr.ctx, nr, nr.cssProcessor).Render(nodeID)
	case widgets.TypeColumn:
		return elements.NewColumnRenderer(nr.ctx, nr, nr.cssProcessor).Render(nodeID)
	case "heading":
		return nr.wrap(nodeID, elements.NewHeadingRenderer(nr.ctx).Render(nodeID))
	case "text":
		return nr.wrap(nodeID, elements.NewTextRenderer(nr.ctx).Render(nodeID))
	case "button":
		return nr.wrap(nodeID, elements.NewButtonRenderer(nr.ctx).Render(nodeID))
	case "image":
		return nr.wrap(nodeID, elements.NewImageRenderer(nr.ctx).Render(nodeID))
	case "video":
		return nr.wrap(nodeID, elements.NewVideoRenderer(nr.ctx).Render(nodeID))
	case "spacer":
		return nr.wrap(nodeID, elements.NewSpacerRenderer(nr.ctx).Render(nodeID))
	case "divider":
		return nr.wrap(nodeID, elements.NewDividerRenderer(nr.ctx).Render(nodeID))
	case "hero":
		return nr.wrap(nodeID, elements.NewBlockRenderer(nr.ctx).RenderHero(nodeID))
	case "card":
		return nr.wrap(nodeID, elements.NewBlockRenderer(nr.ctx).RenderCard(nodeID))
	case "form":
		return nr.wrap(nodeID, elements.NewBlockRenderer(nr.ctx).RenderForm(nodeID))
	default:
		return elements.RenderEmpty()
	}
}

// GetChildNodeIDs returns child node IDs for a given parent
func (nr *NodeRendererImpl) GetChildNodeIDs(parentID string) []string {
	if nr.ctx.ParentNodes == nil {
		return []string{}
	}
	children, exists := nr.ctx.ParentNodes[parentID]
	if !exists {
		return []string{}
	}
	return children
}

func (nr *NodeRendererImpl) wrap(nodeID, inner string) string {
	return elements.NewWidgetShellRenderer(nr.ctx, nr.cssProcessor).Wrap(nodeID, inner)
}
