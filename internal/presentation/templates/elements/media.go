package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

var mediaTemplates = template.Must(template.New("media").Parse(
	`{{define "image"}}<div class="{{.Outer}}"><img src="{{.Src}}" alt="{{.Alt}}" class="{{.Class}}"></div>{{end}}` +
		`{{define "video"}}<div class="{{.Outer}}"><iframe class="w-full h-full" src="{{.Src}}" frameborder="0" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe></div>{{end}}`,
))

type mediaData struct {
	Outer string
	Src   string
	Alt   string
	Class string
}

// ImageRenderer renders image widgets.
type ImageRenderer struct {
	ctx *rendering.RenderContext
}

// NewImageRenderer creates an image renderer
func NewImageRenderer(ctx *rendering.RenderContext) *ImageRenderer {
	return &ImageRenderer{ctx: ctx}
}

func (ir *ImageRenderer) Render(nodeID string) string {
	node, ok := ir.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}
	data := mediaData{
		Outer: joinClasses(node.String("shadow"), "overflow-hidden", node.String("radius")),
		Src:   node.String("src"),
		Alt:   node.String("alt"),
		Class: joinClasses(node.String("width"), "h-auto object-cover block"),
	}
	var html strings.Builder
	executeTemplate(&html, mediaTemplates, "image", data, nodeID)
	return html.String()
}

// VideoRenderer renders embedded video widgets.
type VideoRenderer struct {
	ctx *rendering.RenderContext
}

// NewVideoRenderer creates a video renderer
func NewVideoRenderer(ctx *rendering.RenderContext) *VideoRenderer {
	return &VideoRenderer{ctx: ctx}
}

func (vr *VideoRenderer) Render(nodeID string) string {
	node, ok := vr.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}
	data := mediaData{
		Outer: joinClasses(node.String("ratio"), "w-full overflow-hidden rounded-lg bg-black"),
		Src:   node.String("src"),
	}
	var html strings.Builder
	executeTemplate(&html, mediaTemplates, "video", data, nodeID)
	return html.String()
}
