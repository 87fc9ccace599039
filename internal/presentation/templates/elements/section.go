package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

var sectionTemplates = template.Must(template.New("section").Parse(
	`{{define "open"}}<section id="{{.ID}}" class="{{.Class}}"{{.Data}}>{{end}}` +
		`{{define "handle"}}<div class="section-handle absolute top-0 left-1/2 transform -translate-x-1/2 -translate-y-full bg-brand-500 text-white text-[10px] font-bold px-3 py-1 rounded-t cursor-grab opacity-0 group-hover:opacity-100 transition-opacity z-20 flex gap-2"><span>SECTION</span> <i class="fas fa-grip-lines"></i> <i class="fas fa-trash-alt cursor-pointer hover:text-red-200" data-action="delete" data-target="{{.}}"></i></div>{{end}}` +
		`{{define "container"}}<div class="{{.}}">{{end}}`,
))

type sectionOpenData struct {
	ID    string
	Class string
	Data  template.HTMLAttr
}

// SectionRenderer renders a section and its columns.
type SectionRenderer struct {
	ctx          *rendering.RenderContext
	nodeRenderer NodeRenderer
	cssProcessor CSSProcessor
}

// NewSectionRenderer creates a section renderer
func NewSectionRenderer(ctx *rendering.RenderContext, nodeRenderer NodeRenderer, cssProcessor CSSProcessor) *SectionRenderer {
	return &SectionRenderer{ctx: ctx, nodeRenderer: nodeRenderer, cssProcessor: cssProcessor}
}

// Render emits the section wrapper, the editor handle and the column container.
func (sr *SectionRenderer) Render(nodeID string) string {
	node, ok := sr.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}

	var html strings.Builder
	open := sectionOpenData{
		ID:    node.ID,
		Class: sr.cssProcessor.SectionClasses(node),
		Data:  dataAttrs(sr.ctx, node),
	}
	if !executeTemplate(&html, sectionTemplates, "open", open, nodeID) {
		return html.String()
	}
	if sr.ctx.Editing() {
		executeTemplate(&html, sectionTemplates, "handle", node.ID, nodeID)
	}

	container := "w-full flex flex-wrap"
	if node.Bool("boxed") {
		container = "container mx-auto px-4 flex flex-wrap"
	}
	executeTemplate(&html, sectionTemplates, "container", container, nodeID)
	for _, childID := range sr.nodeRenderer.GetChildNodeIDs(nodeID) {
		html.WriteString(sr.nodeRenderer.RenderNode(childID))
	}
	html.WriteString(`</div></section>`)
	return html.String()
}
