package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

// buttonTmpl renders the link-styled button. html/template filters unsafe
// href schemes such as javascript: to #ZgotmplZ.
var buttonTmpl = template.Must(template.New("button").Parse(
	`{{define "button"}}<div class="{{.Outer}}"><a href="{{.Href}}" class="{{.Class}}"{{if .Editing}} onclick="return false;"{{end}}>{{.Text}}</a></div>{{end}}`,
))

type buttonData struct {
	Outer   string
	Href    string
	Class   string
	Text    string
	Editing bool
}

// ButtonRenderer renders button widgets.
type ButtonRenderer struct {
	ctx *rendering.RenderContext
}

// NewButtonRenderer creates a button renderer
func NewButtonRenderer(ctx *rendering.RenderContext) *ButtonRenderer {
	return &ButtonRenderer{ctx: ctx}
}

// Render emits an aligned anchor styled as a button.
func (br *ButtonRenderer) Render(nodeID string) string {
	node, ok := br.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}

	data := buttonData{
		Outer: joinClasses(node.String("align"), node.String("margin")),
		Href:  node.String("link"),
		Class: joinClasses(
			"inline-block",
			node.String("variant"),
			node.String("color"),
			node.String("size"),
			node.String("radius"),
			"font-semibold transition-transform hover:scale-105 shadow-md hover:shadow-lg",
		),
		Text:    node.String("text"),
		Editing: br.ctx.Editing(),
	}

	var html strings.Builder
	executeTemplate(&html, buttonTmpl, "button", data, nodeID)
	return html.String()
}
