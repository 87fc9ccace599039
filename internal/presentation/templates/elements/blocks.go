package elements

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

var blockTemplates = template.Must(template.New("blocks").Parse(
	`{{define "hero"}}<div class="{{.Class}}" style="{{.Style}}">` +
		`<h1 class="text-4xl md:text-5xl font-bold leading-tight mb-4">{{.Title}}</h1>` +
		`{{if .Subtitle}}<p class="text-lg opacity-90 mb-8 max-w-2xl">{{.Subtitle}}</p>{{end}}` +
		`{{if .ButtonText}}<a href="{{.ButtonLink}}" class="inline-block bg-white text-gray-900 font-semibold px-8 py-3 rounded-md shadow-md hover:shadow-lg"{{if .Editing}} onclick="return false;"{{end}}>{{.ButtonText}}</a>{{end}}` +
		`</div>{{end}}` +
		`{{define "card"}}<div class="{{.Class}}" style="{{.Style}}">` +
		`{{if .Image}}<img src="{{.Image}}" alt="{{.Title}}" class="w-full h-48 object-cover block">{{end}}` +
		`<div class="p-6"><h3 class="text-xl font-bold text-gray-900 mb-2">{{.Title}}</h3>` +
		`{{if .Text}}<p class="text-gray-600 mb-4">{{.Text}}</p>{{end}}` +
		`{{if .ButtonText}}<a href="{{.Link}}" class="text-brand-600 font-semibold hover:underline"{{if .Editing}} onclick="return false;"{{end}}>{{.ButtonText}}</a>{{end}}` +
		`</div></div>{{end}}` +
		`{{define "form"}}<form class="flex flex-col" action="{{.Action}}" method="post" style="{{.Style}}"{{if .Editing}} onsubmit="return false;"{{end}}>` +
		`{{if .Title}}<h3 class="text-2xl font-bold text-gray-900">{{.Title}}</h3>{{end}}` +
		`{{range .Fields}}<label class="flex flex-col gap-1 text-sm font-medium text-gray-700">{{.Label}}` +
		`{{if .Multiline}}<textarea name="{{.Name}}" rows="4" class="border border-gray-300 rounded-md px-3 py-2"></textarea>` +
		`{{else}}<input type="{{.InputType}}" name="{{.Name}}" class="border border-gray-300 rounded-md px-3 py-2">{{end}}</label>{{end}}` +
		`<button type="submit" class="text-white font-semibold px-6 py-3 rounded-md" style="{{.ButtonStyle}}">{{.ButtonText}}</button>` +
		`</form>{{end}}`,
))

var fieldName = regexp.MustCompile(`[^a-z0-9_-]+`)

type heroData struct {
	Class      string
	Style      template.CSS
	Title      string
	Subtitle   string
	ButtonText string
	ButtonLink string
	Editing    bool
}

type cardData struct {
	Class      string
	Style      template.CSS
	Image      string
	Title      string
	Text       string
	ButtonText string
	Link       string
	Editing    bool
}

type formField struct {
	Name      string
	Label     string
	InputType string
	Multiline bool
}

type formData struct {
	Action      string
	Style       template.CSS
	Title       string
	Fields      []formField
	ButtonText  string
	ButtonStyle template.CSS
	Editing     bool
}

// BlockRenderer renders the composite hero, card and form widgets. Colors
// must be hex values and sizes plain numbers before they reach a style
// attribute; anything else falls back to the catalog default.
type BlockRenderer struct {
	ctx *rendering.RenderContext
}

// NewBlockRenderer creates a block renderer
func NewBlockRenderer(ctx *rendering.RenderContext) *BlockRenderer {
	return &BlockRenderer{ctx: ctx}
}

// RenderHero renders a full-width banner.
func (br *BlockRenderer) RenderHero(nodeID string) string {
	node, ok := br.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}

	alignment := "items-center text-center"
	switch node.String("align") {
	case "left":
		alignment = "items-start text-left"
	case "right":
		alignment = "items-end text-right"
	}
	style := "background-color: " + safeColor(node.String("bgColor"), "#1e293b") +
		"; color: " + safeColor(node.String("textColor"), "#ffffff") +
		"; min-height: " + px(safeNumber(node.String("height"), 480, 100, 2000))

	data := heroData{
		Class:      joinClasses("hero flex flex-col justify-center px-8 py-16 rounded-lg", alignment),
		Style:      template.CSS(style),
		Title:      node.String("title"),
		Subtitle:   node.String("subtitle"),
		ButtonText: node.String("buttonText"),
		ButtonLink: node.String("buttonLink"),
		Editing:    br.ctx.Editing(),
	}
	var html strings.Builder
	executeTemplate(&html, blockTemplates, "hero", data, nodeID)
	return html.String()
}

// RenderCard renders an image card with a title, copy and a link.
func (br *BlockRenderer) RenderCard(nodeID string) string {
	node, ok := br.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}

	style := "background-color: " + safeColor(node.String("bgColor"), "#ffffff") +
		"; border-radius: " + px(safeNumber(node.String("radius"), 12, 0, 64))

	data := cardData{
		Class:      joinClasses("card overflow-hidden", node.String("shadow")),
		Style:      template.CSS(style),
		Image:      node.String("image"),
		Title:      node.String("title"),
		Text:       node.String("text"),
		ButtonText: node.String("buttonText"),
		Link:       node.String("link"),
		Editing:    br.ctx.Editing(),
	}
	var html strings.Builder
	executeTemplate(&html, blockTemplates, "card", data, nodeID)
	return html.String()
}

// RenderForm renders a contact form from a comma separated field list.
// A field named message becomes a textarea and email an email input.
func (br *BlockRenderer) RenderForm(nodeID string) string {
	node, ok := br.ctx.Node(nodeID)
	if !ok {
		return RenderEmpty()
	}

	data := formData{
		Action:      node.String("action"),
		Style:       template.CSS("gap: " + px(safeNumber(node.String("spacing"), 16, 0, 96))),
		Title:       node.String("title"),
		Fields:      parseFormFields(node.String("fields")),
		ButtonText:  node.String("buttonText"),
		ButtonStyle: template.CSS("background-color: " + safeColor(node.String("buttonColor"), "#2563eb")),
		Editing:     br.ctx.Editing(),
	}
	var html strings.Builder
	executeTemplate(&html, blockTemplates, "form", data, nodeID)
	return html.String()
}

func parseFormFields(list string) []formField {
	var fields []formField
	seen := make(map[string]bool)
	for _, raw := range strings.Split(list, ",") {
		label := strings.TrimSpace(raw)
		name := fieldName.ReplaceAllString(strings.ToLower(label), "-")
		name = strings.Trim(name, "-")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		f := formField{Name: name, Label: strings.ToUpper(label[:1]) + label[1:], InputType: "text"}
		switch name {
		case "message", "comments", "comment":
			f.Multiline = true
		case "email":
			f.InputType = "email"
		case "phone", "tel":
			f.InputType = "tel"
		}
		fields = append(fields, f)
	}
	return fields
}
