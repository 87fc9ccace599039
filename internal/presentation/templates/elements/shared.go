// Package elements holds one markup renderer per widget type.
package elements

import (
	"html/template"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

// NodeRenderer renders child nodes by id.
type NodeRenderer interface {
	RenderNode(nodeID string) string
	GetChildNodeIDs(nodeID string) []string
}

// CSSProcessor composes class lists, adding editor decoration when appropriate.
type CSSProcessor interface {
	Join(parts ...string) string
	SectionClasses(node *document.Node) string
	ColumnClasses(node *document.Node) string
	WidgetWrapperClasses(nodeID string) string
}

var (
	// classAttrTmpl renders an escaped class attribute.
	classAttrTmpl = template.Must(template.New("classAttr").Parse(` class="{{.}}"`))

	// textEscaper escapes text content.
	textEscaper = template.Must(template.New("textEscaper").Parse("{{.}}"))

	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

// RenderEmpty is the output for nodes that have no rendering rule.
func RenderEmpty() string {
	return `<div></div>`
}

func executeTemplate(b *strings.Builder, tmpl *template.Template, name string, data any, nodeID string) bool {
	if err := tmpl.ExecuteTemplate(b, name, data); err != nil {
		log.Printf("ERROR: Failed to execute %s template for nodeID %s: %v", name, nodeID, err)
		b.WriteString(`<!-- template error -->`)
		return false
	}
	return true
}

func escapeText(s string) string {
	var b strings.Builder
	if err := textEscaper.Execute(&b, s); err != nil {
		return ""
	}
	return b.String()
}

func classAttr(classes string) string {
	var b strings.Builder
	if err := classAttrTmpl.Execute(&b, classes); err != nil {
		return ""
	}
	return b.String()
}

// safeColor returns c if it is a hex color, otherwise fallback.
func safeColor(c, fallback string) string {
	c = strings.TrimSpace(c)
	if hexColor.MatchString(c) {
		return c
	}
	return fallback
}

// safeNumber parses a numeric-as-string prop, clamping to [min, max].
func safeNumber(s string, fallback, min, max float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// dataAttrs identifies a node in the editor canvas. Empty in publish mode.
func dataAttrs(ctx *rendering.RenderContext, n *document.Node) template.HTMLAttr {
	if !ctx.Editing() {
		return ""
	}
	return template.HTMLAttr(` data-id="` + template.HTMLEscapeString(n.ID) + `" data-type="` + template.HTMLEscapeString(n.Type) + `"`)
}
