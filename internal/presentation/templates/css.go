// Package templates provides CSS class composition for rendered nodes
package templates

import (
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

const (
	sectionEditorClasses = "group relative border-2 border-transparent hover:border-brand-500 transition-colors"
	sectionLayoutClasses = "flex flex-col justify-center"
	sectionSelected      = "border-brand-500 ring-4 ring-brand-500/20"

	columnEditorClasses = "builder-column relative p-2 border border-dashed border-transparent hover:border-gray-300 min-h-[50px]"
	columnPublishClass  = "relative p-2"
	columnLayoutClasses = "flex flex-col gap-2 transition-all"
	columnEmptyClasses  = "bg-gray-50/50"

	widgetWrapperBase     = "widget-wrapper transition-all duration-200 border border-transparent"
	widgetWrapperSelected = "border-brand-500 ring-2 ring-brand-500/20"
	widgetWrapperHover    = "hover:border-brand-400"
)

// CSSProcessorImpl composes classes from node props, adding editor
// decoration only in editor mode.
type CSSProcessorImpl struct {
	ctx *rendering.RenderContext
}

// NewCSSProcessorImpl creates a new CSS processor
func NewCSSProcessorImpl(ctx *rendering.RenderContext) *CSSProcessorImpl {
	return &CSSProcessorImpl{ctx: ctx}
}

// Join joins non-empty fragments with single spaces.
func (cp *CSSProcessorImpl) Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// SectionClasses returns the class list for a section wrapper.
func (cp *CSSProcessorImpl) SectionClasses(n *document.Node) string {
	props := cp.Join(n.String("padding"), n.String("bg"), n.String("height"), sectionLayoutClasses)
	if !cp.ctx.Editing() {
		return cp.Join("relative", props)
	}
	classes := cp.Join(sectionEditorClasses, props)
	if cp.ctx.IsSelected(n.ID) {
		classes = cp.Join(classes, sectionSelected)
	}
	return classes
}

// ColumnClasses returns the class list for a column.
func (cp *CSSProcessorImpl) ColumnClasses(n *document.Node) string {
	if !cp.ctx.Editing() {
		return cp.Join(columnPublishClass, n.String("width"), columnLayoutClasses)
	}
	classes := cp.Join(columnEditorClasses, n.String("width"), columnLayoutClasses)
	if len(n.Children) == 0 {
		classes = cp.Join(classes, columnEmptyClasses)
	}
	if cp.ctx.IsSelected(n.ID) {
		classes = cp.Join(classes, "border-brand-500")
	}
	return classes
}

// WidgetWrapperClasses returns the editor wrapper classes for a widget.
func (cp *CSSProcessorImpl) WidgetWrapperClasses(nodeID string) string {
	if cp.ctx.IsSelected(nodeID) {
		return cp.Join(widgetWrapperBase, widgetWrapperSelected)
	}
	return cp.Join(widgetWrapperBase, widgetWrapperHover)
}
