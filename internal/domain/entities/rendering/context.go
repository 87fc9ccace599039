// Package rendering provides domain entities for HTML rendering operations
package rendering

import (
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
)

// Mode selects between the decorated editor canvas and clean published markup.
type Mode string

const (
	ModeEditor  Mode = "editor"
	ModePublish Mode = "publish"
)

// RootID is the parent key of top-level sections in ParentNodes.
const RootID = ""

// RenderContext is a read-only index over one document state. It is built
// fresh for every render pass.
type RenderContext struct {
	AllNodes    map[string]*document.Node `json:"-"`
	ParentNodes map[string][]string       `json:"parentNodes,omitempty"`
	ParentOf    map[string]string         `json:"-"`
	DocumentID  string                    `json:"documentId,omitempty"`
	Title       string                    `json:"title,omitempty"`
	SelectedID  string                    `json:"selectedId,omitempty"`
	Device      document.Device           `json:"device"`
	Mode        Mode                      `json:"mode"`
}

// NewRenderContext indexes a forest. When a node id repeats, the first
// occurrence in depth-first order wins, matching document lookup.
func NewRenderContext(sections []*document.Node, selectedID string, device document.Device, mode Mode) *RenderContext {
	if !device.Valid() {
		device = document.DeviceDesktop
	}
	if mode != ModePublish {
		mode = ModeEditor
	}
	ctx := &RenderContext{
		AllNodes:    make(map[string]*document.Node),
		ParentNodes: make(map[string][]string),
		ParentOf:    make(map[string]string),
		SelectedID:  selectedID,
		Device:      device,
		Mode:        mode,
	}
	for _, section := range sections {
		ctx.index(section, RootID)
	}
	return ctx
}

// FromDocument builds a context from the live state of a document.
func FromDocument(d *document.Document, mode Mode) *RenderContext {
	ctx := NewRenderContext(d.Sections, d.SelectedID, d.Device, mode)
	ctx.DocumentID = d.ID
	ctx.Title = d.Title
	return ctx
}

func (ctx *RenderContext) index(n *document.Node, parentID string) {
	if _, dup := ctx.AllNodes[n.ID]; dup {
		return
	}
	ctx.AllNodes[n.ID] = n
	ctx.ParentOf[n.ID] = parentID
	ctx.ParentNodes[parentID] = append(ctx.ParentNodes[parentID], n.ID)
	for _, child := range n.Children {
		ctx.index(child, n.ID)
	}
}

// Node returns the node with id.
func (ctx *RenderContext) Node(id string) (*document.Node, bool) {
	n, ok := ctx.AllNodes[id]
	return n, ok
}

// RootIDs returns the section ids in order.
func (ctx *RenderContext) RootIDs() []string {
	return ctx.ParentNodes[RootID]
}

// Editing reports whether editor decoration should be emitted.
func (ctx *RenderContext) Editing() bool {
	return ctx.Mode == ModeEditor
}

// IsSelected reports whether id carries the selection decoration.
func (ctx *RenderContext) IsSelected(id string) bool {
	return ctx.Editing() && id != "" && id == ctx.SelectedID
}
