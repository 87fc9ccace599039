package document

import (
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/security"
)

// Device is the preview viewport.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// Valid reports whether d is a known device.
func (d Device) Valid() bool {
	switch d {
	case DeviceDesktop, DeviceTablet, DeviceMobile:
		return true
	}
	return false
}

// IDGenerator returns a new node id for the given prefix.
type IDGenerator func(prefix string) string

// Document is the editor state for one page: the section forest, the
// selection, the preview device and the history log. It is not safe for
// concurrent use; callers serialize access.
type Document struct {
	ID         string
	Title      string
	Sections   []*Node
	SelectedID string
	Device     Device
	Created    time.Time
	Changed    time.Time

	history   *History
	catalog   *widgets.Catalog
	newID     IDGenerator
	revisions int
}

// Option configures a Document.
type Option func(*documentOptions)

type documentOptions struct {
	catalog  *widgets.Catalog
	capacity int
	newID    IDGenerator
	title    string
	sections []*Node
	device   Device
}

// WithCatalog sets the widget catalog. Defaults to widgets.Default().
func WithCatalog(c *widgets.Catalog) Option {
	return func(o *documentOptions) { o.catalog = c }
}

// WithHistoryCapacity sets the history cap.
func WithHistoryCapacity(n int) Option {
	return func(o *documentOptions) { o.capacity = n }
}

// WithIDGenerator replaces the node id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *documentOptions) { o.newID = gen }
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(o *documentOptions) { o.title = title }
}

// WithSections seeds the forest. The sections become the first history entry.
func WithSections(sections []*Node) Option {
	return func(o *documentOptions) { o.sections = sections }
}

// WithDevice sets the initial preview device.
func WithDevice(d Device) Option {
	return func(o *documentOptions) { o.device = d }
}

// New creates a document. The initial forest is recorded as history entry 0.
func New(id string, opts ...Option) *Document {
	o := &documentOptions{
		capacity: DefaultHistoryCapacity,
		newID:    security.GenerateNodeID,
		device:   DeviceDesktop,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.catalog == nil {
		o.catalog = widgets.Default()
	}
	if !o.device.Valid() {
		o.device = DeviceDesktop
	}

	now := time.Now().UTC()
	d := &Document{
		ID:       id,
		Title:    o.title,
		Sections: CloneForest(o.sections),
		Device:   o.device,
		Created:  now,
		Changed:  now,
		catalog:  o.catalog,
		newID:    o.newID,
	}
	d.history = NewHistory(o.capacity, d.Sections)
	return d
}

// Catalog returns the catalog the document validates against.
func (d *Document) Catalog() *widgets.Catalog { return d.catalog }

// History exposes the snapshot log for inspection.
func (d *Document) History() *History { return d.history }

// Revisions counts recorded history entries since the document was created.
func (d *Document) Revisions() int { return d.revisions }

// Snapshot returns a deep copy of the live forest.
func (d *Document) Snapshot() []*Node { return CloneForest(d.Sections) }

// Find returns the first node with id, searching depth-first.
func (d *Document) Find(id string) (*Node, bool) {
	if id == "" {
		return nil, false
	}
	var found *Node
	WalkForest(d.Sections, func(n, _ *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Selected returns the selected node, if any.
func (d *Document) Selected() (*Node, bool) {
	return d.Find(d.SelectedID)
}

// NewNode builds a node of typ with default props and a fresh id. Sections
// are created with one default column. Unknown types return nil.
func (d *Document) NewNode(typ string) *Node {
	def, ok := d.catalog.Get(typ)
	if !ok {
		return nil
	}
	n := &Node{
		ID:    d.newID(def.Prefix()),
		Type:  typ,
		Props: def.DefaultProps(),
	}
	if typ == widgets.TypeSection {
		n.Children = []*Node{d.NewNode(widgets.TypeColumn)}
	}
	return n
}

// children resolves the child list addressed by parentID. The empty id
// addresses the root section list.
func (d *Document) children(parentID string) (*[]*Node, string, bool) {
	if parentID == "" {
		return &d.Sections, widgets.ParentRoot, true
	}
	parent, ok := d.Find(parentID)
	if !ok {
		return nil, "", false
	}
	return &parent.Children, parent.Type, true
}

// InsertSection appends a new section with one column and selects it.
func (d *Document) InsertSection() *Node {
	section := d.NewNode(widgets.TypeSection)
	if section == nil {
		return nil
	}
	d.Sections = append(d.Sections, section)
	d.SelectedID = section.ID
	d.record()
	return section
}

// InsertColumn appends a column to a section. No-op unless sectionID is a section.
func (d *Document) InsertColumn(sectionID string) *Node {
	return d.insertChild(sectionID, widgets.TypeColumn)
}

// InsertWidget appends a leaf widget of typ to a column and selects it.
// No-op when the column does not resolve or typ cannot live in a column.
func (d *Document) InsertWidget(columnID, typ string) *Node {
	return d.insertChild(columnID, typ)
}

func (d *Document) insertChild(parentID, typ string) *Node {
	if parentID == "" {
		return nil
	}
	list, parentType, ok := d.children(parentID)
	if !ok || !d.catalog.CanContain(parentType, typ) {
		return nil
	}
	n := d.NewNode(typ)
	if n == nil {
		return nil
	}
	*list = append(*list, n)
	d.SelectedID = n.ID
	d.record()
	return n
}

// DeleteNode removes the first node with id. Returns false when nothing was removed.
func (d *Document) DeleteNode(id string) bool {
	if id == "" || !removeFrom(&d.Sections, id) {
		return false
	}
	d.dropStaleSelection()
	d.record()
	return true
}

func removeFrom(list *[]*Node, id string) bool {
	for i, n := range *list {
		if n.ID == id {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return true
		}
		if removeFrom(&n.Children, id) {
			return true
		}
	}
	return false
}

// UpdateProperty overwrites an existing prop. Unknown nodes or keys are
// ignored. Values the schema cannot coerce are stored as strings. Never
// recorded in history.
func (d *Document) UpdateProperty(id, key string, value any) bool {
	n, ok := d.Find(id)
	if !ok || !n.Has(key) {
		return false
	}
	n.Props[key] = d.coerce(n.Type, key, value)
	d.Changed = time.Now().UTC()
	return true
}

func (d *Document) coerce(typ, key string, value any) any {
	if def, ok := d.catalog.Get(typ); ok {
		if field, ok := def.Field(key); ok {
			return coerceField(field, value)
		}
	}
	return normalizeValue(value)
}

// Move relocates the node at fromIndex under fromParentID to toIndex under
// toParentID. The insertion index is taken on the list after removal and is
// clamped to its bounds. The empty parent id addresses the section list.
// nodeID, when set, must match the node found at fromIndex.
func (d *Document) Move(nodeID, fromParentID, toParentID string, fromIndex, toIndex int) bool {
	src, _, ok := d.children(fromParentID)
	if !ok || fromIndex < 0 || fromIndex >= len(*src) {
		return false
	}
	node := (*src)[fromIndex]
	if nodeID != "" && node.ID != nodeID {
		return false
	}

	if toParentID != "" {
		inside := false
		node.Walk(func(n, _ *Node) bool {
			if n.ID == toParentID {
				inside = true
				return false
			}
			return true
		})
		if inside {
			return false
		}
	}

	_, dstType, ok := d.children(toParentID)
	if !ok || !d.catalog.CanContain(dstType, node.Type) {
		return false
	}

	*src = append((*src)[:fromIndex:fromIndex], (*src)[fromIndex+1:]...)

	dst, _, _ := d.children(toParentID)
	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex > len(*dst) {
		toIndex = len(*dst)
	}
	if fromParentID == toParentID && toIndex == fromIndex {
		// restore: nothing moved
		*dst = insertAt(*dst, toIndex, node)
		return false
	}
	*dst = insertAt(*dst, toIndex, node)
	d.record()
	return true
}

func insertAt(list []*Node, i int, n *Node) []*Node {
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = n
	return list
}

// ReplaceAll installs a new forest, clears the selection and records history.
// The forest is passed through Conform first, so it may come from any source.
func (d *Document) ReplaceAll(sections []*Node) {
	d.Sections = Conform(d.catalog, sections, d.newID)
	d.SelectedID = ""
	d.record()
}

// Select marks id as the selected node. Unknown ids are ignored.
func (d *Document) Select(id string) bool {
	if _, ok := d.Find(id); !ok {
		return false
	}
	d.SelectedID = id
	return true
}

// Deselect clears the selection.
func (d *Document) Deselect() bool {
	if d.SelectedID == "" {
		return false
	}
	d.SelectedID = ""
	return true
}

// SetDevice switches the preview viewport.
func (d *Document) SetDevice(device Device) bool {
	if !device.Valid() || device == d.Device {
		return false
	}
	d.Device = device
	return true
}

// Undo restores the previous snapshot.
func (d *Document) Undo() bool {
	forest, ok := d.history.Undo()
	if !ok {
		return false
	}
	d.restore(forest)
	return true
}

// Redo restores the next snapshot.
func (d *Document) Redo() bool {
	forest, ok := d.history.Redo()
	if !ok {
		return false
	}
	d.restore(forest)
	return true
}

// CommitEdits records the live forest if property edits have made it differ
// from the snapshot under the history cursor.
func (d *Document) CommitEdits() bool {
	if EqualForest(d.Sections, d.history.Current()) {
		return false
	}
	d.record()
	return true
}

// Dirty reports whether the live forest has unrecorded property edits.
func (d *Document) Dirty() bool {
	return !EqualForest(d.Sections, d.history.Current())
}

func (d *Document) restore(forest []*Node) {
	d.Sections = forest
	d.dropStaleSelection()
	d.Changed = time.Now().UTC()
}

func (d *Document) dropStaleSelection() {
	if d.SelectedID == "" {
		return
	}
	if _, ok := d.Find(d.SelectedID); !ok {
		d.SelectedID = ""
	}
}

func (d *Document) record() {
	d.history.Push(d.Sections)
	d.revisions++
	d.Changed = time.Now().UTC()
}
