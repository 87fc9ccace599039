// Package widgets holds the static widget catalog: every placeable type,
// its palette metadata and its ordered property schema.
package widgets

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Parent kinds a widget may be placed into.
const (
	ParentRoot    = "root"
	ParentSection = "section"
	ParentColumn  = "column"
)

// Structural types.
const (
	TypeSection = "section"
	TypeColumn  = "column"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Definition describes one widget type.
type Definition struct {
	Type     string  `yaml:"type" json:"type"`
	Label    string  `yaml:"label" json:"label"`
	Icon     string  `yaml:"icon" json:"icon"`
	Category string  `yaml:"category" json:"category"`
	Parent   string  `yaml:"parent" json:"parent"`
	IDPrefix string  `yaml:"idPrefix" json:"-"`
	Fields   []Field `yaml:"fields" json:"fields"`
}

// Structural reports whether the type is a section or column rather than a leaf widget.
func (d *Definition) Structural() bool {
	return d.Parent != ParentColumn
}

// Prefix returns the id prefix for nodes of this type.
func (d *Definition) Prefix() string {
	if d.IDPrefix != "" {
		return d.IDPrefix
	}
	return d.Type
}

// Field returns the schema field for key.
func (d *Definition) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// DefaultProps returns a fresh copy of the type's default property values.
func (d *Definition) DefaultProps() map[string]any {
	props := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		props[f.Key] = f.Default
	}
	return props
}

// Catalog is an immutable registry of widget definitions.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

type catalogFile struct {
	Widgets []*Definition `yaml:"widgets"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the embedded catalog. It panics if the embedded file is invalid.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(fmt.Sprintf("widgets: embedded catalog invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse widget catalog: %w", err)
	}

	c := &Catalog{defs: make(map[string]*Definition, len(file.Widgets))}
	for _, def := range file.Widgets {
		if def.Type == "" {
			return nil, fmt.Errorf("widget catalog entry missing type")
		}
		if _, dup := c.defs[def.Type]; dup {
			return nil, fmt.Errorf("duplicate widget type %q", def.Type)
		}
		switch def.Parent {
		case ParentRoot, ParentSection, ParentColumn:
		default:
			return nil, fmt.Errorf("widget %q has invalid parent %q", def.Type, def.Parent)
		}
		seen := make(map[string]bool, len(def.Fields))
		for i := range def.Fields {
			f := &def.Fields[i]
			if f.Key == "" || seen[f.Key] {
				return nil, fmt.Errorf("widget %q has empty or duplicate field key %q", def.Type, f.Key)
			}
			seen[f.Key] = true
			f.normalize()
		}
		c.defs[def.Type] = def
		c.order = append(c.order, def.Type)
	}
	return c, nil
}

// Get returns the definition for a type.
func (c *Catalog) Get(typ string) (*Definition, bool) {
	def, ok := c.defs[typ]
	return def, ok
}

// Has reports whether typ is a registered type.
func (c *Catalog) Has(typ string) bool {
	_, ok := c.defs[typ]
	return ok
}

// Types returns every registered type in catalog order.
func (c *Catalog) Types() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// DefaultProps returns fresh default props for typ, or nil for unknown types.
func (c *Catalog) DefaultProps(typ string) map[string]any {
	def, ok := c.defs[typ]
	if !ok {
		return nil
	}
	return def.DefaultProps()
}

// CanContain reports whether a node of childType may be placed under parentType.
// parentType "" or ParentRoot addresses the document root.
func (c *Catalog) CanContain(parentType, childType string) bool {
	def, ok := c.defs[childType]
	if !ok {
		return false
	}
	if parentType == "" {
		parentType = ParentRoot
	}
	return def.Parent == parentType
}

// PaletteGroup is one sidebar category.
type PaletteGroup struct {
	Category string        `json:"category"`
	Items    []*Definition `json:"items"`
}

// Palette lists the draggable widgets grouped by category, in catalog order.
// Structural types are placed through their own operations and are excluded.
func (c *Catalog) Palette() []PaletteGroup {
	var groups []PaletteGroup
	index := make(map[string]int)
	for _, typ := range c.order {
		def := c.defs[typ]
		if def.Structural() {
			continue
		}
		i, ok := index[def.Category]
		if !ok {
			i = len(groups)
			index[def.Category] = i
			groups = append(groups, PaletteGroup{Category: def.Category})
		}
		groups[i].Items = append(groups[i].Items, def)
	}
	return groups
}
