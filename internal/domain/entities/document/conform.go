package document

import (
	"fmt"
	"strconv"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
)

// Conform returns a deep copy of sections that the catalog accepts. Unknown
// and misplaced nodes are dropped with their subtrees, empty or repeated ids
// are replaced with newID, props are rebuilt over the type's defaults (extra
// keys dropped, values coerced or stored as strings) and every section keeps
// at least one column.
func Conform(catalog *widgets.Catalog, sections []*Node, newID IDGenerator) []*Node {
	seen := make(map[string]bool)
	var conform func(list []*Node, parentType string) []*Node
	conform = func(list []*Node, parentType string) []*Node {
		out := make([]*Node, 0, len(list))
		for _, n := range list {
			if n == nil {
				continue
			}
			def, ok := catalog.Get(n.Type)
			if !ok || !catalog.CanContain(parentType, n.Type) {
				continue
			}
			fixed := &Node{ID: n.ID, Type: n.Type, Props: def.DefaultProps()}
			if fixed.ID == "" || seen[fixed.ID] {
				fixed.ID = newID(def.Prefix())
			}
			seen[fixed.ID] = true
			for _, f := range def.Fields {
				if v, ok := n.Props[f.Key]; ok {
					fixed.Props[f.Key] = coerceField(f, v)
				}
			}
			fixed.Children = conform(n.Children, n.Type)
			if n.Type == widgets.TypeSection && len(fixed.Children) == 0 {
				colDef, _ := catalog.Get(widgets.TypeColumn)
				col := &Node{ID: newID(colDef.Prefix()), Type: widgets.TypeColumn, Props: colDef.DefaultProps()}
				seen[col.ID] = true
				fixed.Children = []*Node{col}
			}
			out = append(out, fixed)
		}
		return out
	}
	return conform(sections, widgets.ParentRoot)
}

// coerceField converts v to the field's kind. Values the kind cannot parse
// are kept as their string form; props only ever hold strings and bools.
func coerceField(f widgets.Field, v any) any {
	if c, ok := f.Coerce(v); ok {
		return c
	}
	return normalizeValue(v)
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case string, bool:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
