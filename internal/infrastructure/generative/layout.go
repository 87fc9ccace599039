// Package generative turns layout suggestions from an AI or heuristic source
// into a validated section forest.
package generative

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/security"
)

var (
	// ErrMalformedLayout is returned when provider output cannot be parsed.
	ErrMalformedLayout = errors.New("layout suggestion could not be parsed")
	// ErrNoValidWidgets is returned when a parsed batch holds no usable widget.
	ErrNoValidWidgets = errors.New("layout suggestion contained no valid widgets")
)

// Candidate is one suggested item: a "type" plus property overrides, either
// flattened or nested under "props".
type Candidate map[string]any

// Type returns the candidate's widget type.
func (c Candidate) Type() string {
	t, _ := c["type"].(string)
	return strings.ToLower(strings.TrimSpace(t))
}

// Props returns the property overrides of the candidate.
func (c Candidate) Props() map[string]any {
	if nested, ok := c["props"].(map[string]any); ok {
		return nested
	}
	props := make(map[string]any, len(c))
	for k, v := range c {
		if k == "type" || k == "id" || k == "children" {
			continue
		}
		props[k] = v
	}
	return props
}

// ParseCandidates extracts a candidate list from raw provider output. Code
// fences and prose around the JSON are tolerated. Both a bare array and an
// object with a "widgets" array are accepted.
func ParseCandidates(raw string) ([]Candidate, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedLayout)
	}

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		var list []Candidate
		if err := json.Unmarshal([]byte(text[start:end+1]), &list); err == nil {
			return list, nil
		}
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var wrapped struct {
			Widgets []Candidate `json:"widgets"`
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &wrapped); err == nil && wrapped.Widgets != nil {
			return wrapped.Widgets, nil
		}
	}
	return nil, fmt.Errorf("%w: no JSON widget list found", ErrMalformedLayout)
}

func marshalCandidates(items []Candidate) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode candidates: %w", err)
	}
	return string(data), nil
}

// BuildStats summarises a build.
type BuildStats struct {
	Widgets  int `json:"widgets"`
	Sections int `json:"sections"`
	Dropped  int `json:"dropped"`
}

// Builder validates candidates against the catalog and groups them into
// sections. A "section" candidate opens a new section, a "column" candidate
// opens a new column in the current section and widgets fill the current
// column.
type Builder struct {
	catalog *widgets.Catalog
	newID   document.IDGenerator
}

// NewBuilder creates a builder. Nil arguments fall back to the default
// catalog and ULID ids.
func NewBuilder(catalog *widgets.Catalog, newID document.IDGenerator) *Builder {
	if catalog == nil {
		catalog = widgets.Default()
	}
	if newID == nil {
		newID = security.GenerateNodeID
	}
	return &Builder{catalog: catalog, newID: newID}
}

// Build returns a fresh forest. Unknown types and props are dropped; a batch
// without a single valid leaf widget fails with ErrNoValidWidgets.
func (b *Builder) Build(candidates []Candidate) ([]*document.Node, BuildStats, error) {
	var (
		stats    BuildStats
		sections []*document.Node
		section  *document.Node
		column   *document.Node
	)

	openSection := func(overrides map[string]any) {
		section = b.node(widgets.TypeSection, overrides)
		column = b.node(widgets.TypeColumn, nil)
		section.Children = []*document.Node{column}
		sections = append(sections, section)
	}

	for _, c := range candidates {
		typ := c.Type()
		def, ok := b.catalog.Get(typ)
		if !ok {
			stats.Dropped++
			continue
		}
		switch {
		case typ == widgets.TypeSection:
			openSection(c.Props())
		case typ == widgets.TypeColumn:
			if section == nil {
				openSection(nil)
			}
			if len(column.Children) == 0 && len(section.Children) == 1 {
				column.Props = b.merge(def, c.Props())
				continue
			}
			column = b.node(widgets.TypeColumn, c.Props())
			section.Children = append(section.Children, column)
		case def.Structural():
			stats.Dropped++
		default:
			if section == nil {
				openSection(nil)
			}
			column.Children = append(column.Children, b.node(typ, c.Props()))
			stats.Widgets++
		}
	}

	if stats.Widgets == 0 {
		return nil, stats, ErrNoValidWidgets
	}
	stats.Sections = len(sections)
	return sections, stats, nil
}

func (b *Builder) node(typ string, overrides map[string]any) *document.Node {
	def, _ := b.catalog.Get(typ)
	return &document.Node{
		ID:    b.newID(def.Prefix()),
		Type:  typ,
		Props: b.merge(def, overrides),
	}
}

// merge lays overrides over the defaults, keeping only schema keys whose
// values coerce to the field kind.
func (b *Builder) merge(def *widgets.Definition, overrides map[string]any) map[string]any {
	props := def.DefaultProps()
	for key, value := range overrides {
		field, ok := def.Field(key)
		if !ok {
			continue
		}
		if v, ok := field.Coerce(value); ok {
			props[key] = v
		}
	}
	return props
}
