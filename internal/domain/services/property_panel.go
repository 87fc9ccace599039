package services

import (
	"sort"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
)

// Control is one editable property in the panel. Every edit maps to an
// update_property command for Key.
type Control struct {
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Control widgets.Control  `json:"control"`
	Value   any              `json:"value"`
	Options []widgets.Option `json:"options,omitempty"`
	Min     float64          `json:"min,omitempty"`
	Max     float64          `json:"max,omitempty"`
	Step    float64          `json:"step,omitempty"`
}

// Panel is the generated property editor for one node.
type Panel struct {
	NodeID   string    `json:"nodeId"`
	Type     string    `json:"type"`
	Title    string    `json:"title"`
	Controls []Control `json:"controls"`
}

type sliderRange struct {
	min, max, step float64
}

var sliderRanges = map[string]sliderRange{
	"size":    {8, 96, 1},
	"spacing": {0, 96, 4},
	"radius":  {0, 64, 1},
	"opacity": {0, 1, 0.05},
	"width":   {0, 100, 1},
	"height":  {0, 1000, 10},
}

var alignOptions = []widgets.Option{
	{Label: "Left", Value: "left"},
	{Label: "Center", Value: "center"},
	{Label: "Right", Value: "right"},
}

// PropertyPanelService builds property panels from the widget catalog.
type PropertyPanelService struct {
	catalog *widgets.Catalog
}

func NewPropertyPanelService(catalog *widgets.Catalog) *PropertyPanelService {
	if catalog == nil {
		catalog = widgets.Default()
	}
	return &PropertyPanelService{catalog: catalog}
}

// GeneratePanel lists the node's props in schema order. Props the schema
// does not know about follow in sorted key order. A nil node yields nil.
func (s *PropertyPanelService) GeneratePanel(node *document.Node) *Panel {
	if node == nil {
		return nil
	}

	panel := &Panel{NodeID: node.ID, Type: node.Type, Title: "Edit " + node.Type}
	def, known := s.catalog.Get(node.Type)
	if known {
		panel.Title = "Edit " + def.Label
		for _, f := range def.Fields {
			if !node.Has(f.Key) {
				continue
			}
			panel.Controls = append(panel.Controls, buildControl(f, node.Props[f.Key]))
		}
	}

	for _, key := range sortedKeys(node.Props) {
		if known {
			if _, ok := def.Field(key); ok {
				continue
			}
		}
		panel.Controls = append(panel.Controls, buildControl(widgets.Field{Key: key, Label: key}, node.Props[key]))
	}
	return panel
}

func buildControl(f widgets.Field, value any) Control {
	c := Control{
		Key:     f.Key,
		Label:   f.Label,
		Control: f.Control,
		Value:   value,
		Options: f.Options,
	}
	if c.Label == "" {
		c.Label = f.Key
	}
	if c.Control == "" {
		c.Control = DispatchControl(f.Key)
	}

	switch c.Control {
	case widgets.ControlChoice:
		if len(c.Options) == 0 {
			c.Options = alignOptions
		}
	case widgets.ControlSlider:
		r := rangeFor(f.Key)
		c.Min, c.Max, c.Step = r.min, r.max, r.step
		if f.Min != nil {
			c.Min = *f.Min
		}
		if f.Max != nil {
			c.Max = *f.Max
		}
		if f.Step != nil {
			c.Step = *f.Step
		}
	}
	return c
}

// DispatchControl picks a control kind from a property key alone.
func DispatchControl(key string) widgets.Control {
	k := strings.ToLower(key)
	switch {
	case k == "content" || k == "text" || strings.HasSuffix(k, "content") || strings.HasSuffix(k, "body"):
		return widgets.ControlTextarea
	case strings.Contains(k, "color"):
		return widgets.ControlColor
	case strings.Contains(k, "align"):
		return widgets.ControlChoice
	}
	if _, ok := sliderKey(k); ok {
		return widgets.ControlSlider
	}
	return widgets.ControlText
}

func sliderKey(k string) (string, bool) {
	for _, name := range []string{"size", "spacing", "radius", "opacity", "width", "height"} {
		if strings.Contains(k, name) {
			return name, true
		}
	}
	return "", false
}

func rangeFor(key string) sliderRange {
	if name, ok := sliderKey(strings.ToLower(key)); ok {
		return sliderRanges[name]
	}
	return sliderRange{0, 100, 1}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
