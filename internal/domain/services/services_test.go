package services

import (
	"fmt"
	"testing"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
)

func seqIDs() document.IDGenerator {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestDispatchControl(t *testing.T) {
	tests := []struct {
		key  string
		want widgets.Control
	}{
		{"text", widgets.ControlTextarea},
		{"content", widgets.ControlTextarea},
		{"bodyContent", widgets.ControlTextarea},
		{"color", widgets.ControlColor},
		{"bgColor", widgets.ControlColor},
		{"align", widgets.ControlChoice},
		{"textAlign", widgets.ControlChoice},
		{"size", widgets.ControlSlider},
		{"spacing", widgets.ControlSlider},
		{"radius", widgets.ControlSlider},
		{"opacity", widgets.ControlSlider},
		{"width", widgets.ControlSlider},
		{"height", widgets.ControlSlider},
		{"link", widgets.ControlText},
		{"title", widgets.ControlText},
	}
	for _, tt := range tests {
		if got := DispatchControl(tt.key); got != tt.want {
			t.Errorf("DispatchControl(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestGeneratePanel(t *testing.T) {
	d := document.New("doc", document.WithIDGenerator(seqIDs()))
	sec := d.InsertSection()
	hero := d.InsertWidget(sec.Children[0].ID, "hero")
	card := d.InsertWidget(sec.Children[0].ID, "card")

	svc := NewPropertyPanelService(nil)
	panel := svc.GeneratePanel(hero)
	if panel.Title != "Edit Hero" || panel.NodeID != hero.ID {
		t.Fatalf("unexpected panel header %+v", panel)
	}
	def, _ := widgets.Default().Get("hero")
	if len(panel.Controls) != len(def.Fields) {
		t.Fatalf("expected %d controls, got %d", len(def.Fields), len(panel.Controls))
	}
	for i, f := range def.Fields {
		if panel.Controls[i].Key != f.Key {
			t.Fatalf("control %d is %q, want schema order %q", i, panel.Controls[i].Key, f.Key)
		}
	}

	byKey := func(p *Panel, key string) Control {
		for _, c := range p.Controls {
			if c.Key == key {
				return c
			}
		}
		t.Fatalf("no control for %s", key)
		return Control{}
	}

	if c := byKey(panel, "subtitle"); c.Control != widgets.ControlTextarea {
		t.Errorf("declared control should win, got %q", c.Control)
	}
	if c := byKey(panel, "bgColor"); c.Control != widgets.ControlColor || c.Value != "#1e293b" {
		t.Errorf("bgColor control %+v", c)
	}
	if c := byKey(panel, "align"); c.Control != widgets.ControlChoice || len(c.Options) != 3 {
		t.Errorf("align control %+v", c)
	}
	if c := byKey(panel, "height"); c.Control != widgets.ControlSlider || c.Min != 200 || c.Max != 1000 || c.Step != 20 {
		t.Errorf("schema slider range should win: %+v", c)
	}

	cardPanel := svc.GeneratePanel(card)
	if c := byKey(cardPanel, "radius"); c.Control != widgets.ControlSlider || c.Max != 64 {
		t.Errorf("radius slider %+v", c)
	}
	if c := byKey(cardPanel, "text"); c.Control != widgets.ControlTextarea {
		t.Errorf("card text should be a textarea, got %q", c.Control)
	}

	if svc.GeneratePanel(nil) != nil {
		t.Fatal("nil node should produce no panel")
	}
}

func TestIntegrityAnalyzeAndRepair(t *testing.T) {
	forest := []*document.Node{
		{
			ID: "s1", Type: "section", Props: map[string]any{"bg": "bg-white", "junk": "x"},
			Children: []*document.Node{{
				ID: "c1", Type: "column", Props: map[string]any{"width": "w-full"},
				Children: []*document.Node{
					{ID: "h1", Type: "heading", Props: map[string]any{"text": "Hi"}},
					{ID: "h1", Type: "heading", Props: map[string]any{}},
					{ID: "z1", Type: "carousel", Props: map[string]any{}},
					{ID: "i1", Type: "image", Props: map[string]any{"src": "/media/a.webp"}},
				},
			}},
		},
		{ID: "s2", Type: "section", Props: map[string]any{}},
		{ID: "w1", Type: "button", Props: map[string]any{}},
	}

	svc := NewDocumentIntegrityService(nil)
	report := svc.Analyze(forest, "/media")
	if !report.RepairRequired {
		t.Fatal("expected repair to be required")
	}
	if len(report.DuplicateIDs) != 1 || report.DuplicateIDs[0] != "h1" {
		t.Errorf("duplicates %v", report.DuplicateIDs)
	}
	if len(report.UnknownTypes) != 1 || len(report.Misplaced) != 1 {
		t.Errorf("unknown %v misplaced %v", report.UnknownTypes, report.Misplaced)
	}
	if len(report.ExtraProps) != 1 || report.ExtraProps[0] != "s1.junk" {
		t.Errorf("extra %v", report.ExtraProps)
	}
	if len(report.MediaRefs) != 1 || report.MediaRefs[0] != "a.webp" {
		t.Errorf("media refs %v", report.MediaRefs)
	}

	fixed := svc.Repair(forest, seqIDs())
	if len(fixed) != 2 {
		t.Fatalf("expected misplaced root widget dropped, got %d sections", len(fixed))
	}
	if len(fixed[1].Children) != 1 || fixed[1].Children[0].Type != "column" {
		t.Fatal("empty section should receive a column")
	}
	col := fixed[0].Children[0]
	if len(col.Children) != 3 {
		t.Fatalf("expected unknown widget dropped, got %d", len(col.Children))
	}
	if col.Children[0].ID == col.Children[1].ID {
		t.Fatal("duplicate id not reassigned")
	}
	if col.Children[0].String("text") != "Hi" || col.Children[1].String("tag") != "h2" {
		t.Fatal("props not merged over defaults")
	}
	if fixed[0].Has("junk") {
		t.Fatal("extra prop kept")
	}
	if again := svc.Analyze(fixed, ""); again.RepairRequired {
		t.Fatalf("repaired forest still reports problems: %+v", again)
	}
	if forest[0].Props["junk"] != "x" {
		t.Fatal("repair must not modify its input")
	}
}

func TestCalculateOrphans(t *testing.T) {
	svc := NewDocumentIntegrityService(nil)
	orphans := svc.CalculateOrphans([]string{"a.webp", "b.webp", "c.webp"}, []string{"b.webp"})
	if len(orphans) != 2 || orphans[0] != "a.webp" || orphans[1] != "c.webp" {
		t.Fatalf("orphans %v", orphans)
	}
}
