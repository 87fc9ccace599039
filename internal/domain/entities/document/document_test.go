package document

import (
	"fmt"
	"testing"
)

func seqIDs() IDGenerator {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestDoc(opts ...Option) *Document {
	return New("doc-test", append([]Option{WithIDGenerator(seqIDs())}, opts...)...)
}

func childIDs(n *Node) []string {
	ids := make([]string, len(n.Children))
	for i, c := range n.Children {
		ids[i] = c.ID
	}
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInsertSection(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	if sec == nil {
		t.Fatal("InsertSection returned nil")
	}
	if len(d.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(d.Sections))
	}
	if len(sec.Children) != 1 || sec.Children[0].Type != "column" {
		t.Fatalf("expected one column child, got %+v", sec.Children)
	}
	if len(sec.Children[0].Children) != 0 {
		t.Fatalf("new column should be empty")
	}
	if d.SelectedID != sec.ID {
		t.Fatalf("expected selection %q, got %q", sec.ID, d.SelectedID)
	}
	if d.History().Len() != 2 {
		t.Fatalf("expected 2 history entries, got %d", d.History().Len())
	}
}

func TestInsertWidget(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	col := sec.Children[0]

	w := d.InsertWidget(col.ID, "heading")
	if w == nil {
		t.Fatal("InsertWidget returned nil")
	}
	if w.String("text") != "Add Your Heading Text Here" {
		t.Fatalf("unexpected default text %q", w.String("text"))
	}
	if d.SelectedID != w.ID {
		t.Fatalf("widget should be selected")
	}

	tests := []struct {
		name   string
		parent string
		typ    string
	}{
		{"missing parent", "col-404", "heading"},
		{"empty parent", "", "heading"},
		{"unknown type", col.ID, "carousel"},
		{"section into column", col.ID, "section"},
		{"widget into section", sec.ID, "heading"},
		{"widget into widget", w.ID, "text"},
	}
	for _, tt := range tests {
		histLen := d.History().Len()
		if got := d.InsertWidget(tt.parent, tt.typ); got != nil {
			t.Errorf("%s: expected no-op, got %+v", tt.name, got)
		}
		if d.History().Len() != histLen {
			t.Errorf("%s: no-op recorded history", tt.name)
		}
	}
}

func TestInsertColumn(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	col := d.InsertColumn(sec.ID)
	if col == nil || len(sec.Children) != 2 {
		t.Fatalf("expected second column, got %d children", len(sec.Children))
	}
	if d.InsertColumn(col.ID) != nil {
		t.Fatal("columns cannot hold columns")
	}
}

func TestDeleteNodeIdempotent(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	w := d.InsertWidget(sec.Children[0].ID, "text")

	if !d.DeleteNode(w.ID) {
		t.Fatal("expected delete to succeed")
	}
	if d.SelectedID != "" {
		t.Fatalf("selection should clear when the selected node is deleted, got %q", d.SelectedID)
	}

	before := d.Snapshot()
	histLen := d.History().Len()
	if d.DeleteNode(w.ID) {
		t.Fatal("second delete should be a no-op")
	}
	if !EqualForest(before, d.Sections) || d.History().Len() != histLen {
		t.Fatal("second delete changed state")
	}
}

func TestDeleteKeepsUnrelatedSelection(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	a := d.InsertWidget(sec.Children[0].ID, "text")
	b := d.InsertWidget(sec.Children[0].ID, "text")
	d.Select(b.ID)
	d.DeleteNode(a.ID)
	if d.SelectedID != b.ID {
		t.Fatalf("expected selection to stay on %q, got %q", b.ID, d.SelectedID)
	}

	// deleting an ancestor drops the selection too
	d.DeleteNode(sec.ID)
	if d.SelectedID != "" {
		t.Fatalf("expected selection cleared, got %q", d.SelectedID)
	}
}

func TestUpdatePropertyNoHistory(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	w := d.InsertWidget(sec.Children[0].ID, "heading")

	histLen := d.History().Len()
	if !d.UpdateProperty(w.ID, "text", "Hello") {
		t.Fatal("expected update to succeed")
	}
	if w.String("text") != "Hello" {
		t.Fatalf("expected Hello, got %q", w.String("text"))
	}
	if d.History().Len() != histLen {
		t.Fatalf("property update recorded history: %d -> %d", histLen, d.History().Len())
	}

	keys := len(w.Props)
	if d.UpdateProperty(w.ID, "nope", "x") {
		t.Fatal("unknown key should be ignored")
	}
	if len(w.Props) != keys {
		t.Fatal("prop key set changed")
	}
	if d.UpdateProperty("missing", "text", "x") {
		t.Fatal("unknown node should be ignored")
	}
}

func TestUpdatePropertyCoercesBool(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	if !d.UpdateProperty(sec.ID, "boxed", "false") {
		t.Fatal("expected update to succeed")
	}
	if sec.Bool("boxed") {
		t.Fatal("\"false\" should be stored as false")
	}
	if v, ok := sec.Props["boxed"].(bool); !ok || v {
		t.Fatalf("expected bool false, got %#v", sec.Props["boxed"])
	}
	if !d.UpdateProperty(sec.ID, "boxed", "sometimes") {
		t.Fatal("values are trusted as given")
	}
	if sec.Props["boxed"] != "sometimes" || sec.Bool("boxed") {
		t.Fatalf("expected raw string kept and read as false, got %#v", sec.Props["boxed"])
	}
	if !d.UpdateProperty(sec.ID, "height", 520) || sec.Props["height"] != "520" {
		t.Fatalf("numbers should be stored as strings, got %#v", sec.Props["height"])
	}
}

func TestMoveSameColumn(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	col := sec.Children[0]
	w1 := d.InsertWidget(col.ID, "heading")
	w2 := d.InsertWidget(col.ID, "text")
	w3 := d.InsertWidget(col.ID, "button")

	histLen := d.History().Len()
	if !d.Move(w1.ID, col.ID, col.ID, 0, 2) {
		t.Fatal("expected move to succeed")
	}
	want := []string{w2.ID, w3.ID, w1.ID}
	if got := childIDs(col); !sameIDs(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if d.History().Len() != histLen+1 {
		t.Fatal("move should record history")
	}
}

func TestMoveSplice(t *testing.T) {
	tests := []struct {
		name      string
		from, to  int
		want      []int
		wantMoved bool
	}{
		{"first to last", 0, 2, []int{1, 2, 0}, true},
		{"last to first", 2, 0, []int{2, 0, 1}, true},
		{"middle forward", 1, 2, []int{0, 2, 1}, true},
		{"clamped high", 0, 99, []int{1, 2, 0}, true},
		{"clamped low", 2, -5, []int{2, 0, 1}, true},
		{"in place", 1, 1, []int{0, 1, 2}, false},
		{"bad from", 3, 0, []int{0, 1, 2}, false},
	}
	for _, tt := range tests {
		d := newTestDoc()
		col := d.InsertSection().Children[0]
		var ws []string
		for i := 0; i < 3; i++ {
			ws = append(ws, d.InsertWidget(col.ID, "spacer").ID)
		}
		moved := d.Move("", col.ID, col.ID, tt.from, tt.to)
		if moved != tt.wantMoved {
			t.Errorf("%s: moved=%v, want %v", tt.name, moved, tt.wantMoved)
		}
		want := make([]string, len(tt.want))
		for i, idx := range tt.want {
			want[i] = ws[idx]
		}
		if got := childIDs(col); !sameIDs(got, want) {
			t.Errorf("%s: expected %v, got %v", tt.name, want, got)
		}
	}
}

func TestMoveAcrossColumns(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	left := sec.Children[0]
	right := d.InsertColumn(sec.ID)
	a := d.InsertWidget(left.ID, "text")
	b := d.InsertWidget(right.ID, "text")

	if !d.Move(a.ID, left.ID, right.ID, 0, 0) {
		t.Fatal("expected cross-column move")
	}
	if len(left.Children) != 0 {
		t.Fatal("source column should be empty")
	}
	if got := childIDs(right); !sameIDs(got, []string{a.ID, b.ID}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestMoveRejects(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	col := sec.Children[0]
	w := d.InsertWidget(col.ID, "text")

	tests := []struct {
		name               string
		nodeID, from, to   string
		fromIndex, toIndex int
	}{
		{"stale source parent", w.ID, "col-404", col.ID, 0, 0},
		{"stale target parent", w.ID, col.ID, "col-404", 0, 0},
		{"id mismatch", "text-404", col.ID, col.ID, 0, 0},
		{"widget into root", w.ID, col.ID, "", 0, 0},
		{"widget into section", w.ID, col.ID, sec.ID, 0, 0},
		{"section into own column", sec.ID, "", col.ID, 0, 0},
	}
	for _, tt := range tests {
		before := d.Snapshot()
		if d.Move(tt.nodeID, tt.from, tt.to, tt.fromIndex, tt.toIndex) {
			t.Errorf("%s: expected no-op", tt.name)
		}
		if !EqualForest(before, d.Sections) {
			t.Errorf("%s: state changed", tt.name)
		}
	}
}

func TestMoveSections(t *testing.T) {
	d := newTestDoc()
	a := d.InsertSection()
	b := d.InsertSection()
	if !d.Move(b.ID, "", "", 1, 0) {
		t.Fatal("expected section reorder")
	}
	if d.Sections[0].ID != b.ID || d.Sections[1].ID != a.ID {
		t.Fatal("sections not reordered")
	}
}

func TestReplaceAll(t *testing.T) {
	d := newTestDoc()
	d.InsertSection()

	fresh := New("other")
	s := fresh.NewNode("section")
	s.Children[0].Children = append(s.Children[0].Children, fresh.NewNode("hero"))

	d.ReplaceAll([]*Node{s})
	if d.SelectedID != "" {
		t.Fatal("ReplaceAll must clear selection")
	}
	if len(d.Sections) != 1 || d.Sections[0].Children[0].Children[0].Type != "hero" {
		t.Fatal("forest not replaced")
	}
	s.Children[0].Children = nil
	if len(d.Sections[0].Children[0].Children) != 1 {
		t.Fatal("ReplaceAll must not alias its input")
	}
	if !d.Undo() || len(d.Sections) != 1 || d.Sections[0].Children[0].Children != nil {
		t.Fatal("undo should restore the pre-replace forest")
	}
}

func TestSelectAndDevice(t *testing.T) {
	d := newTestDoc()
	sec := d.InsertSection()
	d.Deselect()
	if d.Select("missing") || d.SelectedID != "" {
		t.Fatal("select of unknown id should be a no-op")
	}
	if !d.Select(sec.ID) {
		t.Fatal("expected select")
	}
	if d.SetDevice("watch") {
		t.Fatal("unknown device accepted")
	}
	if !d.SetDevice(DeviceMobile) || d.Device != DeviceMobile {
		t.Fatal("expected device change")
	}
}

func TestIDsUnique(t *testing.T) {
	d := New("doc")
	var cols []string
	for i := 0; i < 5; i++ {
		sec := d.InsertSection()
		cols = append(cols, sec.Children[0].ID, d.InsertColumn(sec.ID).ID)
	}
	types := []string{"heading", "text", "button", "image", "video", "spacer", "divider", "hero", "card", "form"}
	for i := 0; i < 60; i++ {
		d.InsertWidget(cols[i%len(cols)], types[i%len(types)])
		if i%7 == 0 {
			d.Move("", cols[i%len(cols)], cols[(i+1)%len(cols)], 0, 1)
		}
		if i%11 == 0 {
			col, _ := d.Find(cols[(i+2)%len(cols)])
			if len(col.Children) > 0 {
				d.DeleteNode(col.Children[0].ID)
			}
		}
	}

	seen := make(map[string]bool)
	WalkForest(d.Sections, func(n, _ *Node) bool {
		if seen[n.ID] {
			t.Fatalf("duplicate id %q", n.ID)
		}
		seen[n.ID] = true
		return true
	})
}
