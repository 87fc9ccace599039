package document

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestApplySequence(t *testing.T) {
	d := newTestDoc()

	res, err := d.Apply(Command{Op: OpInsertSection})
	if err != nil || !res.Changed || !res.Recorded {
		t.Fatalf("insert_section: %+v %v", res, err)
	}
	colID := d.Sections[0].Children[0].ID

	res, _ = d.Apply(Command{Op: OpInsertWidget, ParentID: colID, Type: "heading"})
	if !res.Changed || res.NodeID == "" {
		t.Fatalf("insert_widget: %+v", res)
	}
	headingID := res.NodeID

	res, _ = d.Apply(Command{Op: OpUpdateProperty, NodeID: headingID, Key: "text", Value: "Hi"})
	if !res.Changed || res.Recorded {
		t.Fatalf("update_property should change without recording: %+v", res)
	}

	res, _ = d.Apply(Command{Op: OpDelete, NodeID: "ghost"})
	if res.Changed || res.Recorded {
		t.Fatalf("delete of unknown id should be a no-op: %+v", res)
	}

	res, _ = d.Apply(Command{Op: OpUndo})
	if !res.Changed {
		t.Fatal("undo should change state")
	}
	if _, ok := d.Find(headingID); ok {
		t.Fatal("undo should remove the heading")
	}
	res, _ = d.Apply(Command{Op: OpRedo})
	if !res.Changed {
		t.Fatal("redo should change state")
	}

	res, _ = d.Apply(Command{Op: OpSetDevice, Device: DeviceTablet})
	if !res.Changed || d.Device != DeviceTablet {
		t.Fatalf("set_device: %+v", res)
	}
}

func TestApplyUnknownOp(t *testing.T) {
	d := newTestDoc()
	_, err := d.Apply(Command{Op: "explode"})
	var opErr *UnknownOpError
	if !errors.As(err, &opErr) || opErr.Op != "explode" {
		t.Fatalf("expected UnknownOpError, got %v", err)
	}
}

func TestCommandJSON(t *testing.T) {
	raw := `{"op":"move","nodeId":"text-3","fromParentId":"col-2","toParentId":"col-2","fromIndex":0,"toIndex":2}`
	var cmd Command
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cmd.Op != OpMove || cmd.ToIndex != 2 || cmd.FromParentID != "col-2" {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestEncodeDecode(t *testing.T) {
	d := newTestDoc(WithTitle("Landing"))
	sec := d.InsertSection()
	w := d.InsertWidget(sec.Children[0].ID, "hero")
	d.UpdateProperty(sec.ID, "boxed", false)
	d.SetDevice(DeviceMobile)

	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.ID != d.ID || back.Title != "Landing" || back.Device != DeviceMobile {
		t.Fatalf("metadata lost: %+v", back.Payload())
	}
	if !EqualForest(back.Sections, d.Sections) {
		t.Fatal("forest changed across encode/decode")
	}
	if back.History().Len() != 1 {
		t.Fatal("a loaded document starts with a single history entry")
	}
	if n, _ := back.Find(w.ID); n.String("height") != "480" {
		t.Fatalf("expected numeric prop kept as string, got %#v", n.Props["height"])
	}
}

func TestDecodeNormalizesNumbers(t *testing.T) {
	raw := `{"id":"d","sections":[{"id":"s","type":"section","props":{"boxed":true,"n":3,"x":null},"children":[]}]}`
	p, err := DecodePayload([]byte(raw))
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	props := p.Sections[0].Props
	if props["n"] != "3" || props["x"] != "" || props["boxed"] != true {
		t.Fatalf("unexpected props %#v", props)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Fatal("expected error for corrupt payload")
	}
}

const foreignForest = `{"op":"replace_all","sections":[
  {"id":"dup","type":"section","props":{},"children":[
    {"id":"dup","type":"column","props":{"width":"w-full"},"children":[
      {"id":"h","type":"heading","props":{"text":"Hi","margin":7,"onclick":"x"},"children":[]},
      {"id":"m","type":"marquee","props":{},"children":[]},
      {"id":"s","type":"section","props":{},"children":[]}
    ]}
  ]},
  {"id":"x","type":"column","props":{},"children":[]},
  {"id":"empty","type":"section","props":{"boxed":"yes"}}
]}`

func TestApplyReplaceAllConformsForeignForest(t *testing.T) {
	d := newTestDoc()
	var cmd Command
	if err := json.Unmarshal([]byte(foreignForest), &cmd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	res, err := d.Apply(cmd)
	if err != nil || !res.Changed || !res.Recorded {
		t.Fatalf("replace_all: %+v %v", res, err)
	}

	if len(d.Sections) != 2 {
		t.Fatalf("expected root column dropped, got %d sections", len(d.Sections))
	}
	ids := map[string]int{}
	WalkForest(d.Sections, func(n, _ *Node) bool {
		ids[n.ID]++
		def, _ := d.Catalog().Get(n.Type)
		if len(n.Props) != len(def.Fields) {
			t.Errorf("%s props %v do not match the %s template", n.ID, n.Props, n.Type)
		}
		for _, v := range n.Props {
			switch v.(type) {
			case string, bool:
			default:
				t.Errorf("%s holds non-string prop %#v", n.ID, v)
			}
		}
		return true
	})
	for id, count := range ids {
		if count > 1 {
			t.Fatalf("id %q used %d times", id, count)
		}
	}

	col := d.Sections[0].Children[0]
	if len(col.Children) != 1 || col.Children[0].Type != "heading" {
		t.Fatalf("expected only the heading to survive in the column, got %+v", col.Children)
	}
	heading := col.Children[0]
	if heading.String("text") != "Hi" || heading.Props["margin"] != "7" || heading.Has("onclick") {
		t.Fatalf("unexpected heading props %#v", heading.Props)
	}
	if len(d.Sections[1].Children) != 1 || d.Sections[1].Children[0].Type != "column" {
		t.Fatal("section without children should receive a column")
	}
	if d.Sections[1].Props["boxed"] != "yes" {
		t.Fatalf("unparseable bool should be kept as given, got %#v", d.Sections[1].Props["boxed"])
	}
}

func TestReplaceAllDoesNotAliasInput(t *testing.T) {
	d := newTestDoc()
	in := []*Node{{ID: "s", Type: "section", Props: map[string]any{}, Children: []*Node{
		{ID: "c", Type: "column", Props: map[string]any{}},
	}}}
	d.ReplaceAll(in)
	in[0].Props["bg"] = "bg-red-500"
	if d.Sections[0].Props["bg"] == "bg-red-500" {
		t.Fatal("live forest aliases the caller's nodes")
	}
}

func TestForeignForestSurvivesEncodeDecode(t *testing.T) {
	d := newTestDoc()
	var cmd Command
	if err := json.Unmarshal([]byte(foreignForest), &cmd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := d.Apply(cmd); err != nil {
		t.Fatalf("replace_all: %v", err)
	}
	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !EqualForest(back.Sections, d.Sections) {
		t.Fatal("forest changed across encode/decode")
	}
}
