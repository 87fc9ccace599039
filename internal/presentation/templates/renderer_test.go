package templates

import (
	"fmt"
	"strings"
	"testing"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
)

func seqIDs() document.IDGenerator {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newDoc() *document.Document {
	return document.New("doc", document.WithIDGenerator(seqIDs()))
}

func TestRenderHeadingText(t *testing.T) {
	d := newDoc()
	sec := d.InsertSection()
	h := d.InsertWidget(sec.Children[0].ID, "heading")
	before := d.History().Len()
	d.UpdateProperty(h.ID, "text", "Hello")

	out := Render(rendering.FromDocument(d, rendering.ModeEditor))
	if !strings.Contains(out, "Hello") {
		t.Fatalf("expected heading text in markup: %s", out)
	}
	if d.History().Len() != before {
		t.Fatal("property update must not add history")
	}
	if !strings.Contains(out, `<h2 class="text-center text-gray-900 text-4xl font-bold mb-4 leading-tight">Hello</h2>`) {
		t.Fatalf("unexpected heading markup: %s", out)
	}
}

func TestRenderUnknownType(t *testing.T) {
	sections := []*document.Node{{
		ID: "s", Type: "section", Props: map[string]any{},
		Children: []*document.Node{{
			ID: "c", Type: "column", Props: map[string]any{},
			Children: []*document.Node{{ID: "x", Type: "carousel", Props: map[string]any{}}},
		}},
	}}
	ctx := rendering.NewRenderContext(sections, "", document.DeviceDesktop, rendering.ModePublish)
	nr := NewNodeRenderer(ctx)
	if got := nr.RenderNode("x"); got != `<div></div>` {
		t.Fatalf("unknown type rendered %q", got)
	}
	if got := nr.RenderNode("missing"); got != `<div></div>` {
		t.Fatalf("unknown id rendered %q", got)
	}
}

func TestRenderSelectionOnlyInEditor(t *testing.T) {
	d := newDoc()
	sec := d.InsertSection()
	d.InsertWidget(sec.Children[0].ID, "button")

	editor := Render(rendering.FromDocument(d, rendering.ModeEditor))
	if !strings.Contains(editor, "ring-2 ring-brand-500/20") {
		t.Fatal("selected widget should be decorated in the editor")
	}
	if !strings.Contains(editor, "section-handle") {
		t.Fatal("editor output should carry section handles")
	}

	publish := Render(rendering.FromDocument(d, rendering.ModePublish))
	for _, marker := range []string{"ring-brand-500", "section-handle", "data-id=", "widget-wrapper", "onclick"} {
		if strings.Contains(publish, marker) {
			t.Fatalf("publish output contains editor marker %q", marker)
		}
	}
}

func TestRenderDeterministicRoundTrip(t *testing.T) {
	d := newDoc()
	sec := d.InsertSection()
	col := sec.Children[0].ID
	for _, typ := range []string{"heading", "text", "button", "image", "video", "spacer", "divider", "hero", "card", "form"} {
		d.InsertWidget(col, typ)
	}
	d.InsertColumn(sec.ID)
	d.UpdateProperty(sec.ID, "boxed", false)

	first := Render(rendering.FromDocument(d, rendering.ModeEditor))
	if first != Render(rendering.FromDocument(d, rendering.ModeEditor)) {
		t.Fatal("render is not deterministic")
	}

	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := document.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	back.Select(d.SelectedID)
	if got := Render(rendering.FromDocument(back, rendering.ModeEditor)); got != first {
		t.Fatal("serialize/deserialize changed rendered markup")
	}
}

func TestRenderRoundTripOfClientForest(t *testing.T) {
	d := newDoc()
	d.ReplaceAll([]*document.Node{{
		ID: "dup", Type: "section", Props: map[string]any{},
		Children: []*document.Node{{
			ID: "dup", Type: "column", Props: map[string]any{},
			Children: []*document.Node{
				{ID: "h", Type: "heading", Props: map[string]any{"text": "Hello", "margin": float64(7)}},
			},
		}},
	}})

	first := Render(rendering.FromDocument(d, rendering.ModePublish))
	if !strings.Contains(first, "Hello") {
		t.Fatalf("column under a repeated id was not rendered:\n%s", first)
	}

	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := document.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := Render(rendering.FromDocument(back, rendering.ModePublish)); got != first {
		t.Fatalf("serialize/deserialize changed rendered markup:\n%s\n---\n%s", first, got)
	}
}

func TestRenderEscaping(t *testing.T) {
	d := newDoc()
	sec := d.InsertSection()
	col := sec.Children[0].ID
	h := d.InsertWidget(col, "heading")
	b := d.InsertWidget(col, "button")
	txt := d.InsertWidget(col, "text")
	hero := d.InsertWidget(col, "hero")

	d.UpdateProperty(h.ID, "text", `<script>alert(1)</script>`)
	d.UpdateProperty(h.ID, "tag", `script`)
	d.UpdateProperty(b.ID, "link", `javascript:alert(1)`)
	d.UpdateProperty(txt.ID, "text", `<p onclick="x()">Hi <b>there</b></p><script>bad()</script>`)
	d.UpdateProperty(hero.ID, "bgColor", `red; background-image: url(x)`)

	out := Render(rendering.FromDocument(d, rendering.ModePublish))
	if strings.Contains(out, "<script>") {
		t.Fatalf("script tag leaked: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatal("heading text should be escaped")
	}
	if !strings.Contains(out, "<h2") {
		t.Fatal("disallowed heading tag should fall back to h2")
	}
	if strings.Contains(out, "javascript:") {
		t.Fatal("unsafe href should be filtered")
	}
	if strings.Contains(out, "onclick") || !strings.Contains(out, "<b>there</b>") {
		t.Fatalf("text widget not sanitized as expected: %s", out)
	}
	if strings.Contains(out, "url(x)") || !strings.Contains(out, "background-color: #1e293b") {
		t.Fatal("invalid hero color should fall back to default")
	}
}

func TestRenderViewportByDevice(t *testing.T) {
	d := newDoc()
	d.InsertSection()
	d.SetDevice(document.DeviceMobile)
	out := Render(rendering.FromDocument(d, rendering.ModeEditor))
	if !strings.Contains(out, "max-w-[375px]") || !strings.Contains(out, `data-device="mobile"`) {
		t.Fatalf("expected mobile viewport: %s", out)
	}
}

func TestRenderEmptyColumnPlaceholder(t *testing.T) {
	d := newDoc()
	d.InsertSection()
	out := Render(rendering.FromDocument(d, rendering.ModeEditor))
	if !strings.Contains(out, `data-empty="Drop widgets here"`) {
		t.Fatal("empty column should carry the drop placeholder")
	}
}

func TestRenderPage(t *testing.T) {
	d := document.New("doc", document.WithIDGenerator(seqIDs()), document.WithTitle("Launch <Day>"))
	sec := d.InsertSection()
	d.InsertWidget(sec.Children[0].ID, "heading")
	out := RenderPage(rendering.FromDocument(d, rendering.ModeEditor))
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatal("expected a full document")
	}
	if !strings.Contains(out, "<title>Launch &lt;Day&gt;</title>") {
		t.Fatalf("title not escaped: %s", out)
	}
	if strings.Contains(out, "section-handle") || !strings.Contains(out, `<main class="w-full">`) {
		t.Fatal("page should contain publish markup")
	}
}

func TestFormFields(t *testing.T) {
	d := newDoc()
	sec := d.InsertSection()
	f := d.InsertWidget(sec.Children[0].ID, "form")
	d.UpdateProperty(f.ID, "fields", "name, email, message, email")
	out := Render(rendering.FromDocument(d, rendering.ModePublish))
	if strings.Count(out, `name="email"`) != 1 {
		t.Fatal("duplicate form fields should collapse")
	}
	if !strings.Contains(out, `<textarea name="message"`) || !strings.Contains(out, `type="email"`) {
		t.Fatalf("unexpected form markup: %s", out)
	}
}
