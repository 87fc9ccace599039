package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestProcessBase64Image(t *testing.T) {
	dir := t.TempDir()
	p := NewImageProcessor(dir, "/media/", 200, 50, 80)

	out, err := p.ProcessBase64Image(pngDataURL(t, 400, 100), "hero")
	if err != nil {
		t.Fatalf("ProcessBase64Image: %v", err)
	}
	if out.Filename != "hero.png" || out.URL != "/media/hero.png" {
		t.Fatalf("unexpected result %+v", out)
	}
	if out.Width != 200 || out.Height != 50 {
		t.Fatalf("expected downscale to 200x50, got %dx%d", out.Width, out.Height)
	}
	if out.Thumbnail != "hero_50px.webp" {
		t.Fatalf("unexpected thumbnail %q", out.Thumbnail)
	}
	for _, name := range []string{out.Filename, out.Thumbnail} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	if err := p.Delete(out.Filename, out.Thumbnail, "never-existed.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, out.Filename)); !os.IsNotExist(err) {
		t.Fatal("original not removed")
	}
}

func TestProcessSVG(t *testing.T) {
	dir := t.TempDir()
	p := NewImageProcessor(dir, "/media", 0, 100, 0)
	svg := `<svg xmlns="http://www.w3.org/2000/svg"/>`
	out, err := p.ProcessBase64Image("data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte(svg)), "logo")
	if err != nil {
		t.Fatalf("ProcessBase64Image: %v", err)
	}
	if out.Filename != "logo.svg" || out.Thumbnail != "" {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestRejectsUnsupported(t *testing.T) {
	p := NewImageProcessor(t.TempDir(), "/media", 0, 0, 0)
	for _, data := range []string{"hello", "data:image/tiff;base64,AAAA", "data:text/plain;base64,AAAA"} {
		if _, err := p.ProcessBase64Image(data, "x"); !errors.Is(err, ErrUnsupportedImage) {
			t.Fatalf("%q: expected ErrUnsupportedImage, got %v", data, err)
		}
	}
}
