// Package media provides image processing utilities
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ErrUnsupportedImage is returned for data URLs that are not a supported image.
var ErrUnsupportedImage = errors.New("unsupported image format")

var dataURLPattern = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,`)

// ProcessedImage describes a stored upload. URLs are relative to the media
// URL prefix; Thumbnail is empty for SVG.
type ProcessedImage struct {
	Filename     string
	Thumbnail    string
	URL          string
	ThumbnailURL string
	Width        int
	Height       int
}

// ImageProcessor stores uploaded images under basePath, downscaling oversized
// originals and writing a WebP thumbnail next to them.
type ImageProcessor struct {
	basePath   string
	urlPrefix  string
	maxWidth   int
	thumbWidth int
	quality    float32
}

// NewImageProcessor creates a new ImageProcessor instance
func NewImageProcessor(basePath, urlPrefix string, maxWidth, thumbWidth, quality int) *ImageProcessor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &ImageProcessor{
		basePath:   basePath,
		urlPrefix:  strings.TrimSuffix(urlPrefix, "/"),
		maxWidth:   maxWidth,
		thumbWidth: thumbWidth,
		quality:    float32(quality),
	}
}

// BasePath returns the directory uploads are written to.
func (p *ImageProcessor) BasePath() string { return p.basePath }

// ProcessBase64Image decodes a data URL and stores it as <name>.<ext>.
func (p *ImageProcessor) ProcessBase64Image(data, name string) (*ProcessedImage, error) {
	if data == "" {
		return nil, fmt.Errorf("empty base64 data")
	}
	m := dataURLPattern.FindStringSubmatch(data)
	if m == nil {
		return nil, fmt.Errorf("%w: not a base64 image data URL", ErrUnsupportedImage)
	}
	ext := extensionFor(m[1])
	if ext == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, m[1])
	}

	decoded, err := base64.StdEncoding.DecodeString(data[len(m[0]):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	if err := os.MkdirAll(p.basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	filename := fmt.Sprintf("%s.%s", name, ext)
	if ext == "svg" {
		if err := os.WriteFile(filepath.Join(p.basePath, filename), decoded, 0644); err != nil {
			return nil, fmt.Errorf("failed to write SVG file: %w", err)
		}
		return &ProcessedImage{Filename: filename, URL: p.url(filename)}, nil
	}

	img, err := decodeImage(decoded, ext)
	if err != nil {
		return nil, err
	}
	if p.maxWidth > 0 && img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	originalPath := filepath.Join(p.basePath, filename)
	if ext == "webp" {
		err = webp.Save(originalPath, img, &webp.Options{Quality: p.quality})
	} else {
		err = imaging.Save(img, originalPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save image %s: %w", filename, err)
	}

	out := &ProcessedImage{
		Filename: filename,
		URL:      p.url(filename),
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}

	if p.thumbWidth > 0 {
		thumb := img
		if img.Bounds().Dx() > p.thumbWidth {
			thumb = imaging.Resize(img, p.thumbWidth, 0, imaging.Lanczos)
		}
		thumbName := fmt.Sprintf("%s_%dpx.webp", name, p.thumbWidth)
		if err := webp.Save(filepath.Join(p.basePath, thumbName), thumb, &webp.Options{Quality: p.quality}); err != nil {
			os.Remove(originalPath)
			return nil, fmt.Errorf("failed to save WebP thumbnail %s: %w", thumbName, err)
		}
		out.Thumbnail = thumbName
		out.ThumbnailURL = p.url(thumbName)
	}
	return out, nil
}

// Delete removes a stored image and its thumbnail. Missing files are ignored.
func (p *ImageProcessor) Delete(filenames ...string) error {
	for _, name := range filenames {
		if name == "" {
			continue
		}
		path := filepath.Join(p.basePath, filepath.Base(name))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

func (p *ImageProcessor) url(filename string) string {
	return p.urlPrefix + "/" + filename
}

func decodeImage(data []byte, ext string) (image.Image, error) {
	if ext == "webp" {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode webp image: %w", err)
		}
		return img, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/svg+xml":
		return "svg"
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	}
	return ""
}
