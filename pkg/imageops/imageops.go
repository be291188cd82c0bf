// Package imageops applies canonical transforms to decoded images and
// handles decoding and encoding of the supported formats.
package imageops

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/yi-nology/asset_bridge/pkg/transform"
)

var (
	ErrDecode = errors.New("decode image")
	ErrEncode = errors.New("encode image")
)

// PlaceholderSize is the edge length of the built-in placeholder image.
const PlaceholderSize = 100

var placeholderColor = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}

// Open decodes the image file at path.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return img, nil
}

// Decode reads an image from r.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// Encode writes img in the given format (png, jpg, jpeg or gif). JPEG
// quality is clamped into [1,100].
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, format, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(clampQuality(quality))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Placeholder returns the image served when neither the source nor the
// configured fallback exists.
func Placeholder() *image.NRGBA {
	return imaging.New(PlaceholderSize, PlaceholderSize, placeholderColor)
}

// Apply runs the geometric operation selected by t.Mode and then fills
// the background unless it is transparent. Geometry only runs when both
// target dimensions are positive; ModeNone and ModeSize never change it.
func Apply(img image.Image, t transform.Transform) *image.NRGBA {
	out := imaging.Clone(img)
	if t.HasSize() {
		w, h := t.Width, t.Height
		switch t.Mode {
		case transform.ModeResize:
			out = Fit(out, w, h, t.Background, false)
		case transform.ModeScale:
			out = Fit(out, w, h, t.Background, true)
		case transform.ModeForceResize:
			out = imaging.Resize(out, w, h, imaging.Lanczos)
		case transform.ModeZoom:
			out = Zoom(out, w, h, t.Position.Or(transform.Centered))
		case transform.ModeCrop:
			out = Crop(out, w, h, t.Position)
		case transform.ModeCropResize:
			out = CropResize(out, w, h, t.Position.Or(transform.Centered))
		case transform.ModeResizeCanvas:
			out = ResizeCanvas(out, w, h, t.Position.Or(transform.Centered), t.Background)
		case transform.ModeCropAuto:
			out = CropAuto(out, t.CropMode, t.Threshold, t.Background)
			out = ResizeCanvas(out, w, h, t.Position.Or(transform.Centered), t.Background)
		}
	}
	if c, ok := t.Background.Color(); ok {
		out = FillBackground(out, c)
	}
	return out
}

// FillBackground flattens img onto a solid color.
func FillBackground(img *image.NRGBA, c color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), c)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

func clampQuality(q int) int {
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	default:
		return q
	}
}
