package imageops

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/yi-nology/asset_bridge/pkg/transform"
	"golang.org/x/image/draw"
)

// Fit scales img to fit inside width x height keeping its aspect ratio and
// centers it on a canvas of exactly that size. Without upscale, images
// already inside the box keep their size.
func Fit(img *image.NRGBA, width, height int, bg transform.Background, upscale bool) *image.NRGBA {
	cw := float64(img.Bounds().Dx())
	ch := float64(img.Bounds().Dy())
	scale := 1.0
	if upscale {
		scale = math.Max(cw/float64(width), ch/float64(height))
	} else {
		if cw > float64(width) {
			scale = cw / float64(width)
		}
		if ch > float64(height) && ch/float64(height) > scale {
			scale = ch / float64(height)
		}
	}
	nw := max(int(math.Round(cw/scale)), 1)
	nh := max(int(math.Round(ch/scale)), 1)

	resized := img
	if nw != int(cw) || nh != int(ch) {
		resized = imaging.Resize(img, nw, nh, imaging.Lanczos)
	}
	canvas := newCanvas(width, height, bg)
	return place(canvas, resized, image.Pt((width-nw)/2, (height-nh)/2), bg)
}

// CanvasPlacement computes the size (w,h) the source takes on a width x
// height canvas and its top-left offset (x,y). The source is downscaled
// when it overflows the canvas on either axis; an axis the source still
// overflows is anchored at 0.
func CanvasPlacement(srcW, srcH, width, height int, pos transform.Position) (w, h, x, y int) {
	w, h = srcW, srcH
	if width < w || height < h {
		ratio := float64(w) / float64(h)
		newRatio := float64(width) / float64(height)
		var nw, nh float64
		switch {
		case ratio >= 1 && newRatio < 1:
			// landscape into portrait
			nw = float64(width)
			nh = math.Round(float64(width) / ratio)
		case ratio < 1 && newRatio >= 1:
			// portrait into landscape
			nh = float64(height)
			nw = math.Round(float64(height) * ratio)
		default:
			nh = float64(height)
			nw = math.Round(nh * ratio)
			if nw > float64(width) {
				nw = float64(width)
				nh = math.Round(nw / ratio)
			}
		}
		w = max(int(nw), 1)
		h = max(int(nh), 1)
	}
	if width >= w {
		x = pos.X.Place(width, w)
	}
	if height >= h {
		y = pos.Y.Place(height, h)
	}
	return w, h, x, y
}

// ResizeCanvas places img on a new width x height canvas filled with bg
// (or fully transparent), downscaling it first when it does not fit.
func ResizeCanvas(img *image.NRGBA, width, height int, pos transform.Position, bg transform.Background) *image.NRGBA {
	b := img.Bounds()
	w, h, x, y := CanvasPlacement(b.Dx(), b.Dy(), width, height, pos)
	canvas := newCanvas(width, height, bg)
	dr := image.Rect(x, y, x+w, y+h)

	op := draw.Src
	if _, solid := bg.Color(); solid {
		op = draw.Over
	}
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(canvas, dr, img, b.Min, op)
	} else {
		draw.CatmullRom.Scale(canvas, dr, img, b, op, nil)
	}
	return canvas
}

func newCanvas(width, height int, bg transform.Background) *image.NRGBA {
	c, ok := bg.Color()
	if !ok {
		c = color.NRGBA{}
	}
	return imaging.New(width, height, c)
}

// place copies src onto canvas at pt. Transparent canvases keep the
// source alpha as is; solid ones blend.
func place(canvas, src *image.NRGBA, pt image.Point, bg transform.Background) *image.NRGBA {
	if _, ok := bg.Color(); ok {
		return imaging.Overlay(canvas, src, pt, 1.0)
	}
	return imaging.Paste(canvas, src, pt)
}
