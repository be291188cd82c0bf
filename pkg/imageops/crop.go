package imageops

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/yi-nology/asset_bridge/pkg/transform"
)

// Zoom scales img to cover width x height and crops the overflow at pos.
func Zoom(img *image.NRGBA, width, height int, pos transform.Position) *image.NRGBA {
	cw := img.Bounds().Dx()
	ch := img.Bounds().Dy()
	ratio := float64(cw) / float64(ch)

	var nw, nh int
	if ratio > float64(width)/float64(height) {
		nh = height
		nw = int(float64(height) * ratio)
	} else {
		nw = width
		nh = int(float64(width) / ratio)
	}
	nw = max(nw, width)
	nh = max(nh, height)

	resized := imaging.Resize(img, nw, nh, imaging.Lanczos)
	x := clamp(pos.X.Place(nw, width), 0, nw-width)
	y := clamp(pos.Y.Place(nh, height), 0, nh-height)
	return imaging.Crop(resized, image.Rect(x, y, x+width, y+height))
}

// Crop cuts a width x height window at pos without scaling. The window is
// kept inside the image; smaller images yield a smaller result.
func Crop(img *image.NRGBA, width, height int, pos transform.Position) *image.NRGBA {
	cw := img.Bounds().Dx()
	ch := img.Bounds().Dy()
	x := clamp(pos.X.Place(cw, width), 0, max(cw-width, 0))
	y := clamp(pos.Y.Place(ch, height), 0, max(ch-height, 0))
	return imaging.Crop(img, image.Rect(x, y, x+width, y+height))
}

// CropResize crops img to the target aspect ratio at pos, then resizes the
// window to exactly width x height.
func CropResize(img *image.NRGBA, width, height int, pos transform.Position) *image.NRGBA {
	cw := img.Bounds().Dx()
	ch := img.Bounds().Dy()
	target := float64(width) / float64(height)

	cropW, cropH := cw, ch
	if float64(cw)/float64(ch) > target {
		cropW = max(int(math.Round(float64(ch)*target)), 1)
	} else {
		cropH = max(int(math.Round(float64(cw)/target)), 1)
	}
	x := clamp(pos.X.Place(cw, cropW), 0, cw-cropW)
	y := clamp(pos.Y.Place(ch, cropH), 0, ch-cropH)
	cropped := imaging.Crop(img, image.Rect(x, y, x+cropW, y+cropH))
	return imaging.Resize(cropped, width, height, imaging.Lanczos)
}

// CropAuto trims a uniform border. The border color is chosen by mode:
// transparent pixels, pure white, pure black, the color shared by the
// corners (sides), or bg within threshold percent (threshold). Auto tries
// transparent first and then sides. An image that is entirely border is
// returned unchanged.
func CropAuto(img *image.NRGBA, mode transform.CropMode, threshold float64, bg transform.Background) *image.NRGBA {
	var match func(color.NRGBA) bool
	switch mode {
	case transform.CropModeTransparent:
		match = isTransparent
	case transform.CropModeWhite:
		match = equalTo(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	case transform.CropModeBlack:
		match = equalTo(color.NRGBA{A: 0xff})
	case transform.CropModeSides:
		match = equalTo(cornerColor(img))
	case transform.CropModeThreshold:
		c, _ := bg.Color()
		match = within(c, threshold)
	default:
		if r, ok := trimBounds(img, isTransparent); ok && r != img.Bounds() {
			return imaging.Crop(img, r)
		}
		match = equalTo(cornerColor(img))
	}

	r, ok := trimBounds(img, match)
	if !ok {
		return img
	}
	return imaging.Crop(img, r)
}

// trimBounds returns the smallest rectangle holding every pixel that does
// not match. ok is false when all pixels match.
func trimBounds(img *image.NRGBA, match func(color.NRGBA) bool) (image.Rectangle, bool) {
	b := img.Bounds()
	rowMatches := func(y int) bool {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !match(img.NRGBAAt(x, y)) {
				return false
			}
		}
		return true
	}
	colMatches := func(x, top, bottom int) bool {
		for y := top; y < bottom; y++ {
			if !match(img.NRGBAAt(x, y)) {
				return false
			}
		}
		return true
	}

	top := b.Min.Y
	for top < b.Max.Y && rowMatches(top) {
		top++
	}
	if top == b.Max.Y {
		return image.Rectangle{}, false
	}
	bottom := b.Max.Y
	for bottom > top && rowMatches(bottom-1) {
		bottom--
	}
	left := b.Min.X
	for left < b.Max.X && colMatches(left, top, bottom) {
		left++
	}
	right := b.Max.X
	for right > left && colMatches(right-1, top, bottom) {
		right--
	}
	return image.Rect(left, top, right, bottom), true
}

// cornerColor picks the color shared by most corners, or their average
// when all four differ.
func cornerColor(img *image.NRGBA) color.NRGBA {
	b := img.Bounds()
	corners := []color.NRGBA{
		img.NRGBAAt(b.Min.X, b.Min.Y),
		img.NRGBAAt(b.Max.X-1, b.Min.Y),
		img.NRGBAAt(b.Min.X, b.Max.Y-1),
		img.NRGBAAt(b.Max.X-1, b.Max.Y-1),
	}
	best, bestCount := corners[0], 0
	for _, c := range corners {
		n := 0
		for _, o := range corners {
			if o == c {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = c, n
		}
	}
	if bestCount >= 2 {
		return best
	}
	var r, g, bl, a int
	for _, c := range corners {
		r += int(c.R)
		g += int(c.G)
		bl += int(c.B)
		a += int(c.A)
	}
	return color.NRGBA{R: uint8(r / 4), G: uint8(g / 4), B: uint8(bl / 4), A: uint8(a / 4)}
}

func isTransparent(c color.NRGBA) bool {
	return c.A == 0
}

func equalTo(ref color.NRGBA) func(color.NRGBA) bool {
	return func(c color.NRGBA) bool {
		return c == ref
	}
}

// within matches colors whose squared RGBA distance to ref, as a percent
// of the RGB maximum, is below threshold.
func within(ref color.NRGBA, threshold float64) func(color.NRGBA) bool {
	return func(c color.NRGBA) bool {
		dr := int(c.R) - int(ref.R)
		dg := int(c.G) - int(ref.G)
		db := int(c.B) - int(ref.B)
		da := int(c.A) - int(ref.A)
		dist := dr*dr + dg*dg + db*db + da*da
		return 100.0*float64(dist)/195075.0 < threshold
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
