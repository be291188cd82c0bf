package imageops

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/yi-nology/asset_bridge/pkg/transform"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

// coordImage encodes each pixel's coordinates in its red and green channels.
func coordImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 0xff})
		}
	}
	return img
}

func bordered(inner, border int, innerColor, borderColor color.NRGBA) *image.NRGBA {
	size := inner + 2*border
	img := solid(size, size, borderColor)
	return imaging.Paste(img, solid(inner, inner, innerColor), image.Pt(border, border))
}

// reddish tolerates resampling noise.
func reddish(c color.NRGBA) bool {
	return c.R > 200 && c.G < 50 && c.B < 50 && c.A > 200
}

func assertSize(t *testing.T, img image.Image, w, h int) {
	t.Helper()
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("expected %dx%d, got %dx%d", w, h, img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCanvasPlacementAnchors(t *testing.T) {
	cases := []struct {
		name         string
		pos          string
		wantX, wantY int
	}{
		{"center", "center;center", 50, 75},
		{"left top", "left;top", 0, 0},
		{"right bottom", "right;bottom", 100, 150},
		{"numeric", "10x20", 10, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h, x, y := CanvasPlacement(100, 50, 200, 200, transform.ParsePosition(tc.pos))
			if w != 100 || h != 50 {
				t.Fatalf("expected source size kept, got %dx%d", w, h)
			}
			if x != tc.wantX || y != tc.wantY {
				t.Fatalf("expected offset (%d,%d), got (%d,%d)", tc.wantX, tc.wantY, x, y)
			}
		})
	}
}

func TestCanvasPlacementDownscale(t *testing.T) {
	cases := []struct {
		name                   string
		srcW, srcH, canW, canH int
		w, h, x, y             int
	}{
		{"landscape into square", 400, 200, 200, 200, 200, 100, 0, 50},
		{"portrait into landscape", 100, 400, 300, 200, 50, 200, 125, 0},
		{"landscape into portrait", 400, 100, 100, 200, 100, 25, 0, 88},
		{"portrait into portrait", 100, 400, 150, 200, 50, 200, 50, 0},
		{"wide into less wide", 300, 100, 250, 200, 250, 83, 0, 59},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h, x, y := CanvasPlacement(tc.srcW, tc.srcH, tc.canW, tc.canH, transform.Centered)
			if w != tc.w || h != tc.h || x != tc.x || y != tc.y {
				t.Fatalf("got size %dx%d at (%d,%d), want %dx%d at (%d,%d)", w, h, x, y, tc.w, tc.h, tc.x, tc.y)
			}
		})
	}
}

func TestResizeCanvasSolidBackground(t *testing.T) {
	out := ResizeCanvas(solid(100, 50, red), 200, 200, transform.Centered, transform.ParseBackground("white"))
	assertSize(t, out, 200, 200)
	if got := out.NRGBAAt(50, 75); got != red {
		t.Fatalf("expected red at placement origin, got %v", got)
	}
	if got := out.NRGBAAt(149, 124); got != red {
		t.Fatalf("expected red at placement end, got %v", got)
	}
	if got := out.NRGBAAt(49, 75); got != white {
		t.Fatalf("expected white left of image, got %v", got)
	}
	if got := out.NRGBAAt(0, 0); got != white {
		t.Fatalf("expected white corner, got %v", got)
	}
}

func TestResizeCanvasTransparent(t *testing.T) {
	out := ResizeCanvas(solid(100, 50, red), 200, 200, transform.ParsePosition("right;bottom"), transform.Transparent)
	if got := out.NRGBAAt(0, 0); got.A != 0 {
		t.Fatalf("expected transparent corner, got %v", got)
	}
	if got := out.NRGBAAt(199, 199); got != red {
		t.Fatalf("expected red bottom-right, got %v", got)
	}
}

func TestFitResizeDoesNotUpscale(t *testing.T) {
	out := Fit(solid(50, 50, red), 100, 100, transform.ParseBackground("white"), false)
	assertSize(t, out, 100, 100)
	if got := out.NRGBAAt(24, 50); got != white {
		t.Fatalf("expected letterbox at x=24, got %v", got)
	}
	if got := out.NRGBAAt(25, 25); got != red {
		t.Fatalf("expected image at (25,25), got %v", got)
	}
}

func TestFitScaleUpscales(t *testing.T) {
	out := Fit(solid(50, 25, red), 100, 100, transform.ParseBackground("white"), true)
	assertSize(t, out, 100, 100)
	if got := out.NRGBAAt(0, 50); !reddish(got) {
		t.Fatalf("expected upscaled image to touch left edge, got %v", got)
	}
	if got := out.NRGBAAt(0, 10); got != white {
		t.Fatalf("expected letterbox above image, got %v", got)
	}
}

func TestApplyModes(t *testing.T) {
	src := solid(400, 200, red)
	cases := []struct {
		mode string
		w, h int
	}{
		{"resize", 100, 100},
		{"scaleResize", 100, 100},
		{"forceResize", 120, 30},
		{"zoomCrop", 100, 100},
		{"crop", 50, 60},
		{"cropResize", 100, 100},
		{"resizeCanvas", 300, 300},
		{"cropAuto", 80, 80},
	}
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			tr := transform.Resolve(transform.Params{
				transform.ParamMode: tc.mode,
				transform.ParamSize: fmt.Sprintf("%dx%d", tc.w, tc.h),
			}, "png")
			assertSize(t, Apply(src, tr), tc.w, tc.h)
		})
	}
}

func TestApplyNoOpModes(t *testing.T) {
	src := solid(40, 30, red)
	for _, mode := range []string{"size", "sharpen", ""} {
		tr := transform.Resolve(transform.Params{transform.ParamMode: mode, transform.ParamSize: "10x10"}, "png")
		assertSize(t, Apply(src, tr), 40, 30)
	}
	tr := transform.Resolve(transform.Params{transform.ParamMode: "resize", transform.ParamSize: "10"}, "png")
	assertSize(t, Apply(src, tr), 40, 30)
}

func TestApplyFillsBackground(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	tr := transform.Resolve(transform.Params{transform.ParamBackground: "white"}, "png")
	if got := Apply(src, tr).NRGBAAt(1, 1); got != white {
		t.Fatalf("expected white fill, got %v", got)
	}
	tr = transform.Resolve(transform.Params{transform.ParamBackground: "transparent"}, "png")
	if got := Apply(src, tr).NRGBAAt(1, 1); got.A != 0 {
		t.Fatalf("expected transparent pixel kept, got %v", got)
	}
}

func TestCropAtPosition(t *testing.T) {
	out := Crop(coordImage(200, 100), 50, 50, transform.ParsePosition("10x20"))
	assertSize(t, out, 50, 50)
	if got := out.NRGBAAt(0, 0); got.R != 10 || got.G != 20 {
		t.Fatalf("expected window origin (10,20), got %v", got)
	}

	out = Crop(coordImage(200, 100), 50, 50, transform.ParsePosition("right;bottom"))
	if got := out.NRGBAAt(0, 0); got.R != 150 || got.G != 50 {
		t.Fatalf("expected window origin (150,50), got %v", got)
	}
}

func TestZoomAnchors(t *testing.T) {
	// 200x100 scaled to cover 100x100 becomes 200x100: no scaling, only crop.
	out := Zoom(coordImage(200, 100), 100, 100, transform.ParsePosition("left;top"))
	if got := out.NRGBAAt(0, 0); got.R != 0 {
		t.Fatalf("expected left crop, got %v", got)
	}
	out = Zoom(coordImage(200, 100), 100, 100, transform.ParsePosition("right;top"))
	if got := out.NRGBAAt(0, 0); got.R != 100 {
		t.Fatalf("expected right crop starting at x=100, got %v", got)
	}
}

func TestCropAutoModes(t *testing.T) {
	cases := []struct {
		name string
		img  *image.NRGBA
		mode transform.CropMode
		bg   string
	}{
		{"white", bordered(30, 10, red, white), transform.CropModeWhite, ""},
		{"black", bordered(30, 10, red, color.NRGBA{A: 0xff}), transform.CropModeBlack, ""},
		{"sides", bordered(30, 10, red, blue), transform.CropModeSides, ""},
		{"transparent", bordered(30, 10, red, color.NRGBA{}), transform.CropModeTransparent, ""},
		{"threshold", bordered(30, 10, red, color.NRGBA{R: 0xfe, G: 0xfe, B: 0xfe, A: 0xff}), transform.CropModeThreshold, "white"},
		{"auto transparent", bordered(30, 10, red, color.NRGBA{}), transform.CropModeAuto, ""},
		{"auto sides", bordered(30, 10, red, blue), transform.CropModeAuto, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := CropAuto(tc.img, tc.mode, 0.5, transform.ParseBackground(tc.bg))
			assertSize(t, out, 30, 30)
		})
	}
}

func TestCropAutoUniformImageUnchanged(t *testing.T) {
	out := CropAuto(solid(20, 20, white), transform.CropModeWhite, 0.5, transform.Transparent)
	assertSize(t, out, 20, 20)
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []string{"png", "jpg", "jpeg", "gif"} {
		data, err := Encode(solid(12, 8, red), format, 150)
		if err != nil {
			t.Fatalf("Encode %s: %v", format, err)
		}
		img, err := Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Decode %s: %v", format, err)
		}
		assertSize(t, img, 12, 8)
	}

	if _, err := Encode(solid(1, 1, red), "webp", 90); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestPlaceholder(t *testing.T) {
	assertSize(t, Placeholder(), PlaceholderSize, PlaceholderSize)
}
