package transform

import "strings"

// Mode selects the geometric operation applied to the source image.
type Mode int

const (
	// ModeNone is any unrecognised mode string. It applies no geometry.
	ModeNone Mode = iota
	// ModeSize is the default "size" mode and applies no geometry either.
	ModeSize
	ModeResize
	ModeScale
	ModeForceResize
	ModeZoom
	ModeCrop
	ModeCropResize
	ModeResizeCanvas
	ModeCropAuto
)

var modeNames = map[string]Mode{
	"size":         ModeSize,
	"resize":       ModeResize,
	"scale":        ModeScale,
	"scaleresize":  ModeScale,
	"forceresize":  ModeForceResize,
	"zoom":         ModeZoom,
	"zoomcrop":     ModeZoom,
	"crop":         ModeCrop,
	"cropresize":   ModeCropResize,
	"resizecanvas": ModeResizeCanvas,
	"cropauto":     ModeCropAuto,
}

// ParseMode maps a mode name to a Mode, case-insensitively. An empty
// string is the default "size" mode; unknown names become ModeNone.
func ParseMode(raw string) Mode {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return ModeSize
	}
	if m, ok := modeNames[name]; ok {
		return m
	}
	return ModeNone
}

func (m Mode) String() string {
	switch m {
	case ModeSize:
		return "size"
	case ModeResize:
		return "resize"
	case ModeScale:
		return "scaleResize"
	case ModeForceResize:
		return "forceResize"
	case ModeZoom:
		return "zoomCrop"
	case ModeCrop:
		return "crop"
	case ModeCropResize:
		return "cropResize"
	case ModeResizeCanvas:
		return "resizeCanvas"
	case ModeCropAuto:
		return "cropAuto"
	default:
		return "none"
	}
}

// CropMode selects how CropAuto detects the border to trim.
type CropMode int

const (
	CropModeAuto CropMode = iota
	CropModeWhite
	CropModeBlack
	CropModeThreshold
	CropModeSides
	CropModeTransparent
)

// ParseCropMode maps auto/white/black/threshold/side/transparent; anything
// else is CropModeAuto.
func ParseCropMode(raw string) CropMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "white":
		return CropModeWhite
	case "black":
		return CropModeBlack
	case "threshold":
		return CropModeThreshold
	case "side", "sides":
		return CropModeSides
	case "transparent":
		return CropModeTransparent
	default:
		return CropModeAuto
	}
}
