// Package transform turns the loose parameter bag accepted by the image
// endpoints into a canonical Transform value. Resolution never fails:
// anything that cannot be parsed degrades to its default.
package transform

import (
	"strconv"
	"strings"
)

// Default values applied when a parameter is missing or unusable.
const (
	DefaultQuality   = 90
	DefaultFormat    = "jpg"
	DefaultThreshold = 0.5
)

// Parameter names understood by Resolve.
const (
	ParamSize       = "size"
	ParamMode       = "mode"
	ParamBackground = "background"
	ParamPosition   = "position"
	ParamQuality    = "quality"
	ParamType       = "type"
	ParamName       = "name"
	ParamThreshold  = "threshold"
	ParamCropMode   = "crop_mode"
)

// Params is the raw, string keyed parameter bag received from callers
// (query strings, CLI flags, template helpers).
type Params map[string]string

// Transform is the canonical description of a derived image.
type Transform struct {
	Mode       Mode
	Width      int
	Height     int
	Position   Position
	Background Background
	// Quality is kept as requested; encoders clamp it when writing.
	Quality    int
	Format     string
	CustomName string
	Threshold  float64
	CropMode   CropMode
}

// HasSize reports whether the transform carries a usable target box.
func (t Transform) HasSize() bool {
	return t.Width > 0 && t.Height > 0
}

var imageFormats = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// IsImageFormat reports whether ext (without dot) is one of the
// recognised output formats.
func IsImageFormat(ext string) bool {
	_, ok := imageFormats[strings.ToLower(ext)]
	return ok
}

// Resolve normalizes raw parameters. sourceExt is the real extension of the
// resolved source file and is used when no valid output type is requested.
func Resolve(raw Params, sourceExt string) Transform {
	t := Transform{
		Mode:       ParseMode(raw[ParamMode]),
		Position:   ParsePosition(raw[ParamPosition]),
		Background: ParseBackground(raw[ParamBackground]),
		Quality:    ParseQuality(raw[ParamQuality]),
		Format:     ParseFormat(raw[ParamType], sourceExt),
		CustomName: strings.TrimSpace(raw[ParamName]),
		Threshold:  ParseThreshold(raw[ParamThreshold]),
		CropMode:   ParseCropMode(raw[ParamCropMode]),
	}
	t.Width, t.Height = ParseSize(raw[ParamSize])
	return t
}

// ParseSize splits a "WxH" string. Anything other than two positive
// integers yields 0,0 which means "no resize".
func ParseSize(raw string) (int, int) {
	parts := strings.Split(strings.TrimSpace(raw), "x")
	if len(parts) != 2 {
		return 0, 0
	}
	w, okW := positiveInt(parts[0])
	h, okH := positiveInt(parts[1])
	if !okW || !okH {
		return 0, 0
	}
	return w, h
}

// ParseQuality returns DefaultQuality for empty, zero or non numeric input.
// Other values pass through unchanged.
func ParseQuality(raw string) int {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q == 0 {
		return DefaultQuality
	}
	return q
}

// ParseFormat accepts png/jpg/jpeg/gif case-insensitively, then falls back
// to the source extension and finally to jpg.
func ParseFormat(raw, sourceExt string) string {
	format := strings.ToLower(strings.TrimSpace(raw))
	if IsImageFormat(format) {
		return format
	}
	sourceExt = strings.ToLower(strings.TrimPrefix(sourceExt, "."))
	if IsImageFormat(sourceExt) {
		return sourceExt
	}
	return DefaultFormat
}

// ParseThreshold parses the auto-crop sensitivity.
func ParseThreshold(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return DefaultThreshold
	}
	return v
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
