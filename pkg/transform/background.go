package transform

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// BackgroundKind tells how a Background value should be interpreted.
type BackgroundKind int

const (
	BackgroundTransparent BackgroundKind = iota
	BackgroundHex
	BackgroundRaw
)

// Background is a canvas/fill color. Hex values are kept in "0xRRGGBB"
// form; Raw values are passed through untouched for providers that
// understand their own encodings.
type Background struct {
	Kind  BackgroundKind
	Value string
}

// Transparent is the sentinel background that never triggers a fill.
var Transparent = Background{Kind: BackgroundTransparent, Value: "transparent"}

// ParseBackground maps white/black to hex extremes, "#rrggbb" to
// "0xrrggbb", keeps "0x" values and the transparent sentinel, and passes
// anything else through as-is. Empty input is transparent.
func ParseBackground(raw string) Background {
	v := strings.TrimSpace(raw)
	switch {
	case v == "", strings.EqualFold(v, "transparent"):
		return Transparent
	case strings.EqualFold(v, "white"):
		return Background{Kind: BackgroundHex, Value: "0xffffff"}
	case strings.EqualFold(v, "black"):
		return Background{Kind: BackgroundHex, Value: "0x000000"}
	case strings.HasPrefix(v, "#"):
		return Background{Kind: BackgroundHex, Value: "0x" + v[1:]}
	case strings.HasPrefix(strings.ToLower(v), "0x"):
		return Background{Kind: BackgroundHex, Value: v}
	default:
		return Background{Kind: BackgroundRaw, Value: v}
	}
}

// IsTransparent reports whether no solid fill should be applied.
func (b Background) IsTransparent() bool {
	return b.Kind == BackgroundTransparent
}

func (b Background) String() string {
	return b.Value
}

// Color converts the background to a concrete color. Raw values are looked
// up among the SVG color names; ok is false when no solid color applies.
func (b Background) Color() (color.NRGBA, bool) {
	switch b.Kind {
	case BackgroundHex:
		return parseHex(b.Value[2:])
	case BackgroundRaw:
		if c, found := colornames.Map[strings.ToLower(b.Value)]; found {
			return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}, true
		}
	}
	return color.NRGBA{}, false
}

func parseHex(hex string) (color.NRGBA, bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
}
