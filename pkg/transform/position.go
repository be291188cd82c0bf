package transform

import (
	"strconv"
	"strings"
)

// Anchor is a keyword placement along one axis.
type Anchor int

const (
	// AnchorOffset means the axis uses the numeric Offset.
	AnchorOffset Anchor = iota
	// AnchorStart is left on X and top on Y.
	AnchorStart
	AnchorCenter
	// AnchorEnd is right on X and bottom on Y.
	AnchorEnd
)

// Axis is one component of a Position.
type Axis struct {
	Anchor Anchor
	Offset int
}

// Place returns the offset of an item of length size inside a span of
// length space according to the axis anchor.
func (a Axis) Place(space, size int) int {
	switch a.Anchor {
	case AnchorStart:
		return 0
	case AnchorEnd:
		return space - size
	case AnchorCenter:
		return roundHalf(space - size)
	default:
		return a.Offset
	}
}

// Position places an image on a canvas or a crop window on an image.
type Position struct {
	X Axis
	Y Axis
	// Set is false when no position parameter was supplied at all.
	Set bool
}

// Centered is the placement used when no position is given.
var Centered = Position{X: Axis{Anchor: AnchorCenter}, Y: Axis{Anchor: AnchorCenter}}

// Or returns p when it was supplied and def otherwise.
func (p Position) Or(def Position) Position {
	if p.Set {
		return p
	}
	return def
}

// ParsePosition accepts "x", ";" or "-" between two components, each an
// integer offset or an anchor keyword. Malformed input yields (0,0).
func ParsePosition(raw string) Position {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Position{}
	}
	parts := strings.FieldsFunc(v, func(r rune) bool {
		return r == 'x' || r == ';' || r == '-'
	})
	// FieldsFunc drops empty fields, so "x10" would look like one part.
	if len(parts) != 2 || strings.Count(v, "x")+strings.Count(v, ";")+strings.Count(v, "-") != 1 {
		return Position{Set: true}
	}
	x, okX := parseAxis(parts[0], "left", "right")
	y, okY := parseAxis(parts[1], "top", "bottom")
	if !okX || !okY {
		return Position{Set: true}
	}
	return Position{X: x, Y: y, Set: true}
}

func parseAxis(raw, start, end string) (Axis, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case start:
		return Axis{Anchor: AnchorStart}, true
	case end:
		return Axis{Anchor: AnchorEnd}, true
	case "center":
		return Axis{Anchor: AnchorCenter}, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return Axis{}, false
	}
	return Axis{Anchor: AnchorOffset, Offset: n}, true
}

// roundHalf is round(n/2) with halves rounded away from zero.
func roundHalf(n int) int {
	if n >= 0 {
		return (n + 1) / 2
	}
	return -((-n + 1) / 2)
}
