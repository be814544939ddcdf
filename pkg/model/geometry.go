package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Geometry is an axis-aligned bounding box in export coordinates.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String formats g in the export's Key=Value notation. ParseGeometry is
// its left inverse.
func (g Geometry) String() string {
	return fmt.Sprintf("Left=%d;Top=%d;Right=%d;Bottom=%d;", g.X, g.Y, g.X+g.Width, g.Y+g.Height)
}

const (
	hasLeft = 1 << iota
	hasRight
	hasTop
	hasBottom
	hasAll = hasLeft | hasRight | hasTop | hasBottom
)

// ParseGeometry parses a bounding-box string of ';'-separated Key=Value
// pairs such as "Left=10;Top=20;Right=110;Bottom=70;".
//
// Left, Right, Top and Bottom are required integers; other keys are
// ignored, as are empty segments. The result is
// (Left, Top, Right-Left, Bottom-Top). No bounds checking is done, so
// inverted boxes yield negative sizes.
//
// ok is false for empty input, a missing coordinate, or a coordinate that
// is not an integer.
func ParseGeometry(raw string) (g Geometry, ok bool) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	if len(fields) == 0 {
		return Geometry{}, false
	}

	var left, right, top, bottom, seen int
	for _, f := range fields {
		key, val, found := strings.Cut(f, "=")
		if !found {
			continue
		}

		var dst *int
		var bit int
		switch key {
		case "Left":
			dst, bit = &left, hasLeft
		case "Right":
			dst, bit = &right, hasRight
		case "Top":
			dst, bit = &top, hasTop
		case "Bottom":
			dst, bit = &bottom, hasBottom
		default:
			continue
		}

		n, err := strconv.Atoi(val)
		if err != nil {
			return Geometry{}, false
		}
		*dst = n
		seen |= bit
	}

	if seen != hasAll {
		return Geometry{}, false
	}
	return Geometry{X: left, Y: top, Width: right - left, Height: bottom - top}, true
}
