package common

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor converts a CSS-style color string into RGB components in [0, 1].
// Accepts "#rgb", "#rrggbb" and the SVG/CSS named colors ("white", "red", ...).
//
// Parameters:
//   - s: the color string
//
// Returns:
//   - [3]float32: the RGB components
//   - error: ErrConfiguration if the string is not a recognized color
func ParseColor(s string) ([3]float32, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		switch len(hex) {
		case 3:
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		case 6:
		default:
			return [3]float32{}, fmt.Errorf("%w: invalid hex color %q", ErrConfiguration, s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return [3]float32{}, fmt.Errorf("%w: invalid hex color %q: %v", ErrConfiguration, s, err)
		}
		return [3]float32{
			float32((v>>16)&0xff) / 255,
			float32((v>>8)&0xff) / 255,
			float32(v&0xff) / 255,
		}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}, nil
	}
	return [3]float32{}, fmt.Errorf("%w: unknown color %q", ErrConfiguration, s)
}

// MustParseColor is like ParseColor but panics on error. Intended for literal colors in scene setup.
//
// Parameters:
//   - s: the color string
//
// Returns:
//   - [3]float32: the RGB components
func MustParseColor(s string) [3]float32 {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
