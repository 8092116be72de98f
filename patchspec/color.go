package patchspec

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA color parsed from a hex string.
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses "rrggbb" or "rrggbbaa", with or without a leading '#'.
// The digits are split into len/3 sized channels; alpha is 255 when only
// six digits are given.
func ParseColor(s string) (Color, error) {
	digits := strings.TrimLeft(strings.TrimSpace(s), "#")
	if len(digits) != 6 && len(digits) != 8 {
		return Color{}, fmt.Errorf("color %q: want 6 or 8 hex digits, got %d", s, len(digits))
	}
	width := len(digits) / 3
	var ch [4]uint8
	ch[3] = 255
	for i, n := 0, 0; i+width <= len(digits) && n < 4; i, n = i+width, n+1 {
		v, err := strconv.ParseUint(digits[i:i+width], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: invalid hex digits %q", s, digits[i:i+width])
		}
		ch[n] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// Hex returns the color as lowercase "#rrggbb", without alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Channels returns the decimal strings of red, green, blue and alpha.
func (c Color) Channels() [4]string {
	return [4]string{
		strconv.Itoa(int(c.R)),
		strconv.Itoa(int(c.G)),
		strconv.Itoa(int(c.B)),
		strconv.Itoa(int(c.A)),
	}
}
