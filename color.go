package photosheet

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a "#RRGGBB" or "#RGB" color.
func ParseColor(s string) (color.NRGBA, error) {
	if len(s) != 4 && len(s) != 7 {
		return color.NRGBA{}, fmt.Errorf("photosheet: %w: color %q", ErrInvalidArgument, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("photosheet: %w: color %q", ErrInvalidArgument, s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// HexColor formats c as lowercase "#rrggbb", dropping alpha.
func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	cf, _ := colorful.MakeColor(n)
	return cf.Hex()
}
