package photosheet

import (
	"fmt"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ApplyBackground flattens img onto an opaque width x height backdrop of
// color bg with source-over compositing. img is scaled to the backdrop
// size first when the sizes differ.
func ApplyBackground(img PixelBuffer, bg color.Color, width, height int) (PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return PixelBuffer{}, fmt.Errorf("photosheet: background: %w: size %dx%d", ErrInvalidArgument, width, height)
	}
	if bg == nil {
		return PixelBuffer{}, fmt.Errorf("photosheet: background: %w: no color", ErrInvalidArgument)
	}
	if err := img.Validate(); err != nil {
		return PixelBuffer{}, fmt.Errorf("photosheet: background: %w", err)
	}
	src := resample(img, width, height, xdraw.ApproxBiLinear)
	c := color.NRGBAModel.Convert(bg).(color.NRGBA)
	bgR, bgG, bgB := int(c.R), int(c.G), int(c.B)

	out := NewPixelBuffer(width, height)
	parallelBands(height, width, func(y0, y1 int) {
		for i := y0 * width * 4; i < y1*width*4; i += 4 {
			a := int(src.Pix[i+3])
			oneMinusA := 255 - a
			out.Pix[i] = uint8((int(src.Pix[i])*a + bgR*oneMinusA + 127) / 255)
			out.Pix[i+1] = uint8((int(src.Pix[i+1])*a + bgG*oneMinusA + 127) / 255)
			out.Pix[i+2] = uint8((int(src.Pix[i+2])*a + bgB*oneMinusA + 127) / 255)
			out.Pix[i+3] = 255 // opaque result over a fixed backdrop
		}
	})
	return out, nil
}
