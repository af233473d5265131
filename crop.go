package photosheet

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// CropArea is a crop rectangle relative to the image size, every field in [0,1].
type CropArea struct {
	Left, Top, Width, Height float64
}

// Rect converts the relative area to pixels of a w x h image.
func (a CropArea) Rect(w, h int) image.Rectangle {
	x0 := int(math.Round(a.Left * float64(w)))
	y0 := int(math.Round(a.Top * float64(h)))
	x1 := int(math.Round((a.Left + a.Width) * float64(w)))
	y1 := int(math.Round((a.Top + a.Height) * float64(h)))
	return image.Rect(x0, y0, x1, y1)
}

// CropAndResize cuts area out of src and scales it to w x h.
func CropAndResize(src PixelBuffer, area image.Rectangle, w, h int) (PixelBuffer, error) {
	if err := src.Validate(); err != nil {
		return PixelBuffer{}, fmt.Errorf("photosheet: crop: %w", err)
	}
	if w <= 0 || h <= 0 {
		return PixelBuffer{}, fmt.Errorf("photosheet: crop: %w: target %dx%d", ErrInvalidArgument, w, h)
	}
	bounds := image.Rect(0, 0, src.Width, src.Height)
	if area.Empty() || !area.In(bounds) {
		return PixelBuffer{}, fmt.Errorf("photosheet: crop: %w: area %v outside %v", ErrInvalidArgument, area, bounds)
	}
	out := NewPixelBuffer(w, h)
	dst := out.Image()
	if area.Dx() == w && area.Dy() == h {
		xdraw.Copy(dst, image.Point{}, src.Image(), area, xdraw.Src, nil)
		return out, nil
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src.Image(), area, xdraw.Src, nil)
	return out, nil
}

// CropToSpec crops src to the relative area and scales it to the spec's pixel size.
func CropToSpec(src PixelBuffer, area CropArea, spec PhotoSpec) (PixelBuffer, error) {
	return CropAndResize(src, area.Rect(src.Width, src.Height), spec.WidthPx, spec.HeightPx)
}
