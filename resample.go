package photosheet

import (
	xdraw "golang.org/x/image/draw"
)

// resample scales p to w x h. Equal sizes return a plain copy so that
// unscaled pixels come through bit-exact.
func resample(p PixelBuffer, w, h int, interp xdraw.Interpolator) PixelBuffer {
	if p.Width == w && p.Height == h {
		return p.Clone()
	}
	out := NewPixelBuffer(w, h)
	dst := out.Image()
	src := p.Image()
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return out
}
