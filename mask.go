package photosheet

import (
	"fmt"
	"time"
)

// SoftenRadius is the box blur radius applied after dilation when refining
// a mask. It does not scale with the edge size.
const SoftenRadius = 2

// Dilate expands the foreground of m: every output pixel is the maximum of
// the (2r+1)x(2r+1) neighborhood around it, clamped at the borders.
// It runs as a horizontal max pass followed by a vertical one.
func Dilate(m Mask, radius int) (Mask, error) {
	if err := checkFilter(m, radius); err != nil {
		return Mask{}, fmt.Errorf("photosheet: dilate: %w", err)
	}
	if radius == 0 {
		return m.Clone(), nil
	}
	start := time.Now()
	w, h := m.Width, m.Height
	tmp := make([]uint8, w*h)
	out := NewMask(w, h)

	parallelBands(h, w*(2*radius+1), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := m.Pix[y*w : (y+1)*w]
			dst := tmp[y*w : (y+1)*w]
			for x := range w {
				x0, x1 := max(0, x-radius), min(w-1, x+radius)
				var v uint8
				for _, s := range row[x0 : x1+1] {
					v = max(v, s)
				}
				dst[x] = v
			}
		}
	})
	parallelBands(w, h*(2*radius+1), func(x0, x1 int) {
		for x := x0; x < x1; x++ {
			for y := range h {
				y0, y1 := max(0, y-radius), min(h-1, y+radius)
				var v uint8
				for yi := y0; yi <= y1; yi++ {
					v = max(v, tmp[yi*w+x])
				}
				out.Pix[y*w+x] = v
			}
		}
	})

	Logger().Debug("dilate", "width", w, "height", h, "radius", radius, "elapsed", time.Since(start))
	return out, nil
}

// Blur softens m with a box filter of half-width radius. Each pass stores
// the rounded mean of the window; windows shrink at the borders instead of
// reading zeros, so edges keep their level.
func Blur(m Mask, radius int) (Mask, error) {
	if err := checkFilter(m, radius); err != nil {
		return Mask{}, fmt.Errorf("photosheet: blur: %w", err)
	}
	if radius == 0 {
		return m.Clone(), nil
	}
	start := time.Now()
	w, h := m.Width, m.Height
	tmp := make([]uint8, w*h)
	out := NewMask(w, h)

	parallelBands(h, w, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			boxMean(tmp[y*w:], m.Pix[y*w:], 1, w, radius)
		}
	})
	parallelBands(w, h, func(x0, x1 int) {
		for x := x0; x < x1; x++ {
			boxMean(out.Pix[x:], tmp[x:], w, h, radius)
		}
	})

	Logger().Debug("blur", "width", w, "height", h, "radius", radius, "elapsed", time.Since(start))
	return out, nil
}

// boxMean writes the clamped-window rounded mean of the n samples
// src[0], src[stride], ... into dst at the same positions, keeping a
// running window sum.
func boxMean(dst, src []uint8, stride, n, radius int) {
	sum := 0
	hi := min(n-1, radius)
	for i := 0; i <= hi; i++ {
		sum += int(src[i*stride])
	}
	for i := range n {
		lo := max(0, i-radius)
		count := min(n-1, i+radius) - lo + 1
		dst[i*stride] = uint8((2*sum + count) / (2 * count))
		if out := i - radius; out >= 0 {
			sum -= int(src[out*stride])
		}
		if in := i + radius + 1; in < n {
			sum += int(src[in*stride])
		}
	}
}

func checkFilter(m Mask, radius int) error {
	if radius < 0 {
		return fmt.Errorf("%w: negative radius %d", ErrInvalidArgument, radius)
	}
	return m.Validate()
}
