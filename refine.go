package photosheet

import (
	"fmt"

	xdraw "golang.org/x/image/draw"
)

// DefaultEdgeSize is the dilation radius used when the caller has no preference.
const DefaultEdgeSize = 3

// emptyForeground is the foreground fraction below which a raw mask is
// reported as probably missing the subject.
const emptyForeground = 0.01

// Refiner holds the raw segmentation mask and the original image resampled
// to the mask size, so the edge size can be changed without touching the
// segmentation output again. A Refiner is immutable and safe for
// concurrent use.
type Refiner struct {
	raw  Mask
	base PixelBuffer
}

// NewRefiner extracts the raw mask from the alpha channel of the
// segmentation output fg and prepares original for compositing at fg's size.
func NewRefiner(original, fg PixelBuffer) (*Refiner, error) {
	if err := fg.Validate(); err != nil {
		return nil, fmt.Errorf("photosheet: refine: foreground: %w", err)
	}
	return NewRefinerFromMask(original, fg.Alpha())
}

// NewRefinerFromMask is NewRefiner for providers that hand out the mask
// directly instead of a transparent image.
func NewRefinerFromMask(original PixelBuffer, raw Mask) (*Refiner, error) {
	if err := original.Validate(); err != nil {
		return nil, fmt.Errorf("photosheet: refine: original: %w", err)
	}
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("photosheet: refine: mask: %w", err)
	}
	cov := MaskCoverage(raw)
	if cov.Foreground < emptyForeground {
		Logger().Warn("segmentation mask is almost empty", "foreground", cov.Foreground)
	}
	return &Refiner{
		raw:  raw.Clone(),
		base: resample(original, raw.Width, raw.Height, xdraw.BiLinear),
	}, nil
}

// RawMask returns a copy of the cached segmentation mask.
func (r *Refiner) RawMask() Mask {
	return r.raw.Clone()
}

// Mask returns the refined mask for edgeSize: the raw mask dilated by
// edgeSize, then softened with SoftenRadius.
func (r *Refiner) Mask(edgeSize int) (Mask, error) {
	if edgeSize < 0 {
		return Mask{}, fmt.Errorf("photosheet: refine: %w: negative edge size %d", ErrInvalidArgument, edgeSize)
	}
	dilated, err := Dilate(r.raw, edgeSize)
	if err != nil {
		return Mask{}, fmt.Errorf("photosheet: refine: %w", err)
	}
	soft, err := Blur(dilated, SoftenRadius)
	if err != nil {
		return Mask{}, fmt.Errorf("photosheet: refine: %w", err)
	}
	return soft, nil
}

// Refine returns the original colors with the refined mask as alpha.
// The segmentation output's own colors are never used, they tend to carry
// halos from the model.
func (r *Refiner) Refine(edgeSize int) (PixelBuffer, error) {
	m, err := r.Mask(edgeSize)
	if err != nil {
		return PixelBuffer{}, err
	}
	out, err := r.base.WithAlpha(m)
	if err != nil {
		return PixelBuffer{}, fmt.Errorf("photosheet: refine: %w", err)
	}
	Logger().Debug("refined mask", "edge", edgeSize, "width", m.Width, "height", m.Height)
	return out, nil
}

// RefineMask is the one-shot form of NewRefiner followed by Refine.
func RefineMask(original, fg PixelBuffer, edgeSize int) (PixelBuffer, error) {
	if edgeSize < 0 {
		return PixelBuffer{}, fmt.Errorf("photosheet: refine: %w: negative edge size %d", ErrInvalidArgument, edgeSize)
	}
	r, err := NewRefiner(original, fg)
	if err != nil {
		return PixelBuffer{}, err
	}
	return r.Refine(edgeSize)
}
