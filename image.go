package photosheet

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// PixelBuffer is a row-major, non-premultiplied RGBA image, 4 bytes per pixel.
// Every stage returns a freshly allocated buffer and leaves its inputs alone.
type PixelBuffer struct {
	Width, Height int
	Pix           []uint8 // len = Width*Height*4
}

// Mask is a single-channel opacity map, 0 = background, 255 = foreground.
type Mask struct {
	Width, Height int
	Pix           []uint8 // len = Width*Height
}

func NewPixelBuffer(w, h int) PixelBuffer {
	return PixelBuffer{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
}

func NewMask(w, h int) Mask {
	return Mask{Width: w, Height: h, Pix: make([]uint8, w*h)}
}

// Validate reports ErrDecode when the buffer cannot be read as pixel data.
// A length that disagrees with the declared size is also ErrInvalidArgument.
func (p PixelBuffer) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: %dx%d pixel buffer", ErrDecode, p.Width, p.Height)
	}
	if len(p.Pix) != p.Width*p.Height*4 {
		return fmt.Errorf("%w: %w: pixel buffer holds %d bytes, %dx%d needs %d",
			ErrDecode, ErrInvalidArgument, len(p.Pix), p.Width, p.Height, p.Width*p.Height*4)
	}
	return nil
}

// Validate reports ErrInvalidArgument when the mask length disagrees with its size.
func (m Mask) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: %dx%d mask", ErrInvalidArgument, m.Width, m.Height)
	}
	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("%w: mask holds %d bytes, %dx%d needs %d",
			ErrInvalidArgument, len(m.Pix), m.Width, m.Height, m.Width*m.Height)
	}
	return nil
}

func (p PixelBuffer) Clone() PixelBuffer {
	out := PixelBuffer{Width: p.Width, Height: p.Height, Pix: make([]uint8, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

func (m Mask) Clone() Mask {
	out := Mask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Alpha extracts the alpha channel as a mask.
func (p PixelBuffer) Alpha() Mask {
	m := NewMask(p.Width, p.Height)
	for i := range m.Pix {
		m.Pix[i] = p.Pix[i*4+3]
	}
	return m
}

// WithAlpha returns a copy of p whose alpha channel is replaced by m.
// The color samples are kept as they are.
func (p PixelBuffer) WithAlpha(m Mask) (PixelBuffer, error) {
	if p.Width != m.Width || p.Height != m.Height {
		return PixelBuffer{}, fmt.Errorf("%w: image %dx%d, mask %dx%d",
			ErrDimensionMismatch, p.Width, p.Height, m.Width, m.Height)
	}
	out := p.Clone()
	for i, a := range m.Pix {
		out.Pix[i*4+3] = a
	}
	return out, nil
}

// Image wraps the buffer as an *image.NRGBA sharing the same pixels.
func (p PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Pix,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// Gray wraps the mask as an *image.Gray sharing the same pixels.
func (m Mask) Gray() *image.Gray {
	return &image.Gray{
		Pix:    m.Pix,
		Stride: m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// FromImage copies any image into a new non-premultiplied buffer.
func FromImage(img image.Image) PixelBuffer {
	b := img.Bounds()
	out := NewPixelBuffer(b.Dx(), b.Dy())
	if src, ok := img.(*image.NRGBA); ok {
		for y := range out.Height {
			row := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Width*4:(y+1)*out.Width*4], src.Pix[row:row+out.Width*4])
		}
		return out
	}
	draw.Draw(out.Image(), out.Image().Bounds(), img, b.Min, draw.Src)
	return out
}

// MaskFromImage reads the luminance of img as a mask, or its alpha when
// the image carries transparency.
func MaskFromImage(img image.Image) Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	if g, ok := img.(*image.Gray); ok {
		for y := range m.Height {
			row := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(m.Pix[y*m.Width:(y+1)*m.Width], g.Pix[row:row+m.Width])
		}
		return m
	}
	opaque := true
	if o, ok := img.(interface{ Opaque() bool }); ok {
		opaque = o.Opaque()
	}
	for y := range m.Height {
		for x := range m.Width {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			if opaque {
				m.Pix[y*m.Width+x] = color.GrayModel.Convert(c).(color.Gray).Y
			} else {
				_, _, _, a := c.RGBA()
				m.Pix[y*m.Width+x] = uint8(a >> 8)
			}
		}
	}
	return m
}

func (p PixelBuffer) offset(x, y int) int {
	return (y*p.Width + x) * 4
}
