package photosheet

import (
	"context"
	"fmt"
	"image/color"
)

// Segmenter produces a transparent foreground image for a photo. It is the
// only expensive step and runs once per photo; edge refinement reuses its
// output.
type Segmenter interface {
	Segment(ctx context.Context, img PixelBuffer) (PixelBuffer, error)
}

// SegmenterFunc adapts a function to Segmenter.
type SegmenterFunc func(ctx context.Context, img PixelBuffer) (PixelBuffer, error)

func (f SegmenterFunc) Segment(ctx context.Context, img PixelBuffer) (PixelBuffer, error) {
	return f(ctx, img)
}

// Options controls a full photo to sheet run.
type Options struct {
	Spec       PhotoSpec
	Paper      PaperSize
	Crop       CropArea    // relative crop of the source photo
	EdgeSize   int         // mask dilation radius in pixels
	Background color.Color // nil selects the spec's background
	GapMm      float64
}

func DefaultOptions() Options {
	spec, _ := SpecByID("uk-passport")
	paper, _ := PaperByID("4r")
	return Options{
		Spec:     spec,
		Paper:    paper,
		Crop:     CropArea{Width: 1, Height: 1},
		EdgeSize: DefaultEdgeSize,
		GapMm:    DefaultGapMm,
	}
}

func (o Options) background() color.Color {
	if o.Background != nil {
		return o.Background
	}
	return o.Spec.BackgroundColor()
}

// Session keeps the segmentation of one cropped photo so that edge size and
// background can be changed cheaply.
type Session struct {
	opts    Options
	cropped PixelBuffer
	refiner *Refiner
}

// NewSession crops src to the spec and runs the segmenter once.
func NewSession(ctx context.Context, seg Segmenter, src PixelBuffer, opts Options) (*Session, error) {
	cropped, err := CropToSpec(src, opts.Crop, opts.Spec)
	if err != nil {
		return nil, err
	}
	fg, err := seg.Segment(ctx, cropped)
	if err != nil {
		return nil, fmt.Errorf("photosheet: segment: %w", err)
	}
	r, err := NewRefiner(cropped, fg)
	if err != nil {
		return nil, err
	}
	return &Session{opts: opts, cropped: cropped, refiner: r}, nil
}

func (s *Session) Options() Options {
	return s.opts
}

// Cropped returns the cropped source photo.
func (s *Session) Cropped() PixelBuffer {
	return s.cropped.Clone()
}

// Cutout returns the transparent subject refined with edgeSize.
func (s *Session) Cutout(edgeSize int) (PixelBuffer, error) {
	return s.refiner.Refine(edgeSize)
}

// Photo returns the refined subject on bg at the spec's pixel size.
// A nil bg selects the session background.
func (s *Session) Photo(edgeSize int, bg color.Color) (PixelBuffer, error) {
	cut, err := s.Cutout(edgeSize)
	if err != nil {
		return PixelBuffer{}, err
	}
	if bg == nil {
		bg = s.opts.background()
	}
	return ApplyBackground(cut, bg, s.opts.Spec.WidthPx, s.opts.Spec.HeightPx)
}

// Result is everything a run produces.
type Result struct {
	Cutout PixelBuffer
	Photo  PixelBuffer
	Layout LayoutResult
	Sheet  PixelBuffer
}

// Sheet lays out photo on the session paper.
func (s *Session) Sheet(photo PixelBuffer) (LayoutResult, PixelBuffer, error) {
	layout, err := PlanLayout(photo.Width, photo.Height, s.opts.Paper.WidthPx, s.opts.Paper.HeightPx, s.opts.GapMm)
	if err != nil {
		return LayoutResult{}, PixelBuffer{}, err
	}
	if !layout.Fits() {
		Logger().Warn("photo does not fit on paper", "spec", s.opts.Spec.ID, "paper", s.opts.Paper.ID)
	}
	sheet, err := RenderSheet(photo, layout)
	if err != nil {
		return LayoutResult{}, PixelBuffer{}, err
	}
	return layout, sheet, nil
}

// Run takes src through crop, segmentation, refinement, background and layout.
func Run(ctx context.Context, seg Segmenter, src PixelBuffer, opts Options) (*Result, error) {
	s, err := NewSession(ctx, seg, src, opts)
	if err != nil {
		return nil, err
	}
	cut, err := s.Cutout(opts.EdgeSize)
	if err != nil {
		return nil, err
	}
	photo, err := ApplyBackground(cut, opts.background(), opts.Spec.WidthPx, opts.Spec.HeightPx)
	if err != nil {
		return nil, err
	}
	layout, sheet, err := s.Sheet(photo)
	if err != nil {
		return nil, err
	}
	Logger().Info("sheet ready", "spec", opts.Spec.ID, "paper", opts.Paper.ID, "photos", layout.Total)
	return &Result{Cutout: cut, Photo: photo, Layout: layout, Sheet: sheet}, nil
}
