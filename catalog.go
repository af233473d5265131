package photosheet

import (
	"fmt"
	"image/color"
	"slices"
)

// PhotoSpec describes an identity or visa photo format.
type PhotoSpec struct {
	ID              string
	Name            string
	WidthMm         float64
	HeightMm        float64
	WidthPx         int
	HeightPx        int
	HeadHeightMinMm float64 // crown to chin
	HeadHeightMaxMm float64
	Background      string // required or default background, "#RRGGBB"
}

// BackgroundColor parses the spec's default background.
func (s PhotoSpec) BackgroundColor() color.NRGBA {
	c, err := ParseColor(s.Background)
	if err != nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return c
}

// HeadHeightPx returns the accepted head height range in pixels.
func (s PhotoSpec) HeadHeightPx() (lo, hi int) {
	return MMToPx(s.HeadHeightMinMm), MMToPx(s.HeadHeightMaxMm)
}

// PaperSize is a print paper format.
type PaperSize struct {
	ID       string
	Name     string
	WidthMm  float64
	HeightMm float64
	WidthPx  int
	HeightPx int
}

func newSpec(id, name string, wMm, hMm, headMin, headMax float64, bg string) PhotoSpec {
	return PhotoSpec{
		ID:              id,
		Name:            name,
		WidthMm:         wMm,
		HeightMm:        hMm,
		WidthPx:         MMToPx(wMm),
		HeightPx:        MMToPx(hMm),
		HeadHeightMinMm: headMin,
		HeadHeightMaxMm: headMax,
		Background:      bg,
	}
}

var photoSpecs = []PhotoSpec{
	newSpec("uk-passport", "UK passport", 35, 45, 29, 34, "#D5D5D5"),
	newSpec("us-visa", "US visa", 51, 51, 25, 35, "#FFFFFF"),
	newSpec("hk-passport", "Hong Kong passport", 40, 50, 32, 36, "#FFFFFF"),
	newSpec("china-visa", "China visa", 33, 48, 28, 33, "#FFFFFF"),
	newSpec("schengen-visa", "Schengen visa", 35, 45, 32, 36, "#FFFFFF"),
	newSpec("japan-visa", "Japan visa", 45, 45, 30, 34, "#FFFFFF"),
}

// Paper pixel sizes are the standard print sizes, not the rounded
// millimeter conversion (4R would come out 1205x1795).
var paperSizes = []PaperSize{
	{ID: "4r", Name: "4R (4x6 in)", WidthMm: 102, HeightMm: 152, WidthPx: 1200, HeightPx: 1800},
	{ID: "3r", Name: "3R (3.5x5 in)", WidthMm: 89, HeightMm: 127, WidthPx: 1050, HeightPx: 1500},
}

// PhotoSpecs returns the built-in photo formats.
func PhotoSpecs() []PhotoSpec {
	return slices.Clone(photoSpecs)
}

// PaperSizes returns the built-in paper formats.
func PaperSizes() []PaperSize {
	return slices.Clone(paperSizes)
}

func SpecByID(id string) (PhotoSpec, error) {
	i := slices.IndexFunc(photoSpecs, func(s PhotoSpec) bool { return s.ID == id })
	if i < 0 {
		return PhotoSpec{}, fmt.Errorf("photosheet: %w: unknown photo spec %q", ErrInvalidArgument, id)
	}
	return photoSpecs[i], nil
}

func PaperByID(id string) (PaperSize, error) {
	i := slices.IndexFunc(paperSizes, func(p PaperSize) bool { return p.ID == id })
	if i < 0 {
		return PaperSize{}, fmt.Errorf("photosheet: %w: unknown paper size %q", ErrInvalidArgument, id)
	}
	return paperSizes[i], nil
}
