package photosheet

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Cut guide appearance: a light gray 1px line, 6px dashes with 4px gaps.
var GuideColor = color.NRGBA{R: 0xBB, G: 0xBB, B: 0xBB, A: 0xFF}

const (
	guideDash = 6
	guideGap  = 4
)

// RenderSheet tiles photo over a white sheet as described by layout and
// outlines every copy with a dashed cut guide. Copies are placed at their
// native size, row by row from the top-left.
func RenderSheet(photo PixelBuffer, layout LayoutResult) (PixelBuffer, error) {
	if err := photo.Validate(); err != nil {
		return PixelBuffer{}, fmt.Errorf("photosheet: sheet: photo: %w", err)
	}
	if layout.PaperWidthPx <= 0 || layout.PaperHeightPx <= 0 {
		return PixelBuffer{}, fmt.Errorf("photosheet: sheet: %w: paper %dx%d",
			ErrInvalidArgument, layout.PaperWidthPx, layout.PaperHeightPx)
	}
	// Transparent photos are flattened onto the white paper.
	flat, err := ApplyBackground(photo, color.White, photo.Width, photo.Height)
	if err != nil {
		return PixelBuffer{}, fmt.Errorf("photosheet: sheet: %w", err)
	}
	tile := flat.Image()
	canvas := imaging.New(layout.PaperWidthPx, layout.PaperHeightPx, color.White)
	for row := range layout.Rows {
		for col := range layout.Cols {
			x, y := layout.Cell(row, col, photo.Width, photo.Height)
			canvas = imaging.Paste(canvas, tile, image.Pt(x, y))
		}
	}

	sheet := FromImage(canvas)
	for row := range layout.Rows {
		for col := range layout.Cols {
			x, y := layout.Cell(row, col, photo.Width, photo.Height)
			strokeDashedRect(sheet, x-1, y-1, photo.Width+2, photo.Height+2, GuideColor)
		}
	}
	return sheet, nil
}

// strokeDashedRect outlines the w x h pixel rectangle at (x, y) with a one
// pixel dashed line. The dash pattern runs clockwise from the top-left
// corner, continuing around the corners like a canvas stroke.
func strokeDashedRect(dst PixelBuffer, x, y, w, h int, c color.NRGBA) {
	if w < 2 || h < 2 {
		return
	}
	period := guideDash + guideGap
	pos := 0
	plot := func(px, py int) {
		if pos%period < guideDash {
			setPixel(dst, px, py, c)
		}
		pos++
	}
	for i := range w - 1 {
		plot(x+i, y)
	}
	for i := range h - 1 {
		plot(x+w-1, y+i)
	}
	for i := range w - 1 {
		plot(x+w-1-i, y+h-1)
	}
	for i := range h - 1 {
		plot(x, y+h-1-i)
	}
}

func setPixel(dst PixelBuffer, x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= dst.Width || y >= dst.Height {
		return
	}
	i := dst.offset(x, y)
	dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
}
