package photosheet

import "fmt"

// DefaultGapMm is the spacing left between neighboring photos on a sheet.
const DefaultGapMm = 2

// LayoutResult places a grid of identical photos on a sheet of paper.
// Paper sizes are after the orientation choice.
type LayoutResult struct {
	Cols, Rows       int
	Total            int
	OffsetX, OffsetY int
	GapPx            int
	PaperWidthPx     int
	PaperHeightPx    int
	Rotated          bool // paper turned 90 degrees from its catalog orientation
}

// Fits reports whether at least one photo fits on the sheet.
func (l LayoutResult) Fits() bool {
	return l.Total > 0
}

type packing struct {
	cols, rows, total int
}

func pack(paperW, paperH, photoW, photoH, gap int) packing {
	cols := (paperW + gap) / (photoW + gap)
	rows := (paperH + gap) / (photoH + gap)
	return packing{cols: cols, rows: rows, total: cols * rows}
}

// PlanLayout picks the paper orientation that holds the most photos of
// photoW x photoH pixels with gapMm between them, and centers the grid.
// The photo is never rotated, only the paper. Ties keep the paper as given.
// A photo that does not fit yields Total == 0 rather than an error.
func PlanLayout(photoW, photoH, paperW, paperH int, gapMm float64) (LayoutResult, error) {
	if photoW <= 0 || photoH <= 0 || paperW <= 0 || paperH <= 0 {
		return LayoutResult{}, fmt.Errorf("photosheet: layout: %w: photo %dx%d, paper %dx%d",
			ErrInvalidArgument, photoW, photoH, paperW, paperH)
	}
	if gapMm < 0 {
		return LayoutResult{}, fmt.Errorf("photosheet: layout: %w: negative gap %gmm", ErrInvalidArgument, gapMm)
	}
	gap := MMToPx(gapMm)

	native := pack(paperW, paperH, photoW, photoH, gap)
	turned := pack(paperH, paperW, photoW, photoH, gap)

	res := LayoutResult{GapPx: gap, PaperWidthPx: paperW, PaperHeightPx: paperH}
	best := native
	if turned.total > native.total {
		best = turned
		res.Rotated = true
		res.PaperWidthPx, res.PaperHeightPx = paperH, paperW
	}
	res.Cols, res.Rows, res.Total = best.cols, best.rows, best.total

	// An empty axis gives a footprint of -gap, which still centers.
	gridW := best.cols*photoW + (best.cols-1)*gap
	gridH := best.rows*photoH + (best.rows-1)*gap
	res.OffsetX = (res.PaperWidthPx - gridW) / 2
	res.OffsetY = (res.PaperHeightPx - gridH) / 2

	Logger().Debug("layout",
		"photo", fmt.Sprintf("%dx%d", photoW, photoH),
		"paper", fmt.Sprintf("%dx%d", res.PaperWidthPx, res.PaperHeightPx),
		"cols", res.Cols, "rows", res.Rows, "rotated", res.Rotated)
	return res, nil
}

// Plan lays out spec on paper with the default gap.
func Plan(spec PhotoSpec, paper PaperSize) (LayoutResult, error) {
	return PlanLayout(spec.WidthPx, spec.HeightPx, paper.WidthPx, paper.HeightPx, DefaultGapMm)
}

// Cell returns the top-left corner of the photo at row, col.
func (l LayoutResult) Cell(row, col, photoW, photoH int) (x, y int) {
	return l.OffsetX + col*(photoW+l.GapPx), l.OffsetY + row*(photoH+l.GapPx)
}
