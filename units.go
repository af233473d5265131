package photosheet

import "math"

// DPI is the print resolution behind every millimeter to pixel conversion.
const DPI = 300

const mmPerInch = 25.4

// MMToPx converts millimeters to pixels at 300 DPI, rounding half away from zero.
// Catalog sizes and the layout gap both go through here so they never drift
// apart by a pixel.
func MMToPx(mm float64) int {
	return int(math.Round(mm / mmPerInch * DPI))
}

// PxToMM is the inverse of MMToPx, without rounding.
func PxToMM(px int) float64 {
	return float64(px) / DPI * mmPerInch
}
