package photosheet

import (
	"gonum.org/v1/gonum/stat"
)

// foregroundLevel is the opacity at which a mask pixel counts as subject.
const foregroundLevel = 128

// Coverage summarizes a mask.
type Coverage struct {
	Mean       float64 // mean opacity in [0,1]
	StdDev     float64
	Foreground float64 // fraction of pixels at or above half opacity
}

// MaskCoverage reports how much of m is foreground. A segmentation that
// found no subject shows up as Foreground close to zero.
func MaskCoverage(m Mask) Coverage {
	if len(m.Pix) == 0 {
		return Coverage{}
	}
	vals := make([]float64, len(m.Pix))
	fg := 0
	for i, v := range m.Pix {
		vals[i] = float64(v) / 255
		if v >= foregroundLevel {
			fg++
		}
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		std = 0
	}
	return Coverage{
		Mean:       mean,
		StdDev:     std,
		Foreground: float64(fg) / float64(len(m.Pix)),
	}
}
