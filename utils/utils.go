package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "image/gif"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// JPEGQuality is used when an output path ends in .jpg or .jpeg.
const JPEGQuality = 95

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod accepts the names printed by PaletteMethod.String.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(s) {
	case "", "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func extractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(8, k*4))
	if len(candidates) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: max(c.Weight, 1e-6)})
	}
	return selectDiverse(weighted, k)
}

func extractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}
	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / float64(a16),
				float64(g16) / float64(a16),
				float64(b16) / float64(a16),
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse seeds with the heaviest color and then greedily adds the
// candidate farthest (in Lab) from everything picked so far, favoring heavy
// candidates.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	maxW := 0.0
	for _, c := range cands {
		maxW = max(maxW, c.Weight)
	}
	if maxW <= 0 {
		maxW = 1
	}

	seed := 0
	for i, c := range cands {
		if c.Weight > cands[seed].Weight {
			seed = i
		}
	}
	picked := []int{seed}
	used := make([]bool, len(cands))
	used[seed] = true

	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, p := range picked {
				minD = min(minD, c.Col.DistanceLab(cands[p].Col))
			}
			score := minD * (0.55 + 0.45*math.Sqrt(c.Weight/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, 0, len(picked))
	for _, i := range picked {
		out = append(out, cands[i].Col)
	}
	return out
}

// ExtractPalette returns up to k representative colors of img, most
// prominent first. kmeans falls back to dominantcolor when it finds nothing.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	if method == PaletteMethodKMeans {
		if p := extractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
	}
	return extractDominantPalette(img, k)
}

// BorderBand gathers the visible pixels of the frame of the given thickness
// around img and packs them row by row into a near-square image. Cells past
// the last pixel stay transparent. The result is empty when the whole frame
// is transparent.
func BorderBand(img image.Image, thickness int) *image.NRGBA {
	b := img.Bounds()
	thickness = max(1, min(thickness, b.Dx()/2, b.Dy()/2))
	var pix []color.Color
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			inner := x >= b.Min.X+thickness && x < b.Max.X-thickness &&
				y >= b.Min.Y+thickness && y < b.Max.Y-thickness
			if inner {
				continue
			}
			if c := img.At(x, y); !transparent(c) {
				pix = append(pix, c)
			}
		}
	}
	if len(pix) == 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	side := int(math.Ceil(math.Sqrt(float64(len(pix)))))
	band := image.NewNRGBA(image.Rect(0, 0, side, (len(pix)+side-1)/side))
	for i, c := range pix {
		band.Set(i%side, i/side, c)
	}
	return band
}

func transparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}

// SampleBackground picks a solid backdrop color from the border of img.
func SampleBackground(img image.Image, method PaletteMethod) (color.NRGBA, error) {
	b := img.Bounds()
	if b.Empty() {
		return color.NRGBA{}, fmt.Errorf("sample background: empty image")
	}
	band := BorderBand(img, max(1, min(b.Dx(), b.Dy())/20))
	if band.Bounds().Empty() {
		return color.NRGBA{}, fmt.Errorf("sample background: no opaque pixels")
	}
	p := ExtractPalette(band, 1, method)
	if len(p) == 0 {
		return color.NRGBA{}, fmt.Errorf("sample background: no palette for %v", method)
	}
	r, g, bl := p[0].RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: 255}, nil
}

// Orient applies an EXIF orientation (1-8) to img. Values outside the
// range, and 1, return img unchanged.
func Orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// ExportName builds the download name of a sheet, e.g.
// "uk-passport_4r_300dpi_0314_0926.jpg".
func ExportName(specID, paperID string, t time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_300dpi_%s.%s", specID, paperID, t.Format("0102_1504"), strings.TrimPrefix(ext, "."))
}

// ReadImage decodes the image at path, turning it upright according to
// its EXIF orientation tag when it has one.
func ReadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ReadImageAs is ReadImage with the stored EXIF orientation replaced by
// orientation. Zero keeps the tag from the file.
func ReadImageAs(path string, orientation int) (image.Image, error) {
	if orientation == 0 {
		return ReadImage(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Orient(img, orientation), nil
}

// SaveImage writes img as JPEG when filename ends in .jpg or .jpeg and as
// PNG otherwise.
func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
