package photosheet

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

// segmentOutput fakes a segmentation result: tinted colors (halo) with the
// mask as alpha.
func segmentOutput(m Mask) PixelBuffer {
	p := NewPixelBuffer(m.Width, m.Height)
	for i, a := range m.Pix {
		p.Pix[i*4], p.Pix[i*4+1], p.Pix[i*4+2], p.Pix[i*4+3] = 0, 255, 0, a
	}
	return p
}

func TestRefineKeepsOriginalColors(t *testing.T) {
	original := randomImage(40, 40, 255, 5)
	mask := blobMask(40, 40, 10, 10, 30, 30)
	out, err := RefineMask(original, segmentOutput(mask), 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if [3]uint8(out.Pix[i:i+3]) != [3]uint8(original.Pix[i:i+3]) {
			t.Fatalf("pixel %d color changed", i/4)
		}
	}
}

func TestRefineAlphaIsDilatedThenSoftened(t *testing.T) {
	original := randomImage(40, 40, 255, 6)
	mask := blobMask(40, 40, 10, 10, 30, 30)
	out, err := RefineMask(original, segmentOutput(mask), 3)
	if err != nil {
		t.Fatal(err)
	}
	want := mustBlur(t, mustDilate(t, mask, 3), SoftenRadius)
	if !slices.Equal(out.Alpha().Pix, want.Pix) {
		t.Fatal("alpha is not blur(dilate(mask))")
	}
	// The subject grew: a pixel 2px outside the raw blob is now mostly opaque.
	if a := out.Alpha().Pix[20*40+8]; a < 128 {
		t.Fatalf("alpha just outside the raw mask = %d", a)
	}
	if a := out.Alpha().Pix[0]; a != 0 {
		t.Fatalf("far background alpha = %d", a)
	}
}

func TestRefinerReusesRawMask(t *testing.T) {
	original := randomImage(32, 24, 255, 8)
	mask := randomMask(32, 24, 8)
	r, err := NewRefiner(original, segmentOutput(mask))
	if err != nil {
		t.Fatal(err)
	}
	var prev Mask
	for _, edge := range []int{0, 1, 3, 8} {
		out, err := r.Refine(edge)
		if err != nil {
			t.Fatal(err)
		}
		got := out.Alpha()
		if edge > 0 {
			for i := range got.Pix {
				if got.Pix[i] < prev.Pix[i] {
					t.Fatalf("edge %d shrank pixel %d", edge, i)
				}
			}
		}
		prev = got
	}
	if !slices.Equal(r.RawMask().Pix, mask.Pix) {
		t.Fatal("raw mask changed between refinements")
	}
}

func TestRefinerConcurrentUse(t *testing.T) {
	original := randomImage(64, 64, 255, 9)
	r, err := NewRefiner(original, segmentOutput(blobMask(64, 64, 16, 16, 48, 48)))
	if err != nil {
		t.Fatal(err)
	}
	want, err := r.Refine(4)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			got, err := r.Refine(4)
			if err != nil {
				t.Error(err)
				return
			}
			if !slices.Equal(got.Pix, want.Pix) {
				t.Error("concurrent refinement differs")
			}
		})
	}
	wg.Wait()
}

func TestRefineResamplesOriginalToMaskSize(t *testing.T) {
	original := solidPhoto(80, 60, 10, 20, 30)
	fg := segmentOutput(blobMask(40, 30, 5, 5, 35, 25))
	out, err := RefineMask(original, fg, 2)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 40 || out.Height != 30 {
		t.Fatalf("refined size %dx%d, want the mask size 40x30", out.Width, out.Height)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if [3]uint8(out.Pix[i:i+3]) != [3]uint8{10, 20, 30} {
			t.Fatalf("pixel %d = %v", i/4, out.Pix[i:i+3])
		}
	}
}

func TestRefineErrors(t *testing.T) {
	original := randomImage(8, 8, 255, 10)
	fg := segmentOutput(NewMask(8, 8))

	if _, err := RefineMask(original, fg, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative edge: %v", err)
	}
	if _, err := RefineMask(PixelBuffer{Width: 8, Height: 8}, fg, 1); !errors.Is(err, ErrDecode) {
		t.Errorf("empty original: %v", err)
	}
	if _, err := RefineMask(original, PixelBuffer{Width: 8, Height: 8, Pix: make([]uint8, 3)}, 1); !errors.Is(err, ErrDecode) {
		t.Errorf("short foreground: %v", err)
	}
	if _, err := NewRefinerFromMask(original, Mask{Width: 3, Height: 3, Pix: make([]uint8, 8)}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad mask: %v", err)
	}
	if _, err := original.WithAlpha(NewMask(4, 4)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("WithAlpha size mismatch: %v", err)
	}
}

func TestMaskCoverage(t *testing.T) {
	c := MaskCoverage(blobMask(10, 10, 0, 0, 5, 10))
	if c.Foreground != 0.5 || c.Mean != 0.5 {
		t.Fatalf("coverage = %+v", c)
	}
	if c := MaskCoverage(NewMask(4, 4)); c.Foreground != 0 || c.StdDev != 0 {
		t.Fatalf("empty coverage = %+v", c)
	}
}

func TestMaskFromImage(t *testing.T) {
	gray := blobMask(6, 4, 1, 1, 3, 3).Gray()
	if got := MaskFromImage(gray); !slices.Equal(got.Pix, gray.Pix) {
		t.Fatalf("gray mask = %v", got.Pix)
	}
	fg := segmentOutput(blobMask(6, 4, 2, 0, 6, 4))
	if got := MaskFromImage(fg.Image()); !slices.Equal(got.Pix, fg.Alpha().Pix) {
		t.Fatal("transparent image did not yield its alpha")
	}
}
