package photosheet

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func randomMask(w, h int, seed uint64) Mask {
	rng := rand.New(rand.NewPCG(seed, seed*7+1))
	m := NewMask(w, h)
	for i := range m.Pix {
		m.Pix[i] = uint8(rng.IntN(256))
	}
	return m
}

// blobMask is a binary mask with a filled rectangle.
func blobMask(w, h, x0, y0, x1, y1 int) Mask {
	m := NewMask(w, h)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Pix[y*w+x] = 255
		}
	}
	return m
}

// naiveDilate scans the full 2D neighborhood.
func naiveDilate(m Mask, r int) Mask {
	out := NewMask(m.Width, m.Height)
	for y := range m.Height {
		for x := range m.Width {
			var v uint8
			for yy := max(0, y-r); yy <= min(m.Height-1, y+r); yy++ {
				for xx := max(0, x-r); xx <= min(m.Width-1, x+r); xx++ {
					v = max(v, m.Pix[yy*m.Width+xx])
				}
			}
			out.Pix[y*m.Width+x] = v
		}
	}
	return out
}

// naiveBlur runs the two rounded mean passes without a running sum.
func naiveBlur(m Mask, r int) Mask {
	w, h := m.Width, m.Height
	round := func(sum, n int) uint8 { return uint8((2*sum + n) / (2 * n)) }
	tmp := make([]uint8, w*h)
	for y := range h {
		for x := range w {
			lo, hi := max(0, x-r), min(w-1, x+r)
			sum := 0
			for xx := lo; xx <= hi; xx++ {
				sum += int(m.Pix[y*w+xx])
			}
			tmp[y*w+x] = round(sum, hi-lo+1)
		}
	}
	out := NewMask(w, h)
	for y := range h {
		for x := range w {
			lo, hi := max(0, y-r), min(h-1, y+r)
			sum := 0
			for yy := lo; yy <= hi; yy++ {
				sum += int(tmp[yy*w+x])
			}
			out.Pix[y*w+x] = round(sum, hi-lo+1)
		}
	}
	return out
}

func mustDilate(t testing.TB, m Mask, r int) Mask {
	t.Helper()
	out, err := Dilate(m, r)
	if err != nil {
		t.Fatalf("Dilate(r=%d): %v", r, err)
	}
	return out
}

func mustBlur(t testing.TB, m Mask, r int) Mask {
	t.Helper()
	out, err := Blur(m, r)
	if err != nil {
		t.Fatalf("Blur(r=%d): %v", r, err)
	}
	return out
}

func TestDilateMatchesFullNeighborhood(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {7, 3}, {31, 17}, {200, 150}}
	for _, s := range sizes {
		m := randomMask(s.w, s.h, uint64(s.w*s.h))
		for _, r := range []int{1, 2, 5, 40} {
			got := mustDilate(t, m, r)
			want := naiveDilate(m, r)
			if !slices.Equal(got.Pix, want.Pix) {
				t.Errorf("%dx%d r=%d: separable dilation differs from 2D max", s.w, s.h, r)
			}
		}
	}
}

func TestDilateZeroRadiusIsIdentity(t *testing.T) {
	m := randomMask(23, 11, 3)
	got := mustDilate(t, m, 0)
	if !slices.Equal(got.Pix, m.Pix) {
		t.Fatal("radius 0 changed the mask")
	}
	got.Pix[0]++
	if got.Pix[0] == m.Pix[0] {
		t.Fatal("radius 0 result aliases the input")
	}
}

func TestDilateMonotonicInRadius(t *testing.T) {
	m := randomMask(40, 30, 9)
	prev := mustDilate(t, m, 0)
	for r := 1; r <= 6; r++ {
		cur := mustDilate(t, m, r)
		for i := range cur.Pix {
			if cur.Pix[i] < prev.Pix[i] {
				t.Fatalf("r=%d pixel %d: %d < %d at r=%d", r, i, cur.Pix[i], prev.Pix[i], r-1)
			}
		}
		prev = cur
	}
}

func TestDilateThenZeroRadius(t *testing.T) {
	m := randomMask(19, 19, 4)
	d := mustDilate(t, m, 3)
	again := mustDilate(t, d, 0)
	if !slices.Equal(d.Pix, again.Pix) {
		t.Fatal("dilate(dilate(m,3),0) != dilate(m,3)")
	}
}

func TestDilateGrowsBlob(t *testing.T) {
	m := blobMask(20, 20, 8, 8, 12, 12)
	got := mustDilate(t, m, 3)
	want := blobMask(20, 20, 5, 5, 15, 15)
	if !slices.Equal(got.Pix, want.Pix) {
		t.Fatal("square blob did not grow by exactly 3px on every side")
	}
}

func TestBlurMatchesReference(t *testing.T) {
	for _, r := range []int{1, 2, 4, 30} {
		m := randomMask(64, 48, uint64(r))
		got := mustBlur(t, m, r)
		want := naiveBlur(m, r)
		if !slices.Equal(got.Pix, want.Pix) {
			t.Errorf("r=%d: running-sum blur differs from direct sum", r)
		}
	}
}

func TestBlurZeroRadiusIsIdentity(t *testing.T) {
	m := randomMask(13, 29, 5)
	got := mustBlur(t, m, 0)
	if !slices.Equal(got.Pix, m.Pix) {
		t.Fatal("radius 0 changed the mask")
	}
}

func TestBlurStaysWithinNeighborhoodRange(t *testing.T) {
	m := randomMask(50, 40, 11)
	const r = 2
	got := mustBlur(t, m, r)
	// Two passes of radius r touch the (2r+1)^2 neighborhood.
	for y := range m.Height {
		for x := range m.Width {
			lo, hi := uint8(255), uint8(0)
			for yy := max(0, y-r); yy <= min(m.Height-1, y+r); yy++ {
				for xx := max(0, x-r); xx <= min(m.Width-1, x+r); xx++ {
					v := m.Pix[yy*m.Width+xx]
					lo, hi = min(lo, v), max(hi, v)
				}
			}
			v := got.Pix[y*m.Width+x]
			if v < lo || v > hi {
				t.Fatalf("(%d,%d) = %d outside neighborhood range [%d,%d]", x, y, v, lo, hi)
			}
		}
	}
}

func TestBlurEdgesAreNotDarkened(t *testing.T) {
	m := blobMask(10, 10, 0, 0, 10, 10)
	got := mustBlur(t, m, 3)
	for i, v := range got.Pix {
		if v != 255 {
			t.Fatalf("pixel %d = %d, edge windows must not read outside the image", i, v)
		}
	}
}

func TestUniformMaskIsFixedPoint(t *testing.T) {
	for _, v := range []uint8{0, 1, 128, 254, 255} {
		m := NewMask(17, 9)
		for i := range m.Pix {
			m.Pix[i] = v
		}
		for _, r := range []int{1, 2, 7, 50} {
			for name, got := range map[string]Mask{
				"dilate": mustDilate(t, m, r),
				"blur":   mustBlur(t, m, r),
			} {
				for i, p := range got.Pix {
					if p != v {
						t.Fatalf("%s v=%d r=%d: pixel %d = %d", name, v, r, i, p)
					}
				}
			}
		}
	}
}

func TestFilterErrors(t *testing.T) {
	good := NewMask(4, 4)
	tests := []struct {
		name   string
		m      Mask
		radius int
	}{
		{"negative radius", good, -1},
		{"short buffer", Mask{Width: 4, Height: 4, Pix: make([]uint8, 15)}, 1},
		{"long buffer", Mask{Width: 4, Height: 4, Pix: make([]uint8, 17)}, 0},
		{"zero size", Mask{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Dilate(tt.m, tt.radius); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Dilate error = %v, want ErrInvalidArgument", err)
			}
			if _, err := Blur(tt.m, tt.radius); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Blur error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	m := randomMask(30, 30, 21)
	orig := m.Clone()
	mustDilate(t, m, 4)
	mustBlur(t, m, 4)
	if !slices.Equal(m.Pix, orig.Pix) {
		t.Fatal("input mask was modified")
	}
}

func BenchmarkDilate(b *testing.B) {
	m := randomMask(1200, 1600, 1)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Dilate(m, 20); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBlur(b *testing.B) {
	m := randomMask(1200, 1600, 1)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Blur(m, SoftenRadius); err != nil {
			b.Fatal(err)
		}
	}
}
