package photosheet

import (
	"errors"
	"testing"
)

func TestPixelBufferValidate(t *testing.T) {
	tests := []struct {
		name       string
		p          PixelBuffer
		decode     bool
		invalidArg bool
	}{
		{"ok", NewPixelBuffer(3, 2), false, false},
		{"zero size", PixelBuffer{}, true, false},
		{"short", PixelBuffer{Width: 3, Height: 2, Pix: make([]uint8, 23)}, true, true},
		{"long", PixelBuffer{Width: 3, Height: 2, Pix: make([]uint8, 25)}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if got := errors.Is(err, ErrDecode); got != tt.decode {
				t.Errorf("errors.Is(%v, ErrDecode) = %v", err, got)
			}
			if got := errors.Is(err, ErrInvalidArgument); got != tt.invalidArg {
				t.Errorf("errors.Is(%v, ErrInvalidArgument) = %v", err, got)
			}
		})
	}
}

func TestWithAlphaSizeMismatch(t *testing.T) {
	if _, err := NewPixelBuffer(3, 2).WithAlpha(NewMask(2, 3)); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("error = %v, want ErrDimensionMismatch", err)
	}
}
