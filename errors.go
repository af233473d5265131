package photosheet

import "errors"

var (
	// ErrInvalidArgument reports a contract violation: negative radius,
	// non-positive dimensions or a buffer whose length disagrees with its
	// declared size.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDecode reports an input that cannot be interpreted as pixel data.
	ErrDecode = errors.New("cannot decode image")
	// ErrDimensionMismatch reports a mask and image that must agree on size but do not.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
