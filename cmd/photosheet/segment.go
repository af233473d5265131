package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/setanarut/photosheet"
	"github.com/setanarut/photosheet/utils"
)

// fileSegmenter serves a foreground that was computed ahead of time.
type fileSegmenter struct {
	path string
}

func (f fileSegmenter) Segment(ctx context.Context, img photosheet.PixelBuffer) (photosheet.PixelBuffer, error) {
	return loadBuffer(f.path, 0)
}

// commandSegmenter runs an external background remover such as
// "rembg i {in} {out}" on a temporary PNG.
type commandSegmenter struct {
	argv    []string
	timeout time.Duration
	lookup  func() (string, error)
}

func newCommandSegmenter(command string, timeout time.Duration) (*commandSegmenter, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty segmentation command")
	}
	return &commandSegmenter{
		argv:    argv,
		timeout: timeout,
		lookup:  sync.OnceValues(func() (string, error) { return exec.LookPath(argv[0]) }),
	}, nil
}

func (c *commandSegmenter) Segment(ctx context.Context, img photosheet.PixelBuffer) (photosheet.PixelBuffer, error) {
	bin, err := c.lookup()
	if err != nil {
		return photosheet.PixelBuffer{}, fmt.Errorf("segmentation command: %w", err)
	}
	dir, err := os.MkdirTemp("", "photosheet-")
	if err != nil {
		return photosheet.PixelBuffer{}, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	if err := utils.SaveImage(img.Image(), in); err != nil {
		return photosheet.PixelBuffer{}, err
	}
	args := make([]string, 0, len(c.argv)-1)
	for _, a := range c.argv[1:] {
		a = strings.ReplaceAll(a, "{in}", in)
		a = strings.ReplaceAll(a, "{out}", out)
		args = append(args, a)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return photosheet.PixelBuffer{}, fmt.Errorf("%s: %w", c.argv[0], err)
	}
	photosheet.Logger().Debug("segmented", "command", c.argv[0], "elapsed", time.Since(start))
	return loadBuffer(out, 0)
}

func loadBuffer(path string, orientation int) (photosheet.PixelBuffer, error) {
	img, err := utils.ReadImageAs(path, orientation)
	if err != nil {
		return photosheet.PixelBuffer{}, fmt.Errorf("%w: %v", photosheet.ErrDecode, err)
	}
	return photosheet.FromImage(img), nil
}

func saveBuffer(p photosheet.PixelBuffer, path string) error {
	if err := utils.SaveImage(p.Image(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
