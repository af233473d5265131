package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/setanarut/photosheet"
	"github.com/setanarut/photosheet/utils"
	"github.com/spf13/cobra"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Grow and soften a segmentation mask, keeping the original colors",
	Args:  cobra.NoArgs,
	RunE:  runRefine,
}

var backgroundCmd = &cobra.Command{
	Use:   "background",
	Short: "Flatten a transparent cutout onto a solid color",
	Args:  cobra.NoArgs,
	RunE:  runBackground,
}

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Tile a finished photo onto a paper with cut guides",
	Args:  cobra.NoArgs,
	RunE:  runSheet,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crop, cut out, recolor and lay out a portrait in one go",
	Args:  cobra.NoArgs,
	RunE:  runAll,
}

var sampleCmd = &cobra.Command{
	Use:   "sample [file]",
	Short: "Suggest background colors from the border of a photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runSample,
}

func init() {
	refineCmd.Flags().StringP("input", "i", "", "Original photo")
	refineCmd.Flags().String("foreground", "", "Transparent segmentation output")
	refineCmd.Flags().String("mask", "", "Grayscale mask, instead of --foreground")
	refineCmd.Flags().StringP("output", "o", "", "Output PNG")
	refineCmd.Flags().Int("edge", photosheet.DefaultEdgeSize, "Mask dilation radius in pixels")
	refineCmd.Flags().Int("orientation", 0, "Override the EXIF orientation of the original (1-8), 0 reads it from the file")
	refineCmd.MarkFlagRequired("input")
	refineCmd.MarkFlagsOneRequired("foreground", "mask")
	refineCmd.MarkFlagsMutuallyExclusive("foreground", "mask")
	refineCmd.MarkFlagRequired("output")

	backgroundCmd.Flags().StringP("input", "i", "", "Transparent cutout")
	backgroundCmd.Flags().StringP("output", "o", "", "Output image")
	backgroundCmd.Flags().String("spec", "uk-passport", "Photo format ID, sets the output size")
	backgroundCmd.Flags().String("bg", "spec", `Background: "#RRGGBB", "spec" or "sample"`)
	backgroundCmd.Flags().String("sample-from", "", "Original photo to sample the background from, required by --bg sample")
	backgroundCmd.Flags().String("method", "dominantcolor", "Sampling method (dominantcolor, kmeans)")
	backgroundCmd.MarkFlagRequired("input")
	backgroundCmd.MarkFlagRequired("output")

	sheetCmd.Flags().StringP("input", "i", "", "Finished photo")
	sheetCmd.Flags().StringP("output", "o", "", "Output image (.png or .jpg)")
	sheetCmd.Flags().String("paper", "4r", "Paper size ID")
	sheetCmd.Flags().Float64("gap", photosheet.DefaultGapMm, "Gap between photos in mm")
	sheetCmd.MarkFlagRequired("input")
	sheetCmd.MarkFlagRequired("output")

	runCmd.Flags().StringP("input", "i", "", "Portrait photo")
	runCmd.Flags().StringP("output", "o", ".", "Output directory")
	runCmd.Flags().String("foreground", "", "Precomputed transparent segmentation of the cropped photo")
	runCmd.Flags().String("segment-cmd", "rembg i {in} {out}", "Background removal command, {in}/{out} are PNG paths")
	runCmd.Flags().Duration("segment-timeout", 2*time.Minute, "Time limit for the background removal command")
	runCmd.Flags().String("spec", "uk-passport", "Photo format ID")
	runCmd.Flags().String("paper", "4r", "Paper size ID")
	runCmd.Flags().String("crop", "0,0,1,1", "Relative crop left,top,width,height")
	runCmd.Flags().Int("edge", photosheet.DefaultEdgeSize, "Mask dilation radius in pixels")
	runCmd.Flags().String("bg", "spec", `Background: "#RRGGBB", "spec" or "sample"`)
	runCmd.Flags().String("method", "dominantcolor", "Sampling method for --bg sample")
	runCmd.Flags().Float64("gap", photosheet.DefaultGapMm, "Gap between photos in mm")
	runCmd.Flags().Int("orientation", 0, "Override the EXIF orientation of the input (1-8), 0 reads it from the file")
	runCmd.Flags().String("format", "jpg", "Sheet format (jpg, png)")
	runCmd.MarkFlagRequired("input")

	sampleCmd.Flags().Int("k", 5, "Number of colors")
	sampleCmd.Flags().String("method", "dominantcolor", "Sampling method (dominantcolor, kmeans)")

	rootCmd.AddCommand(refineCmd, backgroundCmd, sheetCmd, runCmd, sampleCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	fgPath, _ := cmd.Flags().GetString("foreground")
	maskPath, _ := cmd.Flags().GetString("mask")
	output, _ := cmd.Flags().GetString("output")
	edge, _ := cmd.Flags().GetInt("edge")
	orientation, _ := cmd.Flags().GetInt("orientation")

	original, err := loadBuffer(input, orientation)
	if err != nil {
		return err
	}
	var refiner *photosheet.Refiner
	if maskPath != "" {
		img, err := utils.ReadImage(maskPath)
		if err != nil {
			return fmt.Errorf("%w: %v", photosheet.ErrDecode, err)
		}
		refiner, err = photosheet.NewRefinerFromMask(original, photosheet.MaskFromImage(img))
		if err != nil {
			return err
		}
	} else {
		fg, err := loadBuffer(fgPath, 0)
		if err != nil {
			return err
		}
		if refiner, err = photosheet.NewRefiner(original, fg); err != nil {
			return err
		}
	}
	out, err := refiner.Refine(edge)
	if err != nil {
		return err
	}
	if err := saveBuffer(out, output); err != nil {
		return err
	}
	fmt.Printf("Refined %dx%d cutout (edge %dpx) -> %s\n", out.Width, out.Height, edge, output)
	return nil
}

// resolveBackground turns a --bg value into a color. "spec" yields nil so
// the spec default applies.
func resolveBackground(value, method string, sampleFrom func() (photosheet.PixelBuffer, error)) (color.Color, error) {
	switch strings.ToLower(value) {
	case "", "spec":
		return nil, nil
	case "sample":
		m, err := utils.ParsePaletteMethod(method)
		if err != nil {
			return nil, err
		}
		src, err := sampleFrom()
		if err != nil {
			return nil, err
		}
		c, err := utils.SampleBackground(src.Image(), m)
		if err != nil {
			return nil, err
		}
		photosheet.Logger().Info("sampled background", "color", photosheet.HexColor(c), "method", m)
		return c, nil
	}
	return photosheet.ParseColor(value)
}

func runBackground(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	specID, _ := cmd.Flags().GetString("spec")
	bgValue, _ := cmd.Flags().GetString("bg")
	sampleFrom, _ := cmd.Flags().GetString("sample-from")
	method, _ := cmd.Flags().GetString("method")

	spec, err := photosheet.SpecByID(specID)
	if err != nil {
		return err
	}
	cutout, err := loadBuffer(input, 0)
	if err != nil {
		return err
	}
	bg, err := resolveBackground(bgValue, method, func() (photosheet.PixelBuffer, error) {
		if sampleFrom == "" {
			return photosheet.PixelBuffer{}, fmt.Errorf("--bg sample needs --sample-from, the cutout has no backdrop left")
		}
		return loadBuffer(sampleFrom, 0)
	})
	if err != nil {
		return err
	}
	if bg == nil {
		bg = spec.BackgroundColor()
	}
	out, err := photosheet.ApplyBackground(cutout, bg, spec.WidthPx, spec.HeightPx)
	if err != nil {
		return err
	}
	if err := saveBuffer(out, output); err != nil {
		return err
	}
	fmt.Printf("%s photo on %s -> %s\n", spec.ID, photosheet.HexColor(bg), output)
	return nil
}

func runSheet(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	paperID, _ := cmd.Flags().GetString("paper")
	gap, _ := cmd.Flags().GetFloat64("gap")

	paper, err := photosheet.PaperByID(paperID)
	if err != nil {
		return err
	}
	photo, err := loadBuffer(input, 0)
	if err != nil {
		return err
	}
	layout, err := photosheet.PlanLayout(photo.Width, photo.Height, paper.WidthPx, paper.HeightPx, gap)
	if err != nil {
		return err
	}
	if !layout.Fits() {
		return fmt.Errorf("a %dx%d photo does not fit on %s", photo.Width, photo.Height, paper.ID)
	}
	sheet, err := photosheet.RenderSheet(photo, layout)
	if err != nil {
		return err
	}
	if err := saveBuffer(sheet, output); err != nil {
		return err
	}
	printLayout(layout)
	fmt.Printf("Output:  %s\n", output)
	return nil
}

func parseCrop(s string) (photosheet.CropArea, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return photosheet.CropArea{}, fmt.Errorf("crop %q: want left,top,width,height", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return photosheet.CropArea{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = f
	}
	return photosheet.CropArea{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}

func runAll(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	input, _ := flags.GetString("input")
	outDir, _ := flags.GetString("output")
	fgPath, _ := flags.GetString("foreground")
	segCmd, _ := flags.GetString("segment-cmd")
	segTimeout, _ := flags.GetDuration("segment-timeout")
	specID, _ := flags.GetString("spec")
	paperID, _ := flags.GetString("paper")
	cropValue, _ := flags.GetString("crop")
	edge, _ := flags.GetInt("edge")
	bgValue, _ := flags.GetString("bg")
	method, _ := flags.GetString("method")
	gap, _ := flags.GetFloat64("gap")
	orientation, _ := flags.GetInt("orientation")
	format, _ := flags.GetString("format")

	opts := photosheet.DefaultOptions()
	var err error
	if opts.Spec, err = photosheet.SpecByID(specID); err != nil {
		return err
	}
	if opts.Paper, err = photosheet.PaperByID(paperID); err != nil {
		return err
	}
	if opts.Crop, err = parseCrop(cropValue); err != nil {
		return err
	}
	opts.EdgeSize = edge
	opts.GapMm = gap

	src, err := loadBuffer(input, orientation)
	if err != nil {
		return err
	}
	if opts.Background, err = resolveBackground(bgValue, method, func() (photosheet.PixelBuffer, error) {
		return src, nil
	}); err != nil {
		return err
	}

	var seg photosheet.Segmenter = fileSegmenter{path: fgPath}
	if fgPath == "" {
		if seg, err = newCommandSegmenter(segCmd, segTimeout); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := photosheet.Run(ctx, seg, src, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	outputs := []struct {
		name string
		buf  photosheet.PixelBuffer
	}{
		{opts.Spec.ID + "_cutout.png", res.Cutout},
		{opts.Spec.ID + "_photo.png", res.Photo},
		{utils.ExportName(opts.Spec.ID, opts.Paper.ID, time.Now(), format), res.Sheet},
	}
	for _, o := range outputs {
		if err := saveBuffer(o.buf, filepath.Join(outDir, o.name)); err != nil {
			return err
		}
	}
	printLayout(res.Layout)
	fmt.Printf("Output:  %s\n", filepath.Join(outDir, outputs[len(outputs)-1].name))
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	k, _ := cmd.Flags().GetInt("k")
	methodName, _ := cmd.Flags().GetString("method")
	method, err := utils.ParsePaletteMethod(methodName)
	if err != nil {
		return err
	}
	img, err := utils.ReadImage(args[0])
	if err != nil {
		return err
	}
	b := img.Bounds()
	band := utils.BorderBand(img, max(1, min(b.Dx(), b.Dy())/20))
	palette := utils.ExtractPalette(band, k, method)
	if len(palette) == 0 {
		return fmt.Errorf("no colors found in %s", args[0])
	}
	utils.SortPaletteByBrightness(palette)
	for i := len(palette) - 1; i >= 0; i-- {
		fmt.Println(palette[i].Hex())
	}
	return nil
}
