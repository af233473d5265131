package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/setanarut/photosheet"
	"github.com/spf13/cobra"
)

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "List built-in photo formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tMM\tPX\tHEAD MM\tBACKGROUND")
		for _, s := range photosheet.PhotoSpecs() {
			fmt.Fprintf(tw, "%s\t%s\t%gx%g\t%dx%d\t%g-%g\t%s\n",
				s.ID, s.Name, s.WidthMm, s.HeightMm, s.WidthPx, s.HeightPx,
				s.HeadHeightMinMm, s.HeadHeightMaxMm, s.Background)
		}
		return tw.Flush()
	},
}

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List built-in paper sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tMM\tPX")
		for _, p := range photosheet.PaperSizes() {
			fmt.Fprintf(tw, "%s\t%s\t%gx%g\t%dx%d\n", p.ID, p.Name, p.WidthMm, p.HeightMm, p.WidthPx, p.HeightPx)
		}
		return tw.Flush()
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Show how many photos of a format fit on a paper",
	Args:  cobra.NoArgs,
	RunE:  runLayout,
}

func init() {
	layoutCmd.Flags().String("spec", "uk-passport", "Photo format ID")
	layoutCmd.Flags().String("paper", "4r", "Paper size ID")
	layoutCmd.Flags().Float64("gap", photosheet.DefaultGapMm, "Gap between photos in mm")
	rootCmd.AddCommand(specsCmd, papersCmd, layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	specID, _ := cmd.Flags().GetString("spec")
	paperID, _ := cmd.Flags().GetString("paper")
	gap, _ := cmd.Flags().GetFloat64("gap")

	spec, err := photosheet.SpecByID(specID)
	if err != nil {
		return err
	}
	paper, err := photosheet.PaperByID(paperID)
	if err != nil {
		return err
	}
	l, err := photosheet.PlanLayout(spec.WidthPx, spec.HeightPx, paper.WidthPx, paper.HeightPx, gap)
	if err != nil {
		return err
	}
	printLayout(l)
	return nil
}

func printLayout(l photosheet.LayoutResult) {
	if !l.Fits() {
		fmt.Println("Photo does not fit on this paper")
		return
	}
	orientation := "portrait"
	if l.Rotated {
		orientation = "landscape"
	}
	fmt.Printf("Grid:    %d x %d = %d photos\n", l.Cols, l.Rows, l.Total)
	fmt.Printf("Paper:   %d x %d px (%s)\n", l.PaperWidthPx, l.PaperHeightPx, orientation)
	fmt.Printf("Offset:  %d, %d px\n", l.OffsetX, l.OffsetY)
	fmt.Printf("Gap:     %d px\n", l.GapPx)
}
