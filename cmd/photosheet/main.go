package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/setanarut/photosheet"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photosheet",
	Short: "Turn a portrait into a print-ready sheet of ID photos",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		photosheet.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log filter timings and layout decisions")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
