package cli

import (
	"github.com/mgpai22/splice/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "splice",
	Short: "Lossless video cutter driven by frame-based edit documents",
	Long: `Splice cuts a video into the segments described by an edit document
and joins them back together without re-encoding.

Clips in the document are either the parts to keep or the parts to remove.
An optional SRT or WebVTT subtitle file is re-timed to match the cut video.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
