package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/splice/internal/subtitle"
	"github.com/spf13/cobra"
)

var retimeCmd = &cobra.Command{
	Use:   "retime [subtitle_file]",
	Short: "Re-time a subtitle file to match a cut",
	Long: `Re-time an SRT or WebVTT subtitle file to the timeline an edit document
produces, without cutting any video.

Cues outside the kept segments are dropped. Cue identifiers, settings and
text are preserved; only the timestamps change.

Examples:
  splice retime talk.srt --edit talk.json
  splice retime talk.vtt -e talk.json --mode remove -o talk.cut.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runRetime,
}

func init() {
	rootCmd.AddCommand(retimeCmd)

	addEditFlags(retimeCmd)
}

func runRetime(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	editPath, _ := cmd.Flags().GetString("edit")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	_, _, segments, err := loadSegments(cmd, editPath)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = defaultRetimeOutput(subtitlePath, time.Now())
	}

	logger.Infow("Re-timing subtitles",
		"input", subtitlePath,
		"output", outputPath,
		"segments", len(segments),
	)

	stats, err := subtitle.ProcessFile(
		subtitlePath,
		outputPath,
		segments,
		subtitle.WithParseWarn(logger.WarnFunc()),
	)
	if err != nil {
		return err
	}
	if stats.Clamped > 0 {
		logger.Warnw("Adjusted cues with collapsed duration", "count", stats.Clamped)
	}

	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Subtitles re-timed successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Cues: %d kept, %d dropped\n", stats.Kept, stats.Dropped)

	return nil
}
