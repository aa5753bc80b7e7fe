package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mgpai22/splice/internal/media"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe [video_file]",
	Short: "Print the duration of a video file",
	Long: `Print the container duration of a video as reported by ffprobe.

Useful for checking that an edit document was made against the same file.

Examples:
  splice probe talk.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}

	seconds, err := media.ProbeDuration(context.Background(), videoPath)
	if err != nil {
		return err
	}

	duration := time.Duration(seconds * float64(time.Second))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %.3fs (%s)\n", videoPath, seconds, duration.Round(time.Millisecond))

	return nil
}
