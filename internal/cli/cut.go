package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	ffmpegbin "github.com/mgpai22/splice/internal/ffmpeg"
	"github.com/mgpai22/splice/internal/media"
	"github.com/mgpai22/splice/internal/pipeline"
	"github.com/mgpai22/splice/internal/timeline"
	"github.com/spf13/cobra"
)

// allowed gap between the document's duration and the probed one
const durationTolerance = 0.5

var cutCmd = &cobra.Command{
	Use:   "cut [video_file]",
	Short: "Cut a video according to an edit document",
	Long: `Cut the specified video into the segments described by an edit document
and join them into a new file without re-encoding.

In keep mode the clips are the parts that stay. In remove mode the clips are
removed and everything between them stays. When a subtitle file (SRT or VTT)
is given it is re-timed to match the cut video.

Outputs are written next to the video (or to --output-dir) as
<name>_<YYYYMMDD-HHMMSS><ext>.

Examples:
  splice cut talk.mp4 --edit talk.json
  splice cut talk.mp4 -e talk.json --mode remove --subtitle talk.srt
  splice cut talk.mkv -e talk.json --output-dir out --concurrency 4`,
	Args: cobra.ExactArgs(1),
	RunE: runCut,
}

func init() {
	rootCmd.AddCommand(cutCmd)

	addEditFlags(cutCmd)
	cutCmd.Flags().
		StringP("subtitle", "s", "", "Subtitle file (srt, vtt) to re-time alongside the video")
	cutCmd.Flags().
		String("output-dir", "", "Directory for the outputs (defaults to the video's directory)")
	cutCmd.Flags().
		Int("concurrency", 1, "Number of segments extracted in parallel")
	cutCmd.Flags().
		Bool("keep-temp", false, "Keep the extracted segment files")
}

func runCut(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	editPath, _ := cmd.Flags().GetString("edit")
	subtitlePath, _ := cmd.Flags().GetString("subtitle")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	keepTemp, _ := cmd.Flags().GetBool("keep-temp")

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}
	if !media.IsVideoFile(videoPath) {
		logger.Warnw("Unrecognised video extension, continuing anyway",
			"extension", filepath.Ext(videoPath),
		)
	}
	if subtitlePath != "" {
		if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
			return fmt.Errorf("subtitle file not found: %s", subtitlePath)
		}
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	doc, mode, err := loadDocument(cmd, editPath)
	if err != nil {
		return err
	}

	rc, err := pipeline.NewRunContext(pipeline.RunInput{
		VideoPath:    videoPath,
		Document:     doc,
		Mode:         mode,
		SubtitlePath: subtitlePath,
		OutputDir:    outputDir,
		Concurrency:  concurrency,
		KeepWorkDir:  keepTemp,
	}, timeline.WithWarn(logger.WarnFunc()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := media.NewFFmpegEngine()
	if err != nil {
		return err
	}

	checkDuration(ctx, videoPath, doc.TotalDurationSec())

	logger.Infow("Starting cut",
		"video", videoPath,
		"edit", editPath,
		"mode", mode,
		"segments", len(rc.Segments()),
	)

	result, err := pipeline.Run(ctx, rc, engine, logger.Named("pipeline"))
	if err != nil {
		return fmt.Errorf("cut failed: %w", err)
	}

	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(result.VideoPath)
	fmt.Fprintf(out, "Video cut successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Segments: %d\n", result.Extracted)
	fmt.Fprintf(out, "  Duration: %.3fs of %.3fs\n", result.KeptDuration, doc.TotalDurationSec())

	if subtitlePath != "" {
		if result.SubtitleErr != nil {
			fmt.Fprintf(out, "Subtitles were not re-timed: %v\n", result.SubtitleErr)
		} else {
			absSub, _ := filepath.Abs(result.SubtitlePath)
			fmt.Fprintf(out, "Subtitles re-timed: %s\n", absSub)
			fmt.Fprintf(out, "  Cues: %d kept, %d dropped\n",
				result.SubtitleStats.Kept,
				result.SubtitleStats.Dropped,
			)
		}
	}

	return nil
}

// warns when the video on disk does not match the document's declared length
func checkDuration(ctx context.Context, videoPath string, declared float64) {
	probed, err := media.ProbeDuration(ctx, videoPath)
	if errors.Is(err, ffmpegbin.ErrNotFound) {
		logger.Debugw("ffprobe not available, skipping duration check")
		return
	}
	if err != nil {
		logger.Warnw("Could not probe video duration", "error", err)
		return
	}

	if math.Abs(probed-declared) > durationTolerance {
		logger.Warnw("Edit document duration does not match the video",
			"document", declared,
			"video", probed,
		)
	}
}
