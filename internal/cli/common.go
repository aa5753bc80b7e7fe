package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mgpai22/splice/internal/edit"
	"github.com/mgpai22/splice/internal/subtitle"
	"github.com/mgpai22/splice/internal/timeline"
	"github.com/spf13/cobra"
)

const stampLayout = "20060102-150405"

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringP("edit", "e", "", "Edit document (JSON) with clips and source metadata (required)")
	cmd.Flags().
		StringP("mode", "m", string(timeline.ModeKeep), "How clips are interpreted (keep, remove)")

	_ = cmd.MarkFlagRequired("edit")
}

// loads the edit document and the --mode flag
func loadDocument(cmd *cobra.Command, editPath string) (*edit.Document, timeline.Mode, error) {
	modeStr, _ := cmd.Flags().GetString("mode")

	mode, err := timeline.ParseMode(modeStr)
	if err != nil {
		return nil, "", err
	}

	doc, err := edit.Load(editPath)
	if err != nil {
		return nil, "", err
	}

	logger.Debugw("Loaded edit document",
		"path", editPath,
		"clips", len(doc.Clips),
		"frame_rate", doc.FrameRate,
		"duration_frames", doc.DurationFrames,
		"metadata", doc.MetadataPath,
	)
	return doc, mode, nil
}

// loads the edit document and computes its keep-segments
func loadSegments(cmd *cobra.Command, editPath string) (*edit.Document, timeline.Mode, []timeline.Segment, error) {
	doc, mode, err := loadDocument(cmd, editPath)
	if err != nil {
		return nil, "", nil, err
	}

	segments, err := timeline.Calculate(
		doc.Clips,
		mode,
		doc.FrameRate,
		doc.TotalDurationSec(),
		timeline.WithWarn(logger.WarnFunc()),
	)
	if err != nil {
		return nil, "", nil, err
	}
	return doc, mode, segments, nil
}

// <base>_<stamp>.<srt|vtt> next to the input subtitle
func defaultRetimeOutput(subtitlePath string, now time.Time) string {
	format := subtitle.FormatFromPath(subtitlePath)
	base := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
	return fmt.Sprintf("%s_%s%s", base, now.Format(stampLayout), format.Extension())
}

// prints segments as an aligned table with a total line
func writeSegmentTable(w io.Writer, title string, segments []timeline.Segment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%d)\n", title, len(segments))
	fmt.Fprintln(tw, "  #\tSTART\tEND\tDURATION")
	for i, seg := range segments {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%.3fs\n",
			i+1,
			subtitle.FormatTimestamp(seg.Start, subtitle.FormatVTT),
			subtitle.FormatTimestamp(seg.End, subtitle.FormatVTT),
			seg.Duration(),
		)
	}
	fmt.Fprintf(tw, "  total\t\t\t%.3fs\n", timeline.TotalDuration(segments))
	return tw.Flush()
}
