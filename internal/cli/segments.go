package cli

import (
	"encoding/json"
	"fmt"

	"github.com/mgpai22/splice/internal/timeline"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments [edit_file]",
	Short: "Show the segments an edit document keeps and removes",
	Long: `Compute the keep-segments of an edit document without touching any media.

Overlapping and touching clips are merged first. The removed stretches are
listed alongside so the result can be checked before cutting.

Examples:
  splice segments talk.json
  splice segments talk.json --mode remove
  splice segments talk.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSegments,
}

func init() {
	rootCmd.AddCommand(segmentsCmd)

	segmentsCmd.Flags().
		StringP("mode", "m", string(timeline.ModeKeep), "How clips are interpreted (keep, remove)")
	segmentsCmd.Flags().
		Bool("json", false, "Print the result as JSON")
}

// machine-readable output of the segments command
type segmentReport struct {
	Mode        timeline.Mode      `json:"mode"`
	FrameRate   float64            `json:"frame_rate"`
	DurationSec float64            `json:"duration_sec"`
	KeptSec     float64            `json:"kept_sec"`
	Keep        []timeline.Segment `json:"keep"`
	Removed     []timeline.Segment `json:"removed"`
}

func runSegments(cmd *cobra.Command, args []string) error {
	editPath := args[0]
	asJSON, _ := cmd.Flags().GetBool("json")

	doc, mode, segments, err := loadSegments(cmd, editPath)
	if err != nil {
		return err
	}

	total := doc.TotalDurationSec()
	report := segmentReport{
		Mode:        mode,
		FrameRate:   doc.FrameRate,
		DurationSec: total,
		KeptSec:     timeline.TotalDuration(segments),
		Keep:        segments,
		Removed:     timeline.Gaps(segments, total),
	}

	out := cmd.OutOrStdout()
	if asJSON {
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to encode segments: %w", err)
		}
		_, err = out.Write(pretty.Pretty(data))
		return err
	}

	fmt.Fprintf(out, "Source: %.3fs at %g fps, mode %s\n\n", total, doc.FrameRate, mode)
	if err := writeSegmentTable(out, "Keep", report.Keep); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return writeSegmentTable(out, "Removed", report.Removed)
}
