// Package pipeline turns an edit document, a source video and an optional
// subtitle file into a cut video and a re-timed subtitle file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/splice/internal/edit"
	"github.com/mgpai22/splice/internal/logging"
	"github.com/mgpai22/splice/internal/media"
	"github.com/mgpai22/splice/internal/subtitle"
	"github.com/mgpai22/splice/internal/timeline"
)

const stampLayout = "20060102-150405"

// RunInput is everything the caller chooses for a run.
type RunInput struct {
	VideoPath string
	Document  *edit.Document
	Mode      timeline.Mode
	// optional; format follows the extension
	SubtitlePath string
	// defaults to the video's directory
	OutputDir string
	// defaults to time.Now
	Now time.Time
	// number of segments extracted at once, 1 when unset
	Concurrency int
	KeepWorkDir bool
}

// RunContext is the immutable state of one run. Segments are computed once
// in NewRunContext and never change afterwards.
type RunContext struct {
	videoPath    string
	doc          *edit.Document
	mode         timeline.Mode
	segments     []timeline.Segment
	subtitlePath string
	subFormat    subtitle.Format
	outputDir    string
	stamp        string
	concurrency  int
	keepWorkDir  bool
}

// NewRunContext validates in and computes the keep-segments. Errors are
// fatal: an invalid document or an empty segment list.
func NewRunContext(in RunInput, opts ...timeline.Option) (*RunContext, error) {
	if in.VideoPath == "" {
		return nil, errors.New("video path is required")
	}
	if in.Document == nil {
		return nil, &edit.InvalidDocumentError{Reason: "no document supplied"}
	}

	segments, err := timeline.Calculate(
		in.Document.Clips,
		in.Mode,
		in.Document.FrameRate,
		in.Document.TotalDurationSec(),
		opts...,
	)
	if err != nil {
		return nil, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	outputDir := in.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(in.VideoPath)
	}
	concurrency := in.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	rc := &RunContext{
		videoPath:   in.VideoPath,
		doc:         in.Document,
		mode:        in.Mode,
		segments:    segments,
		outputDir:   outputDir,
		stamp:       now.Format(stampLayout),
		concurrency: concurrency,
		keepWorkDir: in.KeepWorkDir,
	}
	if in.SubtitlePath != "" {
		rc.subtitlePath = in.SubtitlePath
		rc.subFormat = subtitle.FormatFromPath(in.SubtitlePath)
	}
	return rc, nil
}

func (rc *RunContext) VideoPath() string        { return rc.videoPath }
func (rc *RunContext) Document() *edit.Document { return rc.doc }
func (rc *RunContext) Mode() timeline.Mode      { return rc.mode }
func (rc *RunContext) SubtitlePath() string     { return rc.subtitlePath }
func (rc *RunContext) OutputDir() string        { return rc.outputDir }

// Segments returns a copy of the keep-segments.
func (rc *RunContext) Segments() []timeline.Segment {
	return append([]timeline.Segment(nil), rc.segments...)
}

// VideoOutputPath is <video base>_<stamp><video ext> in the output dir.
func (rc *RunContext) VideoOutputPath() string {
	return rc.stampedPath(rc.videoPath, videoExt(rc.videoPath))
}

// SubtitleOutputPath is <subtitle base>_<stamp>.<srt|vtt>, empty when no
// subtitle was supplied.
func (rc *RunContext) SubtitleOutputPath() string {
	if rc.subtitlePath == "" {
		return ""
	}
	return rc.stampedPath(rc.subtitlePath, rc.subFormat.Extension())
}

func (rc *RunContext) stampedPath(src, ext string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(rc.outputDir, fmt.Sprintf("%s_%s%s", base, rc.stamp, ext))
}

func videoExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mp4"
}

// Result describes what a run produced.
type Result struct {
	VideoPath string
	Segments  []timeline.Segment
	// number of segment files actually extracted
	Extracted int
	// output duration in seconds
	KeptDuration float64

	SubtitlePath  string
	SubtitleStats subtitle.Stats
	// non-nil when the subtitle could not be produced; the video is still valid
	SubtitleErr error
}

type extractJob struct {
	index   int
	segment timeline.Segment
	path    string
}

// Run extracts every keep-segment, joins them into the output video and
// re-times the subtitle. Media engine failures abort the run; subtitle
// failures are reported in Result.SubtitleErr.
func Run(
	ctx context.Context,
	rc *RunContext,
	engine media.Engine,
	logger *logging.Logger,
) (*Result, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	if err := os.MkdirAll(rc.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	workDir, err := os.MkdirTemp(rc.outputDir, ".splice-work-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	if rc.keepWorkDir {
		logger.Infow("Keeping work directory", "path", workDir)
	} else {
		defer os.RemoveAll(workDir)
	}

	ext := videoExt(rc.videoPath)
	var jobs []extractJob
	for i, seg := range rc.segments {
		if seg.Duration() <= timeline.MinSegmentDuration {
			logger.Warnw("Skipping very short segment",
				"segment", i+1,
				"duration", seg.Duration(),
			)
			continue
		}
		jobs = append(jobs, extractJob{
			index:   i,
			segment: seg,
			path:    filepath.Join(workDir, fmt.Sprintf("segment_%03d%s", i, ext)),
		})
	}
	if len(jobs) == 0 {
		return nil, &timeline.NoSegmentsError{Mode: rc.mode, Clips: len(rc.doc.Clips)}
	}

	logger.Infow("Extracting segments",
		"segments", len(jobs),
		"concurrency", rc.concurrency,
	)

	if err := extractAll(ctx, rc, engine, logger, jobs); err != nil {
		return nil, err
	}

	parts := make([]string, len(jobs))
	for i, job := range jobs {
		parts[i] = job.path
	}

	outPath := rc.VideoOutputPath()
	if len(parts) == 1 {
		logger.Infow("Only one segment, skipping concatenation")
		if err := os.Rename(parts[0], outPath); err != nil {
			return nil, fmt.Errorf("failed to move segment to output: %w", err)
		}
	} else {
		logger.Infow("Concatenating segments", "segments", len(parts), "output", outPath)
		if err := engine.Concatenate(ctx, parts, outPath); err != nil {
			return nil, fmt.Errorf("concatenation failed: %w", err)
		}
	}

	result := &Result{
		VideoPath:    outPath,
		Segments:     rc.Segments(),
		Extracted:    len(parts),
		KeptDuration: timeline.TotalDuration(rc.segments),
	}

	if rc.subtitlePath != "" {
		retimeSubtitle(rc, logger, result)
	}

	return result, nil
}

func extractAll(
	ctx context.Context,
	rc *RunContext,
	engine media.Engine,
	logger *logging.Logger,
	jobs []extractJob,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.concurrency)

	for n, job := range jobs {
		g.Go(func() error {
			duration := job.segment.Duration()
			logger.Debugw("Extracting segment",
				"stage", fmt.Sprintf("%d/%d", n+1, len(jobs)),
				"start", job.segment.Start,
				"duration", duration,
				"output", filepath.Base(job.path),
			)

			err := engine.Extract(gctx, rc.videoPath, job.segment.Start, duration, job.path)
			if err != nil {
				return fmt.Errorf("failed to extract segment %d: %w", job.index+1, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func retimeSubtitle(rc *RunContext, logger *logging.Logger, result *Result) {
	outPath := rc.SubtitleOutputPath()
	logger.Infow("Processing subtitles",
		"input", rc.subtitlePath,
		"format", rc.subFormat,
	)

	stats, err := subtitle.ProcessFile(
		rc.subtitlePath,
		outPath,
		rc.segments,
		subtitle.WithParseWarn(logger.WarnFunc()),
	)
	result.SubtitleStats = stats
	if err != nil {
		logger.Warnw("Subtitle processing failed, video output kept",
			"error", err,
		)
		result.SubtitleErr = err
		return
	}

	if stats.Clamped > 0 {
		logger.Warnw("Adjusted cues with collapsed duration", "count", stats.Clamped)
	}
	logger.Infow("Subtitles re-timed",
		"kept", stats.Kept,
		"dropped", stats.Dropped,
		"output", outPath,
	)
	result.SubtitlePath = outPath
}
