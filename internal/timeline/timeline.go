package timeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mgpai22/splice/internal/edit"
)

const (
	// gap tolerated between two intervals that are still merged
	Epsilon = 0.001
	// segments this short or shorter are treated as rounding noise
	MinSegmentDuration = 0.001
)

// whether clips denote material to retain or to delete
type Mode string

const (
	ModeKeep   Mode = "keep"
	ModeRemove Mode = "remove"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeKeep:
		return ModeKeep, nil
	case ModeRemove:
		return ModeRemove, nil
	default:
		return "", fmt.Errorf("unsupported mode %q: use keep or remove", s)
	}
}

// half-open time interval in seconds
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

var ErrNoSegments = errors.New("no segments to keep")

// returned when the rules leave nothing of the source
type NoSegmentsError struct {
	Mode  Mode
	Clips int
}

func (e *NoSegmentsError) Error() string {
	return fmt.Sprintf(
		"no segments to keep after applying %d clip(s) in %s mode",
		e.Clips,
		e.Mode,
	)
}

func (e *NoSegmentsError) Is(target error) bool {
	return target == ErrNoSegments
}

type options struct {
	epsilon     float64
	minDuration float64
	warn        func(msg string, keysAndValues ...interface{})
}

type Option func(*options)

func WithEpsilon(eps float64) Option {
	return func(o *options) { o.epsilon = eps }
}

func WithMinDuration(d float64) Option {
	return func(o *options) { o.minDuration = d }
}

// receives suspicious-but-tolerated input, e.g. a clip ending before it starts
func WithWarn(fn func(msg string, keysAndValues ...interface{})) Option {
	return func(o *options) { o.warn = fn }
}

// Calculate converts frame-indexed clips into sorted, non-overlapping
// keep-segments covering part of [0, totalDurationSec].
func Calculate(
	clips []edit.Clip,
	mode Mode,
	frameRate, totalDurationSec float64,
	opts ...Option,
) ([]Segment, error) {
	o := options{epsilon: Epsilon, minDuration: MinSegmentDuration}
	for _, opt := range opts {
		opt(&o)
	}

	if mode != ModeKeep && mode != ModeRemove {
		return nil, fmt.Errorf("unsupported mode %q", mode)
	}
	if frameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %v", frameRate)
	}
	if totalDurationSec <= 0 {
		return nil, fmt.Errorf("total duration must be positive, got %v", totalDurationSec)
	}

	converted := make([]Segment, 0, len(clips))
	for i, clip := range clips {
		if clip.Start < 0 || clip.End < 0 {
			return nil, fmt.Errorf(
				"clip %d: negative start/end frame (%v, %v)",
				i, clip.Start, clip.End,
			)
		}
		if clip.End <= clip.Start && o.warn != nil {
			o.warn("Clip ends at or before its start",
				"index", i,
				"start", clip.Start,
				"end", clip.End,
			)
		}
		converted = append(converted, Segment{
			Start: clip.Start / frameRate,
			End:   clip.End / frameRate,
		})
	}

	sort.SliceStable(converted, func(i, j int) bool {
		return converted[i].Start < converted[j].Start
	})

	merged := Merge(converted, o.epsilon)

	var result []Segment
	if mode == ModeKeep {
		for _, seg := range merged {
			result = append(result, clamp(seg, totalDurationSec))
		}
	} else {
		result = complement(merged, totalDurationSec, o.epsilon)
	}

	filtered := result[:0]
	for _, seg := range result {
		if seg.Duration() <= o.minDuration || seg.Start >= totalDurationSec {
			continue
		}
		filtered = append(filtered, seg)
	}

	if len(filtered) == 0 {
		return nil, &NoSegmentsError{Mode: mode, Clips: len(clips)}
	}
	return filtered, nil
}

// Merge joins overlapping segments and those separated by at most eps.
// Input must be sorted by Start. Runs that end at or before they start
// are dropped.
func Merge(sorted []Segment, eps float64) []Segment {
	if len(sorted) == 0 {
		return nil
	}

	var merged []Segment
	current := sorted[0]
	for _, next := range sorted[1:] {
		if next.Start <= current.End+eps {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		if current.End > current.Start {
			merged = append(merged, current)
		}
		current = next
	}
	if current.End > current.Start {
		merged = append(merged, current)
	}
	return merged
}

func clamp(seg Segment, total float64) Segment {
	if seg.Start < 0 {
		seg.Start = 0
	}
	if seg.End > total {
		seg.End = total
	}
	return seg
}

// gaps of [0, total] not covered by the merged remove-segments
func complement(removes []Segment, total, eps float64) []Segment {
	var keep []Segment
	lastEnd := 0.0
	for _, r := range removes {
		r = clamp(r, total)
		if r.Start >= r.End {
			continue
		}
		if r.Start > lastEnd+eps {
			keep = append(keep, Segment{Start: lastEnd, End: r.Start})
		}
		if r.End > lastEnd {
			lastEnd = r.End
		}
	}
	if lastEnd < total-eps {
		keep = append(keep, Segment{Start: lastEnd, End: total})
	}
	return keep
}

// Gaps returns the removed stretches of [0, total] between keep-segments.
func Gaps(keep []Segment, total float64) []Segment {
	return complement(keep, total, Epsilon)
}

// TotalDuration is the length of the concatenated timeline.
func TotalDuration(segments []Segment) float64 {
	var sum float64
	for _, seg := range segments {
		sum += seg.Duration()
	}
	return sum
}
