package subtitle

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

const vttHeader = "WEBVTT"

// millisecond separator used in timestamps
func (f Format) separator() string {
	if f == FormatSRT {
		return ","
	}
	return "."
}

// file extension for a format
func (f Format) Extension() string {
	return "." + string(f)
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatSRT:
		return FormatSRT, nil
	case FormatVTT:
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format %q: use srt or vtt", s)
	}
}

// subtitle format based on file extension, .srt or else WebVTT
func FormatFromPath(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".srt" {
		return FormatSRT
	}
	return FormatVTT
}

// single subtitle entry as found in the source
type Cue struct {
	// seconds
	Start float64
	End   float64
	// identifier and settings lines before the time line, verbatim
	HeaderLines []string
	// original time line, re-used as the template when writing
	TimeLine  string
	TextLines []string
}

// parsed subtitle track
type Document struct {
	Format Format
	// first line of a WebVTT file
	Header string
	// WebVTT metadata lines between the header and the first blank line
	Preamble []string
	Cues     []Cue
}

var ErrProcessing = errors.New("subtitle processing failed")

// wraps any parse, re-time or write failure; never fatal to a run
type ProcessingError struct {
	Path string
	Err  error
}

func (e *ProcessingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("subtitle processing failed: %v", e.Err)
	}
	return fmt.Sprintf("subtitle processing failed for %s: %v", e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessing
}
