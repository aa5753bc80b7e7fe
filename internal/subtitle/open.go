package subtitle

import (
	"fmt"
	"os"

	"github.com/mgpai22/splice/internal/timeline"
)

// parses the subtitle file at path, format chosen by extension
func Open(path string, opts ...ParseOption) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Parse(file, FormatFromPath(path), opts...)
}

// ProcessFile re-times the subtitle at inPath against segments and writes
// the result to outPath. Every failure is a *ProcessingError.
func ProcessFile(
	inPath, outPath string,
	segments []timeline.Segment,
	opts ...ParseOption,
) (Stats, error) {
	doc, err := Open(inPath, opts...)
	if err != nil {
		return Stats{}, &ProcessingError{Path: inPath, Err: err}
	}

	retimed, stats := Retime(doc, segments)

	if err := WriteFile(outPath, retimed); err != nil {
		return stats, &ProcessingError{
			Path: inPath,
			Err:  fmt.Errorf("failed to write %s: %w", outPath, err),
		}
	}
	return stats, nil
}
