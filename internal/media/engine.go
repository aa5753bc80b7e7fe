package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/splice/internal/ffmpeg"
)

// lossless operations the cut pipeline needs from a media tool
type Engine interface {
	// copies [startSec, startSec+durationSec) of input into output
	Extract(
		ctx context.Context,
		input string,
		startSec, durationSec float64,
		output string,
	) error

	// joins inputs, in order, into output
	Concatenate(ctx context.Context, inputs []string, output string) error
}

var ErrEngine = errors.New("media engine failed")

// failure of an extract or concatenate call
type EngineError struct {
	Op     string
	Output string
	Err    error
	// tail of the tool's diagnostic output
	Stderr string
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, filepath.Base(e.Output), e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func (e *EngineError) Is(target error) bool {
	return target == ErrEngine
}

// stream-copying Engine backed by ffmpeg
type FFmpegEngine struct {
	ffmpegPath string
}

func NewFFmpegEngine() (*FFmpegEngine, error) {
	path, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}
	return &FFmpegEngine{ffmpegPath: path}, nil
}

// extracts a sub-range with every stream copied and timestamps reset to zero
func (e *FFmpegEngine) Extract(
	ctx context.Context,
	input string,
	startSec, durationSec float64,
	output string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if durationSec <= 0 {
		return &EngineError{
			Op:     "extract",
			Output: output,
			Err:    fmt.Errorf("non-positive duration %v", durationSec),
		}
	}
	if _, err := os.Stat(input); err != nil {
		return &EngineError{Op: "extract", Output: output, Err: err}
	}

	inputArgs := ffmpeg.KwArgs{
		"ss": formatSeconds(startSec),
	}
	outputArgs := ffmpeg.KwArgs{
		"t":                 formatSeconds(durationSec),
		"c":                 "copy",
		"map":               "0",
		"avoid_negative_ts": "make_zero",
		"movflags":          "+faststart",
	}

	return e.run("extract", output,
		ffmpeg.Input(input, inputArgs).Output(output, outputArgs),
	)
}

// joins inputs with the concat demuxer, no re-encoding
func (e *FFmpegEngine) Concatenate(
	ctx context.Context,
	inputs []string,
	output string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return &EngineError{Op: "concat", Output: output, Err: errors.New("no inputs")}
	}

	listPath := strings.TrimSuffix(output, filepath.Ext(output)) + "_concat.txt"
	if err := WriteConcatList(listPath, inputs); err != nil {
		return &EngineError{Op: "concat", Output: output, Err: err}
	}
	defer func() {
		_ = os.Remove(listPath)
	}()

	inputArgs := ffmpeg.KwArgs{
		"f":    "concat",
		"safe": "0",
	}
	outputArgs := ffmpeg.KwArgs{
		"c":        "copy",
		"movflags": "+faststart",
	}

	return e.run("concat", output,
		ffmpeg.Input(listPath, inputArgs).Output(output, outputArgs),
	)
}

func (e *FFmpegEngine) run(op, output string, stream *ffmpeg.Stream) error {
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return &EngineError{Op: op, Output: output, Err: err}
	}

	var stderr bytes.Buffer
	err := stream.
		OverWriteOutput().
		SetFfmpegPath(e.ffmpegPath).
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		return &EngineError{
			Op:     op,
			Output: output,
			Err:    err,
			Stderr: tail(stderr.String(), 20),
		}
	}
	return nil
}

// writes a concat demuxer list with absolute, quote-escaped paths
func WriteConcatList(path string, inputs []string) error {
	var sb strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", in, err)
		}
		sb.WriteString("file '")
		sb.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		sb.WriteString("'\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// seconds with microsecond precision, as ffmpeg accepts
func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 6, 64)
}

func tail(s string, lines int) string {
	parts := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}
