package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

const (
	EnvFFmpegPath  = "SPLICE_FFMPEG_PATH"
	EnvFFprobePath = "SPLICE_FFPROBE_PATH"
)

var ErrNotFound = errors.New("ffmpeg binary not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// resolves ffmpeg and ffprobe once per process
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = resolve(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	if paths.FFprobe == "" {
		return "", fmt.Errorf("%w: ffprobe (set %s or add it to PATH)", ErrNotFound, EnvFFprobePath)
	}
	return paths.FFprobe, nil
}

// env overrides win over PATH; ffprobe is optional since only probing
// needs it
func resolve(
	getenv func(string) string,
	lookPath func(string) (string, error),
) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv(EnvFFmpegPath),
		FFprobe: getenv(EnvFFprobePath),
	}

	if paths.FFmpeg == "" {
		if found, err := lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}

	if paths.FFmpeg == "" {
		return BinaryPaths{}, fmt.Errorf(
			"%w: ffmpeg (set %s or add it to PATH)",
			ErrNotFound,
			EnvFFmpegPath,
		)
	}
	if !fileExists(paths.FFmpeg) {
		return BinaryPaths{}, fmt.Errorf("%w: %s", ErrNotFound, paths.FFmpeg)
	}
	if paths.FFprobe != "" && !fileExists(paths.FFprobe) {
		paths.FFprobe = ""
	}
	return paths, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
