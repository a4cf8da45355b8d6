package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// ErrNotFound is returned when an executable is neither configured nor on PATH.
var ErrNotFound = errors.New("executable not found")

// Locate resolves the ffmpeg and ffprobe executables. A configured path
// must exist; an empty one is searched on PATH.
func Locate(ffmpegPath, ffprobePath string) (BinaryPaths, error) {
	ffmpegPath, err := locate("ffmpeg", ffmpegPath)
	if err != nil {
		return BinaryPaths{}, err
	}
	ffprobePath, err = locate("ffprobe", ffprobePath)
	if err != nil {
		return BinaryPaths{}, err
	}
	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

// FFprobe resolves only ffprobe, for callers that never run ffmpeg.
func FFprobe(configured string) (string, error) {
	return locate("ffprobe", configured)
}

func locate(name, configured string) (string, error) {
	if configured != "" {
		if !fileExists(configured) {
			return "", fmt.Errorf("%s not found at %s: %w", name, configured, ErrNotFound)
		}
		return configured, nil
	}
	found, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s is not on PATH (set video.%s_path in the config): %w", name, name, ErrNotFound)
	}
	return found, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
