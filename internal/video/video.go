package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/submod/internal/ffmpeg"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	FrameRate float64
	Codec     string
	Subtitles []SubtitleStream
}

// an embedded subtitle track; Index counts subtitle streams only
type SubtitleStream struct {
	Index    int
	Codec    string
	Language string
	Title    string
}

// defines interface for video processing operations
type Processor interface {
	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)

	// writes one embedded subtitle stream to outputPath as SRT
	ExtractSubtitle(ctx context.Context, videoPath, outputPath string, stream int) error
}

// default implementation using ffprobe and ffmpeg
type DefaultProcessor struct {
	bins ffmpegbin.BinaryPaths
}

func NewProcessor(bins ffmpegbin.BinaryPaths) *DefaultProcessor {
	return &DefaultProcessor{bins: bins}
}

// retrieves video file information
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file not found: %w", err)
	}
	if p.bins.FFprobe == "" {
		return nil, errors.New("ffprobe path is not set")
	}

	cmd := exec.CommandContext(ctx, p.bins.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = videoPath
	return info, nil
}

// extracts a subtitle stream, converting it to SubRip
func (p *DefaultProcessor) ExtractSubtitle(
	ctx context.Context,
	videoPath, outputPath string,
	stream int,
) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video file not found: %w", err)
	}
	if stream < 0 {
		return fmt.Errorf("invalid subtitle stream %d", stream)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", stream),
		"c:s": "srt",
		"f":   "srt",
	}

	job := ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput()
	if p.bins.FFmpeg != "" {
		job = job.SetFfmpegPath(p.bins.FFmpeg)
	}
	if err := job.Run(); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return nil
}

// reads ffprobe's -print_format json output
func parseProbe(data []byte) (*Info, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("failed to parse ffprobe output: invalid JSON")
	}
	doc := gjson.ParseBytes(data)

	info := &Info{}
	if d := doc.Get("format.duration"); d.Exists() {
		seconds, err := strconv.ParseFloat(d.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	videoFound := false
	doc.Get("streams").ForEach(func(_, s gjson.Result) bool {
		switch s.Get("codec_type").String() {
		case "video":
			if videoFound || s.Get("disposition.attached_pic").Int() == 1 {
				return true
			}
			videoFound = true
			info.Codec = s.Get("codec_name").String()
			if rate, err := ParseFrameRate(s.Get("avg_frame_rate").String()); err == nil {
				info.FrameRate = rate
			} else if rate, err := ParseFrameRate(s.Get("r_frame_rate").String()); err == nil {
				info.FrameRate = rate
			}
		case "subtitle":
			info.Subtitles = append(info.Subtitles, SubtitleStream{
				Index:    len(info.Subtitles),
				Codec:    s.Get("codec_name").String(),
				Language: s.Get("tags.language").String(),
				Title:    s.Get("tags.title").String(),
			})
		}
		return true
	})

	if !videoFound {
		return nil, errors.New("no video stream found")
	}
	return info, nil
}

// ParseFrameRate reads ffprobe rates such as "24000/1001", "25/1" or "25".
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, den, isRatio := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}
	d := 1.0
	if isRatio {
		d, err = strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frame rate %q", s)
		}
	}
	if n <= 0 || d <= 0 {
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}
	return n / d, nil
}
