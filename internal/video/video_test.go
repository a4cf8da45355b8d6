package video

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	ffmpegbin "github.com/mgpai22/submod/internal/ffmpeg"
)

const probeJSON = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "avg_frame_rate": "24000/1001", "r_frame_rate": "24000/1001"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac"},
    {"index": 2, "codec_type": "subtitle", "codec_name": "subrip", "tags": {"language": "eng"}},
    {"index": 3, "codec_type": "subtitle", "codec_name": "ass", "tags": {"language": "ger", "title": "Forced"}},
    {"index": 4, "codec_type": "video", "codec_name": "mjpeg", "avg_frame_rate": "0/0", "disposition": {"attached_pic": 1}}
  ],
  "format": {"duration": "5400.250000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(probeJSON))
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}

	want := &Info{
		Duration:  5400*time.Second + 250*time.Millisecond,
		FrameRate: 24000.0 / 1001.0,
		Codec:     "h264",
		Subtitles: []SubtitleStream{
			{Index: 0, Codec: "subrip", Language: "eng"},
			{Index: 1, Codec: "ass", Language: "ger", Title: "Forced"},
		},
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestParseProbeFallsBackToRFrameRate(t *testing.T) {
	info, err := parseProbe([]byte(`{"streams": [{"codec_type": "video", "avg_frame_rate": "0/0", "r_frame_rate": "25/1"}]}`))
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.FrameRate != 25 {
		t.Errorf("FrameRate = %v, want 25", info.FrameRate)
	}
}

func TestParseProbeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"streams": [`},
		{"no video", `{"streams": [{"codec_type": "audio"}]}`},
		{"bad duration", `{"streams": [{"codec_type": "video"}], "format": {"duration": "n/a"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseProbe([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "25/1", want: 25},
		{in: "24000/1001", want: 24000.0 / 1001.0},
		{in: "23.976", want: 23.976},
		{in: "0/0", wantErr: true},
		{in: "30/0", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFrameRate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFrameRate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetInfoMissingFile(t *testing.T) {
	p := NewProcessor(ffmpegbin.BinaryPaths{FFprobe: "ffprobe"})
	if _, err := p.GetInfo(context.Background(), filepath.Join(t.TempDir(), "none.mkv")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestGetInfoWithFFprobe(t *testing.T) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		t.Skip("ffprobe not installed")
	}
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}

	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.mkv")
	cmd := exec.Command(ffmpegPath, "-v", "quiet", "-f", "lavfi", "-i", "testsrc=duration=1:rate=25:size=64x64", clip)
	if err := cmd.Run(); err != nil {
		t.Skipf("could not synthesize a test clip: %v", err)
	}
	if _, err := os.Stat(clip); err != nil {
		t.Skip("test clip missing")
	}

	p := NewProcessor(ffmpegbin.BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath})
	info, err := p.GetInfo(context.Background(), clip)
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info.FrameRate != 25 {
		t.Errorf("FrameRate = %v, want 25", info.FrameRate)
	}
	if len(info.Subtitles) != 0 {
		t.Errorf("expected no subtitle streams, got %+v", info.Subtitles)
	}
}
