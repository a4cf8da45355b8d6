package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mgpai22/submod/internal/config"
	"github.com/pelletier/go-toml/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	want := filepath.Join(tempHome, ".config", "submod", "config.toml")
	if resolved != want {
		t.Fatalf("resolved path = %q, want %q", resolved, want)
	}
	if diff := cmp.Diff(config.Default(), *cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, `
[subtitles]
default_encoding = "cp1252"
output_format = "VTT"

[scripts]
dir = "~/scripts"
extension = "sync"

[fps]
from = 25.0
to = 23.976

[logging]
level = "DEBUG"
format = "json"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("Load resolved %q (exists=%v), want %q", resolved, exists, path)
	}

	want := config.Config{
		Subtitles: config.Subtitles{DefaultEncoding: "cp1252", OutputSuffix: "_submod", OutputFormat: "vtt"},
		Scripts:   config.Scripts{Dir: filepath.Join(tempHome, "scripts"), Extension: ".sync"},
		FPS:       config.FPS{From: 25, To: 23.976},
		Logging:   config.Logging{Level: "debug", Format: "json"},
	}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SUBMOD_ENCODING", "latin-1")
	t.Setenv("SUBMOD_LOG_LEVEL", "warn")
	t.Setenv("SUBMOD_FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("SUBMOD_FFPROBE_PATH", "/opt/ffmpeg/bin/ffprobe")

	path := writeConfig(t, `
[subtitles]
default_encoding = "cp1252"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Subtitles.DefaultEncoding != "latin-1" {
		t.Errorf("encoding = %q, want env value", cfg.Subtitles.DefaultEncoding)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Video.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" || cfg.Video.FFprobePath != "/opt/ffmpeg/bin/ffprobe" {
		t.Errorf("unexpected video paths: %+v", cfg.Video)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		content string
		wantKey string
	}{
		{"encoding", "[subtitles]\ndefault_encoding = \"klingon\"\n", "subtitles.default_encoding"},
		{"output format", "[subtitles]\noutput_format = \"sub\"\n", "subtitles.output_format"},
		{"fps", "[fps]\nfrom = 0.0\n", "fps.from"},
		{"log level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("error %q does not name %s", err, tt.wantKey)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(writeConfig(t, "[subtitles]\nencodng = \"utf-8\"\n")); err == nil {
		t.Fatal("expected an error for a misspelled key")
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config does not validate: %v", err)
	}
	if cfg.Scripts.Extension != ".submod" {
		t.Errorf("sample extension = %q", cfg.Scripts.Extension)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != config.SampleConfig() {
		t.Error("written sample differs from SampleConfig")
	}
	if err := config.CreateSample(path); err == nil {
		t.Error("expected an error when the file exists")
	}
}
