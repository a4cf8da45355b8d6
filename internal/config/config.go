package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mgpai22/submod/internal/fileutil"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Subtitles contains defaults for reading and writing subtitle files.
type Subtitles struct {
	DefaultEncoding string `toml:"default_encoding"`
	OutputSuffix    string `toml:"output_suffix"`
	OutputFormat    string `toml:"output_format"`
}

// Scripts contains where and how sync scripts are stored.
type Scripts struct {
	Dir       string `toml:"dir"`
	Extension string `toml:"extension"`
}

// FPS holds the default frame rates of the fps command.
type FPS struct {
	From float64 `toml:"from"`
	To   float64 `toml:"to"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Video locates the ffmpeg tools used by the fps and extract commands.
type Video struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
}

// Config encapsulates all configuration values for submod.
type Config struct {
	Subtitles Subtitles `toml:"subtitles"`
	Scripts   Scripts   `toml:"scripts"`
	FPS       FPS       `toml:"fps"`
	Logging   Logging   `toml:"logging"`
	Video     Video     `toml:"video"`
}

// DefaultConfigPath returns the absolute path of the default configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. An empty path
// means the default location. A missing file is not an error: defaults
// are returned and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	// a missing .env is the common case
	_ = godotenv.Load()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		name   string
		target *string
	}{
		{"SUBMOD_ENCODING", &c.Subtitles.DefaultEncoding},
		{"SUBMOD_LOG_LEVEL", &c.Logging.Level},
		{"SUBMOD_FFMPEG_PATH", &c.Video.FFmpegPath},
		{"SUBMOD_FFPROBE_PATH", &c.Video.FFprobePath},
		{"SUBMOD_SCRIPT_DIR", &c.Scripts.Dir},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalize() error {
	var err error
	c.Subtitles.DefaultEncoding = strings.TrimSpace(c.Subtitles.DefaultEncoding)
	if c.Subtitles.DefaultEncoding == "" {
		c.Subtitles.DefaultEncoding = defaultEncoding
	}
	c.Subtitles.OutputFormat = strings.ToLower(strings.TrimSpace(c.Subtitles.OutputFormat))

	c.Scripts.Extension = strings.TrimSpace(c.Scripts.Extension)
	if c.Scripts.Extension == "" {
		c.Scripts.Extension = defaultScriptExtension
	}
	if !strings.HasPrefix(c.Scripts.Extension, ".") {
		c.Scripts.Extension = "." + c.Scripts.Extension
	}
	if c.Scripts.Dir, err = expandPath(c.Scripts.Dir); err != nil {
		return fmt.Errorf("scripts.dir: %w", err)
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}

	if c.Video.FFmpegPath, err = expandPath(c.Video.FFmpegPath); err != nil {
		return fmt.Errorf("video.ffmpeg_path: %w", err)
	}
	if c.Video.FFprobePath, err = expandPath(c.Video.FFprobePath); err != nil {
		return fmt.Errorf("video.ffprobe_path: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	expanded, err := fileutil.ExpandHome(pathValue)
	if err != nil {
		return "", err
	}
	absolute, err := filepath.Abs(filepath.Clean(expanded))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", expanded, err)
	}
	return absolute, nil
}

// SampleConfig returns the commented sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path, creating parent
// directories. An existing file is left alone.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
