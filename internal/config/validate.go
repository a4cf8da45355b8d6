package config

import (
	"fmt"

	"github.com/mgpai22/submod/internal/logging"
	"github.com/mgpai22/submod/internal/textenc"
)

// Validate ensures the configuration is usable. Errors name the TOML key.
func (c *Config) Validate() error {
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateFPS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSubtitles() error {
	if !textenc.Known(c.Subtitles.DefaultEncoding) {
		return fmt.Errorf("subtitles.default_encoding: unknown encoding %q", c.Subtitles.DefaultEncoding)
	}
	switch c.Subtitles.OutputFormat {
	case "", "srt", "vtt", "ass":
	default:
		return fmt.Errorf("subtitles.output_format must be srt, vtt or ass, got %q", c.Subtitles.OutputFormat)
	}
	return nil
}

func (c *Config) validateFPS() error {
	if c.FPS.From <= 0 {
		return fmt.Errorf("fps.from must be positive, got %v", c.FPS.From)
	}
	if c.FPS.To <= 0 {
		return fmt.Errorf("fps.to must be positive, got %v", c.FPS.To)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
