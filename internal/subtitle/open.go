package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/submod/internal/textenc"
)

// Load reads a subtitle file in the named encoding (empty means UTF-8)
// and returns a timeline whose subtitles carry origin snapshots.
func Load(path, encoding string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	entries, err := Parse(data, GetFormatFromExtension(path), encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return FromEntries(entries), nil
}

// Parse decodes raw subtitle bytes and returns the cues in file order.
func Parse(data []byte, format Format, encoding string) ([]Entry, error) {
	content, err := textenc.Decode(data, encoding)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSRT:
		return parseSRT(content)
	case FormatVTT:
		return parseVTT(content)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
}

// Save writes the timeline in the format implied by the extension of path.
func Save(path string, timeline *Timeline) error {
	writer, err := NewWriter(GetFormatFromExtension(path))
	if err != nil {
		return err
	}
	if err := writer.Write(timeline, path); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}

// reports whether path has an extension Load understands
func IsLoadable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt", ".vtt":
		return true
	}
	return false
}
