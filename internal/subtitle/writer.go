package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/submod/internal/fileutil"
	"github.com/mgpai22/submod/internal/timecode"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "Submod Subtitles",
			FontName: "Arial",
			FontSize: 20,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writes the timeline to an SRT file
func (w *SRTWriter) Write(timeline *Timeline, path string) error {
	return fileutil.WriteFileAtomic(path, w.Encode(timeline), 0644)
}

// SubRip text, numbered from 1 in timeline order
func (w *SRTWriter) Encode(timeline *Timeline) []byte {
	var sb strings.Builder
	for i, sub := range timeline.items {
		// index (1-based)
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			timecode.FormatComma(sub.Start),
			timecode.FormatComma(sub.End)))

		sb.WriteString(sub.Text)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

// writes the timeline to a VTT file
func (w *VTTWriter) Write(timeline *Timeline, path string) error {
	return fileutil.WriteFileAtomic(path, w.Encode(timeline), 0644)
}

func (w *VTTWriter) Encode(timeline *Timeline) []byte {
	var sb strings.Builder

	sb.WriteString("WEBVTT\n\n")

	for i, sub := range timeline.items {
		// optional cue identifier
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// timestamps: 00:00:00.000 --> 00:00:00.000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			timecode.Format(sub.Start),
			timecode.Format(sub.End)))

		sb.WriteString(sub.Text)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

// writes the timeline to an ASS file
func (w *ASSWriter) Write(timeline *Timeline, path string) error {
	return fileutil.WriteFileAtomic(path, w.Encode(timeline), 0644)
}

func (w *ASSWriter) Encode(timeline *Timeline) []byte {
	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize))

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, sub := range timeline.items {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(sub.Start),
			formatASSTime(sub.End),
			escapeASSText(sub.Text)))
	}
	return []byte(sb.String())
}

// H:MM:SS.cc, centiseconds truncated
func formatASSTime(millis int64) string {
	if millis < 0 {
		millis = 0
	}
	hours := millis / 3600000
	minutes := (millis / 60000) % 60
	seconds := (millis / 1000) % 60
	centis := (millis % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\\N")
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
