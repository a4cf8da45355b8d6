package subtitle

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/mgpai22/submod/internal/timecode"
)

var (
	vttTimingRegex = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimingRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// parses WebVTT content; cue settings after the timing are ignored
func parseVTT(content string) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var currentEntry *Entry
	var textLines []string
	lineNum := 0
	headerParsed := false
	entryIndex := 0

	flush := func() {
		if currentEntry != nil && len(textLines) > 0 {
			currentEntry.Text = strings.Join(textLines, "\n")
			entries = append(entries, *currentEntry)
		}
		currentEntry = nil
		textLines = nil
	}

	skipBlock := func() {
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == "" {
				break
			}
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if !headerParsed && strings.HasPrefix(trimmed, "WEBVTT") {
			headerParsed = true
			continue
		}

		if currentEntry == nil &&
			(strings.HasPrefix(trimmed, "NOTE") ||
				strings.HasPrefix(trimmed, "STYLE") ||
				strings.HasPrefix(trimmed, "REGION")) {
			skipBlock()
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		var start, end int64
		var err error
		if matches := vttTimingRegex.FindStringSubmatch(line); matches != nil {
			start, end, err = parseVTTTiming(
				matches[1], matches[2], matches[3], matches[4],
				matches[5], matches[6], matches[7], matches[8],
			)
		} else if short := vttShortTimingRegex.FindStringSubmatch(line); short != nil {
			start, end, err = parseVTTTiming(
				"00", short[1], short[2], short[3],
				"00", short[4], short[5], short[6],
			)
		} else {
			if currentEntry != nil {
				textLines = append(textLines, line)
			}
			// anything else before a timing line is a cue identifier
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
		}

		flush()
		entryIndex++
		currentEntry = &Entry{
			Index: entryIndex,
			Start: start,
			End:   end,
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT content: %w", err)
	}
	flush()

	return entries, nil
}

func parseVTTTiming(sh, sm, ss, sms, eh, em, es, ems string) (int64, int64, error) {
	start, err := timecode.FromParts(sh, sm, ss, sms)
	if err != nil {
		return 0, 0, err
	}
	end, err := timecode.FromParts(eh, em, es, ems)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
