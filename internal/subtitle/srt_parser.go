package subtitle

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/submod/internal/timecode"
)

var (
	srtTimingRegex = regexp.MustCompile(
		`^\s*(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})(.*)$`,
	)
	srtCoordinatesRegex = regexp.MustCompile(`(?i)\bX1:\s*\d+`)
)

// parses SubRip content that has already been decoded to a string
func parseSRT(content string) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var currentEntry *Entry
	var textLines []string
	timed := false
	lineNum := 0

	flush := func() {
		if currentEntry != nil && timed {
			currentEntry.Text = strings.Join(textLines, "\n")
			entries = append(entries, *currentEntry)
		}
		currentEntry = nil
		textLines = nil
		timed = false
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			if timed && len(textLines) > 0 {
				flush()
			}
			continue
		}

		if currentEntry == nil {
			index, err := strconv.Atoi(strings.TrimSpace(line))
			if err == nil {
				currentEntry = &Entry{Index: index}
				continue
			}
		}

		if currentEntry != nil && !timed {
			matches := srtTimingRegex.FindStringSubmatch(line)
			if matches == nil {
				return nil, fmt.Errorf(
					"invalid timing line at line %d: %q",
					lineNum,
					line,
				)
			}
			if srtCoordinatesRegex.MatchString(matches[9]) {
				return nil, fmt.Errorf(
					"subtitle coordinates are not supported (line %d)",
					lineNum,
				)
			}
			start, err := timecode.FromParts(
				matches[1], matches[2], matches[3], matches[4],
			)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid start timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			end, err := timecode.FromParts(
				matches[5], matches[6], matches[7], matches[8],
			)
			if err != nil {
				return nil, fmt.Errorf(
					"invalid end timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			currentEntry.Start = start
			currentEntry.End = end
			timed = true
			continue
		}

		if currentEntry != nil {
			textLines = append(textLines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT content: %w", err)
	}
	flush()

	return entries, nil
}
