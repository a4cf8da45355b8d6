// Package timecode converts between millisecond counts and the
// HH:MM:SS.mmm strings used by subtitle files and sync scripts.
package timecode

import (
	"fmt"
	"regexp"
	"strconv"
)

var timeRegex = regexp.MustCompile(`^([+-]?)(\d{2,}):([0-5]\d):([0-5]\d)[.,](\d{3})$`)

// Parse reads an absolute (HH:MM:SS.mmm or HH:MM:SS,mmm) or signed
// (+HH:MM:SS.mmm / -HH:MM:SS.mmm) time and returns milliseconds.
func Parse(s string) (int64, error) {
	matches := timeRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%q is not a time", s)
	}
	millis, err := FromParts(matches[2], matches[3], matches[4], matches[5])
	if err != nil {
		return 0, fmt.Errorf("%q is not a time: %w", s, err)
	}
	if matches[1] == "-" {
		millis = -millis
	}
	return millis, nil
}

// FromParts sums hour, minute, second and millisecond digit strings.
func FromParts(hours, minutes, seconds, millis string) (int64, error) {
	h, err := strconv.ParseInt(hours, 10, 64)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseInt(minutes, 10, 64)
	if err != nil {
		return 0, err
	}
	s, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return 0, err
	}
	return h*3600000 + m*60000 + s*1000 + ms, nil
}

// Format renders millis as HH:MM:SS.mmm. Negative values get a leading '-'.
func Format(millis int64) string {
	return format(millis, '.')
}

// FormatComma renders millis as HH:MM:SS,mmm (SubRip style).
func FormatComma(millis int64) string {
	return format(millis, ',')
}

// FormatSigned renders a delta with an explicit sign, e.g. +00:00:01.500.
func FormatSigned(millis int64) string {
	if millis < 0 {
		return Format(millis)
	}
	return "+" + Format(millis)
}

func format(millis int64, sep byte) string {
	sign := ""
	if millis < 0 {
		sign = "-"
		millis = -millis
	}
	hours := millis / 3600000
	millis -= hours * 3600000
	minutes := millis / 60000
	millis -= minutes * 60000
	seconds := millis / 1000
	millis -= seconds * 1000
	return fmt.Sprintf("%s%02d:%02d:%02d%c%03d", sign, hours, minutes, seconds, sep, millis)
}
