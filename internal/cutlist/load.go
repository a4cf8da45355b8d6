package cutlist

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-ini/ini"
	"github.com/mgpai22/submod/internal/textenc"
)

// Load reads a cutlist file in the named encoding. Every section whose
// name starts with "cut" ([Cut0], [Cut1], ...) is a kept segment, taken in
// file order, with Start and Duration given in seconds.
func Load(path, encoding string) (*CutMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cutlist: %w", err)
	}
	m, err := Parse(data, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cutlist %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and parses cutlist content.
func Parse(data []byte, encoding string) (*CutMap, error) {
	content, err := textenc.Decode(data, encoding)
	if err != nil {
		return nil, err
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:             true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, []byte(content))
	if err != nil {
		return nil, err
	}

	var keeps []Keep
	for _, section := range file.Sections() {
		if !strings.HasPrefix(section.Name(), "cut") {
			continue
		}
		start, err := seconds(section, "start")
		if err != nil {
			return nil, err
		}
		duration, err := seconds(section, "duration")
		if err != nil {
			return nil, err
		}
		keeps = append(keeps, Keep{Start: start, Duration: duration})
	}
	return FromKeeps(keeps), nil
}

// missing keys count as 0
func seconds(section *ini.Section, key string) (int64, error) {
	if !section.HasKey(key) {
		return 0, nil
	}
	value, err := section.Key(key).Float64()
	if err != nil {
		return 0, fmt.Errorf("[%s] %s: %w", section.Name(), key, err)
	}
	return int64(math.Round(value * 1000)), nil
}
