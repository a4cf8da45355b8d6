package script

import (
	"errors"
	"fmt"
)

// ErrAlreadyUncut is returned when converting a script whose timings
// already refer to the uncut video.
var ErrAlreadyUncut = errors.New("script timings are already for the uncut video")

// SchemaError reports a malformed script. Key is the path of the
// offending value, e.g. "move[2].by".
type SchemaError struct {
	Key    string
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid script: %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid script: %s: %s: %s", e.Key, e.Reason, e.Value)
}

// IntegrityError reports a subtitle file whose checksum differs from the
// one recorded in the script.
type IntegrityError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"subtitle %s has a wrong checksum (%s, script expects %s)",
		e.Path,
		e.Actual,
		e.Expected,
	)
}

// RangeError reports the ids of an id spec that do not exist in a
// timeline of Size subtitles. Missing ids are always a contiguous tail of
// the spec, so they are kept as a range.
type RangeError struct {
	Missing IDSpec
	Size    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf(
		"subtitle(s) %s not found (timeline has %d)",
		e.Missing,
		e.Size,
	)
}
