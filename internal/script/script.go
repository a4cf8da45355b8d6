// Package script reads, writes, generates and replays sync scripts: JSON
// documents that describe how to turn one subtitle file into another
// through move, update, remove and add operations.
package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/mgpai22/submod/internal/fileutil"
	"github.com/mgpai22/submod/internal/textenc"
	"github.com/mgpai22/submod/internal/timecode"
)

// TimingsFor tells which video the absolute times of a script refer to.
type TimingsFor string

const (
	TimingsOriginal TimingsFor = "original"
	TimingsUncut    TimingsFor = "uncut"
)

// Script is a parsed sync script. Field order is the key order of the
// encoded document.
type Script struct {
	Subtitle   SubtitleRef   `json:"subtitle"`
	TimingsFor TimingsFor    `json:"timings-for"`
	Move       []MoveEntry   `json:"move"`
	Update     []UpdateEntry `json:"update"`
	Remove     []RemoveEntry `json:"remove"`
	Add        []AddEntry    `json:"add"`
}

// SubtitleRef identifies the subtitle file a script applies to.
type SubtitleRef struct {
	Filename string `json:"filename"`
	SHA256   string `json:"sha256"`
	Encoding string `json:"encoding,omitempty"`
}

type MoveEntry struct {
	ID IDSpec `json:"id"`
	By Delta  `json:"by"`
}

// UpdateEntry sets only the fields that are present.
type UpdateEntry struct {
	ID    IDSpec  `json:"id"`
	Start *Time   `json:"start,omitempty"`
	End   *Time   `json:"end,omitempty"`
	Text  *string `json:"text,omitempty"`
}

type RemoveEntry struct {
	ID IDSpec `json:"id"`
}

type AddEntry struct {
	Start Time   `json:"start"`
	End   Time   `json:"end"`
	Text  string `json:"text"`
}

// Time is an absolute time in milliseconds, encoded as "HH:MM:SS.mmm".
type Time int64

func (t Time) String() string {
	return timecode.Format(int64(t))
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	millis, err := timecode.Parse(s)
	if err != nil {
		return err
	}
	*t = Time(millis)
	return nil
}

// Delta is a signed shift in milliseconds, encoded as "+HH:MM:SS.mmm" or
// "-HH:MM:SS.mmm".
type Delta int64

func (d Delta) String() string {
	return timecode.FormatSigned(int64(d))
}

func (d Delta) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Delta) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	millis, err := timecode.Parse(s)
	if err != nil {
		return err
	}
	*d = Delta(millis)
	return nil
}

// IDSpec addresses one subtitle or an inclusive range of subtitles by
// their 1-based position in the timeline the script was made for.
type IDSpec struct {
	Lo int
	Hi int
}

func Single(id int) IDSpec {
	return IDSpec{Lo: id, Hi: id}
}

func Range(lo, hi int) IDSpec {
	return IDSpec{Lo: lo, Hi: hi}
}

func (s IDSpec) IsRange() bool {
	return s.Lo != s.Hi
}

func (s IDSpec) String() string {
	if !s.IsRange() {
		return strconv.Itoa(s.Lo)
	}
	return fmt.Sprintf("%d-%d", s.Lo, s.Hi)
}

// Len is the number of ids in the spec.
func (s IDSpec) Len() int {
	if s.Hi < s.Lo {
		return 0
	}
	return s.Hi - s.Lo + 1
}

var idRangeRegex = regexp.MustCompile(`^(\d+)-(\d+)$`)

// ParseIDSpec reads "7" or "3-9".
func ParseIDSpec(s string) (IDSpec, error) {
	if m := idRangeRegex.FindStringSubmatch(s); m != nil {
		lo, err := strconv.Atoi(m[1])
		if err != nil {
			return IDSpec{}, fmt.Errorf("invalid id range %q: %w", s, err)
		}
		hi, err := strconv.Atoi(m[2])
		if err != nil {
			return IDSpec{}, fmt.Errorf("invalid id range %q: %w", s, err)
		}
		if lo < 1 || lo >= hi {
			return IDSpec{}, fmt.Errorf("invalid id range %q", s)
		}
		return Range(lo, hi), nil
	}
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return IDSpec{}, fmt.Errorf("invalid id %q", s)
	}
	return Single(id), nil
}

// single ids are numbers, ranges are "lo-hi" strings
func (s IDSpec) MarshalJSON() ([]byte, error) {
	if !s.IsRange() {
		return []byte(strconv.Itoa(s.Lo)), nil
	}
	return json.Marshal(s.String())
}

func (s *IDSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := ParseIDSpec(raw)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*s = Single(id)
	return nil
}

// New returns an empty script for the given subtitle file.
func New(ref SubtitleRef) *Script {
	return &Script{
		Subtitle:   ref,
		TimingsFor: TimingsOriginal,
		Move:       []MoveEntry{},
		Update:     []UpdateEntry{},
		Remove:     []RemoveEntry{},
		Add:        []AddEntry{},
	}
}

// Parse validates and decodes a script document. A missing timings-for
// defaults to "original".
func Parse(data []byte) (*Script, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &SchemaError{Key: "$", Reason: err.Error()}
	}
	if s.TimingsFor == "" {
		s.TimingsFor = TimingsOriginal
	}
	s.normalize()
	return &s, nil
}

// Load reads and parses a script file stored in the named encoding.
func Load(path, encoding string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	content, err := textenc.Decode(data, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse([]byte(content))
}

// Encode renders the script as indented UTF-8 JSON. Empty operation
// lists are kept.
func (s *Script) Encode() ([]byte, error) {
	c := s.Clone()
	c.normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode script: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the encoded script to path.
func Save(path string, s *Script) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	return nil
}

// Clone returns a deep copy.
func (s *Script) Clone() *Script {
	c := *s
	c.Move = append(make([]MoveEntry, 0, len(s.Move)), s.Move...)
	c.Remove = append(make([]RemoveEntry, 0, len(s.Remove)), s.Remove...)
	c.Add = append(make([]AddEntry, 0, len(s.Add)), s.Add...)
	c.Update = make([]UpdateEntry, len(s.Update))
	for i, u := range s.Update {
		c.Update[i] = u.clone()
	}
	return &c
}

func (u UpdateEntry) clone() UpdateEntry {
	c := UpdateEntry{ID: u.ID}
	if u.Start != nil {
		v := *u.Start
		c.Start = &v
	}
	if u.End != nil {
		v := *u.End
		c.End = &v
	}
	if u.Text != nil {
		v := *u.Text
		c.Text = &v
	}
	return c
}

func (s *Script) normalize() {
	if s.Move == nil {
		s.Move = []MoveEntry{}
	}
	if s.Update == nil {
		s.Update = []UpdateEntry{}
	}
	if s.Remove == nil {
		s.Remove = []RemoveEntry{}
	}
	if s.Add == nil {
		s.Add = []AddEntry{}
	}
}
