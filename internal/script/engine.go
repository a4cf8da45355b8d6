package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgpai22/submod/internal/cutlist"
	"github.com/mgpai22/submod/internal/fileutil"
	"github.com/mgpai22/submod/internal/logging"
	"github.com/mgpai22/submod/internal/subtitle"
)

// Loader reads the subtitle file a script is replayed against.
type Loader func(path string) (*subtitle.Timeline, error)

// EncodingLoader returns a Loader that reads files in the named encoding.
func EncodingLoader(encoding string) Loader {
	return func(path string) (*subtitle.Timeline, error) {
		return subtitle.Load(path, encoding)
	}
}

// Source is the unedited subtitle file a script is generated from.
type Source struct {
	Path     string
	SHA256   string
	Encoding string
	// timeline as loaded, before any edit
	Timeline *subtitle.Timeline
}

// NewSource hashes the file at path and snapshots the loaded timeline.
func NewSource(path, encoding string, timeline *subtitle.Timeline) (*Source, error) {
	if timeline == nil {
		return nil, errors.New("original timeline is missing")
	}
	sum, err := fileutil.SHA256File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash subtitle file: %w", err)
	}
	return &Source{
		Path:     path,
		SHA256:   sum,
		Encoding: encoding,
		Timeline: timeline.Clone(),
	}, nil
}

// Engine generates and replays scripts. The zero value is not usable;
// call NewEngine.
type Engine struct {
	logger *logging.Logger
}

// NewEngine returns an engine that logs replay and generate details at
// debug level. A nil logger discards them.
func NewEngine(logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{logger: logger}
}

// Run verifies the checksum of the subtitle file at path, loads it and
// applies the script in the order move, update, remove, add. Every id is
// resolved against the loaded timeline before the first change, so a
// failing script never yields a partially edited result. With a cut map
// the script's times are converted with the run transform.
func (e *Engine) Run(path string, load Loader, s *Script, cuts *cutlist.CutMap) (*subtitle.Timeline, error) {
	if err := verifyChecksum(path, s.Subtitle.SHA256); err != nil {
		return nil, err
	}
	e.logger.Debugw("Checksum verified", "path", path)

	timeline, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load subtitle file: %w", err)
	}

	moves := make([][]int, len(s.Move))
	for i, m := range s.Move {
		if moves[i], err = ResolveIDs(timeline, m.ID); err != nil {
			return nil, err
		}
	}
	updates := make([][]int, len(s.Update))
	for i, u := range s.Update {
		if updates[i], err = ResolveIDs(timeline, u.ID); err != nil {
			return nil, err
		}
	}
	removed := make(map[int]bool)
	for _, r := range s.Remove {
		indices, err := ResolveIDs(timeline, r.ID)
		if err != nil {
			return nil, err
		}
		for _, i := range indices {
			removed[i] = true
		}
	}

	// moves and updates change subtitles in place; the timeline is
	// rebuilt below to restore the order
	items := timeline.Subtitles()
	for i, m := range s.Move {
		by := int64(m.By)
		for _, idx := range moves[i] {
			sub := items[idx]
			offset := cuts.RunOffset(sub.Start + by)
			sub.Start = sub.Start + by - offset
			sub.End = sub.End + by - offset
		}
	}
	for i, u := range s.Update {
		for _, idx := range updates[i] {
			sub := items[idx]
			if u.Start != nil {
				sub.Start = cuts.ToUncutTime(int64(*u.Start))
			}
			if u.End != nil {
				sub.End = cuts.ToUncutTime(int64(*u.End))
			}
			if u.Text != nil {
				sub.Text = *u.Text
			}
		}
	}

	order := make([]int, 0, len(removed))
	for idx := range removed {
		order = append(order, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(order)))
	for _, idx := range order {
		items = append(items[:idx], items[idx+1:]...)
	}

	result := subtitle.NewTimeline()
	for _, sub := range items {
		result.Add(sub)
	}
	for _, a := range s.Add {
		result.Add(subtitle.New(
			cuts.ToUncutTime(int64(a.Start)),
			cuts.ToUncutTime(int64(a.End)),
			a.Text,
		))
	}

	e.logger.Debugw("Script applied",
		"moves", len(s.Move),
		"updates", len(s.Update),
		"removed", len(order),
		"added", len(s.Add),
		"subtitles", result.Len(),
	)
	return result, nil
}

type moveValue struct {
	diff   int64
	offset int64
}

type updateFields struct {
	hasStart bool
	start    int64
	hasEnd   bool
	end      int64
	hasText  bool
	text     string
}

func (f updateFields) entry(id IDSpec) UpdateEntry {
	u := UpdateEntry{ID: id}
	if f.hasStart {
		start := Time(f.start)
		u.Start = &start
	}
	if f.hasEnd {
		end := Time(f.end)
		u.End = &end
	}
	if f.hasText {
		text := f.text
		u.Text = &text
	}
	return u
}

// Generate diffs the edited timeline against the source and returns a
// script that replays the edits. Subtitles without origin become adds;
// uniform shifts become moves; any other change becomes an update of the
// changed fields; origins missing from the edited timeline become
// removes. Consecutive ids with equal payloads are merged into ranges.
// With a cut map the script's times are exported for the uncut video.
func (e *Engine) Generate(src *Source, edited *subtitle.Timeline, cuts *cutlist.CutMap) (*Script, error) {
	if src == nil || src.Timeline == nil {
		return nil, errors.New("failed to generate script: the original timeline is missing")
	}

	s := New(SubtitleRef{
		Filename: filepath.Base(src.Path),
		SHA256:   strings.ToLower(src.SHA256),
		Encoding: src.Encoding,
	})
	if cuts != nil {
		s.TimingsFor = TimingsUncut
	}

	moves := make(map[int]moveValue)
	updates := make(map[int]updateFields)
	processed := make(map[int]bool)

	for _, sub := range edited.Subtitles() {
		origin, ok := sub.Origin()
		if !ok {
			s.Add = append(s.Add, AddEntry{
				Start: Time(cuts.ToCutTime(sub.Start)),
				End:   Time(cuts.ToCutTime(sub.End)),
				Text:  sub.Text,
			})
			continue
		}

		processed[origin.ID] = true
		startDiff := sub.Start - origin.Start
		endDiff := sub.End - origin.End
		textChanged := sub.Text != origin.Text

		switch {
		case textChanged || startDiff != endDiff:
			var f updateFields
			if startDiff != 0 {
				f.hasStart, f.start = true, cuts.ToCutTime(sub.Start)
			}
			if endDiff != 0 {
				f.hasEnd, f.end = true, cuts.ToCutTime(sub.End)
			}
			if textChanged {
				f.hasText, f.text = true, sub.Text
			}
			updates[origin.ID] = f
		case startDiff != 0:
			moves[origin.ID] = moveValue{
				diff:   startDiff,
				offset: cuts.ExportOffset(sub.Start),
			}
		}
	}

	for _, r := range mergeRanges(updates) {
		s.Update = append(s.Update, r.Value.entry(r.spec()))
	}
	for _, r := range mergeRanges(moves) {
		s.Move = append(s.Move, MoveEntry{
			ID: r.spec(),
			By: Delta(r.Value.diff + r.Value.offset),
		})
	}

	removes := make(map[int]struct{})
	for _, sub := range src.Timeline.Subtitles() {
		if origin, ok := sub.Origin(); ok && !processed[origin.ID] {
			removes[origin.ID] = struct{}{}
		}
	}
	for _, r := range mergeRanges(removes) {
		s.Remove = append(s.Remove, RemoveEntry{ID: r.spec()})
	}

	e.logger.Debugw("Script generated",
		"moves", len(s.Move),
		"updates", len(s.Update),
		"removes", len(s.Remove),
		"adds", len(s.Add),
		"timings_for", s.TimingsFor,
	)
	return s, nil
}

// ConvertOriginalToUncut rewrites a script with "original" timings into
// an equivalent one with "uncut" timings so it can be replayed against a
// different cut of the same video. The subtitle file at path must match
// the script's checksum. The input script is not modified.
func (e *Engine) ConvertOriginalToUncut(path string, load Loader, s *Script, cuts *cutlist.CutMap) (*Script, error) {
	if s.TimingsFor == TimingsUncut {
		return nil, ErrAlreadyUncut
	}
	if err := verifyChecksum(path, s.Subtitle.SHA256); err != nil {
		return nil, err
	}
	timeline, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load subtitle file: %w", err)
	}

	// shifts of overlapping move entries add up as they do on replay
	totals := make(map[int]int64)
	for _, m := range s.Move {
		indices, err := ResolveIDs(timeline, m.ID)
		if err != nil {
			return nil, err
		}
		for _, idx := range indices {
			totals[idx] += int64(m.By)
		}
	}
	moves := make(map[int]moveValue, len(totals))
	for idx, by := range totals {
		sub := timeline.At(idx)
		id := idx + 1
		if origin, ok := sub.Origin(); ok {
			id = origin.ID
		}
		moves[id] = moveValue{
			diff:   by,
			offset: cuts.ExportOffset(sub.Start + by),
		}
	}

	out := s.Clone()
	out.Move = []MoveEntry{}
	for _, r := range mergeRanges(moves) {
		out.Move = append(out.Move, MoveEntry{
			ID: r.spec(),
			By: Delta(r.Value.diff + r.Value.offset),
		})
	}
	for i := range out.Update {
		if out.Update[i].Start != nil {
			v := Time(cuts.ToCutTime(int64(*out.Update[i].Start)))
			out.Update[i].Start = &v
		}
		if out.Update[i].End != nil {
			v := Time(cuts.ToCutTime(int64(*out.Update[i].End)))
			out.Update[i].End = &v
		}
	}
	for i := range out.Add {
		out.Add[i].Start = Time(cuts.ToCutTime(int64(out.Add[i].Start)))
		out.Add[i].End = Time(cuts.ToCutTime(int64(out.Add[i].End)))
	}
	out.TimingsFor = TimingsUncut

	e.logger.Debugw("Script converted to uncut timings",
		"moves", len(out.Move),
		"segments", cuts.Len(),
	)
	return out, nil
}

// ResolveIDs maps an id spec to 0-based indices of timeline. The ids
// outside the timeline are reported in one *RangeError.
func ResolveIDs(timeline *subtitle.Timeline, spec IDSpec) ([]int, error) {
	size := timeline.Len()
	if spec.Lo < 1 || spec.Hi < spec.Lo {
		return nil, &RangeError{Missing: spec, Size: size}
	}
	if spec.Hi > size {
		return nil, &RangeError{Missing: Range(max(spec.Lo, size+1), spec.Hi), Size: size}
	}
	indices := make([]int, 0, spec.Len())
	for id := spec.Lo; id <= spec.Hi; id++ {
		indices = append(indices, id-1)
	}
	return indices, nil
}

func verifyChecksum(path, expected string) error {
	actual, err := fileutil.SHA256File(path)
	if err != nil {
		return fmt.Errorf("failed to hash subtitle file: %w", err)
	}
	if !strings.EqualFold(actual, expected) {
		return &IntegrityError{Path: path, Expected: expected, Actual: actual}
	}
	return nil
}
