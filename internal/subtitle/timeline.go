package subtitle

import (
	"math"
	"sort"
)

// Timeline keeps subtitles sorted by (start, end). Subtitles with equal
// keys keep their insertion order. A Timeline is not safe for concurrent
// use; callers serialize edits to one instance.
type Timeline struct {
	items []*Subtitle
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// FromEntries builds a timeline of loaded cues. Entries are ordered by
// (start, end) first so that every origin id equals the subtitle's
// 1-based position in the returned timeline.
func FromEntries(entries []Entry) *Timeline {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	t := &Timeline{items: make([]*Subtitle, 0, len(sorted))}
	for i, e := range sorted {
		t.items = append(t.items, NewWithOrigin(i+1, e.Start, e.End, e.Text))
	}
	return t
}

func (t *Timeline) Len() int {
	return len(t.items)
}

func (t *Timeline) At(i int) *Subtitle {
	return t.items[i]
}

// Subtitles returns the subtitles in timeline order. The slice is a copy;
// the subtitles are shared.
func (t *Timeline) Subtitles() []*Subtitle {
	out := make([]*Subtitle, len(t.items))
	copy(out, t.items)
	return out
}

// Clone returns a deep copy including origin snapshots.
func (t *Timeline) Clone() *Timeline {
	c := &Timeline{items: make([]*Subtitle, len(t.items))}
	for i, s := range t.items {
		c.items[i] = s.clone()
	}
	return c
}

// Add inserts s after every subtitle with a key <= its own and returns
// the index it was placed at.
func (t *Timeline) Add(s *Subtitle) int {
	i := t.upperBound(s.Start, s.End)
	t.items = append(t.items, nil)
	copy(t.items[i+1:], t.items[i:])
	t.items[i] = s
	return i
}

func (t *Timeline) Remove(i int) {
	copy(t.items[i:], t.items[i+1:])
	t.items[len(t.items)-1] = nil
	t.items = t.items[:len(t.items)-1]
}

// QueryActive returns the subtitle shown at millis. Among overlapping
// subtitles the one with the smallest index wins. Returns (-1, nil) if
// nothing is shown.
func (t *Timeline) QueryActive(millis int64) (int, *Subtitle) {
	if len(t.items) == 0 {
		return -1, nil
	}
	i := t.lowerBound(millis, millis)
	if i >= len(t.items) {
		i = len(t.items) - 1
	}
	found, index := (*Subtitle)(nil), -1
	for ; i >= 0; i-- {
		s := t.items[i]
		if millis >= s.End {
			break
		}
		if s.Start <= millis {
			found, index = s, i
		}
	}
	return index, found
}

// QueryNearest returns the subtitle shown at millis or, if none is
// shown, the next one starting after millis (the last subtitle when
// millis is past the end). Used to keep a view on the relevant row
// between captions.
func (t *Timeline) QueryNearest(millis int64) (int, *Subtitle) {
	if len(t.items) == 0 {
		return -1, nil
	}
	i := t.lowerBound(millis, millis)
	if i >= len(t.items) {
		i = len(t.items) - 1
	}
	found, index := t.items[i], i
	for ; i >= 0; i-- {
		s := t.items[i]
		if millis >= s.End {
			break
		}
		found, index = s, i
	}
	return index, found
}

// Move shifts the subtitle at i by delta milliseconds and returns its new
// index. Each bound is clamped at 0 independently.
func (t *Timeline) Move(i int, delta int64) int {
	s := t.items[i]
	newStart := clampZero(s.Start + delta)
	newEnd := clampZero(s.End + delta)
	if newStart == s.Start && newEnd == s.End {
		return i
	}
	t.Remove(i)
	s.Start, s.End = newStart, newEnd
	return t.Add(s)
}

// MoveBy shifts the subtitle at i, and every following subtitle when
// subsequent is set, by delta. Positive deltas are applied right to left
// and negative ones left to right so that re-inserted subtitles never
// shift a not yet processed index. Returns the new index of the subtitle
// that was at i.
func (t *Timeline) MoveBy(i int, delta int64, subsequent bool) int {
	if delta == 0 {
		return i
	}
	anchor := t.items[i]
	last := i
	if subsequent {
		last = len(t.items) - 1
	}
	if delta > 0 {
		for j := last; j >= i; j-- {
			t.Move(j, delta)
		}
	} else {
		for j := i; j <= last; j++ {
			t.Move(j, delta)
		}
	}
	return t.indexOf(anchor)
}

// MoveTo moves the subtitle at i (and the following ones if subsequent)
// so that it starts at start.
func (t *Timeline) MoveTo(i int, start int64, subsequent bool) int {
	return t.MoveBy(i, start-t.items[i].Start, subsequent)
}

// Edit replaces the values of the subtitle at i, keeping its origin.
// Returns its new index.
func (t *Timeline) Edit(i int, start, end int64, text string) int {
	s := t.items[i]
	if s.Start == start && s.End == end {
		s.Text = text
		return i
	}
	t.Remove(i)
	s.Start, s.End, s.Text = start, end, text
	return t.Add(s)
}

// ChangeFPS rescales every subtitle from fpsFrom to fpsTo by converting
// to a frame count at the old rate and back at the new rate, flooring at
// both steps. Order is preserved. Returns the number of subtitles
// changed, 0 when the rates are equal.
func (t *Timeline) ChangeFPS(fpsFrom, fpsTo float64) int {
	if fpsFrom == fpsTo {
		return 0
	}
	for _, s := range t.items {
		s.Start = convertFrames(s.Start, fpsFrom, fpsTo)
		s.End = convertFrames(s.End, fpsFrom, fpsTo)
	}
	return len(t.items)
}

// IndexOfOrigin returns the current index of the subtitle loaded at
// 1-based position id, or -1.
func (t *Timeline) IndexOfOrigin(id int) int {
	for i, s := range t.items {
		if s.origin != nil && s.origin.ID == id {
			return i
		}
	}
	return -1
}

func (t *Timeline) indexOf(s *Subtitle) int {
	for i, item := range t.items {
		if item == s {
			return i
		}
	}
	return -1
}

// first index whose key is not less than (start, end)
func (t *Timeline) lowerBound(start, end int64) int {
	key := Subtitle{Start: start, End: end}
	return sort.Search(len(t.items), func(j int) bool {
		return !t.items[j].Less(&key)
	})
}

// first index whose key is greater than (start, end)
func (t *Timeline) upperBound(start, end int64) int {
	key := Subtitle{Start: start, End: end}
	return sort.Search(len(t.items), func(j int) bool {
		return key.Less(t.items[j])
	})
}

func convertFrames(millis int64, fpsFrom, fpsTo float64) int64 {
	frames := math.Floor(float64(millis) * fpsFrom / 1000)
	return int64(math.Floor(frames * 1000 / fpsTo))
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
