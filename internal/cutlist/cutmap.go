// Package cutlist maps times between an uncut video and the cut version
// produced by keeping a list of segments.
package cutlist

// Segment is a kept span of the uncut video. Start and Duration are
// positions in the uncut timeline; Position is the running total of kept
// duration up to and including this segment, i.e. where the segment ends
// in the cut timeline. All values are milliseconds.
type Segment struct {
	Start    int64
	Duration int64
	Position int64
}

// offset between the uncut and the cut timeline inside the segment
func (s Segment) offset() int64 {
	return s.Start - (s.Position - s.Duration)
}

// CutMap is an immutable, ordered list of kept segments. A nil *CutMap is
// valid and maps every time onto itself.
type CutMap struct {
	segments []Segment
}

// New returns a map of the given segments. Segments must be ordered by
// Start and carry cumulative positions; see FromKeeps otherwise.
func New(segments []Segment) *CutMap {
	copied := make([]Segment, len(segments))
	copy(copied, segments)
	return &CutMap{segments: copied}
}

// Keep is a (start, duration) span of the uncut video.
type Keep struct {
	Start    int64
	Duration int64
}

// FromKeeps computes cumulative positions for the kept spans in order.
func FromKeeps(keeps []Keep) *CutMap {
	segments := make([]Segment, 0, len(keeps))
	var position int64
	for _, k := range keeps {
		position += k.Duration
		segments = append(segments, Segment{
			Start:    k.Start,
			Duration: k.Duration,
			Position: position,
		})
	}
	return &CutMap{segments: segments}
}

func (m *CutMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.segments)
}

// Segments returns a copy of the segments.
func (m *CutMap) Segments() []Segment {
	if m == nil {
		return nil
	}
	out := make([]Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// ExportOffset selects the first segment whose cut position lies after
// millis and returns its offset.
func (m *CutMap) ExportOffset(millis int64) int64 {
	return m.offset(func(s Segment) bool {
		return s.Position > millis
	})
}

// RunOffset selects the first segment whose uncut end lies after millis
// and returns its offset.
func (m *CutMap) RunOffset(millis int64) int64 {
	return m.offset(func(s Segment) bool {
		return s.Start+s.Duration > millis
	})
}

// ToCutTime is the export transform used when generating scripts:
// millis + ExportOffset(millis).
func (m *CutMap) ToCutTime(millis int64) int64 {
	return millis + m.ExportOffset(millis)
}

// ToUncutTime is the run transform used when replaying scripts:
// millis - RunOffset(millis). It reverses ToCutTime for times that fall
// inside a kept segment; times in a removed span have no inverse.
func (m *CutMap) ToUncutTime(millis int64) int64 {
	return millis - m.RunOffset(millis)
}

// falls back to the last segment, or 0 for an empty map
func (m *CutMap) offset(match func(Segment) bool) int64 {
	if m == nil || len(m.segments) == 0 {
		return 0
	}
	for _, s := range m.segments {
		if match(s) {
			return s.offset()
		}
	}
	return m.segments[len(m.segments)-1].offset()
}
