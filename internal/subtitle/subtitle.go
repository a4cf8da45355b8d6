package subtitle

// raw cue as read from a subtitle file, times in milliseconds
type Entry struct {
	Index int
	Start int64
	End   int64
	Text  string
}

// snapshot of a subtitle as it was loaded, used as the diff baseline
type Origin struct {
	ID    int
	Start int64
	End   int64
	Text  string
}

// Subtitle is a timed text interval. Start and End are milliseconds.
// The origin snapshot is captured once at construction and never changes.
type Subtitle struct {
	Start int64
	End   int64
	Text  string

	origin *Origin
}

// creates a subtitle without origin (added after loading)
func New(start, end int64, text string) *Subtitle {
	return &Subtitle{Start: start, End: end, Text: text}
}

// creates a subtitle that remembers its 1-based position in the loaded file
func NewWithOrigin(id int, start, end int64, text string) *Subtitle {
	return &Subtitle{
		Start: start,
		End:   end,
		Text:  text,
		origin: &Origin{
			ID:    id,
			Start: start,
			End:   end,
			Text:  text,
		},
	}
}

// Origin returns the snapshot taken at load time. ok is false for
// subtitles that were added afterwards.
func (s *Subtitle) Origin() (Origin, bool) {
	if s.origin == nil {
		return Origin{}, false
	}
	return *s.origin, true
}

// ordering key: start, then end
func (s *Subtitle) Less(other *Subtitle) bool {
	if s.Start == other.Start {
		return s.End < other.End
	}
	return s.Start < other.Start
}

func (s *Subtitle) clone() *Subtitle {
	c := *s
	if s.origin != nil {
		o := *s.origin
		c.origin = &o
	}
	return &c
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for writing subtitles to files
type Writer interface {
	Write(timeline *Timeline, path string) error
}
