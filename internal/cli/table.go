package cli

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mgpai22/submod/internal/subtitle"
	"github.com/mgpai22/submod/internal/timecode"
	"github.com/mgpai22/submod/internal/video"
)

type column struct {
	title    string
	align    text.Align
	maxWidth int
}

var subtitleColumns = []column{
	{title: "ID", align: text.AlignRight},
	{title: "Start"},
	{title: "End"},
	{title: "Duration", align: text.AlignRight},
	{title: "Text", maxWidth: 60},
}

var streamColumns = []column{
	{title: "Stream", align: text.AlignRight},
	{title: "Codec"},
	{title: "Language"},
	{title: "Title"},
}

func renderListing(columns []column, rows []table.Row) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, c := range columns {
		header = append(header, c.title)
		configs = append(configs, table.ColumnConfig{
			Number:           i + 1,
			Align:            c.align,
			AlignHeader:      text.AlignLeft,
			WidthMax:         c.maxWidth,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// lists the subtitles at the given timeline indices, or all of them. The
// id shown is the loaded position, which scripts and edit flags address.
func renderSubtitles(tl *subtitle.Timeline, indices ...int) string {
	if len(indices) == 0 {
		indices = make([]int, tl.Len())
		for i := range indices {
			indices[i] = i
		}
	}
	rows := make([]table.Row, 0, len(indices))
	for _, i := range indices {
		s := tl.At(i)
		id := i + 1
		if origin, ok := s.Origin(); ok {
			id = origin.ID
		}
		rows = append(rows, table.Row{
			id,
			timecode.Format(s.Start),
			timecode.Format(s.End),
			timecode.Format(s.End - s.Start),
			strings.ReplaceAll(s.Text, "\n", " | "),
		})
	}
	return renderListing(subtitleColumns, rows)
}

func renderStreams(streams []video.SubtitleStream) string {
	rows := make([]table.Row, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, table.Row{s.Index, s.Codec, s.Language, s.Title})
	}
	return renderListing(streamColumns, rows)
}
