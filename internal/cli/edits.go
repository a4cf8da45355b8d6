package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgpai22/submod/internal/script"
	"github.com/mgpai22/submod/internal/subtitle"
	"github.com/mgpai22/submod/internal/timecode"
	"github.com/spf13/cobra"
)

// edits given on the generate command line; ids are positions in the
// loaded file, the same ids the generated script uses
type editPlan struct {
	fps     *fpsChange
	moves   []moveEdit
	sets    []setEdit
	removes []script.IDSpec
	adds    []addEdit
}

type fpsChange struct {
	from, to float64
}

type moveEdit struct {
	ids        script.IDSpec
	delta      int64
	subsequent bool
}

type setEdit struct {
	id    int
	field string
	start int64
	end   int64
	text  string
}

type addEdit struct {
	start, end int64
	text       string
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringArray("move", nil, "Move subtitles: ID=DELTA or LO-HI=DELTA (e.g. 3=+00:00:01.500)")
	cmd.Flags().
		StringArray("shift", nil, "Move a subtitle and every later one: ID=DELTA")
	cmd.Flags().
		StringArray("set", nil, "Change one field: ID.start=TIME, ID.end=TIME or ID.text=TEXT")
	cmd.Flags().
		StringArray("remove", nil, "Remove subtitles: ID or LO-HI")
	cmd.Flags().
		StringArray("add", nil, "Add a subtitle: START,END,TEXT (\\n in TEXT is a line break)")
	cmd.Flags().
		String("fps", "", "Rescale every subtitle between frame rates: FROM:TO (e.g. 23.976:25)")
}

func editsFromFlags(cmd *cobra.Command) (*editPlan, error) {
	plan := &editPlan{}

	if value, _ := cmd.Flags().GetString("fps"); value != "" {
		change, err := parseFPSChange(value)
		if err != nil {
			return nil, err
		}
		plan.fps = &change
	}

	moves, _ := cmd.Flags().GetStringArray("move")
	for _, value := range moves {
		m, err := parseMove(value, false)
		if err != nil {
			return nil, err
		}
		plan.moves = append(plan.moves, m)
	}
	shifts, _ := cmd.Flags().GetStringArray("shift")
	for _, value := range shifts {
		m, err := parseMove(value, true)
		if err != nil {
			return nil, err
		}
		plan.moves = append(plan.moves, m)
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	for _, value := range sets {
		s, err := parseSet(value)
		if err != nil {
			return nil, err
		}
		plan.sets = append(plan.sets, s)
	}

	removes, _ := cmd.Flags().GetStringArray("remove")
	for _, value := range removes {
		spec, err := script.ParseIDSpec(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("--remove: %w", err)
		}
		plan.removes = append(plan.removes, spec)
	}

	adds, _ := cmd.Flags().GetStringArray("add")
	for _, value := range adds {
		a, err := parseAdd(value)
		if err != nil {
			return nil, err
		}
		plan.adds = append(plan.adds, a)
	}

	return plan, nil
}

func (p *editPlan) empty() bool {
	return p.fps == nil && len(p.moves)+len(p.sets)+len(p.removes)+len(p.adds) == 0
}

// apply runs the edits in the order fps, moves, sets, removes, adds.
// Every id is checked against the loaded file before the first edit.
func (p *editPlan) apply(tl *subtitle.Timeline) error {
	if err := p.checkIDs(tl); err != nil {
		return err
	}

	if p.fps != nil {
		tl.ChangeFPS(p.fps.from, p.fps.to)
	}

	for _, m := range p.moves {
		for id := m.ids.Lo; id <= m.ids.Hi; id++ {
			i, err := originIndex(tl, id)
			if err != nil {
				return err
			}
			tl.MoveBy(i, m.delta, m.subsequent)
		}
	}

	for _, f := range mergeSets(p.sets) {
		i, err := originIndex(tl, f.id)
		if err != nil {
			return err
		}
		sub := tl.At(i)
		start, end, text := sub.Start, sub.End, sub.Text
		if f.start != nil {
			start = *f.start
		}
		if f.end != nil {
			end = *f.end
		}
		if f.text != nil {
			text = *f.text
		}
		if end < start {
			return fmt.Errorf("subtitle %d would end before it starts", f.id)
		}
		tl.Edit(i, start, end, text)
	}

	for _, spec := range p.removes {
		for id := spec.Lo; id <= spec.Hi; id++ {
			i, err := originIndex(tl, id)
			if err != nil {
				return err
			}
			tl.Remove(i)
		}
	}

	for _, a := range p.adds {
		tl.Add(subtitle.New(a.start, a.end, a.text))
	}
	return nil
}

func (p *editPlan) checkIDs(tl *subtitle.Timeline) error {
	specs := make([]script.IDSpec, 0, len(p.moves)+len(p.sets)+len(p.removes))
	for _, m := range p.moves {
		specs = append(specs, m.ids)
	}
	for _, s := range p.sets {
		specs = append(specs, script.Single(s.id))
	}
	specs = append(specs, p.removes...)
	for _, spec := range specs {
		if _, err := script.ResolveIDs(tl, spec); err != nil {
			return err
		}
	}
	return nil
}

// fields of every --set naming one subtitle
type fieldSet struct {
	id         int
	start, end *int64
	text       *string
}

func mergeSets(sets []setEdit) []*fieldSet {
	var merged []*fieldSet
	byID := make(map[int]*fieldSet)
	for _, s := range sets {
		f, ok := byID[s.id]
		if !ok {
			f = &fieldSet{id: s.id}
			byID[s.id] = f
			merged = append(merged, f)
		}
		switch s.field {
		case "start":
			start := s.start
			f.start = &start
		case "end":
			end := s.end
			f.end = &end
		case "text":
			text := s.text
			f.text = &text
		}
	}
	return merged
}

func originIndex(tl *subtitle.Timeline, id int) (int, error) {
	i := tl.IndexOfOrigin(id)
	if i < 0 {
		return -1, fmt.Errorf("subtitle %d does not exist", id)
	}
	return i, nil
}

func parseMove(value string, subsequent bool) (moveEdit, error) {
	flag := "--move"
	if subsequent {
		flag = "--shift"
	}
	idPart, deltaPart, ok := strings.Cut(value, "=")
	if !ok {
		return moveEdit{}, fmt.Errorf("%s %q: expected ID=DELTA", flag, value)
	}
	ids, err := script.ParseIDSpec(strings.TrimSpace(idPart))
	if err != nil {
		return moveEdit{}, fmt.Errorf("%s: %w", flag, err)
	}
	if subsequent && ids.IsRange() {
		return moveEdit{}, fmt.Errorf("--shift %q: takes a single id", value)
	}
	delta, err := timecode.Parse(strings.TrimSpace(deltaPart))
	if err != nil {
		return moveEdit{}, fmt.Errorf("%s: %w", flag, err)
	}
	return moveEdit{ids: ids, delta: delta, subsequent: subsequent}, nil
}

func parseSet(value string) (setEdit, error) {
	target, v, ok := strings.Cut(value, "=")
	if !ok {
		return setEdit{}, fmt.Errorf("--set %q: expected ID.FIELD=VALUE", value)
	}
	idPart, field, ok := strings.Cut(strings.TrimSpace(target), ".")
	if !ok {
		return setEdit{}, fmt.Errorf("--set %q: expected ID.FIELD=VALUE", value)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 1 {
		return setEdit{}, fmt.Errorf("--set %q: invalid id %q", value, idPart)
	}

	edit := setEdit{id: id, field: strings.ToLower(field)}
	switch edit.field {
	case "start", "end":
		millis, err := parseAbsolute(strings.TrimSpace(v))
		if err != nil {
			return setEdit{}, fmt.Errorf("--set %q: %w", value, err)
		}
		edit.start, edit.end = millis, millis
	case "text":
		edit.text = unescapeText(v)
	default:
		return setEdit{}, fmt.Errorf("--set %q: unknown field %q (use start, end or text)", value, field)
	}
	return edit, nil
}

func parseAdd(value string) (addEdit, error) {
	parts := strings.SplitN(value, ",", 3)
	if len(parts) != 3 {
		return addEdit{}, fmt.Errorf("--add %q: expected START,END,TEXT", value)
	}
	start, err := parseAbsolute(strings.TrimSpace(parts[0]))
	if err != nil {
		return addEdit{}, fmt.Errorf("--add %q: %w", value, err)
	}
	end, err := parseAbsolute(strings.TrimSpace(parts[1]))
	if err != nil {
		return addEdit{}, fmt.Errorf("--add %q: %w", value, err)
	}
	if end < start {
		return addEdit{}, fmt.Errorf("--add %q: ends before it starts", value)
	}
	return addEdit{start: start, end: end, text: unescapeText(parts[2])}, nil
}

func parseFPSChange(value string) (fpsChange, error) {
	fromPart, toPart, ok := strings.Cut(value, ":")
	if !ok {
		return fpsChange{}, fmt.Errorf("--fps %q: expected FROM:TO", value)
	}
	from, err := parseRate(fromPart)
	if err != nil {
		return fpsChange{}, fmt.Errorf("--fps %q: %w", value, err)
	}
	to, err := parseRate(toPart)
	if err != nil {
		return fpsChange{}, fmt.Errorf("--fps %q: %w", value, err)
	}
	return fpsChange{from: from, to: to}, nil
}

func parseRate(value string) (float64, error) {
	rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("invalid frame rate %q", value)
	}
	return rate, nil
}

func parseAbsolute(value string) (int64, error) {
	if strings.HasPrefix(value, "+") || strings.HasPrefix(value, "-") {
		return 0, fmt.Errorf("%q must not carry a sign", value)
	}
	return timecode.Parse(value)
}

func unescapeText(text string) string {
	return strings.ReplaceAll(text, `\n`, "\n")
}
