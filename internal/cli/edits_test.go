package cli

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mgpai22/submod/internal/script"
	"github.com/mgpai22/submod/internal/subtitle"
)

type cue struct {
	Start int64
	End   int64
	Text  string
}

func cuesOf(tl *subtitle.Timeline) []cue {
	out := make([]cue, 0, tl.Len())
	for _, s := range tl.Subtitles() {
		out = append(out, cue{s.Start, s.End, s.Text})
	}
	return out
}

func threeCues() *subtitle.Timeline {
	return subtitle.FromEntries([]subtitle.Entry{
		{Index: 1, Start: 1000, End: 2000, Text: "one"},
		{Index: 2, Start: 3000, End: 4000, Text: "two"},
		{Index: 3, Start: 5000, End: 6000, Text: "three"},
	})
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in         string
		subsequent bool
		want       moveEdit
		wantErr    bool
	}{
		{in: "3=+00:00:01.500", want: moveEdit{ids: script.Single(3), delta: 1500}},
		{in: "1-4=-00:00:00.250", want: moveEdit{ids: script.Range(1, 4), delta: -250}},
		{in: "2=00:00:02.000", subsequent: true, want: moveEdit{ids: script.Single(2), delta: 2000, subsequent: true}},
		{in: "1-4=+00:00:01.000", subsequent: true, wantErr: true},
		{in: "3", wantErr: true},
		{in: "0=+00:00:01.000", wantErr: true},
		{in: "3=1.5s", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseMove(tt.in, tt.subsequent)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMove(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseMove(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		in      string
		want    setEdit
		wantErr bool
	}{
		{in: "4.start=00:00:10.000", want: setEdit{id: 4, field: "start", start: 10000, end: 10000}},
		{in: "4.END=00:00:11.000", want: setEdit{id: 4, field: "end", start: 11000, end: 11000}},
		{in: `7.text=a = b\nc`, want: setEdit{id: 7, field: "text", text: "a = b\nc"}},
		{in: "4.start=+00:00:10.000", wantErr: true},
		{in: "4.style=bold", wantErr: true},
		{in: "x.text=a", wantErr: true},
		{in: "4=a", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseSet(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSet(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseSet(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseAdd(t *testing.T) {
	got, err := parseAdd("00:01:00.000, 00:01:02.500,Hello, world")
	if err != nil {
		t.Fatalf("parseAdd failed: %v", err)
	}
	want := addEdit{start: 60000, end: 62500, text: "Hello, world"}
	if got != want {
		t.Errorf("parseAdd = %+v, want %+v", got, want)
	}

	for _, bad := range []string{"00:01:00.000,00:01:02.500", "00:01:02.000,00:01:00.000,x", "1,2,x"} {
		if _, err := parseAdd(bad); err == nil {
			t.Errorf("parseAdd(%q): expected error", bad)
		}
	}
}

func TestParseFPSChange(t *testing.T) {
	got, err := parseFPSChange("23.976:25")
	if err != nil {
		t.Fatalf("parseFPSChange failed: %v", err)
	}
	if got != (fpsChange{from: 23.976, to: 25}) {
		t.Errorf("parseFPSChange = %+v", got)
	}
	for _, bad := range []string{"25", "0:25", "25:abc"} {
		if _, err := parseFPSChange(bad); err == nil {
			t.Errorf("parseFPSChange(%q): expected error", bad)
		}
	}
}

func TestEditPlanApply(t *testing.T) {
	tl := threeCues()
	plan := &editPlan{
		moves:   []moveEdit{{ids: script.Single(1), delta: 500}},
		sets:    []setEdit{{id: 2, field: "text", text: "TWO"}},
		removes: []script.IDSpec{script.Single(3)},
		adds:    []addEdit{{start: 0, end: 500, text: "new"}},
	}
	if err := plan.apply(tl); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	want := []cue{
		{0, 500, "new"},
		{1500, 2500, "one"},
		{3000, 4000, "TWO"},
	}
	if diff := cmp.Diff(want, cuesOf(tl)); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestEditPlanShiftUsesLoadedIDs(t *testing.T) {
	tl := threeCues()
	plan := &editPlan{
		moves: []moveEdit{{ids: script.Single(2), delta: -2500, subsequent: true}},
		// id 1 is still the first loaded subtitle after the shift reordered it
		sets: []setEdit{{id: 1, field: "end", end: 2200}},
	}
	if err := plan.apply(tl); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	want := []cue{
		{500, 1500, "two"},
		{1000, 2200, "one"},
		{2500, 3500, "three"},
	}
	if diff := cmp.Diff(want, cuesOf(tl)); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestEditPlanApplyErrors(t *testing.T) {
	tests := []struct {
		name string
		plan *editPlan
	}{
		{"unknown id", &editPlan{removes: []script.IDSpec{script.Range(2, 4)}}},
		{"removed twice", &editPlan{removes: []script.IDSpec{script.Single(1), script.Single(1)}}},
		{"end before start", &editPlan{sets: []setEdit{{id: 1, field: "end", end: 500}}}},
		{"merged end before start", &editPlan{sets: []setEdit{
			{id: 1, field: "start", start: 2500},
			{id: 1, field: "end", end: 2400},
		}}},
		{"huge range", &editPlan{moves: []moveEdit{{ids: script.Range(1, 2_000_000_000), delta: 10}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.plan.apply(threeCues()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEditPlanApplyUnknownIDChangesNothing(t *testing.T) {
	tl := threeCues()
	plan := &editPlan{
		moves:   []moveEdit{{ids: script.Single(1), delta: 500}},
		removes: []script.IDSpec{script.Range(3, 5)},
	}
	err := plan.apply(tl)
	var rangeErr *script.RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *script.RangeError, got %v", err)
	}
	if diff := cmp.Diff(script.Range(4, 5), rangeErr.Missing); diff != "" {
		t.Errorf("missing ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cuesOf(threeCues()), cuesOf(tl)); diff != "" {
		t.Errorf("timeline changed (-want +got):\n%s", diff)
	}
}

func TestEditPlanSetsMergePerID(t *testing.T) {
	tl := threeCues()
	// the new start lies past the current end; only the pair is valid
	plan := &editPlan{sets: []setEdit{
		{id: 1, field: "start", start: 2500, end: 2500},
		{id: 1, field: "text", text: "ONE"},
		{id: 1, field: "end", start: 2800, end: 2800},
	}}
	if err := plan.apply(tl); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	want := []cue{
		{2500, 2800, "ONE"},
		{3000, 4000, "two"},
		{5000, 6000, "three"},
	}
	if diff := cmp.Diff(want, cuesOf(tl)); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestEditPlanFPS(t *testing.T) {
	tl := threeCues()
	plan := &editPlan{fps: &fpsChange{from: 25, to: 50}}
	if err := plan.apply(tl); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got := tl.At(2); got.Start != 2500 || got.End != 3000 {
		t.Errorf("third subtitle = %d-%d, want 2500-3000", got.Start, got.End)
	}
	if !(&editPlan{}).empty() || plan.empty() {
		t.Error("empty() reports the wrong value")
	}
}
