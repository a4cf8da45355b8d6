package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mgpai22/submod/internal/script"
	"github.com/mgpai22/submod/internal/subtitle"
)

const threeSRT = `1
00:00:01,000 --> 00:00:02,000
one

2
00:00:03,000 --> 00:00:04,000
two

3
00:00:05,000 --> 00:00:06,000
three
`

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", filepath.Join(t.TempDir(), "config.toml")}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func writeSRT(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "movie.srt")
	if err := os.WriteFile(path, []byte(threeSRT), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func loadCues(t *testing.T, path string) []cue {
	t.Helper()
	tl, err := subtitle.Load(path, "")
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	return cuesOf(tl)
}

func TestGenerateAndRun(t *testing.T) {
	dir, srt := writeSRT(t)

	out, _, err := runCLI(t, "generate", srt,
		"--move", "1=+00:00:00.500",
		"--remove", "3",
		"--add", "00:00:10.000,00:00:11.000,new",
	)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "Script written")
	scriptPath := filepath.Join(dir, "movie.submod")

	s, err := script.Load(scriptPath, "")
	if err != nil {
		t.Fatalf("load script: %v", err)
	}
	if len(s.Move) != 1 || len(s.Remove) != 1 || len(s.Add) != 1 || len(s.Update) != 0 {
		t.Fatalf("unexpected script: %+v", s)
	}

	out, _, err = runCLI(t, "run", scriptPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "movie_submod.srt")

	want := []cue{
		{1500, 2500, "one"},
		{3000, 4000, "two"},
		{10000, 11000, "new"},
	}
	if diff := cmp.Diff(want, loadCues(t, filepath.Join(dir, "movie_submod.srt"))); diff != "" {
		t.Errorf("replayed subtitles mismatch (-want +got):\n%s", diff)
	}

	// a second run does not overwrite the first result
	if _, _, err := runCLI(t, "run", scriptPath); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "movie_submod.1.srt")); err != nil {
		t.Errorf("expected numbered output: %v", err)
	}
}

func TestGenerateSavesEditedSubtitle(t *testing.T) {
	dir, srt := writeSRT(t)
	edited := filepath.Join(dir, "edited.vtt")
	scriptPath := filepath.Join(dir, "out", "fix.submod")

	if _, _, err := runCLI(t, "generate", srt, "--set", "2.text=TWO", "--save-subtitle", edited, "-o", scriptPath); err != nil {
		t.Fatalf("generate: %v", err)
	}
	got := loadCues(t, edited)
	if got[1].Text != "TWO" {
		t.Errorf("edited subtitle text = %q", got[1].Text)
	}
	if _, err := os.Stat(scriptPath); err != nil {
		t.Errorf("script not written to -o path: %v", err)
	}
}

func TestRunRejectsModifiedSubtitle(t *testing.T) {
	dir, srt := writeSRT(t)
	if _, _, err := runCLI(t, "generate", srt, "--remove", "1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := os.WriteFile(srt, []byte(strings.Replace(threeSRT, "two", "TWO", 1)), 0o644); err != nil {
		t.Fatal(err)
	}

	scriptPath := filepath.Join(dir, "movie.submod")
	if _, _, err := runCLI(t, "run", scriptPath); err == nil || !strings.Contains(err.Error(), "checksum") {
		t.Fatalf("expected a checksum error, got %v", err)
	}

	out, _, err := runCLI(t, "validate", scriptPath)
	if err == nil {
		t.Fatal("validate accepted a script for a modified subtitle")
	}
	requireContains(t, out, "checksum")

	out, _, err = runCLI(t, "validate", "--schema-only", scriptPath)
	if err != nil {
		t.Fatalf("validate --schema-only: %v", err)
	}
	requireContains(t, out, ": ok")
}

func TestRunUncutScriptWarnsWithoutCutlist(t *testing.T) {
	dir, srt := writeSRT(t)
	cl := filepath.Join(dir, "movie.cutlist")
	if err := os.WriteFile(cl, []byte("[General]\nApplyToFile=movie.avi\n\n[Cut0]\nStart=10.0\nDuration=60.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, "generate", srt, "--move", "2=+00:00:01.000", "--cutlist", cl); err != nil {
		t.Fatalf("generate: %v", err)
	}
	scriptPath := filepath.Join(dir, "movie.submod")

	_, stderr, err := runCLI(t, "run", scriptPath, "-o", filepath.Join(dir, "nocuts.srt"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, stderr, "no cutlist")

	if _, _, err := runCLI(t, "run", scriptPath, "--cutlist", cl, "-o", filepath.Join(dir, "cuts.srt")); err != nil {
		t.Fatalf("run with cutlist: %v", err)
	}
	got := loadCues(t, filepath.Join(dir, "cuts.srt"))
	if got[1].Start != 4000 || got[1].End != 5000 {
		t.Errorf("moved subtitle = %d-%d, want 4000-5000", got[1].Start, got[1].End)
	}
}

func TestConvert(t *testing.T) {
	dir, srt := writeSRT(t)
	cl := filepath.Join(dir, "movie.cutlist")
	if err := os.WriteFile(cl, []byte("[Cut0]\nStart=10\nDuration=60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "generate", srt, "--move", "1=+00:00:00.500"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	out, _, err := runCLI(t, "convert", filepath.Join(dir, "movie.submod"), "--cutlist", cl)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "movie_uncut.submod")

	converted, err := script.Load(filepath.Join(dir, "movie_uncut.submod"), "")
	if err != nil {
		t.Fatalf("load converted: %v", err)
	}
	if converted.TimingsFor != script.TimingsUncut {
		t.Errorf("TimingsFor = %q", converted.TimingsFor)
	}
	if len(converted.Move) != 1 || converted.Move[0].By != 10500 {
		t.Errorf("unexpected moves: %+v", converted.Move)
	}

	if _, _, err := runCLI(t, "convert", filepath.Join(dir, "movie.submod")); err == nil {
		t.Error("convert without --cutlist succeeded")
	}
}

func TestShow(t *testing.T) {
	_, srt := writeSRT(t)

	out, _, err := runCLI(t, "show", srt)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"00:00:01.000", "two", "three"} {
		requireContains(t, out, want)
	}

	out, _, err = runCLI(t, "show", srt, "--at", "00:00:03.500")
	if err != nil {
		t.Fatalf("show --at: %v", err)
	}
	requireContains(t, out, "two")
	if strings.Contains(out, "three") {
		t.Errorf("show --at listed more than the active subtitle:\n%s", out)
	}

	out, _, err = runCLI(t, "show", srt, "--at", "00:00:04.500")
	if err != nil {
		t.Fatalf("show --at: %v", err)
	}
	requireContains(t, out, "nearest")
	requireContains(t, out, "three")
}

func TestFPS(t *testing.T) {
	dir, srt := writeSRT(t)
	if _, _, err := runCLI(t, "fps", srt, "--from", "25", "--to", "50"); err != nil {
		t.Fatalf("fps: %v", err)
	}
	got := loadCues(t, filepath.Join(dir, "movie_submod.srt"))
	want := []cue{
		{500, 1000, "one"},
		{1500, 2000, "two"},
		{2500, 3000, "three"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rescaled subtitles mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigInitAndPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "submod", "config.toml")
	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	out, _, err = runCLI(t, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, "defaults are used")
}
