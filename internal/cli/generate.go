package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/submod/internal/cutlist"
	"github.com/mgpai22/submod/internal/script"
	"github.com/mgpai22/submod/internal/subtitle"
	"github.com/mgpai22/submod/internal/textenc"
	"github.com/spf13/cobra"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [subtitle_file]",
		Short: "Record subtitle edits as a sync script",
		Long: `Load a subtitle file, apply the edits given as flags and write a sync
script that reproduces them.

Subtitles are addressed by their 1-based position in the loaded file (as
listed by "submod show"). Edits are applied in the order --fps, --move and
--shift, --set, --remove, --add. Ids always refer to the loaded file, so
earlier edits never renumber later ones.

With --cutlist the script is written for the uncut video: its times are
converted with the cutlist so it can be replayed against a different cut.

Examples:
  submod generate movie.srt --move 1-40=+00:00:01.200
  submod generate movie.srt --shift 120=-00:00:00.500 --remove 7
  submod generate movie.srt --set 12.text="Hello\nthere" --add "00:01:00.000,00:01:02.000,New line"
  submod generate movie.srt --fps 23.976:25 --cutlist movie.cutlist -o movie.submod`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runGenerate(cmd, args)
		},
	}

	addEditFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Script output path")
	cmd.Flags().StringP("encoding", "e", "", "Character encoding of the subtitle file")
	cmd.Flags().String("cutlist", "", "Cutlist of the video the subtitles belong to")
	cmd.Flags().String("save-subtitle", "", "Also write the edited subtitles to this path")
	return cmd
}

func (c *commandContext) runGenerate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	outputPath, _ := cmd.Flags().GetString("output")
	encodingFlag, _ := cmd.Flags().GetString("encoding")
	cutlistPath, _ := cmd.Flags().GetString("cutlist")
	savePath, _ := cmd.Flags().GetString("save-subtitle")

	if !subtitle.IsLoadable(subtitlePath) {
		return fmt.Errorf("unsupported file type: %s (expected .srt or .vtt)", filepath.Ext(subtitlePath))
	}

	plan, err := editsFromFlags(cmd)
	if err != nil {
		return err
	}
	if plan.empty() {
		c.logger.Warnw("No edits given, the script will be empty")
	}

	encoding := c.subtitleEncoding(encodingFlag, "")
	tl, err := subtitle.Load(subtitlePath, encoding)
	if err != nil {
		return err
	}
	src, err := script.NewSource(subtitlePath, recordedEncoding(encoding), tl)
	if err != nil {
		return err
	}

	var cuts *cutlist.CutMap
	if cutlistPath != "" {
		cuts, err = c.loadCutlist(cutlistPath)
		if err != nil {
			return err
		}
	}

	edited := src.Timeline.Clone()
	if err := plan.apply(edited); err != nil {
		return err
	}

	s, err := script.NewEngine(c.logger).Generate(src, edited, cuts)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = c.scriptPathFor(subtitlePath)
	}
	if err := script.Save(outputPath, s); err != nil {
		return err
	}

	if savePath != "" {
		if err := subtitle.Save(savePath, edited); err != nil {
			return err
		}
		c.logger.Infow("Edited subtitles written", "path", savePath)
	}

	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Script written: %s\n", absOutput)
	fmt.Fprintf(out, "  Timings for: %s\n", s.TimingsFor)
	fmt.Fprintf(out, "  Moves: %d  Updates: %d  Removes: %d  Adds: %d\n",
		len(s.Move), len(s.Update), len(s.Remove), len(s.Add))
	return nil
}

// subtitleEncoding applies the precedence flag, script, config
func (c *commandContext) subtitleEncoding(flagValue, scriptValue string) string {
	switch {
	case flagValue != "":
		return flagValue
	case scriptValue != "":
		return scriptValue
	case c.cfg != nil:
		return c.cfg.Subtitles.DefaultEncoding
	default:
		return textenc.DefaultEncoding
	}
}

// UTF-8 is implied by a script without an encoding
func recordedEncoding(encoding string) string {
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "utf-8", "utf8":
		return ""
	}
	return encoding
}

// <scripts.dir or the subtitle's directory>/<name><scripts.extension>
func (c *commandContext) scriptPathFor(subtitlePath string) string {
	dir := filepath.Dir(subtitlePath)
	ext := ".submod"
	if c.cfg != nil {
		if c.cfg.Scripts.Dir != "" {
			dir = c.cfg.Scripts.Dir
		}
		ext = c.cfg.Scripts.Extension
	}
	name := strings.TrimSuffix(filepath.Base(subtitlePath), filepath.Ext(subtitlePath))
	return filepath.Join(dir, name+ext)
}

// cutlists are read in the configured default encoding
func (c *commandContext) loadCutlist(path string) (*cutlist.CutMap, error) {
	cuts, err := cutlist.Load(path, c.subtitleEncoding("", ""))
	if err != nil {
		return nil, err
	}
	c.logger.Infow("Cutlist loaded", "path", path, "segments", cuts.Len())
	return cuts, nil
}

func loadScript(path string) (*script.Script, error) {
	s, err := script.Load(path, "")
	if err != nil {
		var schemaErr *script.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, fmt.Errorf("%s is not a valid sync script: %w", filepath.Base(path), err)
		}
		return nil, err
	}
	return s, nil
}
