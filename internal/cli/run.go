package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/submod/internal/cutlist"
	"github.com/mgpai22/submod/internal/fileutil"
	"github.com/mgpai22/submod/internal/script"
	"github.com/mgpai22/submod/internal/subtitle"
	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [script_file] [subtitle_file]",
		Short: "Replay a sync script against its subtitle file",
		Long: `Replay a sync script and write the resulting subtitles.

The subtitle file defaults to the script's subtitle.filename, looked up
next to the script. Its SHA-256 must match the one recorded in the script.
The result is written next to the subtitle file as <name>_submod<ext>
(or <name>_submod.1<ext>, ... if that exists) unless -o is given.

Scripts with "uncut" timings need the cutlist of the video the subtitles
belong to.

Examples:
  submod run movie.submod
  submod run movie.submod other/movie.srt -o fixed.srt
  submod run movie.submod --cutlist movie.cutlist --format vtt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runRun(cmd, args)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output subtitle path")
	cmd.Flags().StringP("encoding", "e", "", "Character encoding of the subtitle file")
	cmd.Flags().String("cutlist", "", "Cutlist of the video to replay against")
	cmd.Flags().StringP("format", "f", "", "Output subtitle format (srt, vtt, ass)")
	return cmd
}

func (c *commandContext) runRun(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]

	outputPath, _ := cmd.Flags().GetString("output")
	encodingFlag, _ := cmd.Flags().GetString("encoding")
	cutlistPath, _ := cmd.Flags().GetString("cutlist")
	formatStr, _ := cmd.Flags().GetString("format")

	s, err := loadScript(scriptPath)
	if err != nil {
		return err
	}

	subtitlePath := subtitlePathFor(scriptPath, s, args[1:])
	encoding := c.subtitleEncoding(encodingFlag, s.Subtitle.Encoding)

	var cuts *cutlist.CutMap
	if cutlistPath != "" {
		cuts, err = c.loadCutlist(cutlistPath)
		if err != nil {
			return err
		}
	} else if s.TimingsFor == script.TimingsUncut {
		c.logger.Warnw("Script timings are for the uncut video but no cutlist was given; times are used as they are",
			"script", scriptPath,
		)
	}

	if outputPath == "" {
		outputPath, err = c.runOutputPath(subtitlePath, formatStr)
		if err != nil {
			return err
		}
	}

	c.logger.Infow("Running script",
		"script", scriptPath,
		"subtitle", subtitlePath,
		"encoding", encoding,
		"timings_for", s.TimingsFor,
	)

	engine := script.NewEngine(c.logger)
	result, err := engine.Run(subtitlePath, script.EncodingLoader(encoding), s, cuts)
	if err != nil {
		return err
	}

	if err := saveAs(outputPath, formatStr, result); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles written: %s\n", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  Entries: %d\n", result.Len())
	return nil
}

// an explicit argument wins over the filename recorded in the script,
// which is resolved against the script's directory
func subtitlePathFor(scriptPath string, s *script.Script, explicit []string) string {
	if len(explicit) > 0 && explicit[0] != "" {
		return explicit[0]
	}
	return filepath.Join(filepath.Dir(scriptPath), filepath.Base(s.Subtitle.Filename))
}

func (c *commandContext) runOutputPath(subtitlePath, formatStr string) (string, error) {
	suffix := "_submod"
	if c.cfg != nil {
		suffix = c.cfg.Subtitles.OutputSuffix
		if formatStr == "" {
			formatStr = c.cfg.Subtitles.OutputFormat
		}
	}
	base := subtitlePath
	if formatStr != "" {
		format, err := parseFormat(formatStr)
		if err != nil {
			return "", err
		}
		base = strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath)) + subtitle.GetExtensionForFormat(format)
	}
	return fileutil.UniquePath(base, suffix), nil
}

// saveAs writes with an explicit format, or the one implied by the path
func saveAs(path, formatStr string, tl *subtitle.Timeline) error {
	if formatStr == "" {
		return subtitle.Save(path, tl)
	}
	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	if err := writer.Write(tl, path); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}

func parseFormat(formatStr string) (subtitle.Format, error) {
	switch strings.ToLower(formatStr) {
	case "srt":
		return subtitle.FormatSRT, nil
	case "vtt":
		return subtitle.FormatVTT, nil
	case "ass":
		return subtitle.FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", formatStr)
	}
}
