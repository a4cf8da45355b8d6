package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mgpai22/submod/internal/fileutil"
	"github.com/mgpai22/submod/internal/script"
	"github.com/spf13/cobra"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [script_file] [subtitle_file]",
		Short: "Convert a script's timings to the uncut video",
		Long: `Rewrite a sync script with "original" timings into one with "uncut"
timings, using the cutlist of the video the subtitles were timed for. The
converted script can then be replayed against any other cut of the video.

The subtitle file is needed to resolve moves; it defaults to the script's
subtitle.filename next to the script. The result is written next to the
script as <name>_uncut<ext> unless -o is given.

Examples:
  submod convert movie.submod --cutlist movie.cutlist
  submod convert movie.submod movie.srt --cutlist movie.cutlist -o uncut.submod`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runConvert(cmd, args)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output script path")
	cmd.Flags().StringP("encoding", "e", "", "Character encoding of the subtitle file")
	cmd.Flags().String("cutlist", "", "Cutlist of the video the script was made for (required)")
	_ = cmd.MarkFlagRequired("cutlist")
	return cmd
}

func (c *commandContext) runConvert(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]

	outputPath, _ := cmd.Flags().GetString("output")
	encodingFlag, _ := cmd.Flags().GetString("encoding")
	cutlistPath, _ := cmd.Flags().GetString("cutlist")

	s, err := loadScript(scriptPath)
	if err != nil {
		return err
	}
	cuts, err := c.loadCutlist(cutlistPath)
	if err != nil {
		return err
	}

	subtitlePath := subtitlePathFor(scriptPath, s, args[1:])
	encoding := c.subtitleEncoding(encodingFlag, s.Subtitle.Encoding)

	engine := script.NewEngine(c.logger)
	converted, err := engine.ConvertOriginalToUncut(subtitlePath, script.EncodingLoader(encoding), s, cuts)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = fileutil.UniquePath(scriptPath, "_uncut")
	}
	if err := script.Save(outputPath, converted); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Converted script written: %s\n", absOutput)
	return nil
}
