package cli

import (
	"fmt"

	"github.com/mgpai22/submod/internal/subtitle"
	"github.com/mgpai22/submod/internal/timecode"
	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [subtitle_file]",
		Short: "List the subtitles of a file with their ids",
		Long: `List the subtitles of a file in timeline order together with the ids
that sync scripts and "submod generate" use to address them.

With --at only the subtitle shown at that time is listed, or the next one
when nothing is shown.

Examples:
  submod show movie.srt
  submod show movie.srt --at 00:12:30.000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runShow(cmd, args)
		},
	}

	cmd.Flags().String("at", "", "Only show the subtitle at this time (HH:MM:SS.mmm)")
	cmd.Flags().StringP("encoding", "e", "", "Character encoding of the subtitle file")
	return cmd
}

func (c *commandContext) runShow(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("at")
	encodingFlag, _ := cmd.Flags().GetString("encoding")

	tl, err := subtitle.Load(args[0], c.subtitleEncoding(encodingFlag, ""))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if at == "" {
		fmt.Fprintln(out, renderSubtitles(tl))
		return nil
	}

	millis, err := parseAbsolute(at)
	if err != nil {
		return fmt.Errorf("--at: %w", err)
	}
	if i, s := tl.QueryActive(millis); s != nil {
		fmt.Fprintln(out, renderSubtitles(tl, i))
		return nil
	}
	i, s := tl.QueryNearest(millis)
	if s == nil {
		fmt.Fprintln(out, "No subtitles")
		return nil
	}
	fmt.Fprintf(out, "Nothing shown at %s; nearest:\n", timecode.Format(millis))
	fmt.Fprintln(out, renderSubtitles(tl, i))
	return nil
}
