package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/submod/internal/subtitle"
	"github.com/spf13/cobra"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [video_file]",
		Short: "Extract an embedded subtitle stream from a video",
		Long: `Extract a subtitle stream of a video file and save it as SubRip so it
can be edited and scripted. Streams are numbered from 0 among the video's
subtitle streams; list them with --list.

Examples:
  submod extract movie.mkv --list
  submod extract movie.mkv
  submod extract movie.mkv --stream 1 -o movie.en.srt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runExtract(cmd, args)
		},
	}

	cmd.Flags().IntP("stream", "s", 0, "Subtitle stream number")
	cmd.Flags().Bool("list", false, "List the subtitle streams and exit")
	cmd.Flags().StringP("output", "o", "", "Output subtitle path")
	return cmd
}

func (c *commandContext) runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	stream, _ := cmd.Flags().GetInt("stream")
	list, _ := cmd.Flags().GetBool("list")
	outputPath, _ := cmd.Flags().GetString("output")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	processor, err := c.videoProcessor(!list)
	if err != nil {
		return err
	}
	info, err := processor.GetInfo(ctx, videoPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if list {
		if len(info.Subtitles) == 0 {
			fmt.Fprintln(out, "No subtitle streams")
			return nil
		}
		fmt.Fprintln(out, renderStreams(info.Subtitles))
		return nil
	}

	if stream < 0 || stream >= len(info.Subtitles) {
		return fmt.Errorf("video has %d subtitle stream(s), no stream %d", len(info.Subtitles), stream)
	}

	if outputPath == "" {
		base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
		if lang := info.Subtitles[stream].Language; lang != "" {
			base += "." + lang
		}
		outputPath = base + subtitle.GetExtensionForFormat(subtitle.FormatSRT)
	}

	c.logger.Infow("Extracting subtitles",
		"video", videoPath,
		"stream", stream,
		"codec", info.Subtitles[stream].Codec,
		"output", outputPath,
	)

	if err := processor.ExtractSubtitle(ctx, videoPath, outputPath, stream); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Subtitles extracted successfully: %s\n", absOutput)
	return nil
}
