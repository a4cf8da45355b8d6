package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mgpai22/submod/internal/ffmpeg"
	"github.com/mgpai22/submod/internal/fileutil"
	"github.com/mgpai22/submod/internal/subtitle"
	"github.com/mgpai22/submod/internal/video"
	"github.com/spf13/cobra"
)

func newFPSCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fps [subtitle_file]",
		Short: "Rescale subtitle times from one frame rate to another",
		Long: `Rescale every subtitle as if the video were played at a different frame
rate. Times are converted to frames at the old rate and back at the new one.

The target rate can be read from a video file with --video (needs ffprobe).
Defaults come from the [fps] section of the configuration.

Examples:
  submod fps movie.srt --from 23.976 --to 25
  submod fps movie.srt --video movie.mkv -o movie.25fps.srt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runFPS(cmd, args)
		},
	}

	cmd.Flags().Float64("from", 0, "Frame rate the subtitles were timed for")
	cmd.Flags().Float64("to", 0, "Frame rate of the target video")
	cmd.Flags().String("video", "", "Read the target frame rate from this video")
	cmd.Flags().StringP("output", "o", "", "Output subtitle path")
	cmd.Flags().StringP("encoding", "e", "", "Character encoding of the subtitle file")
	return cmd
}

func (c *commandContext) runFPS(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	from, _ := cmd.Flags().GetFloat64("from")
	to, _ := cmd.Flags().GetFloat64("to")
	videoPath, _ := cmd.Flags().GetString("video")
	outputPath, _ := cmd.Flags().GetString("output")
	encodingFlag, _ := cmd.Flags().GetString("encoding")

	if c.cfg != nil {
		if from == 0 {
			from = c.cfg.FPS.From
		}
		if to == 0 && videoPath == "" {
			to = c.cfg.FPS.To
		}
	}

	if videoPath != "" {
		rate, err := c.probeFrameRate(cmd.Context(), videoPath)
		if err != nil {
			return err
		}
		to = rate
	}
	if from <= 0 || to <= 0 {
		return fmt.Errorf("frame rates must be positive (from %v, to %v)", from, to)
	}

	tl, err := subtitle.Load(subtitlePath, c.subtitleEncoding(encodingFlag, ""))
	if err != nil {
		return err
	}
	changed := tl.ChangeFPS(from, to)

	if outputPath == "" {
		suffix := "_submod"
		if c.cfg != nil {
			suffix = c.cfg.Subtitles.OutputSuffix
		}
		outputPath = fileutil.UniquePath(subtitlePath, suffix)
	}
	if err := subtitle.Save(outputPath, tl); err != nil {
		return err
	}

	c.logger.Infow("Frame rate changed", "from", from, "to", to, "subtitles", changed)
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles written: %s\n", absOutput)
	return nil
}

func (c *commandContext) probeFrameRate(ctx context.Context, videoPath string) (float64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	processor, err := c.videoProcessor(false)
	if err != nil {
		return 0, err
	}
	info, err := processor.GetInfo(ctx, videoPath)
	if err != nil {
		return 0, err
	}
	if info.FrameRate <= 0 {
		return 0, fmt.Errorf("could not determine the frame rate of %s", videoPath)
	}
	c.logger.Infow("Video probed", "path", videoPath, "fps", info.FrameRate, "duration", info.Duration.String())
	return info.FrameRate, nil
}

// probing needs only ffprobe; extraction needs ffmpeg too
func (c *commandContext) videoProcessor(withFFmpeg bool) (*video.DefaultProcessor, error) {
	var ffmpegPath, ffprobePath string
	if c.cfg != nil {
		ffmpegPath, ffprobePath = c.cfg.Video.FFmpegPath, c.cfg.Video.FFprobePath
	}
	if !withFFmpeg {
		probe, err := ffmpeg.FFprobe(ffprobePath)
		if err != nil {
			return nil, err
		}
		return video.NewProcessor(ffmpeg.BinaryPaths{FFprobe: probe}), nil
	}
	bins, err := ffmpeg.Locate(ffmpegPath, ffprobePath)
	if err != nil {
		return nil, err
	}
	return video.NewProcessor(bins), nil
}
