package cli

import (
	"strings"

	"github.com/mgpai22/submod/internal/config"
	"github.com/mgpai22/submod/internal/logging"
	"github.com/spf13/cobra"
)

// state shared by every command of one invocation
type commandContext struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "submod",
		Short: "Subtitle sync scripts: record edits once, replay them anywhere",
		Long: `Submod edits subtitle timelines and records the edits as sync scripts.

A sync script stores moves, updates, removals and additions against a
specific subtitle file (identified by its SHA-256). Replaying the script
against the same file reproduces the edited subtitles. With a cutlist,
scripts can be made for the uncut video and replayed against the cut one.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				ctx.logger = logging.NewLogger(ctx.verbose)
				return nil
			}
			return ctx.load(cmd)
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newFPSCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func Execute() error {
	return newRootCommand().Execute()
}

func (c *commandContext) load(cmd *cobra.Command) error {
	cfg, _, _, err := config.Load(strings.TrimSpace(c.configPath))
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.Logging.Level
	if c.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
