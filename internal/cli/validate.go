package cli

import (
	"errors"
	"fmt"

	"github.com/mgpai22/submod/internal/script"
	"github.com/spf13/cobra"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [script_file...]",
		Short: "Check sync scripts",
		Long: `Check that each script is well formed. Unless --schema-only is given,
the script is also replayed (without writing anything) against its subtitle
file to check the checksum and that every id exists.

Examples:
  submod validate movie.submod
  submod validate --schema-only scripts/*.submod`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runValidate(cmd, args)
		},
	}

	cmd.Flags().Bool("schema-only", false, "Only check the script document")
	cmd.Flags().StringP("encoding", "e", "", "Character encoding of the subtitle files")
	return cmd
}

func (c *commandContext) runValidate(cmd *cobra.Command, args []string) error {
	schemaOnly, _ := cmd.Flags().GetBool("schema-only")
	encodingFlag, _ := cmd.Flags().GetString("encoding")

	out := cmd.OutOrStdout()
	engine := script.NewEngine(c.logger)
	failed := 0
	for _, scriptPath := range args {
		err := c.validateOne(engine, scriptPath, encodingFlag, schemaOnly)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: %v\n", scriptPath, err)
			continue
		}
		fmt.Fprintf(out, "%s: ok\n", scriptPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scripts are invalid", failed, len(args))
	}
	return nil
}

func (c *commandContext) validateOne(engine *script.Engine, scriptPath, encodingFlag string, schemaOnly bool) error {
	s, err := script.Load(scriptPath, "")
	if err != nil {
		return err
	}
	if schemaOnly {
		return nil
	}
	subtitlePath := subtitlePathFor(scriptPath, s, nil)
	encoding := c.subtitleEncoding(encodingFlag, s.Subtitle.Encoding)
	// replayed without cuts: only ids and the checksum are checked
	if _, err := engine.Run(subtitlePath, script.EncodingLoader(encoding), s, nil); err != nil {
		var rangeErr *script.RangeError
		if errors.As(err, &rangeErr) {
			return fmt.Errorf("ids do not fit %s: %w", subtitlePath, err)
		}
		return err
	}
	return nil
}
