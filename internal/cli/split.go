package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/pipeline"
	"github.com/matzehuels/regroup/pkg/regroup"
)

// splitCommand creates the split command.
func (c *CLI) splitCommand() *cobra.Command {
	var flags hierarchyFlags
	var out renderOpts

	cmd := &cobra.Command{
		Use:   "split START LENGTH",
		Short: "Split a span into fragments along the hierarchy",
		Long: `Split a span, given as a start offset and a length in quarter notes, into
fragments that do not cross stronger beat boundaries. Offsets accept
decimals (1.5) and fractions (1/3).

With --format dot or svg the hierarchy diagram is drawn with the fragments
highlighted.`,
		Example: `  regroup split 0.25 2 -s 4/4
  regroup split 1 2 -s 6/8 --same-level -f json
  regroup split 3 2 -p 4,2,1 --legacy`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(out.format); err != nil {
				return err
			}
			span, err := parseSpan(args[0], args[1])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Split(ctx, opts, span)
			if err != nil {
				return err
			}

			switch out.format {
			case pipeline.FormatJSON:
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				return writeOutput(cmd, out.output, append(data, '\n'))
			case pipeline.FormatDOT, pipeline.FormatSVG:
				h, err := runner.Hierarchy(ctx, opts)
				if err != nil {
					return err
				}
				data, err := renderHierarchy(h, res.Fragments, out)
				if err != nil {
					return err
				}
				return writeOutput(cmd, out.output, data)
			default:
				w := cmd.OutOrStdout()
				printKeyValue(w, "span", res.Span.String())
				printKeyValue(w, "source", opts.Describe())
				printKeyValue(w, "mode", res.Mode)
				if !res.Overflow.IsZero() {
					printKeyValue(w, "overflow", res.Overflow.String())
				}
				return writeOutput(cmd, out.output, []byte(fragmentTable(res.Fragments)+"\n"))
			}
		},
	}

	flags.registerSplit(cmd.Flags())
	out.register(cmd)
	return cmd
}

// parseSpan parses start and length arguments into a span.
func parseSpan(start, length string) (regroup.Span, error) {
	s, err := meter.ParseOffset(start)
	if err != nil {
		return regroup.Span{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "start %q", start)
	}
	l, err := meter.ParseOffset(length)
	if err != nil {
		return regroup.Span{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "length %q", length)
	}
	return regroup.Span{Start: s, Length: l}, nil
}
