package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/io"
	"github.com/matzehuels/regroup/pkg/pipeline"
	"github.com/matzehuels/regroup/pkg/regroup"
)

// batchCommand creates the batch command for splitting a file of spans.
func (c *CLI) batchCommand() *cobra.Command {
	var flags hierarchyFlags
	var format, output string

	cmd := &cobra.Command{
		Use:   "batch SPANS_FILE",
		Short: "Split every span in a file",
		Long: `Split every span listed in a file concurrently against one hierarchy.

The file is either a JSON array of {"start": ..., "length": ...} objects or
plain text with one "START LENGTH" pair per line. Blank lines and lines
starting with # are skipped. Use - to read from stdin.`,
		Example: `  regroup batch spans.txt -s 6/8
  regroup batch spans.json -p 3,1.5,0.5 -f json -o fragments.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatText && format != pipeline.FormatJSON {
				return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, json)", format)
			}
			spans, err := readSpansArg(cmd, args[0])
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

			prog := newProgress(loggerFromContext(ctx))
			spin := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Splitting %s", plural(len(spans), "span")))
			spin.Start()
			batch, err := runner.SplitAll(ctx, opts, spans)
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Split %s", plural(len(spans), "span")))

			if format == pipeline.FormatJSON {
				if output != "" {
					if err := io.ExportResults(batch.Results, output); err != nil {
						return err
					}
					printSuccess(cmd.OutOrStdout(), "Wrote %s", plural(batch.Stats.Fragments, "fragment"))
					printFile(cmd.OutOrStdout(), output)
					return nil
				}
				return io.WriteResults(batch.Results, cmd.OutOrStdout())
			}

			var buf bytes.Buffer
			buf.WriteString(batchTable(batch.Results) + "\n")
			printStats(&buf, batch.Stats.Spans, batch.Stats.Fragments, batch.CacheInfo.HierarchyHit)
			printDetail(&buf, "batch %s", batch.ID)
			return writeOutput(cmd, output, buf.Bytes())
		},
	}

	flags.registerBatch(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatText, "output format: text, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// readSpansArg reads spans from a file, or from stdin when path is "-".
func readSpansArg(cmd *cobra.Command, path string) ([]regroup.Span, error) {
	if path == "-" {
		return io.ReadSpans(cmd.InOrStdin())
	}
	return io.ImportSpans(path)
}
