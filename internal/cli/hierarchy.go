package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/regroup/pkg/io"
	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/pipeline"
	"github.com/matzehuels/regroup/pkg/regroup"
	"github.com/matzehuels/regroup/pkg/render/nodelink"
)

// renderOpts holds the output flags shared by hierarchy and split.
type renderOpts struct {
	format   string // text, json, dot or svg
	output   string // output file, stdout when empty
	detailed bool   // level and length in diagram labels
	maxDepth int    // levels drawn in diagrams, 0 for all
}

func (r *renderOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&r.format, "format", "f", pipeline.DefaultFormat, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&r.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&r.detailed, "detailed", false, "show level and length in diagram labels")
	cmd.Flags().IntVar(&r.maxDepth, "max-depth", 0, "number of levels drawn in diagrams (0 = all)")
}

// hierarchyCommand creates the hierarchy command.
func (c *CLI) hierarchyCommand() *cobra.Command {
	var flags hierarchyFlags
	var out renderOpts

	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Build a metrical hierarchy and print its levels",
		Example: `  regroup hierarchy -s 6/8
  regroup hierarchy -s 2+2+3/8 --levels 0,1 -f json
  regroup hierarchy -p 3,1.5,0.5 -f svg -o hierarchy.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(out.format); err != nil {
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
			h, hit, err := runner.HierarchyWithCacheInfo(ctx, opts)
			if err != nil {
				return err
			}
			prog.done("Built hierarchy")

			data, err := renderHierarchy(h, nil, out)
			if err != nil {
				return err
			}
			if out.format == pipeline.FormatText && out.output == "" {
				w := cmd.OutOrStdout()
				printKeyValue(w, "source", opts.Describe())
				printKeyValue(w, "measure", h.MeasureLength().String())
				printKeyValue(w, "depth", strconv.Itoa(h.Depth()))
				printStats(w, 0, 0, hit)
			}
			return writeOutput(cmd, out.output, data)
		},
	}

	flags.registerSource(cmd.Flags())
	out.register(cmd)
	return cmd
}

// renderHierarchy renders h in the requested format. Fragments are
// highlighted in diagrams and listed below the table in text output.
func renderHierarchy(h *meter.Hierarchy, frags []regroup.Fragment, out renderOpts) ([]byte, error) {
	switch out.format {
	case pipeline.FormatJSON:
		var buf bytes.Buffer
		if err := io.WriteHierarchy(h, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case pipeline.FormatDOT, pipeline.FormatSVG:
		dot := nodelink.ToDOT(h, nodelink.Options{
			Detailed:  out.detailed,
			MaxDepth:  out.maxDepth,
			Highlight: frags,
		})
		if out.format == pipeline.FormatDOT {
			return []byte(dot), nil
		}
		return nodelink.RenderSVG(dot)
	default:
		return []byte(hierarchyTable(h) + "\n"), nil
	}
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w := cmd.OutOrStdout()
	printSuccess(w, "Wrote output")
	printFile(w, path)
	return nil
}
