package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/regroup"
)

// Options configures hierarchy diagram rendering.
type Options struct {
	// Detailed adds the level index and segment length to node labels.
	// When false, only the segment range is shown.
	Detailed bool

	// MaxDepth limits the number of levels drawn. Zero draws all levels.
	MaxDepth int

	// Highlight marks the fragments of a split.
	Highlight []regroup.Fragment
}

type segment struct {
	level      int
	index      int
	start, end meter.Offset
}

func (s segment) id() string { return fmt.Sprintf("L%d_%d", s.level, s.index) }

func (s segment) within(start, end meter.Offset) bool {
	return start.Cmp(s.start) <= 0 && s.end.Cmp(end) <= 0
}

// ToDOT converts a hierarchy to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(h *meter.Hierarchy, opts Options) string {
	depth := h.Depth()
	if opts.MaxDepth > 0 && opts.MaxDepth < depth {
		depth = opts.MaxDepth
	}

	levels := make([][]segment, depth)
	for i := range depth {
		l := h.Level(i)
		for j := 1; j < len(l); j++ {
			levels[i] = append(levels[i], segment{level: i, index: j - 1, start: l[j-1], end: l[j]})
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.2;\n")

	for _, segs := range levels {
		buf.WriteString("\n  { rank=same;\n")
		for _, s := range segs {
			attrs := fmtAttrs(s, fmtLabel(s, opts.Detailed), highlighted(s, opts.Highlight))
			fmt.Fprintf(&buf, "    %q [%s];\n", s.id(), strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for i := 0; i+1 < len(levels); i++ {
		for _, parent := range levels[i] {
			for _, child := range levels[i+1] {
				if child.within(parent.start, parent.end) {
					fmt.Fprintf(&buf, "  %q -> %q;\n", parent.id(), child.id())
				}
			}
		}
	}

	if len(opts.Highlight) > 0 {
		writeFragments(&buf, opts.Highlight)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeFragments(buf *bytes.Buffer, frags []regroup.Fragment) {
	buf.WriteString("\n  { rank=same;\n")
	for i, f := range frags {
		fmt.Fprintf(buf, "    \"F%d\" [label=%q, shape=ellipse, fillcolor=lightblue];\n", i, f.String())
	}
	buf.WriteString("  }\n")
	for i := 1; i < len(frags); i++ {
		fmt.Fprintf(buf, "  \"F%d\" -> \"F%d\" [style=dashed, label=\"tie\", constraint=false];\n", i-1, i)
	}
}

func fmtLabel(s segment, detailed bool) string {
	label := fmt.Sprintf("[%s, %s)", s.start, s.end)
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nlevel: %d\nlength: %s", label, s.level, s.end.Sub(s.start))
}

func fmtAttrs(s segment, label string, lit bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if lit {
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

func highlighted(s segment, frags []regroup.Fragment) bool {
	for _, f := range frags {
		if s.within(f.Position, f.End()) {
			return true
		}
	}
	return false
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
