package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/pipeline"
	"github.com/matzehuels/regroup/pkg/regroup"
)

var headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// hierarchyTable renders one row per level: its index, boundary count and
// offsets.
func hierarchyTable(h *meter.Hierarchy) string {
	t := newTable("Level", "Count", "Offsets")
	for i, level := range h.Levels() {
		t.Row(strconv.Itoa(i), strconv.Itoa(len(level)), joinLevel(level))
	}
	return t.Render()
}

// fragmentTable renders the fragments of one split.
func fragmentTable(frags []regroup.Fragment) string {
	t := newTable("#", "Position", "Length", "End")
	for i, f := range frags {
		t.Row(strconv.Itoa(i+1), f.Position.String(), f.Length.String(), f.End().String())
	}
	return t.Render()
}

// batchTable renders every span of a batch with its fragments on one row.
func batchTable(results []pipeline.Result) string {
	t := newTable("#", "Span", "Fragments")
	for i, res := range results {
		t.Row(strconv.Itoa(i+1), res.Span.String(), joinFragments(res.Fragments))
	}
	return t.Render()
}

func joinLevel(level meter.Level) string {
	parts := make([]string, len(level))
	for i, o := range level {
		parts[i] = o.String()
	}
	return strings.Join(parts, " ")
}

func joinFragments(frags []regroup.Fragment) string {
	parts := make([]string, len(frags))
	for i, f := range frags {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}
