package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/regroup"
)

const (
	defaultRulerWidth = 64
	minRulerWidth     = 16
	maxRulerWidth     = 160
)

var (
	rulerCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	rulerSpanStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	labelStyle       = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// exploreCommand creates the interactive hierarchy explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags hierarchyFlags

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Step through a hierarchy and split spans interactively",
		Long: `Draw every level of a hierarchy as a ruler and move a cursor over its
boundaries. Mark a start with space and move the cursor to see how the span
between the mark and the cursor is split.

Keys:
  ←/→ h/l   previous/next boundary on the current level
  ↑/↓ k/j   coarser/finer level
  space     mark the span start at the cursor
  tab       toggle same-level splitting
  esc       clear the mark
  q         quit`,
		Example: `  regroup explore -s 2+2+3/8
  regroup explore -p 3,1.5,0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			h, err := runner.Hierarchy(ctx, opts)
			if err != nil {
				return err
			}

			m := newExploreModel(h, opts.Describe(), opts.SplitSameLevel)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("explore: %w", err)
			}

			// Leave the last selection on screen after the alt screen closes.
			if fm, ok := final.(exploreModel); ok && fm.anchor != nil {
				w := cmd.OutOrStdout()
				span := fm.span()
				printKeyValue(w, "span", span.String())
				if fm.err != nil {
					printError(w, "%s", fm.err)
					return nil
				}
				fmt.Fprintln(w, fragmentTable(fm.fragments))
			}
			return nil
		},
	}

	flags.registerSource(cmd.Flags())
	cmd.Flags().BoolVar(&flags.sameLevel, "same-level", false, "split at boundaries of equal strength")
	return cmd
}

// =============================================================================
// exploreModel - Interactive hierarchy explorer
// =============================================================================

// exploreModel is the bubbletea model for the explorer. The cursor always
// sits on a boundary of the current level.
type exploreModel struct {
	h         *meter.Hierarchy
	source    string
	sameLevel bool

	level  int
	index  int
	anchor *meter.Offset
	width  int

	fragments []regroup.Fragment
	err       error
}

func newExploreModel(h *meter.Hierarchy, source string, sameLevel bool) exploreModel {
	return exploreModel{
		h:         h,
		source:    source,
		sameLevel: sameLevel,
		width:     defaultRulerWidth,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			if m.index > 0 {
				m.index--
			}
		case "right", "l":
			if m.index < len(m.h.Level(m.level))-1 {
				m.index++
			}
		case "up", "k":
			if m.level > 0 {
				m.moveLevel(m.level - 1)
			}
		case "down", "j":
			if m.level < m.h.Depth()-1 {
				m.moveLevel(m.level + 1)
			}
		case " ":
			cur := m.cursor()
			m.anchor = &cur
		case "esc":
			m.anchor = nil
		case "tab":
			m.sameLevel = !m.sameLevel
		}
		m.resplit()
	case tea.WindowSizeMsg:
		m.width = min(max(msg.Width-16, minRulerWidth), maxRulerWidth)
	}
	return m, nil
}

// moveLevel switches to level, keeping the cursor on the last boundary at or
// before its current position.
func (m *exploreModel) moveLevel(level int) {
	cur := m.cursor()
	m.level = level
	m.index = 0
	for i, o := range m.h.Level(level) {
		if o.Cmp(cur) > 0 {
			break
		}
		m.index = i
	}
}

func (m exploreModel) cursor() meter.Offset {
	return m.h.Level(m.level)[m.index]
}

// span returns the span between the mark and the cursor.
func (m exploreModel) span() regroup.Span {
	if m.anchor == nil {
		return regroup.Span{}
	}
	start, end := *m.anchor, m.cursor()
	if end.Less(start) {
		start, end = end, start
	}
	return regroup.Span{Start: start, Length: end.Sub(start)}
}

func (m *exploreModel) resplit() {
	m.fragments, m.err = nil, nil
	if m.anchor == nil {
		return
	}
	s := regroup.New(m.h, regroup.Options{SplitSameLevel: m.sameLevel})
	m.fragments, m.err = s.SplitSpan(m.span())
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore") + "  " + StyleValue.Render(m.source))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  measure %s", m.h.MeasureLength())))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ boundary  ↑/↓ level  space mark  tab same-level  esc clear  q quit"))
	b.WriteString("\n\n")

	for i, level := range m.h.Levels() {
		label := fmt.Sprintf("  L%d", i)
		if i == m.level {
			label = "▸ " + label[2:]
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(m.ruler(level, i == m.level))
		b.WriteString("\n")
	}
	if line := m.spanRuler(); line != "" {
		b.WriteString(labelStyle.Render("  span"))
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	cur := m.cursor()
	b.WriteString(labelStyle.Render("cursor"))
	b.WriteString(StyleValue.Render(fmt.Sprintf("%s (strength %d)", cur, m.h.Strength(cur))))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("mode"))
	if m.sameLevel {
		b.WriteString(StyleValue.Render("same-level"))
	} else {
		b.WriteString(StyleValue.Render("default"))
	}
	b.WriteString("\n")
	if m.anchor != nil {
		b.WriteString(labelStyle.Render("span"))
		b.WriteString(StyleValue.Render(m.span().String()))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("fragments"))
		if m.err != nil {
			b.WriteString(StyleWarning.Render(m.err.Error()))
		} else {
			b.WriteString(StyleHighlight.Render(joinFragments(m.fragments)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// col maps an offset to a ruler column.
func (m exploreModel) col(o meter.Offset) int {
	measure := m.h.MeasureLength()
	if measure.IsZero() {
		return 0
	}
	c := int(o.Float64()/measure.Float64()*float64(m.width) + 0.5)
	return min(max(c, 0), m.width)
}

// ruler draws one level with a tick at each boundary. On the current level
// the cursor tick is highlighted.
func (m exploreModel) ruler(level meter.Level, current bool) string {
	cells := []rune(strings.Repeat("─", m.width+1))
	for _, o := range level {
		cells[m.col(o)] = '│'
	}
	if !current {
		return StyleDim.Render(string(cells))
	}
	c := m.col(m.cursor())
	cells[c] = '●'
	return StyleHighlight.Render(string(cells[:c])) +
		rulerCursorStyle.Render(string(cells[c])) +
		StyleHighlight.Render(string(cells[c+1:]))
}

// spanRuler draws the marked span with a tick at each fragment boundary.
func (m exploreModel) spanRuler() string {
	if m.anchor == nil || m.err != nil {
		return ""
	}
	span := m.span()
	start, end := m.col(span.Start), m.col(span.End())
	cells := []rune(strings.Repeat(" ", m.width+1))
	for i := start; i <= end; i++ {
		cells[i] = '━'
	}
	for _, f := range m.fragments {
		cells[m.col(f.Position)] = '┃'
	}
	cells[end] = '┃'
	return rulerSpanStyle.Render(strings.TrimRight(string(cells), " "))
}
