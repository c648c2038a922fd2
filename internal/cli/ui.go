package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. ANSI 256 codes so output looks the same across terminals.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by the commands and the explorer.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	markSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	markError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	markInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")

	cacheStatus = map[bool]string{
		true:  lipgloss.NewStyle().Foreground(colorGreen).Render("cached"),
		false: lipgloss.NewStyle().Foreground(colorGray).Render("fresh"),
	}
)

func printMarked(w io.Writer, mark, format string, args ...any) {
	fmt.Fprintln(w, mark+" "+fmt.Sprintf(format, args...))
}

func printSuccess(w io.Writer, format string, args ...any) {
	printMarked(w, markSuccess, format, args...)
}

func printError(w io.Writer, format string, args ...any) {
	printMarked(w, markError, format, args...)
}

func printInfo(w io.Writer, format string, args ...any) {
	printMarked(w, markInfo, format, args...)
}

// printDetail prints an indented, dimmed line under a status message.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path a command wrote to.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints span and fragment counts followed by whether the
// hierarchy came from the cache. Counts are left out when spans is zero.
func printStats(w io.Writer, spans, fragments int, cached bool) {
	var parts []string
	if spans > 0 {
		parts = append(parts, StyleDim.Render(plural(spans, "span")), StyleDim.Render(plural(fragments, "fragment")))
	}
	parts = append(parts, cacheStatus[cached])
	fmt.Fprintln(w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func plural(n int, noun string) string {
	if n != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s", n, noun)
}
