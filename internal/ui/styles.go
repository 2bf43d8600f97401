package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

// hasDarkBackground picks the glamour style used for "rich" release notes.
var hasDarkBackground = termenv.HasDarkBackground

var (
	cPurple     = lipgloss.Color("99")
	cCyan       = lipgloss.Color("39")
	cNeonGreen  = lipgloss.Color("118")
	cRed        = lipgloss.Color("203")
	cGold       = lipgloss.Color("220")
	cBrightGray = lipgloss.Color("246")
	cWhite      = lipgloss.Color("255")

	styleHeader = lipgloss.NewStyle().
			Foreground(cWhite).
			Background(cPurple).
			Bold(true).
			Padding(0, 1)

	styleChecking  = lipgloss.NewStyle().Foreground(cCyan).Bold(true)
	styleAvailable = lipgloss.NewStyle().Foreground(cNeonGreen).Bold(true)
	styleUpToDate  = lipgloss.NewStyle().Foreground(cBrightGray)
	styleFailed    = lipgloss.NewStyle().Foreground(cRed).Bold(true)
	styleDetail    = lipgloss.NewStyle().Foreground(cRed)
	styleVersion   = lipgloss.NewStyle().Foreground(cGold).Bold(true)
	styleLink      = lipgloss.NewStyle().Foreground(cCyan).Underline(true)
	styleDim       = lipgloss.NewStyle().Foreground(cBrightGray)

	styleField = lipgloss.NewStyle().
			Foreground(cBrightGray).
			Bold(true).
			Width(10)

	styleSpinner = lipgloss.NewStyle().Foreground(cPurple)
)

// buildMarkdownRenderer returns a release-notes renderer for the given style.
// "rich" follows the terminal background. "plain" and any glamour failure
// fall back to word wrapping.
func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" {
		style = "dark"
		if !hasDarkBackground() {
			style = "light"
		}
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
