package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all shared TUI styles
type Styles struct {
	// Text styles
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Body        lipgloss.Style
	Muted       lipgloss.Style
	Bold        lipgloss.Style
	Highlighted lipgloss.Style

	// Help and hints
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Layout
	Card lipgloss.Style

	// Curve rendering
	CurveLow  lipgloss.Style
	CurveHigh lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		// Text styles
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(Green).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(LightGray),

		Muted: lipgloss.NewStyle().
			Foreground(DimGray),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Highlighted: lipgloss.NewStyle().
			Foreground(BrightGreen).
			Bold(true),

		// Help and hints
		Help: lipgloss.NewStyle().
			Foreground(DimGray).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(LightGray).
			Bold(true),

		// Layout
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGray).
			Padding(0, 2),

		// Curve rendering
		CurveLow: lipgloss.NewStyle().
			Foreground(DarkGreen),

		CurveHigh: lipgloss.NewStyle().
			Foreground(BrightGreen),

		// Status indicators
		Success: lipgloss.NewStyle().
			Foreground(Success),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Error: lipgloss.NewStyle().
			Foreground(Error),

		Info: lipgloss.NewStyle().
			Foreground(Info),
	}
}
