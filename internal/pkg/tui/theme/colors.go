package theme

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Primary colors
	Green       = lipgloss.Color("#10B981")
	BrightGreen = lipgloss.Color("#34D399")
	DarkGreen   = lipgloss.Color("#047857")

	// Neutrals
	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	DarkGray  = lipgloss.Color("#374151")

	// Semantic colors
	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Info    = lipgloss.Color("#3B82F6")
)
