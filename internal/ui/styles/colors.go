package styles

import "github.com/charmbracelet/lipgloss"

// Color palette, dark mode optimized
var (
	// Primary semantic colors
	Accent  = lipgloss.Color("#7C3AED") // violet-500 - highlights, interactive
	Success = lipgloss.Color("#10B981") // emerald-500 - success
	Warning = lipgloss.Color("#F59E0B") // amber-500 - warnings, filters
	Error   = lipgloss.Color("#EF4444") // red-500 - errors, destructive actions
	Info    = lipgloss.Color("#3B82F6") // blue-500 - info, sort indicators
	Muted   = lipgloss.Color("#6B7280") // gray-500 - secondary text

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB") // gray-50 - main text
	TextTertiary  = lipgloss.Color("#6B7280") // gray-500 - empty cells

	// Background colors
	BgHighlight = lipgloss.Color("#1F2937") // gray-800 - cursor row
	BgSelected  = lipgloss.Color("#312E81") // indigo-900 - selected rows
)

// Semantic color aliases
var (
	ColorSort        = Info
	ColorFilter      = Warning
	ColorSelected    = Accent
	ColorDestructive = Error
	ColorNull        = TextTertiary
)
