package styles

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess  = "✓"
	SymbolWarning  = "⚠"
	SymbolSortAsc  = "▲"
	SymbolSortDesc = "▼"
	SymbolChecked  = "■"
	SymbolUnticked = "□"
	SymbolPartial  = "▣"
)

var forceNoColor atomic.Bool

// SetNoColor disables colors regardless of the environment (config, flags).
func SetNoColor(v bool) {
	forceNoColor.Store(v)
}

// NoColor checks if colors should be disabled
func NoColor() bool {
	return forceNoColor.Load() || os.Getenv("NO_COLOR") != "" || os.Getenv("DATAGRID_NO_COLOR") != ""
}

// IsAccessible checks if accessibility mode is enabled
// When enabled: no animations, ASCII symbols
func IsAccessible() bool {
	return os.Getenv("DATAGRID_ACCESSIBLE") == "1" || os.Getenv("DATAGRID_ACCESSIBLE") == "true"
}

// Bold is the base style for titles.
var Bold = lipgloss.NewStyle().Bold(true)

// Semantic styles - use these instead of raw colors
var (
	// Message types
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// Table cells
	HeaderStyle = lipgloss.NewStyle().Bold(true)
	SortStyle   = lipgloss.NewStyle().Foreground(ColorSort).Bold(true)
	FilterStyle = lipgloss.NewStyle().Foreground(ColorFilter)
	NullStyle   = lipgloss.NewStyle().Foreground(ColorNull).Italic(true)

	// Interactive TUI
	CursorStyle = lipgloss.NewStyle().
			Background(BgHighlight).
			Foreground(TextPrimary)
	SelectedRowStyle = lipgloss.NewStyle().
				Background(BgSelected).
				Foreground(TextPrimary)
	CheckStyle = lipgloss.NewStyle().Foreground(ColorSelected)

	// Bulk action buttons, by variant
	ActionStyle            = lipgloss.NewStyle().Foreground(Accent)
	DestructiveActionStyle = lipgloss.NewStyle().Foreground(ColorDestructive).Bold(true)
)

// ═══════════════════════════════════════════════════════════════════════════
// Render functions - centralized formatting with NoColor support
// ═══════════════════════════════════════════════════════════════════════════

// Render applies a style if colors are enabled
func Render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// SortIndicator returns the header marker for a sort direction.
func SortIndicator(descending bool) string {
	if IsAccessible() || NoColor() {
		if descending {
			return "v"
		}
		return "^"
	}
	if descending {
		return Render(SortStyle, SymbolSortDesc)
	}
	return Render(SortStyle, SymbolSortAsc)
}

// Checkbox returns the selection marker for a row or the header.
func Checkbox(checked, partial bool) string {
	ascii := IsAccessible() || NoColor()
	switch {
	case checked && ascii:
		return "[x]"
	case partial && ascii:
		return "[-]"
	case ascii:
		return "[ ]"
	case checked:
		return Render(CheckStyle, SymbolChecked)
	case partial:
		return Render(CheckStyle, SymbolPartial)
	}
	return Render(MutedStyle, SymbolUnticked)
}

// ═══════════════════════════════════════════════════════════════════════════
// Message formatters - structured output
// ═══════════════════════════════════════════════════════════════════════════

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", Render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return Render(ErrorStyle, "Error: "+title)
}

// WarningMsg formats a warning message
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", Render(WarningStyle, symbol), msg)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return Render(MutedStyle, msg)
}

func Mute(s string) string        { return Render(MutedStyle, s) }
func WarningText(s string) string { return Render(WarningStyle, s) }
func ErrorText(s string) string   { return Render(ErrorStyle, s) }

// Mutef is Mute with Printf formatting.
func Mutef(format string, a ...any) string { return Mute(fmt.Sprintf(format, a...)) }
