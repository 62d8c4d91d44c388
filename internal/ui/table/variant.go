package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/ui/styles"
	"github.com/imgajeed76/datagrid/internal/util"
)

// PresentationMode selects the table layout. All modes share one renderer;
// the mode only picks layout parameters.
type PresentationMode int

const (
	// ModeStandard scrolls the header away with the rows.
	ModeStandard PresentationMode = iota
	// ModeSticky keeps the header pinned while rows scroll.
	ModeSticky
	// ModeCompact pins the header and drops separators and padding.
	ModeCompact

	PresentationModeCount
)

var modeNames = [PresentationModeCount]string{
	ModeStandard: "standard",
	ModeSticky:   "sticky",
	ModeCompact:  "compact",
}

func (m PresentationMode) String() string {
	if m < 0 || m >= PresentationModeCount {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode parses a --mode flag or display.mode config value.
func ParseMode(s string) (PresentationMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return PresentationMode(m), nil
		}
	}
	return ModeSticky, fmt.Errorf("%w: %q (expected one of: %s)", util.ErrInvalidModeString, s, strings.Join(modeNames[:], ", "))
}

// presentation holds the layout parameters of one mode.
type presentation struct {
	gap        int  // spaces between columns
	separator  bool // rule under the header
	pinHeader  bool // header stays while rows scroll (TUI)
	rowsFooter bool // "(n rows)" line in plain output
}

var presentations = [PresentationModeCount]presentation{
	ModeStandard: {gap: 2, separator: true, pinHeader: false, rowsFooter: true},
	ModeSticky:   {gap: 2, separator: true, pinHeader: true, rowsFooter: true},
	ModeCompact:  {gap: 1, separator: false, pinHeader: true, rowsFooter: false},
}

func presentationFor(m PresentationMode) presentation {
	if m < 0 || m >= PresentationModeCount {
		return presentations[ModeSticky]
	}
	return presentations[m]
}

// actionStyles maps every bulk action variant to its button style.
var actionStyles = [grid.ActionVariantCount]lipgloss.Style{
	grid.ActionDefault:     styles.ActionStyle,
	grid.ActionDestructive: styles.DestructiveActionStyle,
}

func actionStyle(v grid.ActionVariant) lipgloss.Style {
	if v < 0 || v >= grid.ActionVariantCount {
		return styles.ActionStyle
	}
	return actionStyles[v]
}
