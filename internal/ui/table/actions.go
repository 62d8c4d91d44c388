package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/source"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// ═══════════════════════════════════════════════════════════════════════════
// Bulk Actions
// ═══════════════════════════════════════════════════════════════════════════

// bulkActions are the operations offered on the selected rows. The number
// keys run them in order; destructive ones need a second press.
func (s *session) bulkActions(fields []source.Field) []grid.BulkAction[source.Record] {
	return []grid.BulkAction[source.Record]{
		{
			Label:   "copy",
			Key:     "1",
			Variant: grid.ActionDefault,
			Handler: func(selected []source.Record) {
				var sb strings.Builder
				sb.WriteString(strings.Join(fieldNames(fields), "\t"))
				for _, rec := range selected {
					sb.WriteByte('\n')
					sb.WriteString(rawLine(rec))
				}
				if err := writeClipboard(sb.String()); err != nil {
					s.flash(fmt.Sprintf("clipboard error: %s", err), statusError)
					return
				}
				s.flash(fmt.Sprintf("Copied %d rows", len(selected)), statusInfo)
			},
		},
		{
			Label:   "export",
			Key:     "2",
			Variant: grid.ActionDefault,
			Handler: func(selected []source.Record) {
				s.exportRows = selected
				s.quit = true
			},
		},
		{
			Label:   "drop",
			Key:     "3",
			Variant: grid.ActionDestructive,
			Handler: func(selected []source.Record) {
				drop := make(map[string]struct{}, len(selected))
				for _, rec := range selected {
					drop[rec.ID] = struct{}{}
				}
				var keep []source.Record
				for _, rec := range s.g.Rows() {
					if _, ok := drop[rec.ID]; !ok {
						keep = append(keep, rec)
					}
				}
				if err := s.g.SetRows(keep); err != nil {
					s.flash(err.Error(), statusError)
					return
				}
				s.flash(fmt.Sprintf("Dropped %d rows", len(selected)), statusInfo)
			},
		},
	}
}

// runAction invokes bulk action i. A destructive action only runs when the
// previous key press asked for the same action.
func (m tableModel) runAction(i, pendingConfirm int) (tea.Model, tea.Cmd) {
	g := m.s.g
	actions := g.BulkActions()
	if i < 0 || i >= len(actions) {
		return m, nil
	}
	if !g.BulkActionsEnabled() {
		return m, m.setWarning("select rows first (space)")
	}

	a := actions[i]
	if a.Variant == grid.ActionDestructive && pendingConfirm != i {
		m.confirmAction = i
		return m, m.setWarning(fmt.Sprintf("press %s again to %s %d rows", a.Key, a.Label, g.SelectedCount()))
	}

	g.RunBulkAction(i)
	m.recomputeWidths()
	m.clampCursor()
	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Status Message (flash notification)
// ═══════════════════════════════════════════════════════════════════════════

type statusClearMsg struct{}

const statusDuration = 2 * time.Second

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// flash sets a temporary status message and queues the tick that clears it.
func (s *session) flash(msg string, kind statusKind) {
	s.statusMsg = msg
	s.statusKind = kind
	s.statusUntil = time.Now().Add(statusDuration)
	s.pending = append(s.pending, tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusClearMsg{}
	}))
}

func (s *session) statusActive() bool {
	return s.statusMsg != "" && time.Now().Before(s.statusUntil)
}

// setStatus flashes msg. The clear tick goes out with the update's other
// queued commands.
func (m *tableModel) setStatus(msg string) tea.Cmd {
	m.s.flash(msg, statusInfo)
	return nil
}

func (m *tableModel) setWarning(msg string) tea.Cmd {
	m.s.flash(msg, statusWarn)
	return nil
}

func (m *tableModel) setError(msg string) tea.Cmd {
	m.s.flash(msg, statusError)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Clipboard (yank)
// ═══════════════════════════════════════════════════════════════════════════

// yankCell copies the value under the cursor to the system clipboard.
func (m *tableModel) yankCell() tea.Cmd {
	rec, ok := m.cursorRow()
	if !ok {
		return nil
	}
	val := grid.FormatValue(rec.Value(m.colCursor))
	if err := writeClipboard(val); err != nil {
		return m.setError(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied: %s", Truncate(escapeControl(val), 40)))
}

// yankRow copies the row under the cursor (tab-separated) to the clipboard.
func (m *tableModel) yankRow() tea.Cmd {
	rec, ok := m.cursorRow()
	if !ok {
		return nil
	}
	if err := writeClipboard(rawLine(rec)); err != nil {
		return m.setError(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied row (%d columns)", len(m.fields)))
}

// rawLine is one record in the tab-separated raw format.
func rawLine(rec source.Record) string {
	cells := make([]string, len(rec.Values))
	for i, v := range rec.Values {
		cells[i] = escapeControl(grid.FormatValue(v))
	}
	return strings.Join(cells, "\t")
}
