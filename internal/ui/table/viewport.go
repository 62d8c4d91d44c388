package table

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ═══════════════════════════════════════════════════════════════════════════
// Smooth Scroll Animation
// ═══════════════════════════════════════════════════════════════════════════

type animTickMsg time.Time

const animationFrameInterval = 16 * time.Millisecond
const animationFraction = 0.25
const animationSnapThreshold = 1

func animTick() tea.Cmd {
	return tea.Tick(animationFrameInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

func (m *tableModel) startAnimation(targetX, targetY int) tea.Cmd {
	m.animTargetX = max(min(targetX, m.getMaxScrollX()), 0)
	m.animTargetY = max(min(targetY, m.getMaxScrollY()), 0)

	if m.animTargetX == m.scrollX && m.animTargetY == m.scrollY {
		m.animating = false
		return nil
	}

	if !m.animating {
		m.animating = true
		return animTick()
	}

	return nil
}

func (m *tableModel) updateAnimation() tea.Cmd {
	if !m.animating {
		return nil
	}

	remainingX := m.animTargetX - m.scrollX
	remainingY := m.animTargetY - m.scrollY

	if abs(remainingX) <= animationSnapThreshold && abs(remainingY) <= animationSnapThreshold {
		m.scrollX = m.animTargetX
		m.scrollY = m.animTargetY
		m.animating = false
		return nil
	}

	m.scrollX += animStep(remainingX)
	m.scrollY += animStep(remainingY)
	return animTick()
}

// animStep covers a fraction of the remaining distance, at least one cell.
func animStep(remaining int) int {
	if remaining == 0 {
		return 0
	}
	delta := int(float64(remaining) * animationFraction)
	if delta != 0 {
		return delta
	}
	if remaining > 0 {
		return 1
	}
	return -1
}

func (m *tableModel) cancelAnimation() {
	m.animating = false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ═══════════════════════════════════════════════════════════════════════════
// ANSI-aware Viewport Slicing
// ═══════════════════════════════════════════════════════════════════════════

// applyViewport extracts a horizontal slice of a string, handling ANSI escape
// codes and double-width runes. It returns the portion of the string from
// visual column startX with the given width, padded with spaces.
func applyViewport(s string, startX, width int) string {
	if width <= 0 {
		return ""
	}
	startX = max(startX, 0)

	var result strings.Builder
	result.Grow(width + 64)

	visualPos := 0
	outputCols := 0
	stylesApplied := false
	inEscape := false
	var escapeSeq strings.Builder
	var activeStyles []string

	runes := []rune(s)
scan:
	for i := 0; i < len(runes) && outputCols < width; i++ {
		r := runes[i]

		if r == '\x1b' && i+1 < len(runes) && runes[i+1] == '[' {
			inEscape = true
			escapeSeq.Reset()
			escapeSeq.WriteRune(r)
			continue
		}

		if inEscape {
			escapeSeq.WriteRune(r)
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
				seq := escapeSeq.String()

				if r == 'm' {
					if seq == "\x1b[0m" || seq == "\x1b[m" {
						activeStyles = nil
					} else {
						activeStyles = append(activeStyles, seq)
					}
				}

				if visualPos >= startX {
					result.WriteString(seq)
				}
			}
			continue
		}

		rw := runewidth.RuneWidth(r)
		switch {
		case visualPos >= startX:
			if outputCols+rw > width {
				break scan
			}
			if !stylesApplied && len(activeStyles) > 0 {
				for _, style := range activeStyles {
					result.WriteString(style)
				}
				stylesApplied = true
			}
			result.WriteRune(r)
			outputCols += rw
		case visualPos+rw > startX:
			// A wide rune cut by the left edge leaves a blank cell.
			result.WriteByte(' ')
			outputCols += visualPos + rw - startX
		}
		visualPos += rw
	}

	if len(activeStyles) > 0 && outputCols > 0 {
		result.WriteString("\x1b[0m")
	}

	if pad := width - lipgloss.Width(result.String()); pad > 0 {
		result.WriteString(strings.Repeat(" ", pad))
	}

	return result.String()
}

// textWidth is the number of terminal cells s occupies.
func textWidth(s string) int {
	return runewidth.StringWidth(s)
}

// padVisual pads a possibly styled string with spaces to width cells.
func padVisual(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// ═══════════════════════════════════════════════════════════════════════════
// Scroll Helpers
// ═══════════════════════════════════════════════════════════════════════════

// ensureRowVisible scrolls so the cursor row is on screen. Scroll positions
// count body lines, which include the header when it is not pinned.
func (m *tableModel) ensureRowVisible() {
	if m.cursor == 0 {
		m.scrollY = 0
		return
	}
	visibleRows := m.visibleRowCount()
	line := m.bodyHeaderLines() + m.cursor
	if line < m.scrollY {
		m.scrollY = line
	} else if line >= m.scrollY+visibleRows {
		m.scrollY = line - visibleRows + 1
	}
	m.scrollY = max(min(m.scrollY, m.getMaxScrollY()), 0)
}

func (m *tableModel) clampScrollX() {
	m.scrollX = max(min(m.scrollX, m.getMaxScrollX()), 0)
}

func (m *tableModel) ensureColVisible() {
	colStartX := m.getColStartX(m.colCursor)
	colEndX := m.getColEndX(m.colCursor)
	viewportWidth := m.viewportWidth()

	if colStartX < m.scrollX {
		m.scrollX = colStartX
	} else if colEndX > m.scrollX+viewportWidth {
		if colEndX-colStartX <= viewportWidth {
			m.scrollX = colEndX - viewportWidth
		} else {
			m.scrollX = colStartX
		}
	}
	m.clampScrollX()
}

func (m *tableModel) ensureColVisibleFromLeft() {
	m.scrollX = m.getColStartX(m.colCursor)
	m.clampScrollX()
}

func (m *tableModel) ensureColVisibleFromRight() {
	colStartX := m.getColStartX(m.colCursor)
	colEndX := m.getColEndX(m.colCursor)
	viewportWidth := m.viewportWidth()

	m.scrollX = colEndX - viewportWidth
	if colEndX-colStartX <= viewportWidth && m.scrollX < colStartX {
		m.scrollX = colStartX
	}
	m.clampScrollX()
}
