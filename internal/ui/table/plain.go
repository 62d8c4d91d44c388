package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/source"
)

// PrintJSON writes rows as a JSON array of objects. Keys follow the field
// order and values keep their types.
func PrintJSON(w io.Writer, fields []source.Field, rows []source.Record) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, rec := range rows {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for j, f := range fields {
			if j > 0 {
				buf.WriteString(", ")
			}
			key, _ := json.Marshal(f.Name)
			buf.Write(key)
			buf.WriteString(": ")
			buf.Write(jsonValue(rec.Value(j)))
		}
		buf.WriteString("}")
	}
	if len(rows) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func jsonValue(v grid.Value) []byte {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		v = grid.FormatValue(f)
	}
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(grid.FormatValue(v))
	}
	return b
}

// PrintRaw writes rows as tab-separated values with no header.
func PrintRaw(w io.Writer, rows []source.Record) error {
	for _, rec := range rows {
		if _, err := fmt.Fprintln(w, rawLine(rec)); err != nil {
			return err
		}
	}
	return nil
}

// PrintPlainTable prints a properly aligned table for non-TTY output.
// Shows full content without truncation.
func PrintPlainTable(w io.Writer, fields []source.Field, rows []source.Record, mode PresentationMode, footer string) {
	if len(fields) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}
	p := presentationFor(mode)
	gap := strings.Repeat(" ", p.gap)

	cells := make([][]string, len(rows))
	for i, rec := range rows {
		cells[i] = make([]string, len(fields))
		for j := range fields {
			cells[i][j] = cellText(rec.Value(j))
		}
	}

	// Calculate column widths based on actual content (no truncation)
	colWidths := make([]int, len(fields))
	for i, f := range fields {
		colWidths[i] = runewidth.StringWidth(f.Name)
	}
	for _, row := range cells {
		for i, val := range row {
			if vw := runewidth.StringWidth(val); vw > colWidths[i] {
				colWidths[i] = vw
			}
		}
	}

	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(gap)
		}
		sb.WriteString(alignCell(f.Name, colWidths[i], false))
	}
	fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))

	if p.separator {
		sb.Reset()
		for i, cw := range colWidths {
			if i > 0 {
				sb.WriteString(gap)
			}
			sb.WriteString(strings.Repeat("─", cw))
		}
		fmt.Fprintln(w, sb.String())
	}

	for _, row := range cells {
		sb.Reset()
		for i, val := range row {
			if i > 0 {
				sb.WriteString(gap)
			}
			sb.WriteString(alignCell(val, colWidths[i], fields[i].Kind.Numeric()))
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}

	if p.rowsFooter {
		fmt.Fprintln(w)
		fmt.Fprintln(w, footer)
	}
}

// footerFor describes what part of the row set is shown.
func footerFor(g *Grid) string {
	shown := len(g.VisibleRows())
	page := g.PageState()
	if page.Size <= 0 || page.PageCount() <= 1 {
		return fmt.Sprintf("(%d rows)", shown)
	}
	first := page.Index*page.Size + 1
	if shown == 0 {
		first = 0
	}
	return fmt.Sprintf("(rows %d-%d of %d, page %d/%d)", first, page.Index*page.Size+shown, page.TotalCount, page.Index+1, page.PageCount())
}

// alignCell pads to width, right-aligning numbers.
func alignCell(s string, width int, right bool) string {
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// Truncate shortens a string to fit width, adding "..." if needed.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width > 3 {
		return runewidth.Truncate(s, width, "...")
	}
	return runewidth.Truncate(s, width, "")
}

// PadOrTruncate pads or truncates to exact width (for TUI table).
func PadOrTruncate(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}
