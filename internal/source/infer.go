package source

import (
	"strconv"
	"strings"
	"time"

	"github.com/imgajeed76/datagrid/internal/grid"
)

// timeLayouts are tried in order when a text cell might be a timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
}

// InferValue converts a text cell into the most specific value it
// represents: nil for empty, then int64, float64, bool, time.Time, and
// finally the string itself.
func InferValue(s string) grid.Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !isSpecialFloat(t) {
		return f
	}
	switch strings.ToLower(t) {
	case "true":
		return true
	case "false":
		return false
	}
	if tm, ok := parseTime(t); ok {
		return tm
	}
	return s
}

// isSpecialFloat rejects words ParseFloat accepts but nobody means as numbers.
func isSpecialFloat(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "inf", "infinity", "nan":
		return true
	}
	return false
}

func parseTime(s string) (time.Time, bool) {
	// Cheap pre-check: every layout starts with a 4-digit year and a dash.
	if len(s) < 10 || s[4] != '-' {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, true
		}
	}
	return time.Time{}, false
}

func kindOfValue(v grid.Value) Kind {
	switch v.(type) {
	case nil:
		return KindEmpty
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	}
	return KindString
}
