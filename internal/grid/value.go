package grid

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a comparable cell value read out of a row by a column accessor.
// Supported dynamic types are nil, string, bool, every Go integer and float
// kind, and time.Time. Anything else is compared by its fmt.Sprint form.
type Value any

// valueKind orders values of different dynamic types against each other.
type valueKind int

const (
	kindNil valueKind = iota
	kindBool
	kindNumber
	kindTime
	kindString
)

func kindOf(v Value) valueKind {
	switch v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return kindNumber
	case time.Time:
		return kindTime
	default:
		return kindString
	}
}

// number is a numeric value in its widest exact form. Exactly one of the
// int, uint or float interpretations is meaningful, as named by form.
type number struct {
	form numForm
	i    int64
	u    uint64
	f    float64
}

type numForm int

const (
	formInt numForm = iota
	formUint
	formFloat
)

func toNumber(v Value) number {
	switch n := v.(type) {
	case int:
		return number{form: formInt, i: int64(n)}
	case int8:
		return number{form: formInt, i: int64(n)}
	case int16:
		return number{form: formInt, i: int64(n)}
	case int32:
		return number{form: formInt, i: int64(n)}
	case int64:
		return number{form: formInt, i: n}
	case uint:
		return number{form: formUint, u: uint64(n)}
	case uint8:
		return number{form: formUint, u: uint64(n)}
	case uint16:
		return number{form: formUint, u: uint64(n)}
	case uint32:
		return number{form: formUint, u: uint64(n)}
	case uint64:
		return number{form: formUint, u: n}
	case float32:
		return number{form: formFloat, f: float64(n)}
	case float64:
		return number{form: formFloat, f: n}
	}
	return number{}
}

func (n number) float() float64 {
	switch n.form {
	case formInt:
		return float64(n.i)
	case formUint:
		return float64(n.u)
	}
	return n.f
}

// compareNumbers compares integers exactly and widens to float64 only when
// one side is a float. NaN orders before every other number, as in
// cmp.Compare.
func compareNumbers(a, b number) int {
	switch {
	case a.form == formInt && b.form == formInt:
		return cmp.Compare(a.i, b.i)
	case a.form == formUint && b.form == formUint:
		return cmp.Compare(a.u, b.u)
	case a.form == formInt && b.form == formUint:
		if a.i < 0 {
			return -1
		}
		return cmp.Compare(uint64(a.i), b.u)
	case a.form == formUint && b.form == formInt:
		return -compareNumbers(b, a)
	}
	return cmp.Compare(a.float(), b.float())
}

// IsNaN reports whether v is a floating point NaN.
func IsNaN(v Value) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

func toText(v Value) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

// IsNil reports whether v carries no value.
func IsNil(v Value) bool {
	return v == nil
}

// CompareValues returns -1, 0 or +1 using the natural ordering of the value's
// type. nil is not handled here; callers place nil values themselves.
func CompareValues(a, b Value, foldCase bool) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}

	switch ka {
	case kindBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case kindNumber:
		return compareNumbers(toNumber(a), toNumber(b))
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case kindString:
		as, bs := toText(a), toText(b)
		if foldCase {
			as, bs = foldString(as), foldString(bs)
		}
		return strings.Compare(as, bs)
	}
	return 0
}

// FormatValue renders a value the way a cell shows it when no Render func is
// configured.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	}
	return toText(v)
}
