package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/imgajeed76/datagrid/internal/grid"
)

var errNotObject = errors.New("expected an object per row")

// parseJSON accepts an array of objects or a stream of objects (JSON lines).
// Columns appear in first-seen key order.
func parseJSON(name string, data []byte, opts Options) (*Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	cols := newColumnSet()
	var objects []map[string]grid.Value

	readObject := func() error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return errNotObject
		}
		obj := make(map[string]grid.Value)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key := keyTok.(string)
			var raw any
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			cols.add(key)
			obj[key] = jsonValue(raw)
		}
		if _, err := dec.Token(); err != nil { // closing '}'
			return err
		}
		objects = append(objects, obj)
		return nil
	}

	first, err := peekDelim(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	switch first {
	case '[':
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for dec.More() {
			if err := readObject(); err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", name, len(objects)+1, err)
			}
		}
	case '{':
		for {
			if err := readObject(); err == io.EOF {
				break
			} else if err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", name, len(objects)+1, err)
			}
		}
	default:
		return nil, fmt.Errorf("%s: %w", name, errNotObject)
	}

	return buildDataset(name, cols.names, cols.rows(objects), opts)
}

func peekDelim(data []byte) (byte, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return trimmed[0], nil
}

// jsonValue maps decoded JSON onto grid values. Nested containers are kept
// as compact JSON text.
func jsonValue(v any) grid.Value {
	switch x := v.(type) {
	case nil, bool, string:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// columnSet records column names in first-seen order.
type columnSet struct {
	names []string
	seen  map[string]bool
}

func newColumnSet() *columnSet {
	return &columnSet{seen: make(map[string]bool)}
}

func (c *columnSet) add(name string) {
	if !c.seen[name] {
		c.seen[name] = true
		c.names = append(c.names, name)
	}
}

func (c *columnSet) rows(objects []map[string]grid.Value) [][]grid.Value {
	rows := make([][]grid.Value, len(objects))
	for i, obj := range objects {
		vals := make([]grid.Value, len(c.names))
		for j, name := range c.names {
			vals[j] = obj[name]
		}
		rows[i] = vals
	}
	return rows
}
