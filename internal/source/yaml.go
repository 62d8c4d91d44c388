package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imgajeed76/datagrid/internal/grid"
)

var errNotSequence = errors.New("expected a sequence of mappings")

// parseYAML accepts a document whose root is a sequence of mappings. The node
// API keeps mapping key order, which a plain map decode would lose.
func parseYAML(name string, data []byte, opts Options) (*Dataset, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: %w", name, errNotSequence)
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: %w", name, errNotSequence)
	}

	cols := newColumnSet()
	objects := make([]map[string]grid.Value, 0, len(root.Content))
	for i, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%s: row %d (line %d): %w", name, i+1, item.Line, errNotSequence)
		}
		obj := make(map[string]grid.Value, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			key := item.Content[j].Value
			v, err := yamlValue(item.Content[j+1])
			if err != nil {
				return nil, fmt.Errorf("%s: line %d: %w", name, item.Content[j+1].Line, err)
			}
			cols.add(key)
			obj[key] = v
		}
		objects = append(objects, obj)
	}

	return buildDataset(name, cols.names, cols.rows(objects), opts)
}

func yamlValue(n *yaml.Node) (grid.Value, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			return fmt.Sprint(v), nil
		}
		return string(bytes.TrimSpace(buf.Bytes())), nil
	}

	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		err := n.Decode(&b)
		return b, err
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// Out of int64 range: keep the text.
			return n.Value, nil
		}
		return i, nil
	case "!!float":
		var f float64
		err := n.Decode(&f)
		return f, err
	case "!!timestamp":
		var t time.Time
		err := n.Decode(&t)
		return t, err
	}
	return n.Value, nil
}
