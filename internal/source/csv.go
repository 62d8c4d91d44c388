package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/util"
)

func parseDelimited(name string, data []byte, opts Options, delim rune) (*Dataset, error) {
	if delim == 0 {
		delim = ','
	}
	data = bytes.TrimPrefix(util.ToValidUTF8Bytes(data), []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", name, util.ErrNoColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
		if columns[i] == "" {
			columns[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	var rows [][]grid.Value
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		vals := make([]grid.Value, len(rec))
		for i, cell := range rec {
			vals[i] = InferValue(cell)
		}
		rows = append(rows, vals)
	}

	return buildDataset(name, columns, rows, opts)
}
