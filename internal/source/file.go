package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imgajeed76/datagrid/internal/util"
)

// Format identifies a file encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the formats accepted by ParseFormat.
var Formats = []Format{FormatCSV, FormatTSV, FormatJSON, FormatYAML}

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatCSV, FormatTSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return FormatAuto, fmt.Errorf("%w: %s", util.ErrUnknownFormat, s)
}

// DetectFormat guesses the format from a file extension.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, true
	case ".tsv", ".tab":
		return FormatTSV, true
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return FormatAuto, false
}

// FileLoader reads a dataset from a file on disk. The file is re-read on
// every Load, so a watcher can simply call Load again after a change.
type FileLoader struct {
	Path    string
	Options Options
}

// NewFileLoader resolves the format up front so a bad path fails before any
// UI starts.
func NewFileLoader(path string, opts Options) (*FileLoader, error) {
	if opts.Format == FormatAuto {
		f, ok := DetectFormat(path)
		if !ok {
			return nil, util.UnknownFormatError(path)
		}
		opts.Format = f
	}
	return &FileLoader{Path: path, Options: opts}, nil
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(l.Path), data, l.Options)
}

// Parse decodes raw bytes in the format named by opts.
func Parse(name string, data []byte, opts Options) (*Dataset, error) {
	switch opts.Format {
	case FormatCSV:
		return parseDelimited(name, data, opts, opts.Delimiter)
	case FormatTSV:
		return parseDelimited(name, data, opts, '\t')
	case FormatJSON:
		return parseJSON(name, data, opts)
	case FormatYAML:
		return parseYAML(name, data, opts)
	}
	return nil, util.UnknownFormatError(name)
}
