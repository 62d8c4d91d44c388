package grid

import (
	"errors"
	"fmt"
)

// Configuration errors. These are detected once, when a table is built or
// handed a new row set, and are always returned wrapped in a *ConfigError.
var (
	ErrEmptyColumnKey     = errors.New("column key is empty")
	ErrDuplicateColumnKey = errors.New("duplicate column key")
	ErrMissingRowIDFunc   = errors.New("no row identifier function configured")
	ErrMissingRowID       = errors.New("row has no identifier")
	ErrDuplicateRowID     = errors.New("duplicate row identifier")
	ErrMissingCallback    = errors.New("controlled state has no change callback")
)

// ConfigError describes a table configuration that cannot be used.
type ConfigError struct {
	Field  string // which part of the configuration is at fault, e.g. "columns[2]"
	Reason string // human readable detail
	Err    error  // one of the Err* sentinels
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("grid: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("grid: %s: %v (%s)", e.Field, e.Err, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(field string, err error, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...), Err: err}
}
