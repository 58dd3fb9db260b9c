package colset

import "fmt"

// ConfigError reports an invalid or missing input to set construction or
// statement generation: a missing table name, a bad schema hint, or data
// that is not a record.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MissingValueError reports a non-nullable column that resolved to no value
// after default resolution. Index is the position of the failing record in a
// batch, or -1 for single-record operations.
type MissingValueError struct {
	Column string
	Index  int
}

func (e *MissingValueError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("no value found for column %q in record %d", e.Column, e.Index)
	}
	return fmt.Sprintf("no value found for column %q", e.Column)
}
