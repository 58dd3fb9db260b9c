package sqlfmt

import "fmt"

// UnsupportedValueError reports a value whose runtime kind has no literal
// rendering rule, such as a function, a channel, or a non-finite float.
type UnsupportedValueError struct {
	Value  any
	Reason string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("value %v (%T) has no SQL representation: %s", e.Value, e.Value, e.Reason)
}

// FormatError reports a template/argument mismatch during placeholder
// substitution.
type FormatError struct {
	Template string
	Reason   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cannot format %q: %s", e.Template, e.Reason)
}
