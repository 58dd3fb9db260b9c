package sqlfmt

import (
	"strconv"
	"strings"
)

// Format substitutes positional placeholders in template with members of
// args and returns the assembled statement text.
//
// Placeholders are 1-based:
//
//	$1   value, escaped per Literal
//	$1^  raw, emitted verbatim (the argument must stringify cleanly)
//	$1~  identifier, double-quoted with embedded quotes doubled
//
// A '$' not followed by a digit is copied through unchanged. Referencing an
// argument outside the args slice is a FormatError.
func Format(template string, args ...any) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		if c != '$' || i+1 >= len(template) || !isDigit(template[i+1]) {
			b.WriteByte(c)
			i++
			continue
		}

		j := i + 1
		for j < len(template) && isDigit(template[j]) {
			j++
		}
		index, err := strconv.Atoi(template[i+1 : j])
		if err != nil || index < 1 {
			return "", &FormatError{Template: template, Reason: "invalid placeholder index"}
		}
		if index > len(args) {
			return "", &FormatError{
				Template: template,
				Reason:   "placeholder $" + strconv.Itoa(index) + " exceeds argument count " + strconv.Itoa(len(args)),
			}
		}
		arg := args[index-1]

		modifier := byte(0)
		if j < len(template) && (template[j] == '^' || template[j] == '~') {
			modifier = template[j]
			j++
		}

		switch modifier {
		case '^':
			raw, err := rawText(arg)
			if err != nil {
				return "", err
			}
			b.WriteString(raw)
		case '~':
			name, ok := arg.(string)
			if !ok {
				return "", &FormatError{Template: template, Reason: "identifier placeholder requires a string argument"}
			}
			b.WriteString(QuoteIdentifier(name))
		default:
			lit, err := Literal(arg)
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
		}
		i = j
	}

	return b.String(), nil
}

func rawText(v any) (string, error) {
	switch v := v.(type) {
	case Raw:
		return string(v), nil
	case string:
		return v, nil
	default:
		lit, err := Literal(v)
		if err != nil {
			return "", err
		}
		return lit, nil
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
