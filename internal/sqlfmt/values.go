package sqlfmt

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Raw marks a fragment that is emitted verbatim with no escaping. The caller
// guarantees its safety; everything else in a statement is escaped.
type Raw string

// JSON forces a value to render as a quoted JSON document even if it would
// otherwise have a scalar rendering.
type JSON struct {
	Value any
}

const timestampLayout = time.RFC3339Nano

// Literal renders a single value as PostgreSQL literal text.
//
// Strings are single-quoted with embedded quotes doubled, numbers emit as
// bare literals (NaN and infinities are rejected), booleans as true/false,
// nil as NULL, time.Time as a quoted RFC 3339 timestamp, byte slices as
// bytea hex, and any other map, slice or JSON-marshalable structure as a
// quoted JSON document. Raw fragments pass through untouched.
func Literal(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case Raw:
		return string(v), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case string:
		return QuoteString(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case json.Number:
		return v.String(), nil
	case []byte:
		return `'\x` + hex.EncodeToString(v) + `'`, nil
	case time.Time:
		return QuoteString(v.Format(timestampLayout)), nil
	case *time.Time:
		if v == nil {
			return "NULL", nil
		}
		return QuoteString(v.Format(timestampLayout)), nil
	case JSON:
		return jsonLiteral(v.Value)
	case error:
		return "", &UnsupportedValueError{Value: v, Reason: "error values cannot be inserted"}
	default:
		return reflectLiteral(v)
	}
}

// reflectLiteral handles pointers, named scalar types and structured values
// that fall through the concrete type switch.
func reflectLiteral(v any) (string, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "NULL", nil
		}
		return Literal(rv.Elem().Interface())
	case reflect.Bool:
		return Literal(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Literal(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Literal(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.String:
		return QuoteString(rv.String()), nil
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return jsonLiteral(v)
	default:
		return "", &UnsupportedValueError{Value: v, Reason: "unsupported kind " + rv.Kind().String()}
	}
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", &UnsupportedValueError{Value: f, Reason: "non-finite numbers cannot be inserted"}
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// jsonLiteral renders structured values (maps, slices, records, structs) as
// a quoted JSON document. Marshalling failures, including cyclic values,
// surface as UnsupportedValueError.
func jsonLiteral(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", &UnsupportedValueError{Value: v, Reason: err.Error()}
	}
	return QuoteString(string(data)), nil
}
