// Package record provides an insertion-ordered field map used as the input
// shape for statement generation. Plain Go maps do not preserve key order,
// but column inference is defined in terms of first-seen field order, so
// records keep their own key list alongside the value map.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Record is an ordered mapping of field names to values. The zero value is
// not usable; construct with New, FromMap, FromStruct or by unmarshalling
// JSON.
type Record struct {
	keys   []string
	values map[string]any
}

// New returns an empty record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a field value. The first Set of a key fixes its position;
// later Sets overwrite the value in place. Returns the record for chaining.
func (r *Record) Set(key string, value any) *Record {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return r
}

// Lookup returns the value for key and whether the key is present. A
// present key holding nil is distinct from an absent key: nil maps to SQL
// NULL while absence triggers default resolution.
func (r *Record) Lookup(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in first-seen insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// FromMap builds a record from a plain map. Go maps have no iteration
// order, so keys are sorted to keep inference deterministic.
func FromMap(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := New()
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}

// FromStruct builds a record from a struct's exported fields in declaration
// order. Field names can be renamed with a `db:"name"` tag; `db:"-"` skips
// the field. Nested structs are converted to plain maps so they render as
// JSON values.
func FromStruct(v any) (*Record, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot build record from nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot build record from %T, want struct", v)
	}

	r := New()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag, ok := field.Tag.Lookup("db"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		value := rv.Field(i).Interface()
		converted, err := convertNested(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		r.Set(name, converted)
	}
	return r, nil
}

// convertNested flattens nested struct values into maps via mapstructure so
// downstream formatting only ever sees maps, slices and scalars. Scalars and
// time-like values pass through untouched.
func convertNested(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return v, nil
	}
	// time.Time has its own literal rendering, leave it alone.
	if _, ok := rv.Interface().(time.Time); ok {
		return rv.Interface(), nil
	}

	out := map[string]any{}
	if err := mapstructure.Decode(rv.Interface(), &out); err != nil {
		return nil, fmt.Errorf("decoding nested struct: %w", err)
	}
	return out, nil
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record, preserving the order
// keys appear in the document. Nested objects decode to plain maps.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		r.Set(key, normalizeNumbers(value))
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// normalizeNumbers rewrites json.Number leaves into int64 where the value
// is integral, float64 otherwise, so literals render without quotes.
func normalizeNumbers(v any) any {
	switch vv := v.(type) {
	case json.Number:
		if i, err := vv.Int64(); err == nil {
			return i
		}
		if f, err := vv.Float64(); err == nil {
			return f
		}
		return vv.String()
	case []any:
		for i := range vv {
			vv[i] = normalizeNumbers(vv[i])
		}
		return vv
	case map[string]any:
		for k := range vv {
			vv[k] = normalizeNumbers(vv[k])
		}
		return vv
	default:
		return v
	}
}
