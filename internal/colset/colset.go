// Package colset derives ordered, de-duplicated column sets from schema
// hints or sample records, and resolves records into aligned value lists
// ready for literal formatting. A ColumnSet is built once and reused across
// many Prepare calls; that reuse is the reason it exists as a standalone
// type instead of being inlined into statement generation.
package colset

import (
	"github.com/google/uuid"

	"sqlforge/internal/record"
)

// DefaultFunc computes a column value from the looked-up value and the whole
// record. present reports whether the record carries the source key at all;
// a present nil value is SQL NULL, not missing. The function receives the
// original record, never partially resolved output, so it may consult
// sibling fields safely.
//
// A DefaultFunc runs even when the value is present. This lets a column be
// forced from sibling state, and it also means a careless function can
// silently overwrite populated data; pass the value through unless you mean
// to replace it.
type DefaultFunc func(cur any, present bool, rec *record.Record) any

// Descriptor is the per-column metadata of a ColumnSet.
type Descriptor struct {
	// Name is the output column name, quoted on emission.
	Name string

	// SourceKey is the record field the value is read from. Empty means
	// Name.
	SourceKey string

	// Default is the static fallback used when the source key is absent.
	// HasDefault distinguishes "default is NULL" from "no default".
	Default    any
	HasDefault bool

	// Compute, when set, always decides the column value. See DefaultFunc.
	Compute DefaultFunc

	// Nullable lets an absent value resolve to NULL instead of failing.
	Nullable bool

	// Skip excludes the column from all output. Skipped columns never run
	// their Compute function.
	Skip bool
}

func (d Descriptor) sourceKey() string {
	if d.SourceKey != "" {
		return d.SourceKey
	}
	return d.Name
}

// Options configures ColumnSet construction.
type Options struct {
	// Table is remembered by the set and used when generation is invoked
	// without an explicit table name.
	Table string

	// NullMissing makes every column nullable-by-policy: absent values with
	// no default resolve to NULL instead of failing.
	NullMissing bool
}

// ColumnSet is an ordered, de-duplicated collection of column descriptors.
// It is immutable after construction; WithExclusions and WithCache return
// derived sets.
type ColumnSet struct {
	table string
	cols  []Descriptor
	opts  Options
	cache *prepareCache
}

// New builds a ColumnSet from a schema hint. Accepted schema shapes:
//
//	nil            infer one column per field of sample, in field order
//	[]Descriptor   explicit descriptors
//	[]string       bare column names
//	Descriptor     single descriptor
//	string         single bare name
//
// sample is consulted only when schema is nil; inference over a nil or
// empty-keyed sample is a ConfigError. Duplicate column names keep the first
// occurrence and its position.
func New(schema any, sample *record.Record, opts Options) (*ColumnSet, error) {
	var cols []Descriptor

	switch s := schema.(type) {
	case nil:
		if sample == nil || sample.Len() == 0 {
			return nil, &ConfigError{Field: "obj", Reason: "cannot infer columns without a non-empty record"}
		}
		for _, key := range sample.Keys() {
			cols = append(cols, Descriptor{Name: key})
		}
	case []Descriptor:
		if len(s) == 0 {
			return nil, &ConfigError{Field: "columns", Reason: "empty column list"}
		}
		cols = append(cols, s...)
	case []string:
		if len(s) == 0 {
			return nil, &ConfigError{Field: "columns", Reason: "empty column list"}
		}
		for _, name := range s {
			cols = append(cols, Descriptor{Name: name})
		}
	case Descriptor:
		cols = []Descriptor{s}
	case string:
		cols = []Descriptor{{Name: s}}
	default:
		return nil, &ConfigError{Field: "columns", Reason: "unsupported schema hint"}
	}

	seen := make(map[string]struct{}, len(cols))
	deduped := cols[:0]
	for _, col := range cols {
		if col.Name == "" {
			return nil, &ConfigError{Field: "columns", Reason: "column with empty name"}
		}
		if _, dup := seen[col.Name]; dup {
			continue
		}
		seen[col.Name] = struct{}{}
		deduped = append(deduped, col)
	}

	return &ColumnSet{table: opts.Table, cols: deduped, opts: opts}, nil
}

// Infer builds a ColumnSet from a sample record's fields.
func Infer(sample *record.Record, opts Options) (*ColumnSet, error) {
	return New(nil, sample, opts)
}

// Table returns the remembered table name, possibly empty.
func (cs *ColumnSet) Table() string {
	return cs.table
}

// Names returns the non-skipped column names in set order.
func (cs *ColumnSet) Names() []string {
	names := make([]string, 0, len(cs.cols))
	for _, col := range cs.cols {
		if col.Skip {
			continue
		}
		names = append(names, col.Name)
	}
	return names
}

// Len returns the number of non-skipped columns.
func (cs *ColumnSet) Len() int {
	return len(cs.Names())
}

// WithExclusions returns a view of the set with the listed columns marked
// skipped. Excluding an already-excluded or unknown name is a no-op, so the
// operation is idempotent.
func (cs *ColumnSet) WithExclusions(names ...string) *ColumnSet {
	excluded := make(map[string]struct{}, len(names))
	for _, name := range names {
		excluded[name] = struct{}{}
	}

	cols := make([]Descriptor, len(cs.cols))
	copy(cols, cs.cols)
	for i := range cols {
		if _, ok := excluded[cols[i].Name]; ok {
			cols[i].Skip = true
		}
	}
	return &ColumnSet{table: cs.table, cols: cols, opts: cs.opts}
}

// WithCache returns a view of the set that memoizes Prepare results keyed
// by record content. Enable it only when every Compute function is
// deterministic; correctness never depends on the cache.
func (cs *ColumnSet) WithCache() *ColumnSet {
	return &ColumnSet{table: cs.table, cols: cs.cols, opts: cs.opts, cache: newPrepareCache()}
}

// Prepare resolves rec into one value per non-skipped column, in set order.
// Resolution per column:
//
//  1. The value is looked up by source key.
//  2. A Compute function, if set, always decides the value, seeing the
//     looked-up value and the original record.
//  3. Otherwise a present value is used as-is; an absent one falls back to
//     the static default, then to NULL if the column is nullable, and
//     finally fails with MissingValueError naming the column.
func (cs *ColumnSet) Prepare(rec *record.Record) ([]any, error) {
	if rec == nil {
		return nil, &ConfigError{Field: "obj", Reason: "record is nil"}
	}

	if cs.cache != nil {
		if values, ok := cs.cache.get(rec); ok {
			return values, nil
		}
	}

	values := make([]any, 0, len(cs.cols))
	for _, col := range cs.cols {
		if col.Skip {
			continue
		}

		cur, present := rec.Lookup(col.sourceKey())
		switch {
		case col.Compute != nil:
			values = append(values, col.Compute(cur, present, rec))
		case present:
			values = append(values, cur)
		case col.HasDefault:
			values = append(values, col.Default)
		case col.Nullable || cs.opts.NullMissing:
			values = append(values, nil)
		default:
			return nil, &MissingValueError{Column: col.Name, Index: -1}
		}
	}

	if cs.cache != nil {
		cs.cache.put(rec, values)
	}
	return values, nil
}

// UUIDDefault is a Compute function that fills an absent value with a fresh
// random UUID and passes populated values through.
func UUIDDefault(cur any, present bool, _ *record.Record) any {
	if present {
		return cur
	}
	return uuid.NewString()
}
