// Package insert assembles literal INSERT statements from records and
// column sets. Generation is all-or-nothing: any failure surfaces as a
// typed error and no partial statement is ever returned.
package insert

import (
	"errors"
	"strings"

	"sqlforge/internal/colset"
	"sqlforge/internal/record"
	"sqlforge/internal/sqlfmt"
)

// Options configures statement assembly.
type Options struct {
	// Capitalize upper-cases the INSERT INTO and VALUES keywords.
	// Identifiers and values are never case-altered.
	Capitalize bool
}

// Generate builds one INSERT statement for data into table.
//
// columns may be an existing *colset.ColumnSet, any schema hint accepted by
// colset.New, or nil to infer columns from the data. data may be a single
// record (*record.Record or map[string]any) or a slice of records for a
// multi-row statement. When columns is an existing set and table is empty,
// the set's remembered table is used.
func Generate(table string, columns any, data any, opts Options) (string, error) {
	recs, batch, err := normalizeData(data)
	if err != nil {
		return "", err
	}

	cs, err := resolveColumns(columns, recs[0])
	if err != nil {
		return "", err
	}

	if table == "" {
		table = cs.Table()
	}
	if table == "" {
		return "", &colset.ConfigError{Field: "table", Reason: "no table name given and the column set remembers none"}
	}

	names := cs.Names()
	if len(names) == 0 {
		return "", &colset.ConfigError{Field: "columns", Reason: "no insertable columns"}
	}

	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = sqlfmt.QuoteIdentifier(name)
	}

	tuples := make([]string, 0, len(recs))
	for i, rec := range recs {
		tuple, err := valueTuple(cs, rec, i, batch)
		if err != nil {
			return "", err
		}
		tuples = append(tuples, tuple)
	}

	keywordInsert, keywordValues := "INSERT INTO", "VALUES"
	if opts.Capitalize {
		keywordInsert = strings.ToUpper(keywordInsert)
		keywordValues = strings.ToUpper(keywordValues)
	}

	return sqlfmt.Format(
		keywordInsert+" $1~($2^) "+keywordValues+"$3^",
		table,
		strings.Join(quoted, ","),
		strings.Join(tuples, ", "),
	)
}

// valueTuple prepares one record and renders its aligned values as a
// parenthesized tuple. In batch mode a missing value is annotated with the
// record's position.
func valueTuple(cs *colset.ColumnSet, rec *record.Record, index int, batch bool) (string, error) {
	values, err := cs.Prepare(rec)
	if err != nil {
		var missing *colset.MissingValueError
		if batch && errors.As(err, &missing) {
			return "", &colset.MissingValueError{Column: missing.Column, Index: index}
		}
		return "", err
	}

	literals := make([]string, len(values))
	for i, v := range values {
		lit, err := sqlfmt.Literal(v)
		if err != nil {
			return "", err
		}
		literals[i] = lit
	}
	return "(" + strings.Join(literals, ",") + ")", nil
}

// normalizeData coerces the accepted data shapes into a non-empty record
// slice. batch reports whether the caller passed a sequence.
func normalizeData(data any) ([]*record.Record, bool, error) {
	switch d := data.(type) {
	case *record.Record:
		if d == nil {
			return nil, false, &colset.ConfigError{Field: "obj", Reason: "record is nil"}
		}
		return []*record.Record{d}, false, nil
	case map[string]any:
		if d == nil {
			return nil, false, &colset.ConfigError{Field: "obj", Reason: "record is nil"}
		}
		return []*record.Record{record.FromMap(d)}, false, nil
	case []*record.Record:
		if len(d) == 0 {
			return nil, false, &colset.ConfigError{Field: "obj", Reason: "batch is empty"}
		}
		for _, rec := range d {
			if rec == nil {
				return nil, false, &colset.ConfigError{Field: "obj", Reason: "batch contains a nil record"}
			}
		}
		return d, true, nil
	case []map[string]any:
		if len(d) == 0 {
			return nil, false, &colset.ConfigError{Field: "obj", Reason: "batch is empty"}
		}
		recs := make([]*record.Record, len(d))
		for i, m := range d {
			if m == nil {
				return nil, false, &colset.ConfigError{Field: "obj", Reason: "batch contains a nil record"}
			}
			recs[i] = record.FromMap(m)
		}
		return recs, true, nil
	default:
		return nil, false, &colset.ConfigError{Field: "obj", Reason: "data must be a record or a slice of records"}
	}
}

// resolveColumns reuses an existing column set or constructs one from a
// schema hint, falling back to inference over the first record.
func resolveColumns(columns any, sample *record.Record) (*colset.ColumnSet, error) {
	if cs, ok := columns.(*colset.ColumnSet); ok {
		if cs == nil {
			return nil, &colset.ConfigError{Field: "columns", Reason: "column set is nil"}
		}
		return cs, nil
	}
	return colset.New(columns, sample, colset.Options{})
}
