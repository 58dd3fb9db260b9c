// Package sqlfmt renders identifiers and values as PostgreSQL literal text
// and substitutes them into statement templates. It is the escaping boundary
// for the whole repo: anything that ends up inside a generated statement
// goes through this package.
package sqlfmt

import (
	"strings"

	"github.com/lib/pq"
)

// QuoteIdentifier quotes a SQL identifier (table or column name) with double
// quotes, doubling any embedded double quote.
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

// QuoteString quotes a SQL string literal with single quotes and escapes
// any single quotes within the string by doubling them.
func QuoteString(s string) string {
	escaped := strings.ReplaceAll(s, "'", "''")
	return "'" + escaped + "'"
}
