package utils

import (
	"strconv"
	"strings"
)

type (
	// Placeholder renders the nth (1-based) bind parameter for a SQL dialect.
	Placeholder func(n int) string

	// InsertBuilder builds parameterized INSERT statements for fixture rows and
	// ledger writes.
	//
	// Example usage:
	//
	//	sql := utils.NewInsertBuilder(utils.DoubleQuoteIdentifier, utils.DollarPlaceholder).
	//		Into("blog_post").
	//		Columns("id", "title").
	//		String()
	//	// Output: INSERT INTO "blog_post" ("id", "title") VALUES ($1, $2)
	InsertBuilder struct {
		quote       func(string) string
		placeholder Placeholder
		table       string
		columns     []string
	}
)

// QuestionPlaceholder renders "?" bind parameters (SQLite, ClickHouse).
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder renders "$n" bind parameters (PostgreSQL).
func DollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

// NewInsertBuilder creates an InsertBuilder using the given identifier quoting
// and placeholder style.
func NewInsertBuilder(quote func(string) string, placeholder Placeholder) *InsertBuilder {
	return &InsertBuilder{
		quote:       quote,
		placeholder: placeholder,
	}
}

// Into sets the target table.
func (b *InsertBuilder) Into(table string) *InsertBuilder {
	b.table = table
	return b
}

// Columns sets the inserted columns, in bind order.
func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append(b.columns, columns...)
	return b
}

// String renders the statement.
func (b *InsertBuilder) String() string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.quote(b.table))

	cols := make([]string, len(b.columns))
	params := make([]string, len(b.columns))
	for i, col := range b.columns {
		cols[i] = b.quote(col)
		params[i] = b.placeholder(i + 1)
	}

	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteString(")")
	return sb.String()
}
