package utils

import "strings"

const (
	// Backtick quotes identifiers for ClickHouse (and MySQL-like dialects).
	Backtick = '`'

	// DoubleQuote quotes identifiers for SQLite and PostgreSQL.
	DoubleQuote = '"'
)

// QuoteIdentifier wraps each dot-separated part of name in the quote rune.
// Parts that are already quoted are left alone, so quoting is idempotent.
//
// Examples:
//   - ("table", '`') -> "`table`"
//   - ("main.table", '"') -> "\"main\".\"table\""
//   - ("`table`", '`') -> "`table`"
//   - ("", '`') -> ""
func QuoteIdentifier(name string, quote rune) string {
	if name == "" {
		return ""
	}

	q := string(quote)
	if isQuoted(name, q) && !strings.Contains(name[1:len(name)-1], q) {
		return name
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		if isQuoted(part, q) {
			continue
		}

		parts[i] = q + strings.ReplaceAll(part, q, q+q) + q
	}

	return strings.Join(parts, ".")
}

// BacktickIdentifier adds backticks around an identifier, handling nested identifiers.
//
// Examples:
//   - "table" -> "`table`"
//   - "steward.history" -> "`steward`.`history`"
func BacktickIdentifier(name string) string {
	return QuoteIdentifier(name, Backtick)
}

// DoubleQuoteIdentifier adds ANSI double quotes around an identifier.
//
// Examples:
//   - "steward_migrations" -> "\"steward_migrations\""
//   - "public.posts" -> "\"public\".\"posts\""
func DoubleQuoteIdentifier(name string) string {
	return QuoteIdentifier(name, DoubleQuote)
}

func isQuoted(s, q string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q)
}
