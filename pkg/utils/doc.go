// Package utils provides small SQL helpers shared by the ledger, backend and
// fixture packages.
//
// # Identifier Utilities (identifier.go)
//
// QuoteIdentifier quotes each part of a possibly qualified name with the
// dialect's quote character, leaving parts that are already quoted alone:
//
//	utils.BacktickIdentifier("steward.history")
//	// Result: `steward`.`history`
//
//	utils.DoubleQuoteIdentifier("steward_migrations")
//	// Result: "steward_migrations"
//
// # Statement Builders (sqlbuilder.go)
//
// InsertBuilder renders parameterized INSERT statements with a dialect's
// placeholder style:
//
//	utils.NewInsertBuilder(utils.DoubleQuoteIdentifier, utils.QuestionPlaceholder).
//		Into("blog_post").
//		Columns("id", "title").
//		String()
//	// Result: INSERT INTO "blog_post" ("id", "title") VALUES (?, ?)
package utils
