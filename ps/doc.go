// Package ps provides the store capabilities the database layer builds on.
//
// A Connection executes statements, opens cursors and prepares statements
// against a relational store. SQLConnection implements it over database/sql;
// DuckDB is registered as the default driver:
//
//	conn, err := ps.Open("duckdb", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
// # Statement Journal
//
// A Journal records every mutating statement in a Git repository, one
// commit per statement, authored by the identity that issued it:
//
//	journal, _ := ps.NewMemoryJournal()
//	entry, _ := journal.Record("users", "INSERT INTO users VALUES (1, 'bob')", identity)
//	history, _ := journal.History(10)
//
// Journals can be tagged with Snapshot and replicated with Push.
package ps
