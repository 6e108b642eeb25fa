// Package TypedSQL is a typed SQL query builder and row mapping layer.
//
// Tables are described by a schema of typed columns. Rows are checked
// against the schema when they are built, queries are checked when they are
// composed, and rows read back from the store are converted into typed
// values before the caller sees them.
//
// # Quick Start
//
// Open an in-memory DuckDB database and work with a table:
//
//	instance, _ := TypedSQL.Open("duckdb", "")
//	defer instance.Close()
//
//	schema := core.Must(core.NewSchema(
//		core.NewColumn("id", core.IntType),
//		core.NewColumn("name", core.Must(core.VarcharType(10))),
//	))
//	users, _ := instance.Database.BindTable("users", schema, nil)
//	users.Create()
//
//	row, _ := users.NewRow(core.Int(1), core.Text("bob"))
//	users.Insert(row)
//
//	q, _ := users.Select().WhereEqual("id", core.Int(1))
//	for row, err := range q.Rows() {
//		...
//	}
//
// # Journal
//
// A database opened with db.WithJournal records every statement it runs
// as a Git commit, one file per table:
//
//	journal, _ := ps.NewMemoryJournal()
//	instance, _ := TypedSQL.Open("duckdb", "", db.WithJournal(journal, identity))
//
// The journal can be tagged, replayed into another store and pushed to a
// Git remote.
//
// # Packages
//
//   - core: values, column types, schemas and error kinds
//   - sql: statement trees and their SQL text
//   - ps: store connections and the Git journal
//   - db: tables, rows, queries and results
//   - op: CSV import and export, table copies and journal replay
package TypedSQL
