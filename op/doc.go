// Package op provides whole-table and whole-database operations built on
// the query layer.
//
// # CSV Transfer
//
// Export writes a query's rows as CSV; Import loads CSV into a table. Both
// accept local paths and file:// URLs, Import also reads http(s):// URLs,
// and both read and write s3://bucket/key objects:
//
//	q, _ := users.Select().OrderByAsc("id")
//	n, err := op.Export(q, "s3://backups/users.csv", &op.RemoteConfig{Region: "eu-west-1"})
//
//	n, err = op.Import(users, "https://example.com/users.csv", nil)
//
// # TableOp
//
// TableOp wraps scans, counts, bulk inserts and table-to-table copies:
//
//	tableOp, err := op.GetTable(database, "users")
//	for row, err := range tableOp.ScanWithFilter(func(r db.Row) bool {
//	    return !r.Get(1).IsNull()
//	}) {
//	    // process rows with a name
//	}
//
// # DatabaseOp
//
// DatabaseOp exposes the statement journal: history, snapshots and replay
// of a table's statements into another database.
package op
