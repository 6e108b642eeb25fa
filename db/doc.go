// Package db maps typed rows onto tables of a relational store.
//
// A Database wraps a ps.Connection. Tables are bound to it with a schema and
// an optional row factory, and queries are built from tables as immutable,
// type-checked chains.
//
// # Usage
//
//	database := db.New(conn)
//	schema, _ := core.NewSchema(
//	    core.NewColumn("id", core.IntType),
//	    core.NewColumn("name", core.Must(core.VarcharType(10))),
//	)
//	users, _ := database.BindTable("users", schema, nil)
//	users.Create()
//
//	row, _ := users.NewRow(core.Int(1), core.Text("bob"))
//	users.Insert(row)
//
//	q, _ := users.Select().WhereEqual("id", core.Int(1))
//	for row, err := range q.Rows() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(row)
//	}
//
// # Row Factories
//
// A RowFactory gives a table its own row type. The type embeds Tuple and
// adds typed accessors:
//
//	type User struct{ db.Tuple }
//
//	func (u User) ID() int64 { n, _ := u.Get(0).AsLong(); return n }
//
//	users, _ := database.BindTable("users", schema, func(t db.Tuple) db.Row { return User{t} })
//	all, _ := db.CollectAs[User](users.Select(), nil)
//
// # Result Types
//
// Materialize turns a query into a QueryResult for display; CommitResult
// summarizes mutations. Both render through Grid.
package db
