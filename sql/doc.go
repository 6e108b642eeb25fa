// Package sql renders the statement chains built by the query builder.
//
// A chain is a tree of Statement values rooted at a SelectStatement or a
// DeleteStatement and refined by WhereStatement and OrderByStatement nodes:
//
//	var s sql.Statement = sql.SelectStatement{Table: "users"}
//	s = sql.WhereStatement{Source: s, Condition: sql.WhereCondition{
//	    Column: "id", Operator: sql.EqualsOperator, Values: []core.Value{core.Int(1)},
//	}}
//	s = sql.OrderByStatement{Source: s, Columns: []string{"name"}, Direction: sql.Descending}
//	fmt.Println(sql.Render(s)) // SELECT * FROM users WHERE id=1 ORDER BY name DESC
//
// The package also renders the DDL and DML the database layer issues for
// table creation, row insertion and row deletion.
package sql
