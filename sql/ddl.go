package sql

import (
	"strings"

	"github.com/nickyhof/TypedSQL/core"
)

// CreateTable renders the DDL for a table with the given schema.
func CreateTable(table string, schema core.Schema) string {
	return "CREATE TABLE " + table + " " + schema.String()
}

func DropTable(table string) string {
	return "DROP TABLE " + table
}

// Insert renders a positional INSERT with one placeholder per column.
func Insert(table string, columns int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" VALUES (")
	for i := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
	b.WriteByte(')')
	return b.String()
}

// DeleteMatching renders a DELETE whose conditions are conjoined in order.
func DeleteMatching(table string, conditions []WhereCondition) string {
	var statement Statement = DeleteStatement{Table: table}
	for _, c := range conditions {
		statement = WhereStatement{Source: statement, Condition: c}
	}
	return Render(statement)
}

// RowConditions pairs each schema column with the matching value by equality.
func RowConditions(schema core.Schema, values []core.Value) []WhereCondition {
	conditions := make([]WhereCondition, 0, len(values))
	for i, v := range values {
		conditions = append(conditions, WhereCondition{
			Column:   schema.Column(i).Name(),
			Operator: EqualsOperator,
			Values:   []core.Value{v},
		})
	}
	return conditions
}

// InsertValues renders an INSERT with the values inlined as literals. The
// database binds parameters instead; this form is for logs and journals.
func InsertValues(table string, values []core.Value) string {
	literals := make([]string, len(values))
	for i, v := range values {
		literals[i] = v.Literal()
	}
	return "INSERT INTO " + table + " VALUES (" + strings.Join(literals, ", ") + ")"
}
