package db

import (
	"fmt"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/sql"
)

// Table binds a name and schema to a Database. Tables are created through
// Database.BindTable and are immutable afterwards.
type Table struct {
	name     string
	schema   core.Schema
	database *Database
	factory  RowFactory
}

func (t *Table) Name() string        { return t.name }
func (t *Table) Schema() core.Schema { return t.schema }
func (t *Table) Database() *Database { return t.database }

// Exists asks the store whether the table is present. The answer is not cached.
func (t *Table) Exists() (bool, error) {
	return t.database.conn.Metadata().TableExists(t.name)
}

// Create issues CREATE TABLE for the schema. It fails with
// core.ErrInvalidArgument when the table already exists.
func (t *Table) Create() error {
	exists, err := t.Exists()
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: table %s already exists", core.ErrInvalidArgument, t.name)
	}
	_, err = t.database.exec(t.name, sql.CreateTable(t.name, t.schema))
	return err
}

func (t *Table) Drop() error {
	_, err := t.database.exec(t.name, sql.DropTable(t.name))
	return err
}

// IsInstance reports whether row has one value per column and every value
// is an instance of its column's type.
func (t *Table) IsInstance(row Row) bool {
	if row == nil {
		return false
	}
	return t.check(row.tuple().values) == nil
}

func (t *Table) check(values []core.Value) error {
	if len(values) != t.schema.Size() {
		return fmt.Errorf("%w: %s expects %d values, got %d", core.ErrSchemaMismatch, t.name, t.schema.Size(), len(values))
	}
	for i, v := range values {
		col := t.schema.Column(i)
		if !col.Type().IsInstance(v) {
			return fmt.Errorf("%w: value %d (%s) is not a %s", core.ErrSchemaMismatch, i, v, col.Type())
		}
	}
	return nil
}

// NewRow validates values against the schema and builds a row through the
// table's factory. Nothing is built when any value fails.
func (t *Table) NewRow(values ...core.Value) (Row, error) {
	if err := t.check(values); err != nil {
		return nil, err
	}
	return t.build(newTuple(values)), nil
}

func (t *Table) build(tuple Tuple) Row {
	if t.factory == nil {
		return tuple
	}
	return t.factory(tuple)
}

// fromRaw converts one cursor row through each column's type.
func (t *Table) fromRaw(raw []any) (Row, error) {
	if len(raw) != t.schema.Size() {
		return nil, fmt.Errorf("%w: %s has %d columns, cursor returned %d", core.ErrSchemaMismatch, t.name, t.schema.Size(), len(raw))
	}
	values := make([]core.Value, len(raw))
	for i, r := range raw {
		col := t.schema.Column(i)
		v, err := col.Type().FromObject(r)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		values[i] = v
	}
	return t.build(Tuple{values: values}), nil
}

// Insert writes one row using bound parameters.
func (t *Table) Insert(row Row) error {
	if !t.IsInstance(row) {
		return t.mismatch(row)
	}
	return t.database.insert(t, row.tuple().values)
}

// Delete removes every stored row equal to row, column by column, and
// returns the number of rows the store deleted.
func (t *Table) Delete(row Row) (int64, error) {
	if !t.IsInstance(row) {
		return 0, t.mismatch(row)
	}
	conditions := sql.RowConditions(t.schema, row.tuple().values)
	return t.database.exec(t.name, sql.DeleteMatching(t.name, conditions))
}

func (t *Table) mismatch(row Row) error {
	if row == nil {
		return fmt.Errorf("%w: nil row for %s", core.ErrSchemaMismatch, t.name)
	}
	if err := t.check(row.tuple().values); err != nil {
		return err
	}
	return fmt.Errorf("%w: row %s does not match %s", core.ErrSchemaMismatch, row, t.name)
}

// Select starts a SELECT chain over the table.
func (t *Table) Select() Query {
	return Query{table: t, statement: sql.SelectStatement{Table: t.name}}
}

// DeleteFrom starts a DELETE chain over the table.
func (t *Table) DeleteFrom() Query {
	return Query{table: t, statement: sql.DeleteStatement{Table: t.name}}
}
