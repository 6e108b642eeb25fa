package op

import (
	"fmt"
	"iter"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/db"
)

// TableOp wraps whole-table operations that build on the query layer.
type TableOp struct {
	Table *db.Table
}

// CreateTable binds a table and creates it in the store.
func CreateTable(database *db.Database, name string, schema core.Schema, factory db.RowFactory) (*TableOp, error) {
	t, err := database.BindTable(name, schema, factory)
	if err != nil {
		return nil, err
	}
	if err := t.Create(); err != nil {
		return nil, err
	}
	return &TableOp{Table: t}, nil
}

func GetTable(database *db.Database, name string) (*TableOp, error) {
	t, err := database.Table(name)
	if err != nil {
		return nil, err
	}
	return &TableOp{Table: t}, nil
}

func (op *TableOp) DropTable() error {
	return op.Table.Drop()
}

// Scan streams every row of the table.
func (op *TableOp) Scan() iter.Seq2[db.Row, error] {
	return op.Table.Select().Rows()
}

// ScanWithFilter streams the rows accepted by keep. Errors are always passed through.
func (op *TableOp) ScanWithFilter(keep func(db.Row) bool) iter.Seq2[db.Row, error] {
	return func(yield func(db.Row, error) bool) {
		for row, err := range op.Scan() {
			if err != nil {
				yield(nil, err)
				return
			}
			if keep(row) && !yield(row, nil) {
				return
			}
		}
	}
}

// Count counts the rows by scanning them.
func (op *TableOp) Count() (int, error) {
	n := 0
	for _, err := range op.Scan() {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// PutAll inserts rows in order and stops at the first failure.
func (op *TableOp) PutAll(rows []db.Row) (int, error) {
	for i, row := range rows {
		if err := op.Table.Insert(row); err != nil {
			return i, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return len(rows), nil
}

// Truncate deletes every row and returns the store's count.
func (op *TableOp) Truncate() (int64, error) {
	return op.Table.DeleteFrom().Apply()
}

// CopyFrom copies the rows of source into this table. Rows are revalidated
// against this table's schema, so the schemas need only be compatible.
func (op *TableOp) CopyFrom(source *TableOp) (int, error) {
	// Buffered: the source cursor and the inserts may share one connection.
	var rows []db.Row
	for row, err := range source.Scan() {
		if err != nil {
			return 0, err
		}
		converted, err := op.Table.NewRow(row.Values()...)
		if err != nil {
			return 0, err
		}
		rows = append(rows, converted)
	}
	return op.PutAll(rows)
}
