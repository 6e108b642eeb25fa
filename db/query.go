package db

import (
	"fmt"
	"iter"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/sql"
)

// Query is an immutable statement chain bound to a table. Every refinement
// returns a new Query and leaves the receiver untouched, so a Query can be
// shared and extended along several branches.
type Query struct {
	table     *Table
	statement sql.Statement
}

func (q Query) Table() *Table { return q.table }

func (q Query) Statement() sql.Statement { return q.statement }

// SQL renders the chain.
func (q Query) SQL() string { return sql.Render(q.statement) }

func (q Query) String() string { return q.SQL() }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{core.ErrInvalidArgument}, args...)...)
}

// Where adds a condition on a column of the bound table. Values must be
// instances of the column type, ordering operators take integers only and
// LIKE takes text only.
func (q Query) Where(column string, op sql.WhereOperator, values ...core.Value) (Query, error) {
	col, err := q.table.schema.ColumnNamed(column)
	if err != nil {
		return Query{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}
	return q.where(col, op, values)
}

// WhereColumn is Where for a Column value, which must belong to the bound table.
func (q Query) WhereColumn(column core.Column, op sql.WhereOperator, values ...core.Value) (Query, error) {
	col, err := q.table.schema.ColumnNamed(column.Name())
	if err != nil {
		return Query{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}
	if col.Type() != column.Type() {
		return Query{}, fmt.Errorf("%w: %w: column %s is %s in %s", core.ErrInvalidArgument, core.ErrSchemaMismatch, col.Name(), col.Type(), q.table.name)
	}
	return q.where(col, op, values)
}

func (q Query) where(col core.Column, op sql.WhereOperator, values []core.Value) (Query, error) {
	if sql.HasOrderBy(q.statement) {
		return Query{}, invalid("WHERE on %s after ORDER BY", col.Name())
	}

	lo, hi := op.Arity()
	if len(values) < lo || (hi >= 0 && len(values) > hi) {
		return Query{}, invalid("%s takes %s values, got %d", op, arity(lo, hi), len(values))
	}

	for _, v := range values {
		if !col.Type().IsInstance(v) {
			return Query{}, fmt.Errorf("%w: %w: %s is not a %s", core.ErrInvalidArgument, core.ErrSchemaMismatch, v, col.Type())
		}
		if op.IsOrdering() && !v.IsNumeric() {
			return Query{}, invalid("%s needs an integer, got %s", op, v)
		}
		if op == sql.LikeOperator && v.Kind() != core.KindText {
			return Query{}, invalid("LIKE needs text, got %s", v)
		}
	}

	return Query{
		table: q.table,
		statement: sql.WhereStatement{
			Source: q.statement,
			Condition: sql.WhereCondition{
				Column:   col.Name(),
				Operator: op,
				Values:   append([]core.Value(nil), values...),
			},
		},
	}, nil
}

func arity(lo, hi int) string {
	switch {
	case hi < 0:
		return fmt.Sprintf("at least %d", lo)
	case lo == hi:
		return fmt.Sprint(lo)
	default:
		return fmt.Sprintf("%d to %d", lo, hi)
	}
}

func (q Query) WhereEqual(column string, value core.Value) (Query, error) {
	return q.Where(column, sql.EqualsOperator, value)
}

func (q Query) WhereNotEqual(column string, value core.Value) (Query, error) {
	return q.Where(column, sql.NotEqualsOperator, value)
}

func (q Query) WhereGreater(column string, value core.Value) (Query, error) {
	return q.Where(column, sql.GreaterThanOperator, value)
}

func (q Query) WhereLess(column string, value core.Value) (Query, error) {
	return q.Where(column, sql.LessThanOperator, value)
}

func (q Query) WhereGreaterOrEqual(column string, value core.Value) (Query, error) {
	return q.Where(column, sql.GreaterThanOrEqualOperator, value)
}

func (q Query) WhereLessOrEqual(column string, value core.Value) (Query, error) {
	return q.Where(column, sql.LessThanOrEqualOperator, value)
}

func (q Query) WhereLike(column string, pattern core.Value) (Query, error) {
	return q.Where(column, sql.LikeOperator, pattern)
}

func (q Query) WhereBetween(column string, lower, upper core.Value) (Query, error) {
	return q.Where(column, sql.BetweenOperator, lower, upper)
}

func (q Query) WhereIn(column string, values ...core.Value) (Query, error) {
	return q.Where(column, sql.InOperator, values...)
}

// OrderBy sorts by one or more columns of the bound table. A chain takes at
// most one OrderBy and no Where after it.
func (q Query) OrderBy(direction sql.OrderDirection, columns ...string) (Query, error) {
	if len(columns) == 0 {
		return Query{}, invalid("ORDER BY needs at least one column")
	}
	if sql.HasOrderBy(q.statement) {
		return Query{}, invalid("chain already has an ORDER BY")
	}
	for _, c := range columns {
		if _, err := q.table.schema.IndexOf(c); err != nil {
			return Query{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
		}
	}
	return Query{
		table: q.table,
		statement: sql.OrderByStatement{
			Source:    q.statement,
			Columns:   append([]string(nil), columns...),
			Direction: direction,
		},
	}, nil
}

func (q Query) OrderByAsc(columns ...string) (Query, error) {
	return q.OrderBy(sql.Ascending, columns...)
}

func (q Query) OrderByDesc(columns ...string) (Query, error) {
	return q.OrderBy(sql.Descending, columns...)
}

func (q Query) isSelect() bool {
	_, ok := sql.Root(q.statement).(sql.SelectStatement)
	return ok
}

// Rows executes a SELECT chain and yields its rows lazily. Each pass over
// the sequence runs the query again. The store cursor is closed when the
// rows are exhausted, when the caller stops early and on error. Iterating a
// DELETE chain yields a single core.ErrInvalidArgument.
func (q Query) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		if !q.isSelect() {
			yield(nil, invalid("cannot iterate %s", q.SQL()))
			return
		}

		cursor, err := q.table.database.query(q.SQL())
		if err != nil {
			yield(nil, err)
			return
		}
		defer cursor.Close()

		for cursor.Next() {
			raw, err := cursor.Values()
			if err != nil {
				yield(nil, err)
				return
			}
			row, err := q.table.fromRaw(raw)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Apply executes a DELETE chain and returns the number of affected rows.
func (q Query) Apply() (int64, error) {
	if q.isSelect() {
		return 0, invalid("cannot apply %s", q.SQL())
	}
	return q.table.database.exec(q.table.name, q.SQL())
}

// Collect appends every row to dst in cursor order. On error the rows read
// so far are returned with it.
func (q Query) Collect(dst []Row) ([]Row, error) {
	for row, err := range q.Rows() {
		if err != nil {
			return dst, err
		}
		dst = append(dst, row)
	}
	return dst, nil
}

// First returns the first row, if any, and releases the cursor.
func (q Query) First() (Row, bool, error) {
	for row, err := range q.Rows() {
		if err != nil {
			return nil, false, err
		}
		return row, true, nil
	}
	return nil, false, nil
}

// CollectAs is Collect for tables bound with a RowFactory producing T.
func CollectAs[T Row](q Query, dst []T) ([]T, error) {
	for row, err := range q.Rows() {
		if err != nil {
			return dst, err
		}
		typed, ok := row.(T)
		if !ok {
			return dst, fmt.Errorf("%w: %s produced %T", core.ErrSchemaMismatch, q.table.name, row)
		}
		dst = append(dst, typed)
	}
	return dst, nil
}
