package ps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/nickyhof/TypedSQL/core"
)

// DefaultDriver is the database/sql driver used when none is named.
const DefaultDriver = "duckdb"

// Connection is the capability the database layer needs from a store.
type Connection interface {
	// Execute runs a statement that returns no rows and reports the affected count.
	Execute(query string) (int64, error)
	// Query runs a statement and returns a forward-only cursor over its rows.
	Query(query string) (Cursor, error)
	// Prepare compiles a statement with positional placeholders.
	Prepare(query string) (Statement, error)
	Metadata() Metadata
	Close() error
}

// Cursor walks a result set one row at a time. Values holds one raw driver
// value per column, nil for SQL NULL.
type Cursor interface {
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
}

// Statement is a prepared statement. Positions are 1-based.
type Statement interface {
	BindInt(pos int, v int64)
	BindString(pos int, v string)
	BindDate(pos int, v time.Time)
	BindNull(pos int)
	ExecuteUpdate() (int64, error)
	Close() error
}

type Metadata interface {
	TableExists(name string) (bool, error)
}

type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// SQLConnection adapts database/sql to Connection.
type SQLConnection struct {
	db    *sql.DB
	conn  conn
	owned bool
}

// Open opens a store through a registered database/sql driver and pins one
// physical connection for the lifetime of the SQLConnection. Callers must
// serialize concurrent use.
func Open(driver, dsn string) (*SQLConnection, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", core.ErrStore, driver, err)
	}
	c, err := db.Conn(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect %s: %w", core.ErrStore, driver, err)
	}
	return &SQLConnection{db: db, conn: c, owned: true}, nil
}

// Wrap exposes a caller-owned pool as a Connection. Close leaves the pool open.
func Wrap(db *sql.DB) *SQLConnection {
	return &SQLConnection{db: db, conn: db}
}

func (c *SQLConnection) Execute(query string) (int64, error) {
	res, err := c.conn.ExecContext(context.Background(), query)
	if err != nil {
		return 0, storeError(query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Not every driver reports counts for DDL.
		return 0, nil
	}
	return n, nil
}

func (c *SQLConnection) Query(query string) (Cursor, error) {
	rows, err := c.conn.QueryContext(context.Background(), query)
	if err != nil {
		return nil, storeError(query, err)
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, storeError(query, err)
	}
	return &sqlCursor{rows: rows, width: len(columns)}, nil
}

func (c *SQLConnection) Prepare(query string) (Statement, error) {
	stmt, err := c.conn.PrepareContext(context.Background(), query)
	if err != nil {
		return nil, storeError(query, err)
	}
	return &sqlStatement{stmt: stmt, query: query}, nil
}

func (c *SQLConnection) Metadata() Metadata {
	return sqlMetadata{conn: c.conn}
}

func (c *SQLConnection) Close() error {
	var err error
	if pinned, ok := c.conn.(*sql.Conn); ok {
		err = pinned.Close()
	}
	if c.owned {
		err = errors.Join(err, c.db.Close())
	}
	if err != nil {
		return fmt.Errorf("%w: close: %w", core.ErrStore, err)
	}
	return nil
}

// DB returns the underlying pool.
func (c *SQLConnection) DB() *sql.DB {
	return c.db
}

func storeError(query string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrStore, query, err)
}

type sqlCursor struct {
	rows  *sql.Rows
	width int
}

func (c *sqlCursor) Next() bool {
	return c.rows.Next()
}

func (c *sqlCursor) Values() ([]any, error) {
	values := make([]any, c.width)
	targets := make([]any, c.width)
	for i := range values {
		targets[i] = &values[i]
	}
	if err := c.rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("%w: scan: %w", core.ErrStore, err)
	}
	return values, nil
}

func (c *sqlCursor) Err() error {
	if err := c.rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStore, err)
	}
	return nil
}

func (c *sqlCursor) Close() error {
	if err := c.rows.Close(); err != nil {
		return fmt.Errorf("%w: close cursor: %w", core.ErrStore, err)
	}
	return nil
}

type sqlStatement struct {
	stmt  *sql.Stmt
	query string
	args  []any
	bound []bool
}

func (s *sqlStatement) bind(pos int, v any) {
	for len(s.args) < pos {
		s.args = append(s.args, nil)
		s.bound = append(s.bound, false)
	}
	s.args[pos-1] = v
	s.bound[pos-1] = true
}

func (s *sqlStatement) BindInt(pos int, v int64)      { s.bind(pos, v) }
func (s *sqlStatement) BindString(pos int, v string)  { s.bind(pos, v) }
func (s *sqlStatement) BindDate(pos int, v time.Time) { s.bind(pos, v) }
func (s *sqlStatement) BindNull(pos int)              { s.bind(pos, nil) }

func (s *sqlStatement) ExecuteUpdate() (int64, error) {
	for i, ok := range s.bound {
		if !ok {
			return 0, fmt.Errorf("%w: parameter %d of %s is not bound", core.ErrInvalidArgument, i+1, s.query)
		}
	}
	res, err := s.stmt.ExecContext(context.Background(), s.args...)
	if err != nil {
		return 0, storeError(s.query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *sqlStatement) Close() error {
	if err := s.stmt.Close(); err != nil {
		return fmt.Errorf("%w: close statement: %w", core.ErrStore, err)
	}
	return nil
}

type sqlMetadata struct {
	conn conn
}

func (m sqlMetadata) TableExists(name string) (bool, error) {
	const query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?"
	var n int64
	if err := m.conn.QueryRowContext(context.Background(), query, name).Scan(&n); err != nil {
		return false, storeError(query, err)
	}
	return n > 0, nil
}
