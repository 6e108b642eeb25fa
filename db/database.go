package db

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/ps"
	"github.com/nickyhof/TypedSQL/sql"
)

// Database owns a store connection and the tables bound to it. The table
// registry is safe for concurrent use; the connection is not serialized and
// concurrent store access must be coordinated by the caller.
type Database struct {
	conn     ps.Connection
	logger   *log.Logger
	journal  *ps.Journal
	identity core.Identity

	mu     sync.RWMutex
	tables map[string]*Table
}

type Option func(*Database)

// WithLogger logs every statement sent to the store.
func WithLogger(logger *log.Logger) Option {
	return func(d *Database) {
		d.logger = logger
	}
}

// WithJournal records every mutating statement in journal as identity.
func WithJournal(journal *ps.Journal, identity core.Identity) Option {
	return func(d *Database) {
		d.journal = journal
		d.identity = identity
	}
}

func New(conn ps.Connection, opts ...Option) *Database {
	d := &Database{
		conn:   conn,
		tables: make(map[string]*Table),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Database) Connection() ps.Connection { return d.conn }

// Journal returns the statement journal, or nil when none is configured.
func (d *Database) Journal() *ps.Journal { return d.journal }

func (d *Database) Identity() core.Identity { return d.identity }

// BindTable registers a table over schema. A nil factory yields Tuple rows.
// Binding does not touch the store; use Table.Create for that.
func (d *Database) BindTable(name string, schema core.Schema, factory RowFactory) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: table name is empty", core.ErrInvalidArgument)
	}
	if schema.Size() == 0 {
		return nil, fmt.Errorf("%w: table %s has no columns", core.ErrInvalidArgument, name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.tables[name]; ok {
		return nil, fmt.Errorf("%w: table %s is already bound", core.ErrInvalidArgument, name)
	}

	t := &Table{
		name:     name,
		schema:   schema,
		database: d,
		factory:  factory,
	}
	d.tables[name] = t
	return t, nil
}

// Table returns a bound table.
func (d *Database) Table(name string) (*Table, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %s", core.ErrNotFound, name)
	}
	return t, nil
}

// TableNames lists the bound tables, sorted.
func (d *Database) TableNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute sends a raw statement to the store and returns the affected
// count. The statement is journaled without a table.
func (d *Database) Execute(statement string) (int64, error) {
	return d.exec("", statement)
}

func (d *Database) Close() error {
	return d.conn.Close()
}

func (d *Database) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

// exec journals statement before sending it to the store. A journal failure
// leaves the store untouched and a store failure discards the journal entry.
func (d *Database) exec(table, statement string) (int64, error) {
	d.logf("exec: %s", statement)
	entry, err := d.record(table, statement)
	if err != nil {
		return 0, err
	}
	n, err := d.conn.Execute(statement)
	if err != nil {
		return 0, d.discard(entry, err)
	}
	return n, nil
}

func (d *Database) query(statement string) (ps.Cursor, error) {
	d.logf("query: %s", statement)
	return d.conn.Query(statement)
}

func (d *Database) insert(t *Table, values []core.Value) (err error) {
	statement := sql.Insert(t.name, len(values))
	d.logf("insert: %s", sql.InsertValues(t.name, values))

	stmt, err := d.conn.Prepare(statement)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, stmt.Close())
	}()

	for i, v := range values {
		bind(stmt, i+1, v)
	}

	entry, err := d.record(t.name, sql.InsertValues(t.name, values))
	if err != nil {
		return err
	}
	if _, err := stmt.ExecuteUpdate(); err != nil {
		return d.discard(entry, err)
	}
	return nil
}

// bind sets one parameter according to the value's variant.
func bind(stmt ps.Statement, pos int, v core.Value) {
	switch v.Kind() {
	case core.KindInt:
		n, _ := v.AsLong()
		stmt.BindInt(pos, n)
	case core.KindText:
		s, _ := v.AsString()
		stmt.BindString(pos, s)
	case core.KindDate, core.KindDateTime, core.KindTimestamp:
		ts, _ := v.Native().(time.Time)
		stmt.BindDate(pos, ts)
	default:
		stmt.BindNull(pos)
	}
}

func (d *Database) record(table, statement string) (*ps.Entry, error) {
	if d.journal == nil {
		return nil, nil
	}
	entry, err := d.journal.Record(table, statement, d.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: journal: %w", core.ErrStore, err)
	}
	return &entry, nil
}

// discard drops the journal entry of a statement the store rejected.
func (d *Database) discard(entry *ps.Entry, cause error) error {
	if entry == nil {
		return cause
	}
	if err := d.journal.Discard(*entry); err != nil {
		return errors.Join(cause, fmt.Errorf("%w: journal: %w", core.ErrStore, err))
	}
	return cause
}
