package db

import (
	"errors"
	"time"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/ps"
)

var errFake = errors.New("fake failure")

// fakeConnection records statements and serves canned cursor rows.
type fakeConnection struct {
	executed   []string
	queried    []string
	inserts    [][]any
	affected   int64
	rows       [][]any
	tables     map[string]bool
	failNext   bool
	failUpdate bool
	cursors    []*fakeCursor
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{tables: make(map[string]bool)}
}

func (c *fakeConnection) fail() error {
	if c.failNext {
		c.failNext = false
		return errors.Join(core.ErrStore, errFake)
	}
	return nil
}

func (c *fakeConnection) Execute(query string) (int64, error) {
	if err := c.fail(); err != nil {
		return 0, err
	}
	c.executed = append(c.executed, query)
	return c.affected, nil
}

func (c *fakeConnection) Query(query string) (ps.Cursor, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	c.queried = append(c.queried, query)
	cursor := &fakeCursor{rows: c.rows}
	c.cursors = append(c.cursors, cursor)
	return cursor, nil
}

func (c *fakeConnection) Prepare(query string) (ps.Statement, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	c.executed = append(c.executed, query)
	return &fakeStatement{conn: c}, nil
}

func (c *fakeConnection) Metadata() ps.Metadata { return c }

func (c *fakeConnection) TableExists(name string) (bool, error) {
	return c.tables[name], nil
}

func (c *fakeConnection) Close() error { return nil }

type fakeCursor struct {
	rows   [][]any
	pos    int
	closed bool
}

func (c *fakeCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Values() ([]any, error) { return c.rows[c.pos-1], nil }
func (c *fakeCursor) Err() error             { return nil }

func (c *fakeCursor) Close() error {
	c.closed = true
	return nil
}

type fakeStatement struct {
	conn   *fakeConnection
	args   []any
	closed bool
}

func (s *fakeStatement) set(pos int, v any) {
	for len(s.args) < pos {
		s.args = append(s.args, nil)
	}
	s.args[pos-1] = v
}

func (s *fakeStatement) BindInt(pos int, v int64)      { s.set(pos, v) }
func (s *fakeStatement) BindString(pos int, v string)  { s.set(pos, v) }
func (s *fakeStatement) BindDate(pos int, v time.Time) { s.set(pos, v) }
func (s *fakeStatement) BindNull(pos int)              { s.set(pos, nil) }

func (s *fakeStatement) ExecuteUpdate() (int64, error) {
	if s.conn.failUpdate {
		s.conn.failUpdate = false
		return 0, errors.Join(core.ErrStore, errFake)
	}
	s.conn.inserts = append(s.conn.inserts, s.args)
	return 1, nil
}

func (s *fakeStatement) Close() error {
	s.closed = true
	return nil
}
