package core

import (
	"fmt"
	"strings"
)

// Column is a named, typed slot of a table schema.
type Column struct {
	name string
	typ  Type
}

// NewColumn names a column of typ. Names are written into SQL unquoted, so
// they must be plain identifiers that are not reserved words of the store
// (DuckDB rejects a column named "order", for instance).
func NewColumn(name string, typ Type) Column {
	return Column{name: name, typ: typ}
}

func (c Column) Name() string { return c.name }
func (c Column) Type() Type   { return c.typ }

func (c Column) String() string {
	if c.typ == nil {
		return c.name
	}
	return c.name + " " + c.typ.Name()
}

// Schema is an ordered list of columns. Column order matches the physical
// column order of the table and the positional index of row values.
type Schema struct {
	columns []Column
	index   map[string]int
}

// NewSchema builds a schema. Column names must be non-empty and unique.
func NewSchema(columns ...Column) (Schema, error) {
	s := Schema{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c.name == "" {
			return Schema{}, fmt.Errorf("%w: column %d has no name", ErrInvalidArgument, i)
		}
		if c.typ == nil {
			return Schema{}, fmt.Errorf("%w: column %s has no type", ErrInvalidArgument, c.name)
		}
		if _, dup := s.index[c.name]; dup {
			return Schema{}, fmt.Errorf("%w: duplicate column %s", ErrInvalidArgument, c.name)
		}
		s.columns[i] = c
		s.index[c.name] = i
	}
	return s, nil
}

func (s Schema) Size() int { return len(s.columns) }

// Column returns the column at position i. It panics if i is out of range.
func (s Schema) Column(i int) Column { return s.columns[i] }

// ColumnNamed looks a column up by name.
func (s Schema) ColumnNamed(name string) (Column, error) {
	i, err := s.IndexOf(name)
	if err != nil {
		return Column{}, err
	}
	return s.columns[i], nil
}

func (s Schema) IndexOf(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: column %s", ErrNotFound, name)
	}
	return i, nil
}

func (s Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

func (s Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.name
	}
	return names
}

func (s Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
