package op

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/db"
)

// Export writes the rows of a SELECT chain as CSV to a local path, a
// file:// URL or an s3:// URL. The first line holds the column names; NULL
// is written as an empty cell. It returns the number of rows written.
func Export(q db.Query, url string, cfg *RemoteConfig) (n int, err error) {
	w, err := createWriter(url, cfg)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()

	return WriteCSV(w, q)
}

// WriteCSV streams the rows of q to w.
func WriteCSV(w io.Writer, q db.Query) (int, error) {
	out := csv.NewWriter(w)
	if err := out.Write(q.Table().Schema().Names()); err != nil {
		return 0, err
	}

	n := 0
	record := make([]string, q.Table().Schema().Size())
	for row, err := range q.Rows() {
		if err != nil {
			return n, err
		}
		for i := range record {
			record[i] = row.Get(i).Format()
		}
		if err := out.Write(record); err != nil {
			return n, err
		}
		n++
	}

	out.Flush()
	return n, out.Error()
}

// Import reads CSV from a local path or a file://, http(s):// or s3:// URL
// and inserts every record into t. The header maps columns by name and may
// list them in any order; every schema column must appear. Cells are parsed
// with the column type and empty cells become NULL. Import stops at the first
// failing record and returns the number inserted before it.
func Import(t *db.Table, url string, cfg *RemoteConfig) (n int, err error) {
	r, err := openReader(url, cfg)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()

	return ReadCSV(r, t)
}

// ReadCSV inserts the records read from r into t.
func ReadCSV(r io.Reader, t *db.Table) (int, error) {
	in := csv.NewReader(r)
	in.ReuseRecord = true

	header, err := in.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: reading header: %w", core.ErrInvalidArgument, err)
	}
	positions, err := columnPositions(t.Schema(), header)
	if err != nil {
		return 0, err
	}

	n := 0
	values := make([]core.Value, t.Schema().Size())
	for line := 2; ; line++ {
		record, err := in.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("%w: %w", core.ErrConversion, err)
		}

		for i, pos := range positions {
			col := t.Schema().Column(i)
			v, err := col.Type().Parse(record[pos])
			if err != nil {
				return n, fmt.Errorf("line %d, column %s: %w", line, col.Name(), err)
			}
			values[i] = v
		}

		row, err := t.NewRow(values...)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if err := t.Insert(row); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
}

// columnPositions maps each schema column to its index in header.
func columnPositions(schema core.Schema, header []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, err := schema.IndexOf(name); err != nil {
			return nil, err
		}
		index[name] = i
	}

	positions := make([]int, schema.Size())
	for i, name := range schema.Names() {
		pos, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: header lacks column %s", core.ErrSchemaMismatch, name)
		}
		positions[i] = pos
	}
	return positions, nil
}
