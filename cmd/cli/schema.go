package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/nickyhof/TypedSQL/core"
)

// schemaFile is the JSON layout accepted by -schema:
//
//	{"tables": [{"name": "users", "columns": [
//		{"name": "id", "type": "INT"},
//		{"name": "name", "type": "VARCHAR(10)"}
//	]}]}
type schemaFile struct {
	Tables []tableDef `json:"tables"`
}

type tableDef struct {
	Name    string      `json:"name"`
	Columns []columnDef `json:"columns"`
}

type columnDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (def tableDef) schema() (core.Schema, error) {
	columns := make([]core.Column, len(def.Columns))
	for i, c := range def.Columns {
		typ, err := core.ParseType(c.Type)
		if err != nil {
			return core.Schema{}, fmt.Errorf("%s.%s: %w", def.Name, c.Name, err)
		}
		columns[i] = core.NewColumn(c.Name, typ)
	}
	return core.NewSchema(columns...)
}

// loadSchema binds every table in path, creating the missing ones when
// create is set.
func (cli *CLI) loadSchema(path string, create bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return cli.bindSchema(data, create)
}

func (cli *CLI) bindSchema(data []byte, create bool) (int, error) {
	var file schemaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}

	for i, def := range file.Tables {
		schema, err := def.schema()
		if err != nil {
			return i, err
		}
		t, err := cli.database.BindTable(def.Name, schema, nil)
		if err != nil {
			return i, err
		}
		if !create {
			continue
		}
		exists, err := t.Exists()
		if err != nil {
			return i, err
		}
		if !exists {
			if err := t.Create(); err != nil {
				return i, err
			}
		}
	}
	return len(file.Tables), nil
}
