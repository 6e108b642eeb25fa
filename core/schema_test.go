package core

import (
	"errors"
	"testing"
)

func TestSchemaLookup(t *testing.T) {
	schema, err := NewSchema(
		NewColumn("id", IntType),
		NewColumn("name", Must(VarcharType(10))),
	)
	if err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	if schema.Size() != 2 {
		t.Errorf("Expected 2 columns, got %d", schema.Size())
	}
	if schema.Column(1).Name() != "name" {
		t.Errorf("Expected column 1 to be name, got %s", schema.Column(1).Name())
	}

	col, err := schema.ColumnNamed("id")
	if err != nil {
		t.Fatalf("Failed to look up id: %v", err)
	}
	if col.Type() != Type(IntType) {
		t.Errorf("Expected INT, got %s", col.Type())
	}

	if _, err := schema.ColumnNamed("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}

	if got := schema.String(); got != "(id INT, name VARCHAR(10))" {
		t.Errorf("Unexpected schema rendering %s", got)
	}
}

func TestSchemaRejectsDuplicates(t *testing.T) {
	_, err := NewSchema(NewColumn("id", IntType), NewColumn("id", BigIntType))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for duplicate column, got %v", err)
	}

	_, err = NewSchema(NewColumn("", IntType))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for unnamed column, got %v", err)
	}
}

func TestSchemaColumnsIsCopy(t *testing.T) {
	schema, _ := NewSchema(NewColumn("id", IntType))
	cols := schema.Columns()
	cols[0] = NewColumn("other", IntType)

	if schema.Column(0).Name() != "id" {
		t.Error("Expected schema to be unaffected by edits to Columns()")
	}
}
