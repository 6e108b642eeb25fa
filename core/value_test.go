package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValueLiterals(t *testing.T) {
	day := time.Date(2024, time.March, 9, 13, 45, 30, 0, time.UTC)

	tests := []struct {
		value    Value
		expected string
	}{
		{Int(42), "42"},
		{Int(-7), "-7"},
		{Text("bob"), "'bob'"},
		{Text("o'neil"), "'o''neil'"},
		{Date(day), "'2024-03-09'"},
		{DateTime(day), "'2024-03-09 13:45:30'"},
		{Timestamp(day.Add(500 * time.Millisecond)), "'2024-03-09 13:45:30.5'"},
		{Null, "NULL"},
	}

	for _, tc := range tests {
		if got := tc.value.Literal(); got != tc.expected {
			t.Errorf("Expected literal %s, got %s", tc.expected, got)
		}
	}
}

func TestValueAccessors(t *testing.T) {
	n, err := Int(12).AsInt()
	if err != nil || n != 12 {
		t.Errorf("Expected 12, got %d (%v)", n, err)
	}

	if _, err := Int(math.MaxInt32 + 1).AsInt(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Expected type mismatch for 33-bit value, got %v", err)
	}

	l, err := Int(math.MaxInt64).AsLong()
	if err != nil || l != math.MaxInt64 {
		t.Errorf("Expected MaxInt64, got %d (%v)", l, err)
	}

	if _, err := Text("x").AsLong(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Expected type mismatch, got %v", err)
	}
	if _, err := Int(1).AsString(); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Expected type mismatch to be a schema mismatch, got %v", err)
	}
	if _, err := Text("x").AsTime(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Expected type mismatch, got %v", err)
	}

	s, err := Text("héllo").AsString()
	if err != nil || s != "héllo" {
		t.Errorf("Expected héllo, got %q (%v)", s, err)
	}
}

func TestTextBytesCopies(t *testing.T) {
	raw := []byte("abc")
	v := TextBytes(raw)
	raw[0] = 'z'

	s, _ := v.AsString()
	if s != "abc" {
		t.Errorf("Expected value to be unaffected by later writes, got %q", s)
	}
}

func TestValueEquality(t *testing.T) {
	if !Int(1).Equal(Int(1)) {
		t.Error("Expected Int(1) to equal Int(1)")
	}
	if Int(1).Equal(Text("1")) {
		t.Error("Expected different variants to be unequal")
	}
	if Int(1).Hash() == Text("1").Hash() {
		t.Error("Expected different variants to hash differently")
	}
	if !Null.Equal(Null) {
		t.Error("Expected Null to equal Null")
	}

	// Latin-1 "é" versus UTF-8 "é": equal characters, different bytes.
	if TextBytes([]byte{0xe9}).Equal(Text("é")) {
		t.Error("Expected text equality to compare encoded bytes")
	}

	local := time.FixedZone("X", 3*3600)
	a := Date(time.Date(2024, 1, 2, 23, 0, 0, 0, local))
	b := Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Error("Expected dates on the same calendar day to be equal")
	}

	ts1 := Timestamp(time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC))
	ts2 := Timestamp(time.Date(2024, 1, 2, 15, 0, 0, 0, local))
	if !ts1.Equal(ts2) || ts1.Hash() != ts2.Hash() {
		t.Error("Expected timestamps at the same instant to be equal")
	}
}

func TestValueNative(t *testing.T) {
	if Null.Native() != nil {
		t.Error("Expected Null to bind as nil")
	}
	if Int(3).Native() != int64(3) {
		t.Errorf("Expected int64(3), got %#v", Int(3).Native())
	}
	if Text("a").Native() != "a" {
		t.Errorf("Expected \"a\", got %#v", Text("a").Native())
	}
}

func TestValueNativeTemporal(t *testing.T) {
	local := time.Date(2024, time.January, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		value    Value
		expected time.Time
		literal  string
	}{
		{Date(local), time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "'2024-01-01'"},
		{DateTime(local), time.Date(2024, time.January, 1, 0, 30, 0, 0, time.UTC), "'2024-01-01 00:30:00'"},
		{Timestamp(local), time.Date(2023, time.December, 31, 23, 30, 0, 0, time.UTC), "'2023-12-31 23:30:00'"},
	}

	for _, tc := range tests {
		native, ok := tc.value.Native().(time.Time)
		if !ok || !native.Equal(tc.expected) || native.Location() != time.UTC {
			t.Errorf("Expected %s to bind as %v, got %v", tc.value.Kind(), tc.expected, tc.value.Native())
		}
		if got := tc.value.Literal(); got != tc.literal {
			t.Errorf("Expected literal %s, got %s", tc.literal, got)
		}
	}
}
