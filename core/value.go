package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindText
	KindDate
	KindDateTime
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInt:
		return "Int"
	case KindText:
		return "Text"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindTimestamp:
		return "Timestamp"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05.999999999"
)

// Value is an immutable typed column value. The zero Value is Null.
//
// Text values hold the encoded bytes they were built from; two texts are
// equal only when their bytes are, so equal strings in different encodings
// compare unequal.
type Value struct {
	kind Kind
	i    int64
	s    string
	t    time.Time
}

// Null is the SQL NULL value. It is an instance of every Type.
var Null = Value{}

// Int returns an integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Text returns a text value holding the bytes of s.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// TextBytes returns a text value holding a copy of b.
func TextBytes(b []byte) Value {
	return Value{kind: KindText, s: string(b)}
}

// Date returns a date value. The clock part of t is dropped; its location is kept.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// DateTime returns a wall-clock date and time value.
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, t: t}
}

// Timestamp returns a value identifying an instant.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, t: t}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether v may be used with an ordering operator.
func (v Value) IsNumeric() bool { return v.kind == KindInt }

func (v Value) mismatch(want Kind) error {
	return fmt.Errorf("%w: %s value used as %s", ErrTypeMismatch, v.kind, want)
}

// AsInt returns the value as a 32-bit integer.
// It fails when v is not an Int or does not fit in 32 bits.
func (v Value) AsInt() (int32, error) {
	if v.kind != KindInt {
		return 0, v.mismatch(KindInt)
	}
	if v.i < math.MinInt32 || v.i > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d does not fit in 32 bits", ErrTypeMismatch, v.i)
	}
	return int32(v.i), nil
}

func (v Value) AsLong() (int64, error) {
	if v.kind != KindInt {
		return 0, v.mismatch(KindInt)
	}
	return v.i, nil
}

func (v Value) AsString() (string, error) {
	if v.kind != KindText {
		return "", v.mismatch(KindText)
	}
	return v.s, nil
}

// AsBytes returns a copy of the encoded text.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindText {
		return nil, v.mismatch(KindText)
	}
	return []byte(v.s), nil
}

// AsTime returns the time held by a Date, DateTime or Timestamp value.
func (v Value) AsTime() (time.Time, error) {
	switch v.kind {
	case KindDate, KindDateTime, KindTimestamp:
		return v.t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s value used as time", ErrTypeMismatch, v.kind)
	}
}

// Native returns the driver representation of v: int64, string, time.Time or nil.
// Dates and date-times bind their wall clock as UTC so the store keeps the
// same fields their literals carry; timestamps bind their instant in UTC.
func (v Value) Native() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindText:
		return v.s
	case KindDate, KindDateTime:
		return wallClock(v.t)
	case KindTimestamp:
		return v.t.UTC()
	default:
		return nil
	}
}

// Literal renders v in SQL literal syntax.
func (v Value) Literal() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindText, KindDate, KindDateTime, KindTimestamp:
		return "'" + strings.ReplaceAll(v.Format(), "'", "''") + "'"
	default:
		return "NULL"
	}
}

// Format renders v as plain text. Null formats as the empty string.
func (v Value) Format() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindText:
		return v.s
	case KindDate:
		return v.t.Format(dateLayout)
	case KindDateTime:
		return v.t.Format(dateTimeLayout)
	case KindTimestamp:
		return v.t.UTC().Format(dateTimeLayout)
	default:
		return ""
	}
}

func (v Value) String() string { return v.Literal() }

func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Equal reports structural equality. Dates compare by calendar day,
// date-times by wall clock and timestamps by instant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindText:
		return v.s == o.s
	case KindDate:
		return v.t.Format(dateLayout) == o.t.Format(dateLayout)
	case KindDateTime:
		return v.t.Format(dateTimeLayout) == o.t.Format(dateTimeLayout)
	case KindTimestamp:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// Hash returns a hash consistent with Equal.
func (v Value) Hash() uint64 {
	buf := make([]byte, 1, 32)
	buf[0] = byte(v.kind)
	switch v.kind {
	case KindInt:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(v.i))
	case KindText:
		buf = append(buf, v.s...)
	case KindDate, KindDateTime:
		buf = append(buf, v.Format()...)
	case KindTimestamp:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(v.t.UnixNano()))
	}
	return xxh3.Hash(buf)
}
