package db

import (
	"encoding/binary"
	"strings"

	"github.com/goccy/go-json"
	"github.com/nickyhof/TypedSQL/core"
	"github.com/zeebo/xxh3"
)

// Row is an ordered tuple of values conforming to a table schema. Every Row
// is built by a Table: the concrete type is either a Tuple or a caller type
// that embeds one.
type Row interface {
	Size() int
	Get(i int) core.Value
	Values() []core.Value
	Equal(other Row) bool
	Hash() uint64
	String() string
	tuple() Tuple
}

// RowFactory turns a validated Tuple into the caller's row type. A nil
// factory yields plain Tuples.
type RowFactory func(Tuple) Row

// Tuple is the base Row. Its values can only be set by a Table, so a Tuple
// outside the package is either empty or schema-checked.
type Tuple struct {
	values []core.Value
}

func newTuple(values []core.Value) Tuple {
	return Tuple{values: append([]core.Value(nil), values...)}
}

func (t Tuple) Size() int { return len(t.values) }

// Get returns the value at position i. It panics if i is out of range.
func (t Tuple) Get(i int) core.Value { return t.values[i] }

func (t Tuple) Values() []core.Value {
	return append([]core.Value(nil), t.values...)
}

func (t Tuple) tuple() Tuple { return t }

// Equal compares values position by position. The concrete row types are
// not compared, so a Tuple equals a factory row holding the same values.
func (t Tuple) Equal(other Row) bool {
	if other == nil {
		return false
	}
	o := other.tuple()
	if len(t.values) != len(o.values) {
		return false
	}
	for i, v := range t.values {
		if !v.Equal(o.values[i]) {
			return false
		}
	}
	return true
}

func (t Tuple) Hash() uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, v := range t.values {
		binary.LittleEndian.PutUint64(buf[:], v.Hash())
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (t Tuple) String() string {
	parts := make([]string, len(t.values))
	for i, v := range t.values {
		parts[i] = v.Literal()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Strings returns the plain textual form of each value, empty for NULL.
func (t Tuple) Strings() []string {
	out := make([]string, len(t.values))
	for i, v := range t.values {
		out[i] = v.Format()
	}
	return out
}

// MarshalJSON renders the row as a JSON array. Integers stay numbers, NULL
// becomes null and every other value is its formatted text.
func (t Tuple) MarshalJSON() ([]byte, error) {
	out := make([]any, len(t.values))
	for i, v := range t.values {
		switch v.Kind() {
		case core.KindNull:
			out[i] = nil
		case core.KindInt:
			out[i] = v.Native()
		default:
			out[i] = v.Format()
		}
	}
	return json.Marshal(out)
}
