package core

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Type is a column type. Each implementation decides which Values belong to
// it and converts the raw values a driver hands back into Values.
//
// Every Value returned by FromObject or Parse satisfies IsInstance, and Null
// is an instance of every Type.
type Type interface {
	// Name is the spelling used in CREATE TABLE.
	Name() string
	IsInstance(v Value) bool
	// FromObject converts a raw driver value. A nil raw value yields Null.
	FromObject(raw any) (Value, error)
	// Parse converts the textual form produced by Value.Format.
	// An empty string yields Null.
	Parse(text string) (Value, error)
	String() string

	sealed()
}

// IntegerType is the INT family: an inclusive [lower, upper] range.
type IntegerType struct {
	name         string
	lower, upper int64
}

var (
	// TinyIntType is an 8-bit integer.
	TinyIntType = IntegerType{name: "TINYINT", lower: math.MinInt8, upper: math.MaxInt8}
	// SmallIntType is a 16-bit integer.
	SmallIntType = IntegerType{name: "SMALLINT", lower: math.MinInt16, upper: math.MaxInt16}
	// IntType is a 32-bit integer.
	IntType = IntegerType{name: "INT", lower: math.MinInt32, upper: math.MaxInt32}
	// BigIntType is a 64-bit integer.
	BigIntType = IntegerType{name: "BIGINT", lower: math.MinInt64, upper: math.MaxInt64}
)

func (IntegerType) sealed() {}

func (t IntegerType) Name() string   { return t.name }
func (t IntegerType) String() string { return t.name }

// Bounds returns the inclusive range of the type.
func (t IntegerType) Bounds() (lower, upper int64) { return t.lower, t.upper }

func (t IntegerType) IsInstance(v Value) bool {
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i >= t.lower && v.i <= t.upper
	default:
		return false
	}
}

func (t IntegerType) FromObject(raw any) (Value, error) {
	var n int64
	switch x := raw.(type) {
	case nil:
		return Null, nil
	case int64:
		n = x
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int16:
		n = int64(x)
	case int8:
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Null, t.outOfRange(strconv.FormatUint(uint64(x), 10))
		}
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return Null, t.outOfRange(strconv.FormatUint(x, 10))
		}
		n = int64(x)
	case *big.Int:
		if x == nil {
			return Null, nil
		}
		if !x.IsInt64() {
			return Null, t.outOfRange(x.String())
		}
		n = x.Int64()
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return Null, fmt.Errorf("%w: %v is not an integer for %s", ErrConversion, x, t)
		}
		n = int64(x)
	case string:
		return t.parse(x)
	case []byte:
		return t.parse(string(x))
	default:
		return Null, fmt.Errorf("%w: cannot convert %T to %s", ErrConversion, raw, t)
	}
	if n < t.lower || n > t.upper {
		return Null, t.outOfRange(strconv.FormatInt(n, 10))
	}
	return Int(n), nil
}

func (t IntegerType) Parse(text string) (Value, error) {
	if text == "" {
		return Null, nil
	}
	return t.parse(text)
}

func (t IntegerType) parse(text string) (Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return Null, fmt.Errorf("%w: %q is not a valid %s: %w", ErrConversion, text, t, err)
	}
	if n < t.lower || n > t.upper {
		return Null, t.outOfRange(text)
	}
	return Int(n), nil
}

func (t IntegerType) outOfRange(n string) error {
	return fmt.Errorf("%w: %s out of range [%d, %d] for %s", ErrConversion, n, t.lower, t.upper, t)
}

// CharType is VARCHAR or TEXT with a maximum width in characters.
// The width counts runes, which is not exact for every encoding.
type CharType struct {
	name  string
	width int
}

const maxDeclaredWidth = 65536

var (
	// TinyTextType holds up to 255 characters.
	TinyTextType = CharType{name: "TINYTEXT", width: 255}
	// MediumTextType holds up to 16777215 characters.
	MediumTextType = CharType{name: "MEDIUMTEXT", width: 16777215}
	// LongTextType holds up to 2147483647 characters.
	LongTextType = CharType{name: "LONGTEXT", width: math.MaxInt32}
)

// VarcharType returns VARCHAR(width). The width must be in [0, 65536).
func VarcharType(width int) (CharType, error) {
	if width < 0 || width >= maxDeclaredWidth {
		return CharType{}, fmt.Errorf("%w: invalid VARCHAR width %d", ErrInvalidArgument, width)
	}
	return CharType{name: fmt.Sprintf("VARCHAR(%d)", width), width: width}, nil
}

// TextType returns TEXT(width). The width must be in [0, 65536).
func TextType(width int) (CharType, error) {
	if width < 0 || width >= maxDeclaredWidth {
		return CharType{}, fmt.Errorf("%w: invalid TEXT width %d", ErrInvalidArgument, width)
	}
	return CharType{name: fmt.Sprintf("TEXT(%d)", width), width: width}, nil
}

func (CharType) sealed() {}

// Name renders VARCHAR(width) for every character type so the DDL is
// accepted by engines without TEXT modifiers.
func (t CharType) Name() string   { return fmt.Sprintf("VARCHAR(%d)", t.width) }
func (t CharType) String() string { return t.name }
func (t CharType) Width() int     { return t.width }

func (t CharType) IsInstance(v Value) bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return utf8.RuneCountInString(v.s) <= t.width
	default:
		return false
	}
}

func (t CharType) FromObject(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null, nil
	case string:
		return t.text(Text(x))
	case []byte:
		return t.text(TextBytes(x))
	case fmt.Stringer:
		return t.text(Text(x.String()))
	default:
		return Null, fmt.Errorf("%w: cannot convert %T to %s", ErrConversion, raw, t)
	}
}

func (t CharType) Parse(text string) (Value, error) {
	if text == "" {
		return Null, nil
	}
	return t.text(Text(text))
}

func (t CharType) text(v Value) (Value, error) {
	if !t.IsInstance(v) {
		return Null, fmt.Errorf("%w: %d characters exceed %s", ErrConversion, utf8.RuneCountInString(v.s), t)
	}
	return v, nil
}

// TemporalType is DATE, DATETIME or TIMESTAMP. Values pass through without
// any time zone normalization.
type TemporalType struct {
	kind Kind
}

var (
	DateType      = TemporalType{kind: KindDate}
	DateTimeType  = TemporalType{kind: KindDateTime}
	TimestampType = TemporalType{kind: KindTimestamp}
)

var temporalLayouts = []string{
	dateTimeLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	dateLayout,
}

func (TemporalType) sealed() {}

func (t TemporalType) Name() string {
	switch t.kind {
	case KindDate:
		return "DATE"
	case KindDateTime:
		return "DATETIME"
	default:
		return "TIMESTAMP"
	}
}

func (t TemporalType) String() string { return t.Name() }

func (t TemporalType) IsInstance(v Value) bool {
	return v.kind == KindNull || v.kind == t.kind
}

func (t TemporalType) FromObject(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null, nil
	case time.Time:
		return t.wrap(x), nil
	case string:
		return t.parse(x)
	case []byte:
		return t.parse(string(x))
	default:
		return Null, fmt.Errorf("%w: cannot convert %T to %s", ErrConversion, raw, t)
	}
}

func (t TemporalType) Parse(text string) (Value, error) {
	if text == "" {
		return Null, nil
	}
	return t.parse(text)
}

func (t TemporalType) parse(text string) (Value, error) {
	text = strings.TrimSpace(text)
	for _, layout := range temporalLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return t.wrap(ts), nil
		}
	}
	return Null, fmt.Errorf("%w: %q is not a valid %s", ErrConversion, text, t)
}

func (t TemporalType) wrap(ts time.Time) Value {
	switch t.kind {
	case KindDate:
		return Date(ts)
	case KindDateTime:
		return DateTime(ts)
	default:
		return Timestamp(ts)
	}
}

// ParseType resolves a DDL type name such as INT, VARCHAR(10) or DATE.
func ParseType(name string) (Type, error) {
	spec := strings.ToUpper(strings.TrimSpace(name))
	base, width := spec, -1
	if open := strings.IndexByte(spec, '('); open >= 0 {
		if !strings.HasSuffix(spec, ")") {
			return nil, fmt.Errorf("%w: malformed type %q", ErrInvalidArgument, name)
		}
		n, err := strconv.Atoi(strings.TrimSpace(spec[open+1 : len(spec)-1]))
		if err != nil {
			return nil, fmt.Errorf("%w: malformed width in %q", ErrInvalidArgument, name)
		}
		base, width = strings.TrimSpace(spec[:open]), n
	}

	switch base {
	case "VARCHAR":
		if width < 0 {
			return nil, fmt.Errorf("%w: VARCHAR requires a width", ErrInvalidArgument)
		}
		t, err := VarcharType(width)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "TEXT":
		if width < 0 {
			width = maxDeclaredWidth - 1
		}
		t, err := TextType(width)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	if width >= 0 {
		return nil, fmt.Errorf("%w: %s takes no width", ErrInvalidArgument, base)
	}

	switch base {
	case "TINYINT":
		return TinyIntType, nil
	case "SMALLINT":
		return SmallIntType, nil
	case "INT", "INTEGER":
		return IntType, nil
	case "BIGINT":
		return BigIntType, nil
	case "TINYTEXT":
		return TinyTextType, nil
	case "MEDIUMTEXT":
		return MediumTextType, nil
	case "LONGTEXT":
		return LongTextType, nil
	case "DATE":
		return DateType, nil
	case "DATETIME":
		return DateTimeType, nil
	case "TIMESTAMP":
		return TimestampType, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidArgument, name)
	}
}

// Must panics if err is non-nil. It is meant for package-level schema declarations.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
