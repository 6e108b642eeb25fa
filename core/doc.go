// Package core provides the value and type model used throughout TypedSQL.
//
// The package defines Value, the closed set of column Types, Column and
// Schema, and the error kinds every other package reports.
//
// # Values
//
// A Value is an immutable tagged union:
//
//	core.Int(42)
//	core.Text("bob")
//	core.Date(time.Now())
//	core.DateTime(t)
//	core.Timestamp(t)
//	core.Null
//
// Accessors such as AsInt and AsString fail with ErrTypeMismatch on the
// wrong variant. Literal renders the SQL literal form.
//
// # Column Types
//
// Supported column types:
//   - TinyIntType, SmallIntType, IntType, BigIntType: inclusive integer ranges
//   - VarcharType(n), TextType(n), TinyTextType, MediumTextType, LongTextType
//   - DateType, DateTimeType, TimestampType
//
// Every Type converts raw driver values with FromObject. A nil raw value
// always converts to Null, and Null is an instance of every Type.
//
// # Schema Definition
//
//	schema, err := core.NewSchema(
//	    core.NewColumn("id", core.IntType),
//	    core.NewColumn("name", core.Must(core.VarcharType(10))),
//	)
package core
