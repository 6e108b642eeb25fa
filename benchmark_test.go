package TypedSQL

import (
	"database/sql"
	"strconv"
	"testing"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/db"
	"github.com/nickyhof/TypedSQL/ps"
)

const benchmarkRows = 1000

func benchSchema() core.Schema {
	return core.Must(core.NewSchema(
		core.NewColumn("id", core.IntType),
		core.NewColumn("name", core.Must(core.VarcharType(20))),
		core.NewColumn("age", core.IntType),
		core.NewColumn("city", core.Must(core.VarcharType(20))),
	))
}

// setupBuilder creates a bound users table with test data
func setupBuilder(b *testing.B) *db.Table {
	instance, err := Open("", "")
	if err != nil {
		b.Fatalf("Failed to open database: %v", err)
	}
	b.Cleanup(func() { instance.Close() })

	users, err := instance.Database.BindTable("users", benchSchema(), nil)
	if err != nil {
		b.Fatalf("Failed to bind table: %v", err)
	}
	if err := users.Create(); err != nil {
		b.Fatalf("Failed to create table: %v", err)
	}

	for i := 1; i <= benchmarkRows; i++ {
		row, err := users.NewRow(
			core.Int(int64(i)),
			core.Text("User"+strconv.Itoa(i)),
			core.Int(int64(20+i%50)),
			core.Text("City"+strconv.Itoa(i%10)),
		)
		if err != nil {
			b.Fatalf("Failed to build row: %v", err)
		}
		if err := users.Insert(row); err != nil {
			b.Fatalf("Failed to insert: %v", err)
		}
	}
	return users
}

// setupRaw creates a DuckDB instance with identical test data
func setupRaw(b *testing.B) *sql.DB {
	raw, err := sql.Open(ps.DefaultDriver, "")
	if err != nil {
		b.Fatalf("Failed to open DuckDB: %v", err)
	}
	b.Cleanup(func() { raw.Close() })

	if _, err := raw.Exec("CREATE TABLE users (id INT, name VARCHAR(20), age INT, city VARCHAR(20))"); err != nil {
		b.Fatalf("Failed to create table: %v", err)
	}
	for i := 1; i <= benchmarkRows; i++ {
		_, err := raw.Exec("INSERT INTO users VALUES (?, ?, ?, ?)",
			i, "User"+strconv.Itoa(i), 20+i%50, "City"+strconv.Itoa(i%10))
		if err != nil {
			b.Fatalf("Failed to insert: %v", err)
		}
	}
	return raw
}

func drain(b *testing.B, q db.Query) {
	for _, err := range q.Rows() {
		if err != nil {
			b.Fatalf("Query error: %v", err)
		}
	}
}

func drainRaw(b *testing.B, raw *sql.DB, query string, args ...any) {
	rows, err := raw.Query(query, args...)
	if err != nil {
		b.Fatalf("Query error: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, age int
		var name, city string
		rows.Scan(&id, &name, &age, &city)
	}
}

func BenchmarkBuilder_SelectAll(b *testing.B) {
	users := setupBuilder(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		drain(b, users.Select())
	}
}

func BenchmarkRaw_SelectAll(b *testing.B) {
	raw := setupRaw(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		drainRaw(b, raw, "SELECT * FROM users")
	}
}

func BenchmarkBuilder_SelectWhere(b *testing.B) {
	users := setupBuilder(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		q, err := users.Select().WhereGreater("age", core.Int(40))
		if err != nil {
			b.Fatalf("Build error: %v", err)
		}
		drain(b, q)
	}
}

func BenchmarkRaw_SelectWhere(b *testing.B) {
	raw := setupRaw(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		drainRaw(b, raw, "SELECT * FROM users WHERE age > ?", 40)
	}
}

func BenchmarkBuilder_OrderBy(b *testing.B) {
	users := setupBuilder(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		q, err := users.Select().OrderByDesc("age", "id")
		if err != nil {
			b.Fatalf("Build error: %v", err)
		}
		drain(b, q)
	}
}

func BenchmarkRaw_OrderBy(b *testing.B) {
	raw := setupRaw(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		drainRaw(b, raw, "SELECT * FROM users ORDER BY age, id DESC")
	}
}

func BenchmarkBuilder_First(b *testing.B) {
	users := setupBuilder(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		q, _ := users.Select().WhereEqual("id", core.Int(int64(i%benchmarkRows+1)))
		if _, ok, err := q.First(); err != nil || !ok {
			b.Fatalf("Expected a row, got %v (%v)", ok, err)
		}
	}
}

func BenchmarkBuilder_Insert(b *testing.B) {
	users := setupBuilder(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		row, _ := users.NewRow(core.Int(int64(benchmarkRows+i+1)), core.Text("New"), core.Int(30), core.Null)
		if err := users.Insert(row); err != nil {
			b.Fatalf("Insert error: %v", err)
		}
	}
}

func BenchmarkRaw_Insert(b *testing.B) {
	raw := setupRaw(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := raw.Exec("INSERT INTO users VALUES (?, ?, ?, ?)", benchmarkRows+i+1, "New", 30, nil); err != nil {
			b.Fatalf("Insert error: %v", err)
		}
	}
}

func BenchmarkBuilder_Render(b *testing.B) {
	users := setupBuilder(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		q, _ := users.Select().WhereBetween("age", core.Int(20), core.Int(30))
		q, _ = q.WhereIn("city", core.Text("City1"), core.Text("City2"))
		q, _ = q.OrderByAsc("name")
		_ = q.SQL()
	}
}

func BenchmarkRowHash(b *testing.B) {
	users := setupBuilder(b)
	row, _ := users.NewRow(core.Int(1), core.Text("User1"), core.Int(21), core.Text("City1"))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		row.Hash()
	}
}
