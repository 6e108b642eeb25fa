package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nickyhof/TypedSQL"
	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/db"
	"github.com/nickyhof/TypedSQL/ps"
)

func setupTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	journal, err := ps.NewMemoryJournal()
	if err != nil {
		t.Fatalf("Failed to create journal: %v", err)
	}

	instance, err := TypedSQL.Open("", "", db.WithJournal(journal, core.Identity{
		Name:  "test",
		Email: "test@test.com",
	}))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { instance.Close() })

	var out bytes.Buffer
	return &CLI{
		database: instance.Database,
		out:      &out,
		history:  make([]string, 0),
	}, &out
}

// run executes commands and returns what the last one printed.
func run(t *testing.T, cli *CLI, out *bytes.Buffer, commands ...string) string {
	t.Helper()
	for _, cmd := range commands {
		out.Reset()
		if !cli.handleCommand(cmd) {
			t.Fatalf("Expected %s to keep the CLI running", cmd)
		}
	}
	return out.String()
}

func TestCLIWorkflow(t *testing.T) {
	cli, out := setupTestCLI(t)

	output := run(t, cli, out,
		".bind users id INT, name VARCHAR(10)",
		".create users",
	)
	if !strings.Contains(output, "1 table(s) created") {
		t.Errorf("Expected create summary, got %q", output)
	}

	output = run(t, cli, out, ".insert users 1, 'bob'")
	if !strings.Contains(output, "1 record(s) written") || !strings.Contains(output, "journal") {
		t.Errorf("Expected insert summary with journal id, got %q", output)
	}
	run(t, cli, out, ".insert users 2, null")

	output = run(t, cli, out, ".select users where id = 1")
	if !strings.Contains(output, "bob") || !strings.Contains(output, "1 rows") {
		t.Errorf("Expected bob in output, got %q", output)
	}

	output = run(t, cli, out, ".select users where name is null")
	if strings.Contains(output, "bob") || !strings.Contains(output, "2") {
		t.Errorf("Expected only the unnamed row, got %q", output)
	}

	output = run(t, cli, out, ".delete users where id = 1")
	if !strings.Contains(output, "1 record(s) deleted") {
		t.Errorf("Expected delete summary, got %q", output)
	}

	output = run(t, cli, out, ".select users")
	if strings.Contains(output, "bob") {
		t.Errorf("Expected bob to be deleted, got %q", output)
	}

	output = run(t, cli, out, ".log")
	if !strings.Contains(output, "DELETE FROM users WHERE id=1") || !strings.Contains(output, "CREATE TABLE users") {
		t.Errorf("Expected journal entries, got %q", output)
	}
}

func TestCLIJSONOutput(t *testing.T) {
	cli, out := setupTestCLI(t)
	run(t, cli, out,
		".bind users id INT, name VARCHAR(10)",
		".create users",
		".insert users 1, 'o''hara'",
		".json",
	)

	output := run(t, cli, out, ".select users")
	if !strings.Contains(output, `"columns"`) || !strings.Contains(output, `"o'hara"`) {
		t.Errorf("Expected JSON rows, got %q", output)
	}
}

func TestCLIErrors(t *testing.T) {
	cli, out := setupTestCLI(t)
	run(t, cli, out, ".bind users id INT, name VARCHAR(3)")

	tests := []struct {
		command  string
		expected string
	}{
		{".select missing", "✗ Error"},
		{".insert users 1", "columns, got 1 values"},
		{".insert users 1, 'toolong'", "✗ Error"},
		{".select users where id > 'x'", "✗ Error"},
		{".select users where age = 1", "✗ Error"},
		{".select users order id", "✗ Error"},
		{".bind broken id", "needs a name and a type"},
		{".remote push", "usage"},
		{".unknown", "Unknown command"},
	}

	for _, tt := range tests {
		output := run(t, cli, out, tt.command)
		if !strings.Contains(output, tt.expected) {
			t.Errorf("%s: expected output to contain %q, got %q", tt.command, tt.expected, output)
		}
	}
}

func TestCLIBindSchema(t *testing.T) {
	cli, out := setupTestCLI(t)

	schema := `{"tables": [
		{"name": "users", "columns": [{"name": "id", "type": "INT"}, {"name": "name", "type": "VARCHAR(10)"}]},
		{"name": "orders", "columns": [{"name": "id", "type": "BIGINT"}, {"name": "placed", "type": "DATE"}]}
	]}`

	n, err := cli.bindSchema([]byte(schema), true)
	if err != nil {
		t.Fatalf("Failed to bind schema: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 tables, got %d", n)
	}

	orders, err := cli.database.Table("orders")
	if err != nil {
		t.Fatalf("Expected orders to be bound: %v", err)
	}
	if exists, _ := orders.Exists(); !exists {
		t.Error("Expected orders to be created")
	}

	output := run(t, cli, out, ".tables")
	if !strings.Contains(output, "orders") || !strings.Contains(output, "users") {
		t.Errorf("Expected both tables listed, got %q", output)
	}

	output = run(t, cli, out, ".schema orders")
	if !strings.Contains(output, "BIGINT") || !strings.Contains(output, "DATE") {
		t.Errorf("Expected column types, got %q", output)
	}

	if _, err := cli.bindSchema([]byte(`{"tables": [{"name": "bad", "columns": [{"name": "x", "type": "BLOB"}]}]}`), false); err == nil {
		t.Error("Expected unknown type to fail")
	}
	if _, err := cli.bindSchema([]byte(`{"tables": `), false); err == nil {
		t.Error("Expected malformed JSON to fail")
	}
}

func TestCLIExportImport(t *testing.T) {
	cli, out := setupTestCLI(t)
	run(t, cli, out,
		".bind users id INT, name VARCHAR(10)",
		".bind copy id INT, name VARCHAR(10)",
		".create users",
		".create copy",
		".insert users 1, 'alice'",
		".insert users 2, 'bob'",
	)

	path := filepath.Join(t.TempDir(), "users.csv")
	output := run(t, cli, out, ".export users "+path)
	if !strings.Contains(output, "Exported 2 rows") {
		t.Errorf("Expected export summary, got %q", output)
	}

	output = run(t, cli, out, ".import copy "+path)
	if !strings.Contains(output, "2 record(s) written") {
		t.Errorf("Expected import summary, got %q", output)
	}

	output = run(t, cli, out, ".select copy order by id desc")
	if strings.Index(output, "bob") > strings.Index(output, "alice") {
		t.Errorf("Expected bob before alice, got %q", output)
	}
}

func TestCLIJournalCommands(t *testing.T) {
	cli, out := setupTestCLI(t)
	run(t, cli, out, ".bind users id INT", ".create users")

	output := run(t, cli, out, ".snapshot v1")
	if !strings.Contains(output, "Snapshot v1 created") {
		t.Errorf("Expected snapshot confirmation, got %q", output)
	}

	run(t, cli, out, ".remote add origin https://example.com/journal.git")
	output = run(t, cli, out, ".remote list")
	if !strings.Contains(output, "https://example.com/journal.git") {
		t.Errorf("Expected remote listed, got %q", output)
	}

	cli.database = db.New(cli.database.Connection())
	output = run(t, cli, out, ".snapshot v2")
	if !strings.Contains(output, "no journal") {
		t.Errorf("Expected missing journal error, got %q", output)
	}
}

func TestCLIExecuteRaw(t *testing.T) {
	cli, out := setupTestCLI(t)

	cli.executeRaw("CREATE TABLE raw (id INT)")
	if !strings.Contains(out.String(), "journal") {
		t.Errorf("Expected raw statement to be journaled, got %q", out.String())
	}

	out.Reset()
	cli.executeRaw("NOT SQL")
	if !strings.Contains(out.String(), "✗ Error") {
		t.Errorf("Expected error output, got %q", out.String())
	}
}

func TestCLIAddToHistory(t *testing.T) {
	cli, _ := setupTestCLI(t)

	cli.addToHistory(".select test")
	cli.addToHistory(".insert test 1")

	if len(cli.history) != 2 {
		t.Errorf("Expected 2 history entries, got %d", len(cli.history))
	}

	// Adding duplicate of last command should not increase count
	cli.addToHistory(".insert test 1")
	if len(cli.history) != 2 {
		t.Errorf("Expected 2 history entries after duplicate, got %d", len(cli.history))
	}
}

func TestCLIHistoryLimit(t *testing.T) {
	cli, _ := setupTestCLI(t)

	for i := 0; i < 1100; i++ {
		cli.addToHistory("SELECT " + string(rune(i)))
	}

	if len(cli.history) > 1000 {
		t.Errorf("Expected history to be limited to 1000, got %d", len(cli.history))
	}
}

func TestCLIGetPrompt(t *testing.T) {
	cli, _ := setupTestCLI(t)

	prompt := cli.getPrompt(false)
	if !strings.Contains(prompt, "typedsql (journal)") {
		t.Errorf("Expected journal prompt, got %q", prompt)
	}

	prompt = cli.getPrompt(true)
	if !strings.Contains(prompt, "...>") {
		t.Error("Expected multi-line prompt to contain '...>'")
	}

	cli.database = db.New(cli.database.Connection())
	if strings.Contains(cli.getPrompt(false), "journal") {
		t.Error("Expected no journal marker without a journal")
	}
}

func TestCLIHandleCommand(t *testing.T) {
	cli, _ := setupTestCLI(t)

	tests := []struct {
		command  string
		expected bool // false means exit
	}{
		{".help", true},
		{".version", true},
		{".history", true},
		{".tables", true},
		{".unknown", true},
		{".quit", false},
	}

	for _, test := range tests {
		result := cli.handleCommand(test.command)
		if result != test.expected {
			t.Errorf("handleCommand(%s) = %v, expected %v", test.command, result, test.expected)
		}
	}
}

func TestVersionVariable(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"single statement", "SELECT * FROM test", 1},
		{"two statements", "SELECT * FROM a; SELECT * FROM b", 2},
		{"with semicolons", "INSERT INTO t VALUES (1); INSERT INTO t VALUES (2);", 2},
		{"with comments", "-- comment\nSELECT * FROM test", 1},
		{"multiline", "CREATE TABLE t (\n  id INT,\n  name VARCHAR(5)\n);", 1},
		{"empty", "", 0},
		{"only semicolons", ";;;", 0},
		{"string with semicolon", "INSERT INTO t VALUES ('a;b')", 1},
		{"escaped quote", "INSERT INTO t VALUES ('it''s;'); SELECT 1", 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := splitStatements(test.input)
			if len(result) != test.expected {
				t.Errorf("splitStatements(%q) = %d statements, expected %d", test.input, len(result), test.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"this is a long string", 10, "this is..."},
		{"exact", 5, "exact"},
		{"ab", 10, "ab"},
	}

	for _, test := range tests {
		result := truncate(test.input, test.max)
		if result != test.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q", test.input, test.max, result, test.expected)
		}
	}
}

func TestImportFile(t *testing.T) {
	cli, out := setupTestCLI(t)

	path := filepath.Join(t.TempDir(), "shop.sql")
	script := `-- products
CREATE TABLE products (id INT, name VARCHAR(20));
INSERT INTO products VALUES (1, 'Laptop');
INSERT INTO products VALUES (2, 'Mouse; wireless');
INSERT INTO products VALUES (3, 'Keyboard');
INSERT INTO missing VALUES (1);
`
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	if err := cli.importFile(path); err != nil {
		t.Fatalf("importFile failed: %v", err)
	}
	if !strings.Contains(out.String(), "4 succeeded, 1 failed") {
		t.Errorf("Expected import summary, got %q", out.String())
	}

	run(t, cli, out, ".bind products id INT, name VARCHAR(20)")
	output := run(t, cli, out, ".select products where name like 'Mouse%'")
	if !strings.Contains(output, "Mouse; wireless") {
		t.Errorf("Expected imported product, got %q", output)
	}
}

func TestImportFileNotFound(t *testing.T) {
	cli, _ := setupTestCLI(t)

	if err := cli.importFile("nonexistent.sql"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestRunCommand(t *testing.T) {
	cli, out := setupTestCLI(t)

	output := run(t, cli, out, ".run")
	if !strings.Contains(output, "usage") {
		t.Errorf("Expected usage message, got %q", output)
	}
}
