package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/db"
	"github.com/nickyhof/TypedSQL/op"
	"github.com/nickyhof/TypedSQL/ps"
)

// handleCommand runs a dot command. It returns false when the CLI should exit.
func (cli *CLI) handleCommand(input string) bool {
	input = strings.TrimSpace(input)
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(name) {
	case ".quit", ".exit", ".q":
		fmt.Fprintf(cli.out, "%sGoodbye!%s\n", SuccessColor, ResetColor)
		return false

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".tables":
		err = cli.showTables()

	case ".schema":
		err = cli.showSchema(rest)

	case ".bind":
		err = cli.bindTable(rest)

	case ".create":
		err = cli.createTable(rest)

	case ".drop":
		err = cli.dropTable(rest)

	case ".insert":
		err = cli.insertRow(rest)

	case ".select":
		err = cli.selectRows(rest)

	case ".delete":
		err = cli.deleteRows(rest)

	case ".export":
		err = cli.exportTable(rest)

	case ".import":
		err = cli.importTable(rest)

	case ".run":
		if rest == "" {
			err = fmt.Errorf("usage: .run <file.sql>")
		} else {
			err = cli.importFile(rest)
		}

	case ".log":
		err = cli.showLog(rest)

	case ".snapshot":
		err = cli.snapshot(rest)

	case ".remote":
		err = cli.remote(rest)

	case ".push":
		err = cli.push(rest)

	case ".json":
		cli.jsonOutput = !cli.jsonOutput
		cli.printSuccess("JSON output %s", map[bool]string{true: "on", false: "off"}[cli.jsonOutput])

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".history":
		cli.printHistory()

	case ".version":
		fmt.Fprintf(cli.out, "TypedSQL version %s\n", Version)

	default:
		fmt.Fprintf(cli.out, "%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, name, ResetColor)
	}

	if err != nil {
		cli.printError(err)
	}
	return true
}

func (cli *CLI) printHelp() {
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sTable Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  .tables                            List bound tables")
	fmt.Fprintln(cli.out, "  .schema <table>                    Show the columns of a table")
	fmt.Fprintln(cli.out, "  .bind <table> <col> <type>, ...    Bind a table schema")
	fmt.Fprintln(cli.out, "  .create <table>                    Create a bound table in the store")
	fmt.Fprintln(cli.out, "  .drop <table>                      Drop a table from the store")
	fmt.Fprintln(cli.out, "  .insert <table> <value>, ...       Insert one row")
	fmt.Fprintln(cli.out, "  .select <table> [where ...] [order by <cols> [asc|desc]]")
	fmt.Fprintln(cli.out, "  .delete <table> [where ...]")
	fmt.Fprintln(cli.out, "  .export <table> <path|s3://...>    Write a table as CSV")
	fmt.Fprintln(cli.out, "  .import <table> <path|url>         Load CSV into a table")
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sWhere clauses:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  <col> =|<>|>|<|>=|<= <value>, <col> like '<pattern>',")
	fmt.Fprintln(cli.out, "  <col> between <a> and <b>, <col> in (<a>, <b>), <col> is [not] null")
	fmt.Fprintln(cli.out, "  Conditions are joined with and. Text values are single-quoted.")
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sJournal Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  .log [n]                           Show journal entries")
	fmt.Fprintln(cli.out, "  .snapshot <name>                   Tag the journal")
	fmt.Fprintln(cli.out, "  .remote add|remove|list [...]      Manage journal remotes")
	fmt.Fprintln(cli.out, "  .push [remote]                     Push the journal")
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sOther:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  <sql>;                             Execute a raw statement")
	fmt.Fprintln(cli.out, "  .run <file>                        Execute SQL statements from a file")
	fmt.Fprintln(cli.out, "  .json                              Toggle JSON query output")
	fmt.Fprintln(cli.out, "  .history, .clear, .version, .quit")
	fmt.Fprintln(cli.out)
}

// tableArg splits a table name off the front of args and resolves it.
func (cli *CLI) tableArg(args, usage string) (*db.Table, string, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	if name == "" {
		return nil, "", fmt.Errorf("usage: %s", usage)
	}
	t, err := cli.database.Table(name)
	if err != nil {
		return nil, "", err
	}
	return t, strings.TrimSpace(rest), nil
}

func (cli *CLI) showTables() error {
	grid := db.NewGrid(cli.out)
	grid.Header([]string{"Table", "Columns", "Exists"})
	for _, name := range cli.database.TableNames() {
		t, err := cli.database.Table(name)
		if err != nil {
			return err
		}
		exists, err := t.Exists()
		if err != nil {
			return err
		}
		grid.Row([]string{name, strconv.Itoa(t.Schema().Size()), strconv.FormatBool(exists)})
	}
	grid.Render()
	return nil
}

func (cli *CLI) showSchema(args string) error {
	t, _, err := cli.tableArg(args, ".schema <table>")
	if err != nil {
		return err
	}
	grid := db.NewGrid(cli.out)
	grid.Header([]string{"Column", "Type"})
	for _, col := range t.Schema().Columns() {
		grid.Row([]string{col.Name(), col.Type().Name()})
	}
	grid.Render()
	return nil
}

// bindTable parses "name col TYPE, col TYPE".
func (cli *CLI) bindTable(args string) error {
	name, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	if name == "" || strings.TrimSpace(rest) == "" {
		return fmt.Errorf("usage: .bind <table> <col> <type>, ...")
	}

	var columns []core.Column
	for _, def := range strings.Split(rest, ",") {
		fields := strings.Fields(def)
		if len(fields) < 2 {
			return fmt.Errorf("%w: column definition %q needs a name and a type", core.ErrInvalidArgument, strings.TrimSpace(def))
		}
		typ, err := core.ParseType(strings.Join(fields[1:], ""))
		if err != nil {
			return err
		}
		columns = append(columns, core.NewColumn(fields[0], typ))
	}

	schema, err := core.NewSchema(columns...)
	if err != nil {
		return err
	}
	if _, err := cli.database.BindTable(name, schema, nil); err != nil {
		return err
	}
	cli.printSuccess("Bound %s %s", name, schema)
	return nil
}

func (cli *CLI) createTable(args string) error {
	t, _, err := cli.tableArg(args, ".create <table>")
	if err != nil {
		return err
	}
	return cli.mutate(func() (db.CommitResult, error) {
		return db.CommitResult{TablesCreated: 1}, t.Create()
	})
}

func (cli *CLI) dropTable(args string) error {
	t, _, err := cli.tableArg(args, ".drop <table>")
	if err != nil {
		return err
	}
	return cli.mutate(func() (db.CommitResult, error) {
		return db.CommitResult{TablesDeleted: 1}, t.Drop()
	})
}

func (cli *CLI) insertRow(args string) error {
	t, rest, err := cli.tableArg(args, ".insert <table> <value>, ...")
	if err != nil {
		return err
	}
	tokens, err := tokenize(rest)
	if err != nil {
		return err
	}
	if len(tokens) != t.Schema().Size() {
		return fmt.Errorf("%w: %s has %d columns, got %d values", core.ErrSchemaMismatch, t.Name(), t.Schema().Size(), len(tokens))
	}

	values := make([]core.Value, len(tokens))
	for i, tok := range tokens {
		if values[i], err = tok.value(t.Schema().Column(i)); err != nil {
			return err
		}
	}
	row, err := t.NewRow(values...)
	if err != nil {
		return err
	}
	return cli.mutate(func() (db.CommitResult, error) {
		return db.CommitResult{RecordsWritten: 1}, t.Insert(row)
	})
}

func (cli *CLI) selectRows(args string) error {
	t, rest, err := cli.tableArg(args, ".select <table> [where ...] [order by ...]")
	if err != nil {
		return err
	}
	q, err := parseQuery(t.Select(), rest)
	if err != nil {
		return err
	}

	result, err := db.Materialize(q)
	if err != nil {
		return err
	}
	if !cli.jsonOutput {
		result.DisplayTo(cli.out)
		return nil
	}

	data, err := json.MarshalIndent(struct {
		Columns []string `json:"columns"`
		Rows    []db.Row `json:"rows"`
	}{result.Columns, result.Rows}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, string(data))
	return nil
}

func (cli *CLI) deleteRows(args string) error {
	t, rest, err := cli.tableArg(args, ".delete <table> [where ...]")
	if err != nil {
		return err
	}
	q, err := parseQuery(t.DeleteFrom(), rest)
	if err != nil {
		return err
	}
	return cli.mutate(func() (db.CommitResult, error) {
		n, err := q.Apply()
		return db.CommitResult{RecordsDeleted: int(n)}, err
	})
}

func (cli *CLI) exportTable(args string) error {
	t, url, err := cli.tableArg(args, ".export <table> <path|s3://...>")
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("usage: .export <table> <path|s3://...>")
	}
	n, err := op.Export(t.Select(), url, remoteConfig())
	if err != nil {
		return err
	}
	cli.printSuccess("Exported %d rows to %s", n, url)
	return nil
}

func (cli *CLI) importTable(args string) error {
	t, url, err := cli.tableArg(args, ".import <table> <path|url>")
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("usage: .import <table> <path|url>")
	}
	return cli.mutate(func() (db.CommitResult, error) {
		n, err := op.Import(t, url, remoteConfig())
		return db.CommitResult{RecordsWritten: n}, err
	})
}

func (cli *CLI) mutate(fn func() (db.CommitResult, error)) error {
	result, err := cli.database.Mutate(fn)
	if err != nil {
		return err
	}
	result.DisplayTo(cli.out)
	return nil
}

// remoteConfig reads S3 settings from the environment. Unset fields fall
// back to the AWS default chain.
func remoteConfig() *op.RemoteConfig {
	cfg := &op.RemoteConfig{
		AccessKey: os.Getenv("TYPEDSQL_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("TYPEDSQL_S3_SECRET_KEY"),
		Region:    os.Getenv("TYPEDSQL_S3_REGION"),
		Endpoint:  os.Getenv("TYPEDSQL_S3_ENDPOINT"),
	}
	if *cfg == (op.RemoteConfig{}) {
		return nil
	}
	return cfg
}

func (cli *CLI) showLog(args string) error {
	limit := 20
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			return fmt.Errorf("usage: .log [n]")
		}
		limit = n
	}

	entries, err := op.NewDatabaseOp(cli.database).History(limit)
	if err != nil {
		return err
	}
	grid := db.NewGrid(cli.out)
	grid.Header([]string{"Id", "When", "Table", "Statement"})
	for _, entry := range entries {
		grid.Row([]string{
			entry.Id[:min(len(entry.Id), 12)],
			entry.When.Format("2006-01-02 15:04:05"),
			entry.Table,
			truncate(entry.Statement, 60),
		})
	}
	grid.Render()
	return nil
}

func (cli *CLI) snapshot(args string) error {
	if args == "" {
		return fmt.Errorf("usage: .snapshot <name>")
	}
	if err := op.NewDatabaseOp(cli.database).Snapshot(args); err != nil {
		return err
	}
	cli.printSuccess("Snapshot %s created", args)
	return nil
}

func (cli *CLI) journal() (*ps.Journal, error) {
	journal := cli.database.Journal()
	if journal == nil {
		return nil, fmt.Errorf("%w: no journal (start with -journal)", core.ErrInvalidArgument)
	}
	return journal, nil
}

func (cli *CLI) remote(args string) error {
	journal, err := cli.journal()
	if err != nil {
		return err
	}

	fields := strings.Fields(args)
	switch {
	case len(fields) == 3 && fields[0] == "add":
		if err := journal.AddRemote(fields[1], fields[2]); err != nil {
			return err
		}
		cli.printSuccess("Remote %s added", fields[1])
	case len(fields) == 2 && fields[0] == "remove":
		if err := journal.RemoveRemote(fields[1]); err != nil {
			return err
		}
		cli.printSuccess("Remote %s removed", fields[1])
	case len(fields) == 1 && fields[0] == "list":
		remotes, err := journal.ListRemotes()
		if err != nil {
			return err
		}
		grid := db.NewGrid(cli.out)
		grid.Header([]string{"Name", "URL"})
		for _, r := range remotes {
			grid.Row([]string{r.Name, r.URL})
		}
		grid.Render()
	default:
		return fmt.Errorf("usage: .remote add <name> <url> | remove <name> | list")
	}
	return nil
}

func (cli *CLI) push(args string) error {
	journal, err := cli.journal()
	if err != nil {
		return err
	}
	remoteName := strings.TrimSpace(args)
	if err := journal.Push(remoteName, remoteCredentials()); err != nil {
		return err
	}
	cli.printSuccess("Journal pushed")
	return nil
}

// remoteCredentials reads Git push credentials from the environment.
func remoteCredentials() *ps.Credentials {
	return &ps.Credentials{
		Username:   os.Getenv("TYPEDSQL_GIT_USER"),
		Token:      os.Getenv("TYPEDSQL_GIT_TOKEN"),
		KeyFile:    os.Getenv("TYPEDSQL_GIT_SSH_KEY"),
		Passphrase: os.Getenv("TYPEDSQL_GIT_SSH_PASSPHRASE"),
	}
}
