package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/nickyhof/TypedSQL"
	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/db"
	"github.com/nickyhof/TypedSQL/ps"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the CLI state
type CLI struct {
	database    *db.Database
	out         io.Writer
	history     []string
	historyFile string
	jsonOutput  bool
}

func main() {
	driver := flag.String("driver", ps.DefaultDriver, "database/sql driver name")
	dsn := flag.String("dsn", "", "Data source name (empty for an in-memory DuckDB)")
	schemaFile := flag.String("schema", "", "JSON file describing the tables to bind")
	create := flag.Bool("create", false, "Create bound tables that do not exist yet")
	journalDir := flag.String("journal", "", "Journal directory, or \"mem\" for an in-memory journal")
	sqlFile := flag.String("sqlFile", "", "SQL file to execute (non-interactive)")
	userName := flag.String("name", "TypedSQL", "User name for journal commits")
	userEmail := flag.String("email", "cli@typedsql.local", "User email for journal commits")
	jsonOutput := flag.Bool("json", false, "Print query results as JSON")
	verbose := flag.Bool("verbose", false, "Log every statement to stderr")
	flag.Parse()

	printBanner()

	var opts []db.Option
	if *verbose {
		opts = append(opts, db.WithLogger(log.New(os.Stderr, "typedsql: ", log.LstdFlags)))
	}

	journal, err := openJournal(*journalDir)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	if journal != nil {
		opts = append(opts, db.WithJournal(journal, core.Identity{
			Name:  *userName,
			Email: *userEmail,
		}))
	}

	instance, err := TypedSQL.Open(*driver, *dsn, opts...)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	defer instance.Close()

	cli := &CLI{
		database:    instance.Database,
		out:         os.Stdout,
		history:     make([]string, 0),
		historyFile: getHistoryPath(),
		jsonOutput:  *jsonOutput,
	}

	if *schemaFile != "" {
		n, err := cli.loadSchema(*schemaFile, *create)
		if err != nil {
			fmt.Printf("%sError loading schema: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		fmt.Printf("%sBound %d tables from %s%s\n", SuccessColor, n, *schemaFile, ResetColor)
	}

	// Execute SQL file if provided
	if *sqlFile != "" {
		if err := cli.importFile(*sqlFile); err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	cli.run()
}

func openJournal(dir string) (*ps.Journal, error) {
	switch dir {
	case "":
		return nil, nil
	case "mem":
		fmt.Printf("%sUsing memory journal%s\n", SuccessColor, ResetColor)
		return ps.NewMemoryJournal()
	default:
		fmt.Printf("%sUsing file journal: %s%s\n", SuccessColor, dir, ResetColor)
		return ps.NewFileJournal(dir)
	}
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("TypedSQL v%s", Version)
	padding := max(bannerWidth-len(versionLine)-2, 0)
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║   Typed tables over any SQL store     ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

func (cli *CLI) run() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cli.getPrompt(false),
		HistoryFile:     cli.historyFile,
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		fmt.Fprintf(cli.out, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		return
	}
	defer rl.Close()

	var multiLineBuffer strings.Builder

	for {
		rl.SetPrompt(cli.getPrompt(multiLineBuffer.Len() > 0))

		input, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			continue
		}
		if err != nil {
			fmt.Fprintf(cli.out, "\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			return
		}

		// Handle empty input
		if strings.TrimSpace(input) == "" {
			continue
		}

		// Check for special commands (only when not in multi-line mode)
		if multiLineBuffer.Len() == 0 && strings.HasPrefix(strings.TrimSpace(input), ".") {
			cli.addToHistory(strings.TrimSpace(input))
			if !cli.handleCommand(input) {
				return
			}
			continue
		}

		// Multi-line support: accumulate until we see a semicolon
		multiLineBuffer.WriteString(input)

		trimmed := strings.TrimSpace(multiLineBuffer.String())
		if !strings.HasSuffix(trimmed, ";") {
			multiLineBuffer.WriteString(" ")
			continue
		}

		statement := strings.TrimSuffix(trimmed, ";")
		multiLineBuffer.Reset()

		if strings.TrimSpace(statement) == "" {
			continue
		}

		cli.addToHistory(statement + ";")
		cli.executeRaw(statement)
	}
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return fmt.Sprintf("%s   ...>%s ", PromptColor, ResetColor)
	}

	journalPart := ""
	if cli.database != nil && cli.database.Journal() != nil {
		journalPart = " (journal)"
	}

	return fmt.Sprintf("%stypedsql%s>%s ", PromptColor, journalPart, ResetColor)
}

// executeRaw runs a statement the builder does not model.
func (cli *CLI) executeRaw(statement string) {
	result, err := cli.database.Mutate(func() (db.CommitResult, error) {
		n, err := cli.database.Execute(statement)
		return db.CommitResult{ExecutionOps: int(max(n, 1))}, err
	})
	if err != nil {
		cli.printError(err)
		return
	}
	result.DisplayTo(cli.out)
}

func (cli *CLI) printError(err error) {
	fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
}

func (cli *CLI) printSuccess(format string, args ...any) {
	fmt.Fprintf(cli.out, "%s✓ %s%s\n", SuccessColor, fmt.Sprintf(format, args...), ResetColor)
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	// Limit history size
	if len(cli.history) > 1000 {
		cli.history = cli.history[len(cli.history)-1000:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}

	start := max(len(cli.history)-20, 0)
	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".typedsql_history")
}

// importFile reads and executes SQL statements from a file
func (cli *CLI) importFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	var content strings.Builder
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		content.WriteString(scanner.Text())
		content.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	successCount := 0
	errorCount := 0

	for i, stmt := range splitStatements(content.String()) {
		n, err := cli.database.Execute(stmt)
		if err != nil {
			fmt.Fprintf(cli.out, "%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(stmt, 50), ResetColor)
			fmt.Fprintf(cli.out, "      Error: %v\n", err)
			errorCount++
			continue
		}
		successCount++
		fmt.Fprintf(cli.out, "%s[%d] ✓ %s (%d affected)%s\n", SuccessColor, i+1, truncate(stmt, 50), n, ResetColor)
	}

	fmt.Fprintf(cli.out, "\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)

	return nil
}

// splitStatements splits SQL content into individual statements. Text
// literals are single-quoted with '' as the escape.
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if ch == '\'' {
			inString = !inString
		}

		// Handle comments
		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}

		// Statement separator
		if !inString && ch == ';' {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	// Handle last statement without semicolon
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
