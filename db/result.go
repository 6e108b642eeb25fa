package db

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nickyhof/TypedSQL/ps"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	CommitResultType
)

type Result interface {
	Type() ResultType
	Display()
	DisplayTo(w io.Writer)
}

// QueryResult is a materialized SELECT, used for display.
type QueryResult struct {
	Columns          []string
	Data             [][]string
	Rows             []Row
	RecordsRead      int
	ExecutionTimeSec float64
	ExecutionOps     int
}

// CommitResult summarizes a mutation. Entry is set when a journal recorded it.
type CommitResult struct {
	Entry            ps.Entry
	TablesCreated    int
	TablesDeleted    int
	RecordsWritten   int
	RecordsDeleted   int
	ExecutionTimeSec float64
	ExecutionOps     int
}

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result CommitResult) Type() ResultType {
	return CommitResultType
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 0.01 {
		return fmt.Sprintf("%dms", int(secs*1000))
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	} else {
		mins := int(secs / 60)
		remainSecs := int(secs) % 60
		if remainSecs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm%ds", mins, remainSecs)
	}
}

// throughput formats ops per second as a suffix for the stats line.
func throughput(ops int, secs float64) string {
	if secs <= 0 || ops <= 0 {
		return ""
	}
	rate := float64(ops) / secs
	switch {
	case rate >= 1000000:
		return fmt.Sprintf(", %.1fM ops/s", rate/1000000)
	case rate >= 1000:
		return fmt.Sprintf(", %.1fK ops/s", rate/1000)
	default:
		return fmt.Sprintf(", %.0f ops/s", rate)
	}
}

func (result QueryResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result CommitResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result QueryResult) Display() {
	result.DisplayTo(os.Stdout)
}

func (result QueryResult) DisplayTo(w io.Writer) {
	// Show data table first if there is data
	if len(result.Data) > 0 {
		data := NewGrid(w)
		data.Header(result.Columns)
		data.Bulk(result.Data)
		data.Render()
	}

	throughputStr := throughput(result.ExecutionOps, result.ExecutionTimeSec)

	// Show compact stats line after data
	fmt.Fprintf(w, "%d rows (%s%s)\n", result.RecordsRead, result.ExecutionTime(), throughputStr)
}

func (result CommitResult) Display() {
	result.DisplayTo(os.Stdout)
}

func (result CommitResult) DisplayTo(w io.Writer) {
	var parts []string

	if result.TablesCreated > 0 {
		parts = append(parts, fmt.Sprintf("%d table(s) created", result.TablesCreated))
	}
	if result.TablesDeleted > 0 {
		parts = append(parts, fmt.Sprintf("%d table(s) deleted", result.TablesDeleted))
	}
	if result.RecordsWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) written", result.RecordsWritten))
	}
	if result.RecordsDeleted > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) deleted", result.RecordsDeleted))
	}

	throughputStr := throughput(result.ExecutionOps, result.ExecutionTimeSec)

	if len(parts) == 0 {
		fmt.Fprintf(w, "OK (%s%s)\n", result.ExecutionTime(), throughputStr)
	} else {
		fmt.Fprintf(w, "%s (%s%s)\n", strings.Join(parts, ", "), result.ExecutionTime(), throughputStr)
	}
	if result.Entry.Id != "" {
		fmt.Fprintf(w, "journal %s\n", result.Entry.Id[:min(len(result.Entry.Id), 12)])
	}
}

// Materialize runs a SELECT chain to completion and captures its rows as text.
func Materialize(q Query) (QueryResult, error) {
	start := time.Now()
	result := QueryResult{Columns: q.table.schema.Names()}

	for row, err := range q.Rows() {
		if err != nil {
			return QueryResult{}, err
		}
		result.Rows = append(result.Rows, row)
		result.Data = append(result.Data, row.tuple().Strings())
	}

	result.RecordsRead = len(result.Rows)
	result.ExecutionOps = result.RecordsRead
	result.ExecutionTimeSec = time.Since(start).Seconds()
	return result, nil
}

// Mutate times fn, which reports how many rows it changed, and folds the
// latest journal entry into the result.
func (d *Database) Mutate(fn func() (CommitResult, error)) (CommitResult, error) {
	start := time.Now()
	result, err := fn()
	if err != nil {
		return CommitResult{}, err
	}
	result.ExecutionTimeSec = time.Since(start).Seconds()
	if result.ExecutionOps == 0 {
		result.ExecutionOps = result.RecordsWritten + result.RecordsDeleted
	}
	if entry, ok := d.journal.Latest(); ok {
		result.Entry = entry
	}
	return result, nil
}
