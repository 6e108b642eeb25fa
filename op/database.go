package op

import (
	"fmt"

	"github.com/nickyhof/TypedSQL/core"
	"github.com/nickyhof/TypedSQL/db"
	"github.com/nickyhof/TypedSQL/ps"
)

// DatabaseOp wraps database-wide operations, most of which need a journal.
type DatabaseOp struct {
	Database *db.Database
}

func NewDatabaseOp(database *db.Database) *DatabaseOp {
	return &DatabaseOp{Database: database}
}

func (op *DatabaseOp) TableNames() []string {
	return op.Database.TableNames()
}

// MissingTables lists the bound tables the store does not hold.
func (op *DatabaseOp) MissingTables() ([]string, error) {
	var missing []string
	for _, name := range op.Database.TableNames() {
		t, err := op.Database.Table(name)
		if err != nil {
			return nil, err
		}
		exists, err := t.Exists()
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (op *DatabaseOp) journal() (*ps.Journal, error) {
	j := op.Database.Journal()
	if j == nil {
		return nil, fmt.Errorf("%w: database has no journal", core.ErrInvalidArgument)
	}
	return j, nil
}

func (op *DatabaseOp) History(limit int) ([]ps.Entry, error) {
	j, err := op.journal()
	if err != nil {
		return nil, err
	}
	return j.History(limit)
}

// Snapshot tags the journal at its latest entry.
func (op *DatabaseOp) Snapshot(name string) error {
	j, err := op.journal()
	if err != nil {
		return err
	}
	return j.Snapshot(name, nil)
}

// Replay runs the statements journaled for table up to snapshot against
// target, rebuilding the table there. Target is usually a fresh store.
func (op *DatabaseOp) Replay(snapshot, table string, target *db.Database) (int, error) {
	j, err := op.journal()
	if err != nil {
		return 0, err
	}
	statements, err := j.ContentsAt(snapshot, table)
	if err != nil {
		return 0, err
	}
	for i, statement := range statements {
		if _, err := target.Execute(statement); err != nil {
			return i, err
		}
	}
	return len(statements), nil
}
