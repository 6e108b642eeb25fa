package ps

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
	"github.com/nickyhof/TypedSQL/core"
)

const tableTrailer = "\n\nTable: "

// Entry is one journaled statement and the commit that recorded it.
type Entry struct {
	Id        string
	Table     string
	Statement string
	When      time.Time
	Author    string // "Name <email>" format
}

func (entry Entry) String() string {
	return fmt.Sprintf("Entry{Id: %s, Table: %s, When: %s, Author: %s, Statement: %s}",
		entry.Id, entry.Table, entry.When, entry.Author, entry.Statement)
}

func commitMessage(table, statement string) string {
	if table == "" {
		return statement
	}
	return statement + tableTrailer + table
}

func entryOf(c *object.Commit) Entry {
	statement, table, _ := strings.Cut(strings.TrimRight(c.Message, "\n"), tableTrailer)

	author := ""
	if c.Author.Name != "" || c.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email)
	}

	return Entry{
		Id:        c.Hash.String(),
		Table:     table,
		Statement: statement,
		When:      c.Committer.When,
		Author:    author,
	}
}

// Latest returns the most recent entry, or false when nothing was recorded.
func (j *Journal) Latest() (Entry, bool) {
	if j.ensureInitialized() != nil {
		return Entry{}, false
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	headRef, err := j.repo.Head()
	if err != nil || headRef == nil {
		return Entry{}, false
	}

	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Entry{}, false
	}
	return entryOf(commit), true
}

// History walks the journal newest first. A limit of zero or less returns
// every entry.
func (j *Journal) History(limit int) ([]Entry, error) {
	if err := j.ensureInitialized(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	var entries []Entry
	if _, err := j.repo.Head(); err != nil {
		return entries, nil
	}

	cIter, err := j.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer cIter.Close()

	err = cIter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(entries) >= limit {
			return storer.ErrStop
		}
		entries = append(entries, entryOf(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}

	return entries, nil
}

// Discard removes entry from the journal. Only the latest entry can be
// discarded; HEAD moves back to its parent.
func (j *Journal) Discard(entry Entry) error {
	if err := j.ensureInitialized(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	headRef, err := j.repo.Head()
	if err != nil {
		return fmt.Errorf("%w: journal is empty", core.ErrNotFound)
	}
	if headRef.Hash().String() != entry.Id {
		return fmt.Errorf("%w: entry %s is not the latest", core.ErrInvalidArgument, entry.Id)
	}

	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return fmt.Errorf("failed to get commit: %w", err)
	}
	if commit.NumParents() == 0 {
		return j.repo.Storer.RemoveReference(headRef.Name())
	}
	return j.repo.Storer.SetReference(plumbing.NewHashReference(headRef.Name(), commit.ParentHashes[0]))
}
