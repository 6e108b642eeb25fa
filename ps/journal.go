package ps

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"
)

var ErrJournalClosed = errors.New("journal not initialized")

const (
	// rawStatements holds statements that are not bound to a table.
	rawStatements = "statements"
	journalExt    = ".jsonl"
)

// Journal records mutating statements in a Git repository, one commit per
// statement. Each table's statements accumulate in <table>.jsonl,
// one JSON-encoded statement per line.
type Journal struct {
	repo *git.Repository
	mu   sync.Mutex
}

func NewMemoryJournal() (*Journal, error) {
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(memfs.New()))
	if err != nil {
		return nil, err
	}
	return &Journal{repo: repo}, nil
}

// NewFileJournal opens the journal repository in baseDir, initializing it
// when baseDir holds no repository yet.
func NewFileJournal(baseDir string) (*Journal, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	wt := osfs.New(baseDir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	if _, statErr := os.Stat(fs.Root()); statErr != nil {
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	} else {
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return nil, err
	}

	return &Journal{repo: repo}, nil
}

func (j *Journal) ensureInitialized() error {
	if j == nil || j.repo == nil {
		return ErrJournalClosed
	}
	return nil
}

func fileFor(table string) string {
	if table == "" {
		table = rawStatements
	}
	return table + journalExt
}

func trimTerminator(statement string) string {
	return strings.TrimRight(strings.TrimSpace(statement), ";")
}
