package ps

import (
	"fmt"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/nickyhof/TypedSQL/core"
)

// Snapshot tags the journal at asof, or at the latest entry when asof is nil.
func (j *Journal) Snapshot(name string, asof *Entry) error {
	if err := j.ensureInitialized(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	var hash plumbing.Hash
	if asof != nil {
		hash = plumbing.NewHash(asof.Id)
	} else {
		headRef, err := j.repo.Head()
		if err != nil {
			return fmt.Errorf("%w: nothing recorded to snapshot", core.ErrNotFound)
		}
		hash = headRef.Hash()
	}

	if _, err := j.repo.CreateTag(name, hash, nil); err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", name, err)
	}
	return nil
}

// ContentsAt returns the statements recorded for table as of a snapshot.
// Replaying them against an empty store rebuilds the table at that point.
func (j *Journal) ContentsAt(snapshot, table string) ([]string, error) {
	if err := j.ensureInitialized(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	ref, err := j.repo.Tag(snapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot %s", core.ErrNotFound, snapshot)
	}

	commit, err := j.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	file, err := tree.File(fileFor(table))
	if err != nil {
		return nil, fmt.Errorf("%w: %s at %s", core.ErrNotFound, table, snapshot)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read contents: %w", err)
	}
	return decodeStatements([]byte(content))
}
