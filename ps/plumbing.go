package ps

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/goccy/go-json"
	"github.com/nickyhof/TypedSQL/core"
)

// Record appends statement to the table's journal file and commits it as
// identity. An empty table records into the shared statements file.
func (j *Journal) Record(table, statement string, identity core.Identity) (Entry, error) {
	if err := j.ensureInitialized(); err != nil {
		return Entry{}, err
	}
	statement = trimTerminator(statement)
	if statement == "" {
		return Entry{}, fmt.Errorf("%w: empty statement", core.ErrInvalidArgument)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	filePath := fileFor(table)
	existing, err := j.readFileDirect(filePath)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return Entry{}, err
	}

	data, err := appendStatement(existing, statement)
	if err != nil {
		return Entry{}, err
	}

	blobHash, err := j.createBlob(data)
	if err != nil {
		return Entry{}, err
	}

	currentTree, err := j.getCurrentTree()
	if err != nil {
		return Entry{}, err
	}

	newTree, err := j.updateTreeEntry(currentTree, filePath, blobHash)
	if err != nil {
		return Entry{}, err
	}

	return j.createCommitDirect(newTree, identity, table, statement)
}

// Contents returns the statements recorded for table in commit order.
func (j *Journal) Contents(table string) ([]string, error) {
	if err := j.ensureInitialized(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := j.readFileDirect(fileFor(table))
	if err != nil {
		return nil, err
	}

	return decodeStatements(data)
}

// Tables lists the tables with journal files, sorted by name.
func (j *Journal) Tables() ([]string, error) {
	if err := j.ensureInitialized(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	treeHash, err := j.getCurrentTree()
	if err != nil {
		return nil, err
	}
	entries, err := j.getTreeEntries(treeHash)
	if err != nil {
		return nil, err
	}

	var tables []string
	for name := range entries {
		if table, ok := strings.CutSuffix(name, journalExt); ok && table != rawStatements {
			tables = append(tables, table)
		}
	}
	sort.Strings(tables)
	return tables, nil
}

// appendStatement adds statement to a journal file as one JSON string per
// line. Encoded strings never contain a raw newline, so any statement text
// survives the round trip.
func appendStatement(data []byte, statement string) ([]byte, error) {
	encoded, err := json.Marshal(statement)
	if err != nil {
		return nil, fmt.Errorf("failed to encode statement: %w", err)
	}
	data = append(data, encoded...)
	return append(data, '\n'), nil
}

func decodeStatements(data []byte) ([]string, error) {
	var statements []string
	for line := range bytes.Lines(data) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var statement string
		if err := json.Unmarshal(line, &statement); err != nil {
			return nil, fmt.Errorf("%w: corrupt journal line: %w", core.ErrConversion, err)
		}
		statements = append(statements, statement)
	}
	return statements, nil
}

// createBlob creates a blob object directly in the object store without filesystem I/O
func (j *Journal) createBlob(data []byte) (plumbing.Hash, error) {
	obj := j.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to create blob writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write blob data: %w", err)
	}
	writer.Close()

	hash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store blob: %w", err)
	}

	return hash, nil
}

// getCurrentTree returns the tree hash from the current HEAD commit.
// Returns ZeroHash if nothing has been recorded yet.
func (j *Journal) getCurrentTree() (plumbing.Hash, error) {
	headRef, err := j.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, nil
	}

	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get head commit: %w", err)
	}

	return commit.TreeHash, nil
}

func (j *Journal) getTreeEntries(treeHash plumbing.Hash) (map[string]object.TreeEntry, error) {
	entries := make(map[string]object.TreeEntry)

	if treeHash == plumbing.ZeroHash {
		return entries, nil
	}

	tree, err := object.GetTree(j.repo.Storer, treeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	for _, entry := range tree.Entries {
		entries[entry.Name] = entry
	}

	return entries, nil
}

// updateTreeEntry sets a top-level file in the tree and returns the new tree hash.
func (j *Journal) updateTreeEntry(treeHash plumbing.Hash, name string, blobHash plumbing.Hash) (plumbing.Hash, error) {
	entries, err := j.getTreeEntries(treeHash)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	entries[name] = object.TreeEntry{
		Name: name,
		Mode: filemode.Regular,
		Hash: blobHash,
	}

	entrySlice := make([]object.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		entrySlice = append(entrySlice, entry)
	}
	// Git requires tree entries sorted by name
	sort.Slice(entrySlice, func(a, b int) bool {
		return entrySlice[a].Name < entrySlice[b].Name
	})

	tree := &object.Tree{Entries: entrySlice}

	obj := j.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}

	hash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}

	return hash, nil
}

// createCommitDirect creates a commit object directly without using worktree
func (j *Journal) createCommitDirect(treeHash plumbing.Hash, identity core.Identity, table, statement string) (Entry, error) {
	var parentHashes []plumbing.Hash
	headRef, err := j.repo.Head()
	if err == nil {
		parentHashes = []plumbing.Hash{headRef.Hash()}
	}

	sig := object.Signature{
		Name:  identity.Name,
		Email: identity.Email,
		When:  time.Now(),
	}

	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      commitMessage(table, statement),
		TreeHash:     treeHash,
		ParentHashes: parentHashes,
	}

	obj := j.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return Entry{}, fmt.Errorf("failed to encode commit: %w", err)
	}

	commitHash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to store commit: %w", err)
	}

	// Update HEAD reference
	branchName := plumbing.Master
	if headRef != nil && headRef.Name().IsBranch() {
		branchName = headRef.Name()
	} else if head, err := j.repo.Storer.Reference(plumbing.HEAD); err == nil && head.Type() == plumbing.SymbolicReference {
		branchName = head.Target()
	}

	ref := plumbing.NewHashReference(branchName, commitHash)
	if err := j.repo.Storer.SetReference(ref); err != nil {
		return Entry{}, fmt.Errorf("failed to update HEAD: %w", err)
	}

	return Entry{
		Id:        commitHash.String(),
		Table:     table,
		Statement: statement,
		When:      sig.When,
		Author:    identity.String(),
	}, nil
}

// readFileDirect reads a file directly from the Git tree (bypasses worktree filesystem)
func (j *Journal) readFileDirect(filePath string) ([]byte, error) {
	headRef, err := j.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, filePath)
	}

	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	file, err := tree.File(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, filePath)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read contents: %w", err)
	}

	return []byte(content), nil
}
