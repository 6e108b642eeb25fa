package ps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
	"github.com/go-git/go-git/v6/plumbing/transport/ssh"
	"github.com/nickyhof/TypedSQL/core"
)

// Credentials authenticate journal pushes. The remote's URL decides which
// fields apply: HTTP remotes use Username and Token, SSH remotes use
// KeyFile and Passphrase, local remotes use none.
type Credentials struct {
	Username   string
	Token      string
	KeyFile    string
	Passphrase string
}

// Remote is a repository the journal is replicated to.
type Remote struct {
	Name string
	URL  string
}

type remoteKind int

const (
	localRemote remoteKind = iota
	httpRemote
	sshRemote
)

func kindOf(url string) remoteKind {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return httpRemote
	case strings.HasPrefix(url, "ssh://"):
		return sshRemote
	case !strings.Contains(url, "://") && strings.Contains(url, "@") && strings.Contains(url, ":"):
		// scp-like git@host:path
		return sshRemote
	default:
		return localRemote
	}
}

func (c *Credentials) authFor(url string) (transport.AuthMethod, error) {
	var creds Credentials
	if c != nil {
		creds = *c
	}

	switch kindOf(url) {
	case httpRemote:
		if creds.Username == "" && creds.Token == "" {
			return nil, nil
		}
		user := creds.Username
		if user == "" {
			user = "git"
		}
		return &http.BasicAuth{Username: user, Password: creds.Token}, nil

	case sshRemote:
		keyFile := creds.KeyFile
		if keyFile == "" {
			var err error
			if keyFile, err = defaultKeyFile(); err != nil {
				return nil, err
			}
		}
		user := creds.Username
		if user == "" {
			user = "git"
		}
		return ssh.NewPublicKeysFromFile(user, keyFile, creds.Passphrase)

	default:
		return nil, nil
	}
}

func defaultKeyFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	for _, name := range []string{"id_ed25519", "id_rsa"} {
		path := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no SSH key in %s", core.ErrNotFound, filepath.Join(home, ".ssh"))
}

// AddRemote registers url as a replication target for the journal.
func (j *Journal) AddRemote(name, url string) error {
	if err := j.ensureInitialized(); err != nil {
		return err
	}
	if name == "" || url == "" {
		return fmt.Errorf("%w: remote needs a name and a URL", core.ErrInvalidArgument)
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	if errors.Is(err, git.ErrRemoteExists) {
		return fmt.Errorf("%w: remote %s already exists", core.ErrInvalidArgument, name)
	}
	if err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

// ListRemotes returns the replication targets sorted by name.
func (j *Journal) ListRemotes() ([]Remote, error) {
	if err := j.ensureInitialized(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	remotes, err := j.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	result := make([]Remote, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		remote := Remote{Name: cfg.Name}
		if len(cfg.URLs) > 0 {
			remote.URL = cfg.URLs[0]
		}
		result = append(result, remote)
	}
	slices.SortFunc(result, func(a, b Remote) int { return strings.Compare(a.Name, b.Name) })
	return result, nil
}

func (j *Journal) RemoveRemote(name string) error {
	if err := j.ensureInitialized(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.repo.DeleteRemote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("%w: remote %s", core.ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to remove remote %s: %w", name, err)
	}
	return nil
}

// Push replicates the journal branch and its snapshot tags to a remote.
// An empty name pushes to origin. A remote that is already up to date is
// not an error.
func (j *Journal) Push(name string, creds *Credentials) error {
	if err := j.ensureInitialized(); err != nil {
		return err
	}
	if name == "" {
		name = "origin"
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	head, err := j.repo.Head()
	if err != nil {
		return fmt.Errorf("%w: nothing recorded to push", core.ErrNotFound)
	}
	remote, err := j.repo.Remote(name)
	if err != nil {
		return fmt.Errorf("%w: remote %s", core.ErrNotFound, name)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return fmt.Errorf("%w: remote %s has no URL", core.ErrInvalidArgument, name)
	}

	auth, err := creds.authFor(urls[0])
	if err != nil {
		return fmt.Errorf("failed to configure auth for %s: %w", name, err)
	}

	branch := head.Name().String()
	err = j.repo.Push(&git.PushOptions{
		RemoteName: name,
		RefSpecs: []config.RefSpec{
			config.RefSpec(branch + ":" + branch),
			"refs/tags/*:refs/tags/*",
		},
		Auth: auth,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: push to %s: %w", core.ErrStore, name, err)
	}
	return nil
}
