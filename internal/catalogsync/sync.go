// Package catalogsync clones or refreshes the content catalog from a Git
// remote. It is operator tooling invoked by `kitref sync`; the running
// MCP server never touches it and stays read-only.
package catalogsync

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"kitref/internal/logging"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
)

// DirectoryStatus classifies the local catalog directory before a sync.
type DirectoryStatus int

const (
	// DirectoryStatusEmpty means the directory is missing or empty, safe to clone into.
	DirectoryStatusEmpty DirectoryStatus = iota
	// DirectoryStatusSameRepo means the directory already holds a clone of the configured remote.
	DirectoryStatusSameRepo
	// DirectoryStatusDifferentRepo means the directory holds a clone of some other remote.
	DirectoryStatusDifferentRepo
	// DirectoryStatusConflict means the directory holds non-git content.
	DirectoryStatusConflict
	// DirectoryStatusError means the directory could not be inspected.
	DirectoryStatusError
)

func (ds DirectoryStatus) String() string {
	switch ds {
	case DirectoryStatusEmpty:
		return "empty or missing"
	case DirectoryStatusSameRepo:
		return "same repository"
	case DirectoryStatusDifferentRepo:
		return "different repository"
	case DirectoryStatusConflict:
		return "non-git content"
	case DirectoryStatusError:
		return "inspection error"
	default:
		return "unknown"
	}
}

// Source describes the catalog remote and where it lands locally.
type Source struct {
	RemoteURL string // HTTPS or SSH form; SSH is normalized to HTTPS
	Branch    string // empty means the remote's default branch
	Path      string // local catalog directory
}

// NewSource creates a catalog sync source. URL validation happens in Sync.
func NewSource(remoteURL, branch, localPath string) Source {
	return Source{RemoteURL: remoteURL, Branch: branch, Path: localPath}
}

// Sync clones the catalog when the local directory is empty, or fetches
// and fast-forwards an existing clone. Authentication is public-first: a
// stored PAT is only tried after an anonymous attempt fails with an auth
// error. Conflicting directory content is never overwritten.
func (s Source) Sync(logger *logging.AppLogger) error {
	if strings.TrimSpace(s.RemoteURL) == "" {
		return fmt.Errorf("no catalog remote configured - set catalog_repo in the config file")
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("catalog directory cannot be empty")
	}

	remote, err := s.normalizedRemote()
	if err != nil {
		return fmt.Errorf("invalid catalog remote: %w", err)
	}

	local, err := filepath.Abs(filepath.Clean(s.Path))
	if err != nil {
		return fmt.Errorf("cannot resolve catalog directory: %w", err)
	}

	status, err := inspectDirectory(local, remote)
	switch status {
	case DirectoryStatusEmpty:
		return s.withAuthFallback(logger, func(auth *http.BasicAuth) error {
			return s.clone(local, remote, auth, logger)
		})
	case DirectoryStatusSameRepo:
		return s.withAuthFallback(logger, func(auth *http.BasicAuth) error {
			return s.fetch(local, auth, logger)
		})
	case DirectoryStatusDifferentRepo, DirectoryStatusConflict:
		return fmt.Errorf("catalog directory %s holds %s - move it aside or point content_dir elsewhere", local, status)
	default:
		return fmt.Errorf("cannot inspect catalog directory: %w", err)
	}
}

// withAuthFallback runs op anonymously first and retries with the stored
// PAT only on an authentication failure.
func (s Source) withAuthFallback(logger *logging.AppLogger, op func(*http.BasicAuth) error) error {
	err := op(nil)
	if err == nil || !isAuthError(err) {
		return err
	}

	logger.Debug("Anonymous access failed, retrying with stored token")

	cm := NewCredentialManager()
	if !cm.HasToken() {
		return fmt.Errorf("catalog requires authentication - store a token with `kitref auth set`")
	}
	token, tokenErr := cm.GetToken()
	if tokenErr != nil {
		return fmt.Errorf("catalog authentication failed: %w", tokenErr)
	}

	// Git-over-HTTPS PAT convention: token as password, fixed username.
	return op(&http.BasicAuth{Username: "token", Password: token})
}

// clone performs a shallow single-branch clone into local.
func (s Source) clone(local, remote string, auth *http.BasicAuth, logger *logging.AppLogger) error {
	logger.Info("Cloning catalog", "remote", remote, "path", local)

	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return fmt.Errorf("failed to create catalog parent directory: %w", err)
	}

	opts := &git.CloneOptions{
		URL:   remote,
		Depth: 1,
		Auth:  auth,
	}
	if s.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Branch)
		opts.SingleBranch = true
	}

	if _, err := git.PlainClone(local, opts); err != nil {
		return translateGitError("clone", err)
	}

	logger.Info("Catalog cloned", "path", local)
	return nil
}

// fetch updates an existing clone and hard-resets to the remote head. A
// dirty working tree is left untouched: the catalog is a cache of the
// remote, but local edits are never destroyed silently.
func (s Source) fetch(local string, auth *http.BasicAuth, logger *logging.AppLogger) error {
	logger.Info("Refreshing catalog", "path", local)

	repo, err := git.PlainOpen(local)
	if err != nil {
		return fmt.Errorf("failed to open catalog repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get working tree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("failed to read working tree status: %w", err)
	}
	if !status.IsClean() {
		logger.Warn("Catalog has local modifications, skipping refresh")
		return nil
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return fmt.Errorf("failed to get origin remote: %w", err)
	}

	err = remote.Fetch(&git.FetchOptions{Auth: auth, Force: true})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return translateGitError("fetch", err)
	}
	if err == git.NoErrAlreadyUpToDate {
		logger.Info("Catalog already up to date")
		return nil
	}

	// Fast-forward the working tree to the fetched head.
	branch := s.Branch
	if branch == "" {
		head, err := repo.Head()
		if err != nil {
			return fmt.Errorf("failed to resolve catalog head: %w", err)
		}
		branch = head.Name().Short()
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return fmt.Errorf("branch %q does not exist on the catalog remote", branch)
	}

	if err := worktree.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return fmt.Errorf("failed to update catalog working tree: %w", err)
	}

	logger.Info("Catalog refreshed", "branch", branch)
	return nil
}

// inspectDirectory decides whether local is safe to clone into, holds
// the expected clone, or needs manual intervention.
func inspectDirectory(local, expectedRemote string) (DirectoryStatus, error) {
	info, err := os.Stat(local)
	if os.IsNotExist(err) {
		return DirectoryStatusEmpty, nil
	}
	if err != nil {
		return DirectoryStatusError, err
	}
	if !info.IsDir() {
		return DirectoryStatusError, fmt.Errorf("path exists but is not a directory: %s", local)
	}

	dirents, err := os.ReadDir(local)
	if err != nil {
		return DirectoryStatusError, err
	}
	if len(dirents) == 0 {
		return DirectoryStatusEmpty, nil
	}

	repo, err := git.PlainOpen(local)
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			return DirectoryStatusConflict, nil
		}
		return DirectoryStatusError, err
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return DirectoryStatusConflict, nil
	}
	cfg := remote.Config()
	if cfg == nil || len(cfg.URLs) == 0 {
		return DirectoryStatusConflict, nil
	}

	if normalizeGitURL(cfg.URLs[0]) == normalizeGitURL(expectedRemote) {
		return DirectoryStatusSameRepo, nil
	}
	return DirectoryStatusDifferentRepo, nil
}

// GitURLInfo holds the parsed components of a Git repository URL.
type GitURLInfo struct {
	Host  string
	Owner string
	Repo  string
}

var sshURLPattern = regexp.MustCompile(`^git@([^:]+):([^/]+)/(.+?)(?:\.git)?$`)

// ParseGitURL parses SSH (git@host:owner/repo.git) and HTTPS
// (https://host/owner/repo.git) remote URLs.
func ParseGitURL(gitURL string) (GitURLInfo, error) {
	gitURL = strings.TrimSpace(gitURL)

	if m := sshURLPattern.FindStringSubmatch(gitURL); m != nil {
		return GitURLInfo{Host: m[1], Owner: m[2], Repo: m[3]}, nil
	}

	parsed, err := url.Parse(gitURL)
	if err != nil {
		return GitURLInfo{}, fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Host == "" {
		return GitURLInfo{}, fmt.Errorf("URL missing host")
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return GitURLInfo{}, fmt.Errorf("URL path should be owner/repo, got %q", parsed.Path)
	}

	return GitURLInfo{
		Host:  parsed.Host,
		Owner: parts[0],
		Repo:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}

// normalizedRemote rebuilds the configured remote as a canonical HTTPS
// URL, converting SSH forms.
func (s Source) normalizedRemote() (string, error) {
	info, err := ParseGitURL(s.RemoteURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s/%s/%s.git", info.Host, info.Owner, info.Repo), nil
}

// normalizeGitURL reduces SSH and HTTPS forms of the same repository to
// one comparable string.
func normalizeGitURL(gitURL string) string {
	gitURL = strings.TrimSuffix(strings.TrimSpace(gitURL), ".git")

	if m := regexp.MustCompile(`^git@([^:]+):(.+)$`).FindStringSubmatch(gitURL); m != nil {
		return m[1] + "/" + m[2]
	}
	gitURL = strings.TrimPrefix(gitURL, "https://")
	gitURL = strings.TrimPrefix(gitURL, "http://")
	return gitURL
}

// isAuthError reports whether a git transport error looks like an
// authentication failure worth retrying with credentials.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"authentication required", "401", "unauthorized", "403", "forbidden"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// translateGitError keeps common failures actionable without burying the
// operator in transport internals.
func translateGitError(op string, err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case isAuthError(err):
		return fmt.Errorf("catalog %s rejected - the stored token may be missing a scope or expired, update it with `kitref auth set`", op)
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return fmt.Errorf("catalog repository not found - check catalog_repo in the config file")
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection") || strings.Contains(msg, "timeout"):
		return fmt.Errorf("network error during catalog %s: %w", op, err)
	default:
		return fmt.Errorf("catalog %s failed: %w", op, err)
	}
}
