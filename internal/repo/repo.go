// Package repo annotates store paths with their git status and shells out
// to git for mutating commands.
//
// The status cache is built in one eager pass when the repository is opened;
// it is never updated incrementally. Callers wanting fresh state open the
// repository again. When git is unavailable, the tree is not a repository,
// or the integration is disabled, Open degrades to a null implementation
// that answers StatusUnknown for every path, never an error.
package repo

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// Status classifies a path's state in the working tree.
type Status string

const (
	StatusIndexNew           Status = "index-new"
	StatusIndexModified      Status = "index-modified"
	StatusIndexDeleted       Status = "index-deleted"
	StatusIndexRenamed       Status = "index-renamed"
	StatusIndexTypeChanged   Status = "index-type-changed"
	StatusWorkingNew         Status = "working-new"
	StatusWorkingModified    Status = "working-modified"
	StatusWorkingDeleted     Status = "working-deleted"
	StatusWorkingTypeChanged Status = "working-type-changed"
	StatusWorkingRenamed     Status = "working-renamed"
	StatusIgnored            Status = "ignored"
	StatusConflict           Status = "conflict"
	StatusCurrent            Status = "current"
	StatusUnknown            Status = "unknown"
)

// Short returns the single-character marker used in listings.
func (s Status) Short() string {
	switch s {
	case StatusConflict:
		return "X"
	case StatusCurrent, StatusWorkingNew, StatusIndexNew:
		return "+"
	case StatusWorkingModified:
		return "~"
	case StatusIndexModified:
		return "✓"
	case StatusUnknown:
		return ""
	default:
		return string(s)
	}
}

// VersionControl is the capability the store needs: point status lookups
// over a pre-built cache, and fire-and-forget command execution. A test
// double can simulate arbitrary repository states.
type VersionControl interface {
	// StatusOf returns the cached status for an absolute path,
	// StatusUnknown for paths absent from the cache.
	StatusOf(path string) Status
	// Run executes a git subcommand against the working tree and returns
	// the process exit code. The in-memory cache is not updated.
	Run(command string, args ...string) int
}

// Repository wraps a git working tree.
type Repository struct {
	workdir  string
	gitdir   string
	statuses map[string]Status
	logger   *slog.Logger
}

// Open builds a status cache for the working tree rooted at workdir.
// Every failure mode degrades to a null VersionControl.
func Open(workdir string, logger *slog.Logger) VersionControl {
	gitdir := filepath.Join(workdir, ".git")
	if _, err := os.Stat(gitdir); err != nil {
		logger.Debug("repo: not a repository", slog.String("workdir", workdir))
		return nullRepo{}
	}

	r := &Repository{
		workdir: workdir,
		gitdir:  gitdir,
		logger:  logger,
	}

	out, err := exec.Command("git",
		"--work-tree", workdir, "--git-dir", gitdir,
		"status", "--porcelain", "-z", "--untracked-files=all").Output()
	if err != nil {
		logger.Warn("repo: git status failed", slog.String("error", err.Error()))
		return nullRepo{}
	}
	r.statuses = parsePorcelain(out, workdir)
	return r
}

// StatusOf implements VersionControl.
func (r *Repository) StatusOf(path string) Status {
	if s, ok := r.statuses[filepath.Clean(path)]; ok {
		return s
	}
	return StatusUnknown
}

// Run implements VersionControl. Output goes straight to the terminal.
func (r *Repository) Run(command string, args ...string) int {
	argv := append([]string{
		"--work-tree", r.workdir, "--git-dir", r.gitdir, command,
	}, args...)
	r.logger.Debug("repo: git", slog.Any("args", argv))

	cmd := exec.Command("git", argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		r.logger.Error("repo: git failed to start", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// Add stages the given paths.
func (r *Repository) Add(paths ...string) int { return r.Run("add", paths...) }

// Commit opens the configured git editor for a commit message.
func (r *Repository) Commit() int { return r.Run("commit") }

// ShowStatus prints `git status` for the working tree.
func (r *Repository) ShowStatus() int { return r.Run("status") }

// Push pushes to origin master.
func (r *Repository) Push() int { return r.Run("push", "origin", "master") }

// Pull pulls from origin master.
func (r *Repository) Pull() int { return r.Run("pull", "origin", "master") }

// Diff prints the working tree diff.
func (r *Repository) Diff() int { return r.Run("diff") }

// Remote lists the configured remotes.
func (r *Repository) Remote() int { return r.Run("remote") }

// Log prints the commit log.
func (r *Repository) Log() int { return r.Run("log") }

// Disabled is a VersionControl for stores that opt out of git entirely.
// It answers StatusUnknown for every path and refuses commands.
var Disabled VersionControl = nullRepo{}

// nullRepo answers StatusUnknown for everything and refuses commands.
type nullRepo struct{}

func (nullRepo) StatusOf(string) Status    { return StatusUnknown }
func (nullRepo) Run(string, ...string) int { return 1 }
