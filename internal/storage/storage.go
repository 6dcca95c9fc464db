// Package storage implements the directory-based project store: discovery
// and batch opening of records by lifecycle stage, version-status
// annotation, and lifecycle transitions between working and archive.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/farbraum/projektor/internal/repo"
	"github.com/farbraum/projektor/internal/slug"
)

var (
	// ErrProjectDoesNotExist means a directory held no record file.
	ErrProjectDoesNotExist = errors.New("storage: project file does not exist")
	// ErrNoSuchTemplate means the templates directory held no file with
	// the requested stem.
	ErrNoSuchTemplate = errors.New("storage: no such template")
	// ErrProjectExists means a create or move would overwrite a record.
	ErrProjectExists = errors.New("storage: project already exists")
)

// VCSFunc builds the version-control view of a store root. Swapped out in
// tests for a double.
type VCSFunc func(root string, logger *slog.Logger) repo.VersionControl

// Store scans a directory tree organized by lifecycle stage and opens the
// records found there. It holds no mutable state between calls: every
// OpenAll performs an independent scan and an independent status-cache
// build, so concurrent calls are safe and each sees its own snapshot.
type Store[T Storable] struct {
	root         string // absolute path to the store root
	workingDir   string
	archiveDir   string
	templatesDir string
	ext          string // record file extension, without dot
	open         OpenFunc[T]
	openVCS      VCSFunc
	logger       *slog.Logger
}

// Option configures a Store.
type Option[T Storable] func(*Store[T])

// WithVersionControl replaces the version-control factory.
func WithVersionControl[T Storable](f VCSFunc) Option[T] {
	return func(s *Store[T]) { s.openVCS = f }
}

// WithDirNames overrides the working/archive/templates directory names.
func WithDirNames[T Storable](working, archive, templates string) Option[T] {
	return func(s *Store[T]) {
		s.workingDir = filepath.Join(s.root, working)
		s.archiveDir = filepath.Join(s.root, archive)
		s.templatesDir = filepath.Join(s.root, templates)
	}
}

// NewStore creates a store rooted at root. The root directory must exist;
// stage subdirectories are created on demand by EnsureDirs.
func NewStore[T Storable](root, ext string, open OpenFunc[T], logger *slog.Logger, opts ...Option[T]) (*Store[T], error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}

	s := &Store[T]{
		root:         abs,
		workingDir:   filepath.Join(abs, "working"),
		archiveDir:   filepath.Join(abs, "archive"),
		templatesDir: filepath.Join(abs, "templates"),
		ext:          strings.TrimPrefix(ext, "."),
		open:         open,
		openVCS:      repo.Open,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute store root.
func (s *Store[T]) Root() string { return s.root }

// WorkingDir returns the absolute working directory.
func (s *Store[T]) WorkingDir() string { return s.workingDir }

// ArchiveDir returns the absolute archive directory for a year.
func (s *Store[T]) ArchiveDir(year int) string {
	return filepath.Join(s.archiveDir, strconv.Itoa(year))
}

// TemplatesDir returns the absolute templates directory.
func (s *Store[T]) TemplatesDir() string { return s.templatesDir }

// EnsureDirs creates the stage directories if missing.
func (s *Store[T]) EnsureDirs() error {
	for _, dir := range []string{s.workingDir, s.archiveDir, s.templatesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: mkdir %s: %w", dir, err)
		}
	}
	return nil
}

// ArchiveYears lists the archive years present on disk, ascending.
func (s *Store[T]) ArchiveYears() []int {
	entries, err := os.ReadDir(s.archiveDir)
	if err != nil {
		return nil
	}
	var years []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if y, err := strconv.Atoi(e.Name()); err == nil {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// OpenAll opens every record at the given location and annotates each with
// its version status. A fresh status cache is built per call. Directories
// whose record fails to open are logged and skipped, never fatal to the
// batch. A missing archive year yields an empty result.
func (s *Store[T]) OpenAll(loc Location) ([]T, error) {
	var projects []T
	switch loc.kind {
	case kindWorking:
		projects = s.openProjectDirs(s.workingDir)
	case kindArchive:
		projects = s.openProjectDirs(s.ArchiveDir(loc.year))
	case kindAll:
		for _, year := range s.ArchiveYears() {
			projects = append(projects, s.openProjectDirs(s.ArchiveDir(year))...)
		}
		projects = append(projects, s.openProjectDirs(s.workingDir)...)
	default:
		return nil, fmt.Errorf("storage: cannot open records at %s", loc)
	}

	vcs := s.openVCS(s.root, s.logger)
	for _, p := range projects {
		p.SetStatus(vcs.StatusOf(p.Dir()))
	}
	return projects, nil
}

// openDir opens the record in dir, warning about any ignored extra record
// files beyond the first match.
func (s *Store[T]) openDir(dir string) (T, error) {
	if _, extra, err := FindRecordFile(dir, s.ext); err == nil && len(extra) > 0 {
		s.logger.Warn("storage: ignoring extra record files",
			slog.String("dir", dir),
			slog.String("ignored", strings.Join(extra, ", ")))
	}
	return s.open(dir)
}

// openProjectDirs opens every immediate subdirectory of base as a record.
func (s *Store[T]) openProjectDirs(base string) []T {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}
	var out []T
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(base, e.Name())
		p, err := s.openDir(dir)
		if err != nil {
			s.logger.Warn("storage: skipping unreadable project",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, p)
	}
	return out
}

// OpenWorking opens the working record whose directory matches name.
func (s *Store[T]) OpenWorking(name string) (T, error) {
	return s.openDir(filepath.Join(s.workingDir, slug.Make(name)))
}

// FindRecordFile locates the record file in dir: the lexicographically
// first immediate entry with the given extension. Additional matches are
// legal but ambiguous; callers may log them via the third return value.
func FindRecordFile(dir, ext string) (path string, extra []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, fmt.Errorf("storage: read dir %s: %w", dir, err)
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.TrimPrefix(filepath.Ext(e.Name()), ".") == strings.TrimPrefix(ext, ".") {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}
	if len(matches) == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrProjectDoesNotExist, dir)
	}
	sort.Strings(matches)
	return matches[0], matches[1:], nil
}

// Save relocates a freshly created record into the working directory,
// writing its backing file to working/<slug>/<slug>.<ext>.
func (s *Store[T]) Save(p T, name string) error {
	dirName := slug.Make(name)
	dir := filepath.Join(s.workingDir, dirName)
	target := filepath.Join(dir, dirName+"."+s.ext)

	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%w: %s", ErrProjectExists, target)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	// The source may live on another filesystem (a temp dir), so copy
	// rather than rename.
	data, err := os.ReadFile(p.File())
	if err != nil {
		return fmt.Errorf("storage: read source: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("storage: write record: %w", err)
	}
	p.SetFile(target)
	return nil
}

// ArchiveProject moves a record's directory from working into the archive
// of the given year. The move is a single rename: it either succeeds
// atomically or fails leaving the original in place.
func (s *Store[T]) ArchiveProject(p T, year int) (string, error) {
	yearDir := s.ArchiveDir(year)
	if err := os.MkdirAll(yearDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir archive: %w", err)
	}

	src := p.Dir()
	dst := filepath.Join(yearDir, filepath.Base(src))
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("%w: %s", ErrProjectExists, dst)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("storage: archive move: %w", err)
	}
	p.SetFile(filepath.Join(dst, filepath.Base(p.File())))
	return dst, nil
}

// UnarchiveProject moves an archived record's directory back into working.
func (s *Store[T]) UnarchiveProject(p T) (string, error) {
	src := p.Dir()
	dst := filepath.Join(s.workingDir, filepath.Base(src))
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("%w: %s", ErrProjectExists, dst)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("storage: unarchive move: %w", err)
	}
	p.SetFile(filepath.Join(dst, filepath.Base(p.File())))
	return dst, nil
}

// Templates lists the template names (file stems) available in the store.
func (s *Store[T]) Templates() ([]string, error) {
	entries, err := os.ReadDir(s.templatesDir)
	if err != nil {
		return nil, fmt.Errorf("storage: read templates: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// TemplatePath resolves a template name to its file path.
func (s *Store[T]) TemplatePath(name string) (string, error) {
	entries, err := os.ReadDir(s.templatesDir)
	if err != nil {
		return "", fmt.Errorf("storage: read templates: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())) == name {
			return filepath.Join(s.templatesDir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoSuchTemplate, name)
}

// SortByIndex orders records by their sort key. Records without a key keep
// their relative position at the end.
func SortByIndex[T Storable](projects []T) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i].Index(), projects[j].Index()
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})
}
