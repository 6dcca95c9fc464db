package storage

import "github.com/farbraum/projektor/internal/repo"

// Storable is the capability set a record type needs to live in a Store.
// Construction (from template, from directory, from file) is supplied to the
// store separately as an OpenFunc, since Go interfaces cannot express
// constructors.
type Storable interface {
	// File is the absolute path of the backing record file.
	File() string
	// SetFile points the record at a new backing file after relocation.
	SetFile(path string)
	// Dir is the directory containing the record file.
	Dir() string

	// ShortDesc is a one-line display name.
	ShortDesc() string
	// Index is a sortable key. Empty means the record cannot be sorted.
	Index() string

	// MatchesFilter reports whether the named field's value contains val,
	// case-insensitively.
	MatchesFilter(key, val string) bool
	// MatchesSearch reports whether term occurs in any salient field.
	MatchesSearch(term string) bool

	// ReadyForArchive reports whether the record may leave the working
	// directory.
	ReadyForArchive() bool

	// Status returns the cached version status, StatusUnknown until set.
	Status() repo.Status
	// SetStatus caches the version status for this record.
	SetStatus(repo.Status)
}

// OpenFunc opens the record contained in dir.
type OpenFunc[T Storable] func(dir string) (T, error)
