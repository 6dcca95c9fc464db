package storage

import "strconv"

type locationKind int

const (
	kindWorking locationKind = iota
	kindArchive
	kindTemplates
	kindAll
)

// Location classifies a record's storage stage. Working, Archive(year), and
// Templates each map to one physical directory; All is a logical union of
// Working and every archive year, synthesized at query time.
type Location struct {
	kind locationKind
	year int
}

// Working is the location of active, un-archived records.
var Working = Location{kind: kindWorking}

// Templates is the location of document skeletons.
var Templates = Location{kind: kindTemplates}

// All is the read-only union of Working and every archive year.
var All = Location{kind: kindAll}

// Archive addresses the archive directory of a specific year.
func Archive(year int) Location {
	return Location{kind: kindArchive, year: year}
}

func (l Location) String() string {
	switch l.kind {
	case kindWorking:
		return "working"
	case kindArchive:
		return "archive " + strconv.Itoa(l.year)
	case kindTemplates:
		return "templates"
	default:
		return "all"
	}
}
