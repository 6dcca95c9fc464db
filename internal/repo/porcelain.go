package repo

import (
	"bytes"
	"path/filepath"
)

// parsePorcelain builds the path→status map from `git status --porcelain -z`
// output. Records are NUL-separated; renames carry a second NUL-separated
// path (the rename source).
//
// Each file's status is also written to its immediate parent directory, so a
// directory reads as dirty when any direct child file is. Propagation stops
// at the parent; grandparents are untouched.
func parsePorcelain(out []byte, workdir string) map[string]Status {
	statuses := make(map[string]Status)

	records := bytes.Split(out, []byte{0})
	skipNext := false
	for _, rec := range records {
		if skipNext {
			// Rename source path, no status code of its own.
			skipNext = false
			continue
		}
		if len(rec) < 4 {
			continue
		}
		x, y := rec[0], rec[1]
		rel := string(rec[3:])
		if x == 'R' || y == 'R' {
			skipNext = true
		}

		status := codeToStatus(x, y)
		if status == StatusUnknown {
			continue
		}

		path := filepath.Join(workdir, filepath.FromSlash(rel))
		statuses[path] = status
		statuses[filepath.Dir(path)] = status
	}
	return statuses
}

// codeToStatus maps a porcelain XY code pair to a Status. Index states take
// precedence over working-tree states, conflicts over both.
func codeToStatus(x, y byte) Status {
	switch {
	case x == 'U' || y == 'U' || (x == 'D' && y == 'D') || (x == 'A' && y == 'A'):
		return StatusConflict
	case x == '?' || y == '?':
		return StatusWorkingNew
	case x == '!' || y == '!':
		return StatusIgnored
	}
	switch x {
	case 'A':
		return StatusIndexNew
	case 'M':
		return StatusIndexModified
	case 'D':
		return StatusIndexDeleted
	case 'R':
		return StatusIndexRenamed
	case 'T':
		return StatusIndexTypeChanged
	}
	switch y {
	case 'M':
		return StatusWorkingModified
	case 'D':
		return StatusWorkingDeleted
	case 'R':
		return StatusWorkingRenamed
	case 'T':
		return StatusWorkingTypeChanged
	}
	return StatusUnknown
}
