// Package project implements the record entity: one business document plus
// its parsed structure, file location, and cached version status.
//
// A Project is never constructed around a parse failure; construction
// errors out instead. An incomplete document, on the other hand, is a
// first-class object: readiness checks return reports, not errors.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/farbraum/projektor/internal/repo"
	"github.com/farbraum/projektor/internal/storage"
	"github.com/farbraum/projektor/internal/templater"
	"github.com/farbraum/projektor/internal/yamlpath"
)

// Version is stamped into documents created from templates.
const Version = "0.3.0"

// FileExtension is the record file extension, without dot.
const FileExtension = "yml"

// Project is an opened record. Raw text and parsed tree always correspond
// to the same successfully parsed document.
type Project struct {
	filePath string
	tempDir  string // owned until the record is relocated
	status   repo.Status
	content  string
	tree     map[string]any
}

var _ storage.Storable = (*Project)(nil)

// Open scans dir's immediate entries for a record file and opens the first
// match (lexicographic order). Zero matches is ErrProjectDoesNotExist.
func Open(dir string) (*Project, error) {
	path, _, err := storage.FindRecordFile(dir, FileExtension)
	if err != nil {
		return nil, err
	}
	return OpenFile(path)
}

// OpenFile reads and parses a record file. Parse failure is a hard error
// carrying a line-numbered reproduction of the document.
func OpenFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}
	content := string(data)
	tree, err := yamlpath.Parse(content)
	if err != nil {
		return nil, parseDiagnostic(content, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("project: resolve %s: %w", path, err)
	}
	return &Project{
		filePath: abs,
		status:   repo.StatusUnknown,
		content:  content,
		tree:     tree,
	}, nil
}

// parseDiagnostic wraps a parse error with the offending text reproduced
// under 1-based line numbers, so the operator can locate the bad line.
func parseDiagnostic(content string, err error) error {
	var b strings.Builder
	for i, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, line)
	}
	return fmt.Errorf("project: document is not valid yaml:\n%s\n%w", b.String(), err)
}

// File returns the absolute path of the backing file.
func (p *Project) File() string { return p.filePath }

// Dir returns the directory containing the backing file.
func (p *Project) Dir() string { return filepath.Dir(p.filePath) }

// SetFile points the record at a new backing file. Relocating out of the
// temporary directory releases it.
func (p *Project) SetFile(path string) {
	p.filePath = path
	if p.tempDir != "" && !strings.HasPrefix(path, p.tempDir+string(os.PathSeparator)) {
		p.Cleanup()
	}
}

// Cleanup destroys the temporary backing directory, if still owned.
// Safe to call multiple times and after relocation.
func (p *Project) Cleanup() {
	if p.tempDir != "" {
		_ = os.RemoveAll(p.tempDir)
		p.tempDir = ""
	}
}

// Content returns the raw document text.
func (p *Project) Content() string { return p.content }

// Tree returns the parsed document structure.
func (p *Project) Tree() map[string]any { return p.tree }

// Status returns the cached version status, StatusUnknown until set.
func (p *Project) Status() repo.Status { return p.status }

// SetStatus caches the version status. Set once by the store per scan.
func (p *Project) SetStatus(s repo.Status) { p.status = s }

// Get resolves a computed field name or, failing that, a raw document path.
func (p *Project) Get(path string) (string, bool) {
	if v, ok := ComputedFieldFrom(path).Get(p); ok {
		return v, true
	}
	return yamlpath.GetString(p.tree, path)
}

// Name returns the project name.
func (p *Project) Name() (string, bool) {
	if s, ok := yamlpath.GetString(p.tree, "event/name"); ok {
		return s, true
	}
	if s, ok := yamlpath.GetString(p.tree, "event"); ok {
		return s, true
	}
	return yamlpath.GetString(p.tree, "name")
}

// EventDate returns the date of the first event.
func (p *Project) EventDate() (time.Time, bool) {
	if d, ok := p.dateAt("event/dates/0/begin"); ok {
		return d, true
	}
	return p.dateAt("date")
}

// ModifiedDate is the date a record sorts and ages by: the event date,
// falling back to creation date, then the raw date field.
func (p *Project) ModifiedDate() (time.Time, bool) {
	for _, path := range []string{"event/dates/0/begin", "created", "date"} {
		if d, ok := p.dateAt(path); ok {
			return d, true
		}
	}
	// Probably the dd-dd.mm.yyyy range format.
	if s, ok := yamlpath.GetString(p.tree, "date"); ok {
		if d, ok := ParseDateRange(s); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// dateAt parses the scalar at path as a calendar date.
func (p *Project) dateAt(path string) (time.Time, bool) {
	s, ok := yamlpath.GetString(p.tree, path)
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(s)
}

// Responsible returns the project manager.
func (p *Project) Responsible() (string, bool) {
	return yamlpath.GetString(p.tree, "manager")
}

// Format returns the document format tag.
func (p *Project) Format() (string, bool) {
	return yamlpath.GetString(p.tree, "format")
}

// Canceled reports whether the project was called off.
func (p *Project) Canceled() bool {
	b, ok := yamlpath.GetBool(p.tree, "canceled")
	return ok && b
}

// Lang returns the document language, defaulting to "de".
func (p *Project) Lang() string {
	if s, ok := yamlpath.GetString(p.tree, "lang"); ok {
		return s
	}
	return "de"
}

// Year returns the year the record belongs to.
func (p *Project) Year() (int, bool) {
	if d, ok := p.ModifiedDate(); ok {
		return d.Year(), true
	}
	return 0, false
}

// Age returns whole days since the event, negative for future events.
func (p *Project) Age() (int, bool) {
	d, ok := p.ModifiedDate()
	if !ok {
		return 0, false
	}
	return int(time.Since(d).Hours() / 24), true
}

// PayedByClient reports whether the invoice has a payment date.
func (p *Project) PayedByClient() bool {
	_, ok := p.Invoice().PayedDate()
	return ok
}

// OurBad returns how long we took to invoice after the event.
func (p *Project) OurBad() (time.Duration, bool) {
	event, ok := p.EventDate()
	if !ok {
		return 0, false
	}
	invoice, ok := p.Invoice().Date()
	if !ok {
		invoice = time.Now()
	}
	diff := invoice.Sub(event)
	if diff <= 0 {
		return 0, false
	}
	return diff, true
}

// TheirBad returns how long the client took to pay after invoicing.
func (p *Project) TheirBad() (time.Duration, bool) {
	invoice, ok := p.Invoice().Date()
	if !ok {
		invoice = time.Now()
	}
	payed, ok := p.Invoice().PayedDate()
	if !ok {
		payed = time.Now()
	}
	return payed.Sub(invoice), true
}

// ShortDesc is the display name of the record.
func (p *Project) ShortDesc() string {
	if name, ok := p.Name(); ok {
		return name
	}
	return fmt.Sprintf("unnamed: %s", filepath.Base(p.Dir()))
}

// Index is the sort key: invoice number plus event date for invoiced
// records, a zzz-prefixed date key (sorting last) otherwise, empty without
// any date.
func (p *Project) Index() string {
	date, ok := p.ModifiedDate()
	if !ok {
		return ""
	}
	if num, ok := p.Invoice().NumberStr(); ok {
		return num + date.Format("20060102")
	}
	return "zzz" + date.Format("20060102")
}

// MatchesFilter checks a field (computed or raw) against val,
// case-insensitively.
func (p *Project) MatchesFilter(key, val string) bool {
	got, ok := p.Get(key)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(got), strings.ToLower(val))
}

// MatchesSearch checks the salient fields (invoice number, display name)
// against term, case-insensitively.
func (p *Project) MatchesSearch(term string) bool {
	search := strings.ToLower(term)
	if num, ok := p.Invoice().NumberStr(); ok {
		if strings.Contains(strings.ToLower(num), search) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.ShortDesc()), search)
}

// EmptyFields lists placeholder keys still unresolved in the raw document.
func (p *Project) EmptyFields() []string {
	return templater.ListKeywords(p.content)
}

// ReplaceField substitutes one placeholder in the raw document and writes
// the result back, provided it still parses. On parse failure nothing is
// written and the diagnostic carries the line-numbered candidate text.
//
// A Project is not safe for concurrent ReplaceField calls; callers
// serialize per file path.
func (p *Project) ReplaceField(field, value string) error {
	filled := templater.New(p.content).FillField(field, value).Finalize()

	tree, err := yamlpath.Parse(filled)
	if err != nil {
		return parseDiagnostic(filled, err)
	}
	if err := writeFileAtomic(p.filePath, []byte(filled)); err != nil {
		return err
	}
	p.content = filled
	p.tree = tree
	return nil
}

// writeFileAtomic writes via a sibling temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".projektor-tmp-*")
	if err != nil {
		return fmt.Errorf("project: create temp: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("project: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("project: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("project: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("project: rename: %w", err)
	}
	success = true
	return nil
}
