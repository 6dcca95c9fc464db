// Package testutil provides shared test helpers for setting up store trees
// and sample documents.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/farbraum/projektor/internal/project"
	"github.com/farbraum/projektor/internal/repo"
	"github.com/farbraum/projektor/internal/storage"
)

// Logger returns a logger that swallows everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// StaticVCS returns a version-control factory whose cache is fixed to the
// given path→status map.
func StaticVCS(statuses map[string]repo.Status) storage.VCSFunc {
	return func(string, *slog.Logger) repo.VersionControl {
		return staticVCS(statuses)
	}
}

type staticVCS map[string]repo.Status

func (v staticVCS) StatusOf(path string) repo.Status {
	if s, ok := v[path]; ok {
		return s
	}
	return repo.StatusUnknown
}

func (staticVCS) Run(string, ...string) int { return 0 }

// TestStore creates a store with working/archive/templates directories and
// a default template, rooted in a temp dir.
func TestStore(t *testing.T, opts ...storage.Option[*project.Project]) (*storage.Store[*project.Project], string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewStore(root, project.FileExtension, project.Open, Logger(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(store.TemplatesDir(), "default.yml"), []byte(SampleTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	return store, root
}

// WriteWorkingProject drops a record file into working/<slug>/<slug>.yml.
func WriteWorkingProject(t *testing.T, store *storage.Store[*project.Project], slug, content string) string {
	t.Helper()
	return writeRecord(t, filepath.Join(store.WorkingDir(), slug), slug, content)
}

// WriteArchivedProject drops a record file into archive/<year>/<slug>/.
func WriteArchivedProject(t *testing.T, store *storage.Store[*project.Project], year int, slug, content string) string {
	t.Helper()
	return writeRecord(t, filepath.Join(store.ArchiveDir(year), slug), slug, content)
}

func writeRecord(t *testing.T, dir, slug, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, slug+".yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// SampleProject renders a complete, offer- and invoice-ready document.
func SampleProject(name string, invoiceNumber int) string {
	return fmt.Sprintf(`manager: ada
format: "3.0"
lang: de
created: 10.08.2026
tax: 0.19

event:
  name: %s
  dates:
    - begin: 24.08.2026
      end: 25.08.2026

client:
  title: Herr
  first_name: Otto
  last_name: Vogt
  address: |
    Otto Vogt
    Hauptstrasse 1
    04109 Leipzig
  email: otto@example.org

offer:
  date: 10.08.2026
  appendix: 1

invoice:
  number: %d
  date: 26.08.2026

hours:
  salary: 9.0
  employees:
    - name: ada
      time: 4
      payed: true
    - name: grace
      time: 3.5
      payed: true

products:
  Apfelsaft:
    amount: 2
    price: 10.0
    tax: 0.19
    unit: l
  Birnensaft:
    amount: 1
    price: 5.0
    tax: 0.07
    unit: l

canceled: false
`, name, invoiceNumber)
}

// SampleTemplate is a minimal but complete document skeleton.
const SampleTemplate = `manager: __MANAGER__
format: "3.0"
lang: de
created: __DATE-CREATED__
tax: __TAX__
template: __TEMPLATE__
version: __VERSION__

event:
  name: __PROJECT-NAME__
  dates:
    - begin: __DATE-EVENT__

client:
  title:
  first_name:
  last_name:
  address:
  email:

offer:
  appendix: 1

invoice:

hours:
  salary: __SALARY__

products: {}

canceled: false
`
