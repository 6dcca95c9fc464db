package index_test

import (
	"os"
	"testing"

	"github.com/farbraum/projektor/internal/index"
	"github.com/farbraum/projektor/internal/testutil"
)

func testDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "projektor-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndSearch(t *testing.T) {
	db := testDB(t)

	err := db.Upsert(index.ProjectRow{
		Path:          "working/fest/fest.yml",
		Name:          "Sommerfest",
		InvoiceNumber: "R042",
		Client:        "Otto Vogt",
		Manager:       "ada",
		Year:          2026,
		Checksum:      "abc",
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := db.Search("sommerfest", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Path != "working/fest/fest.yml" {
		t.Errorf("hits = %v", hits)
	}

	hits, err = db.Search("R042", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("search by invoice number: hits = %v", hits)
	}
}

func TestUpsert_ReplacesExistingRow(t *testing.T) {
	db := testDB(t)

	row := index.ProjectRow{Path: "working/fest/fest.yml", Name: "Alt", Checksum: "a"}
	if err := db.Upsert(row); err != nil {
		t.Fatal(err)
	}
	row.Name = "Neu"
	row.Checksum = "b"
	if err := db.Upsert(row); err != nil {
		t.Fatal(err)
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if checksums["working/fest/fest.yml"] != "b" {
		t.Errorf("checksums = %v", checksums)
	}
	if hits, _ := db.Search("Alt", 10); len(hits) != 0 {
		t.Errorf("stale name still searchable: %v", hits)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	if err := db.Upsert(index.ProjectRow{Path: "p", Name: "Fest", Checksum: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Delete("p"); err != nil {
		t.Fatal(err)
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(checksums) != 0 {
		t.Errorf("checksums = %v", checksums)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	store, _ := testutil.TestStore(t)
	testutil.WriteWorkingProject(t, store, "fest", testutil.SampleProject("Sommerfest", 42))
	archived := testutil.WriteArchivedProject(t, store, 2025, "gala", testutil.SampleProject("Gala", 7))

	if err := index.Sync(db, store, testutil.Logger()); err != nil {
		t.Fatal(err)
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(checksums) != 2 {
		t.Fatalf("indexed %d records, want 2", len(checksums))
	}

	// Records gone from disk leave the index on the next pass.
	if err := os.RemoveAll(archived); err != nil {
		t.Fatal(err)
	}
	if err := index.Sync(db, store, testutil.Logger()); err != nil {
		t.Fatal(err)
	}
	checksums, err = db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(checksums) != 1 {
		t.Errorf("after removal: %v", checksums)
	}
}
