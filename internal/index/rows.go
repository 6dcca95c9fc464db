package index

import (
	"fmt"
	"time"
)

// ProjectRow represents a row in the projects table. Path is the record
// file path relative to the store root.
type ProjectRow struct {
	Path          string
	Name          string
	InvoiceNumber string
	Client        string
	Manager       string
	Year          int
	Date          string
	Canceled      bool
	Checksum      string
	UpdatedAt     time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path          string
	Name          string
	InvoiceNumber string
}

// Upsert inserts or replaces a project row and its FTS entry.
func (db *DB) Upsert(row ProjectRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO projects (path, name, invoice_number, client, manager, year, date, canceled, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name           = excluded.name,
			invoice_number = excluded.invoice_number,
			client         = excluded.client,
			manager        = excluded.manager,
			year           = excluded.year,
			date           = excluded.date,
			canceled       = excluded.canceled,
			checksum       = excluded.checksum,
			updated_at     = excluded.updated_at
	`, row.Path, row.Name, row.InvoiceNumber, row.Client, row.Manager,
		row.Year, row.Date, row.Canceled, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert project: %w", err)
	}

	if err := ftsUpsert(tx, row); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a project row and its FTS entry.
func (db *DB) Delete(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM projects WHERE path = ?`, path)

	return tx.Commit()
}

// AllChecksums returns path→checksum for every indexed project.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var path, cs string
		if err := rows.Scan(&path, &cs); err != nil {
			return nil, err
		}
		out[path] = cs
	}
	return out, rows.Err()
}
