//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS projects_fts USING fts5(
			path UNINDEXED,
			name,
			client,
			manager,
			invoice_number,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, row ProjectRow) error {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE path = ?`, row.Path)
	_, err := tx.Exec(`INSERT INTO projects_fts (path, name, client, manager, invoice_number) VALUES (?, ?, ?, ?, ?)`,
		row.Path, row.Name, row.Client, row.Manager, row.InvoiceNumber)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search over project fields.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path, name, invoice_number
		FROM projects_fts
		WHERE projects_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Name, &r.InvoiceNumber); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
