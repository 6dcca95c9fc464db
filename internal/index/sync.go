package index

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path/filepath"

	"github.com/farbraum/projektor/internal/project"
	"github.com/farbraum/projektor/internal/storage"
)

// Sync scans every lifecycle location of the store and brings the index up
// to date: new and changed records are upserted, records gone from disk are
// removed. Per-record failures are logged and skipped.
func Sync(db ProjectIndex, store *storage.Store[*project.Project], logger *slog.Logger) error {
	projects, err := store.OpenAll(storage.All)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		rel, err := filepath.Rel(store.Root(), p.File())
		if err != nil {
			continue
		}
		disk[rel] = struct{}{}

		cs := checksum(p.Content())
		if checksums[rel] == cs {
			continue
		}
		if err := db.Upsert(rowFor(rel, cs, p)); err != nil {
			logger.Warn("sync: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", rel))
		}
	}

	// Remove stale entries.
	for path := range checksums {
		if _, ok := disk[path]; !ok {
			if err := db.Delete(path); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", path), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", path))
			}
		}
	}

	return nil
}

// rowFor projects the searchable fields of a record into a table row.
func rowFor(rel, cs string, p *project.Project) ProjectRow {
	row := ProjectRow{
		Path:     rel,
		Name:     p.ShortDesc(),
		Canceled: p.Canceled(),
		Checksum: cs,
	}
	row.InvoiceNumber, _ = p.Invoice().NumberStr()
	row.Client, _ = p.Client().FullName()
	row.Manager, _ = p.Responsible()
	row.Year, _ = p.Year()
	if date, ok := p.ModifiedDate(); ok {
		row.Date = date.Format("2006-01-02")
	}
	return row
}

func checksum(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}
