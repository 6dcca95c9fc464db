// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/farbraum/projektor/internal/index"
	"github.com/farbraum/projektor/internal/project"
	"github.com/farbraum/projektor/internal/repo"
	"github.com/farbraum/projektor/internal/storage"
)

// App wires the configuration, logger, store and search index together and
// backs every CLI command.
type App struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.Store[*project.Project]
}

// NewApp builds the application from the given options. A config is
// required; the logger defaults to structured JSON on stderr.
func NewApp(opts ...Option) (*App, error) {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.cfg

	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}

	storeOpts := []storage.Option[*project.Project]{
		storage.WithDirNames[*project.Project](
			cfg.Store.WorkingDir, cfg.Store.ArchiveDir, cfg.Store.TemplatesDir),
	}
	if !cfg.Store.UseGit {
		storeOpts = append(storeOpts,
			storage.WithVersionControl[*project.Project](
				func(string, *slog.Logger) repo.VersionControl { return repo.Disabled }))
	}

	store, err := storage.NewStore(cfg.Store.Path, cfg.Store.Extension,
		project.Open, app.logger, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := store.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	app.store = store

	app.logger.Info("configuration loaded",
		slog.String("store_path", cfg.Store.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return app, nil
}

// Store exposes the record store, mainly for tests.
func (a *App) Store() *storage.Store[*project.Project] { return a.store }

// NewProject creates a record from a template, fills the placeholders and
// moves it into the working directory. It returns the final record path.
func (a *App) NewProject(name, template string, fill map[string]string) (string, error) {
	if template == "" {
		template = "default"
	}
	templatePath, err := a.store.TemplatePath(template)
	if err != nil {
		return "", err
	}

	p, err := project.FromTemplate(name, templatePath, fill, project.Defaults{
		Tax:     a.cfg.Defaults.Tax,
		Salary:  a.cfg.Defaults.Salary,
		Manager: a.cfg.Defaults.Manager,
	})
	if err != nil {
		return "", err
	}

	if err := a.store.Save(p, name); err != nil {
		p.Cleanup()
		return "", err
	}
	a.logger.Info("project created",
		slog.String("name", name),
		slog.String("path", p.File()))
	return p.File(), nil
}

// ListOptions narrow a listing down. Zero value lists everything.
type ListOptions struct {
	Filter string // "key:value" against a computed field or document path
	Search string // term against invoice number and display name
	Broken bool   // only records failing their own validation
}

func (o ListOptions) keep(p *project.Project) bool {
	if key, val, ok := strings.Cut(o.Filter, ":"); ok && !p.MatchesFilter(key, val) {
		return false
	}
	if o.Search != "" && !p.MatchesSearch(o.Search) {
		return false
	}
	if o.Broken && p.Validate().OK() {
		return false
	}
	return true
}

// List writes a table of the records at loc to w, sorted by index key.
func (a *App) List(loc storage.Location, opt ListOptions, w io.Writer) error {
	projects, err := a.store.OpenAll(loc)
	if err != nil {
		return err
	}
	kept := projects[:0]
	for _, p := range projects {
		if opt.keep(p) {
			kept = append(kept, p)
		}
	}
	projects = kept
	storage.SortByIndex(projects)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range projects {
		date := ""
		if d, ok := p.EventDate(); ok {
			date = d.Format("02.01.2006")
		}
		manager, _ := p.Responsible()
		invoice := ""
		if n, ok := p.Invoice().NumberStr(); ok {
			invoice = n
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.Status().Short(), p.ShortDesc(), date, invoice, manager)
	}
	return tw.Flush()
}

// BillCSV writes the rendered bill of the named working record to w.
func (a *App) BillCSV(name string, t project.BillType, w io.Writer) error {
	p, err := a.store.OpenWorking(name)
	if err != nil {
		return err
	}
	csv, err := p.BillCSV(t)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, csv)
	return err
}

// Archive moves the named working record into archive/<year>. Unless force
// is set the record has to be ready for archiving. A zero year means the
// record's own event year.
func (a *App) Archive(name string, year int, force bool) (string, error) {
	p, err := a.store.OpenWorking(name)
	if err != nil {
		return "", err
	}
	if !force && !p.ReadyForArchive() {
		report := p.ArchiveReadiness()
		return "", fmt.Errorf("archive %q: not ready: %s", name, report.String())
	}
	if year == 0 {
		y, ok := p.Year()
		if !ok {
			y = time.Now().Year()
		}
		year = y
	}
	target, err := a.store.ArchiveProject(p, year)
	if err != nil {
		return "", err
	}
	a.logger.Info("project archived",
		slog.String("name", name), slog.Int("year", year))
	return target, nil
}

// Unarchive moves a record from archive/<year> back into the working
// directory.
func (a *App) Unarchive(year int, name string) (string, error) {
	p, err := a.openArchived(year, name)
	if err != nil {
		return "", err
	}
	target, err := a.store.UnarchiveProject(p)
	if err != nil {
		return "", err
	}
	a.logger.Info("project unarchived",
		slog.String("name", name), slog.Int("year", year))
	return target, nil
}

func (a *App) openArchived(year int, name string) (*project.Project, error) {
	projects, err := a.store.OpenAll(storage.Archive(year))
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if filepath.Base(p.Dir()) == name {
			return p, nil
		}
		if n, ok := p.Name(); ok && strings.EqualFold(n, name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unarchive %q from %d: %w",
		name, year, storage.ErrProjectDoesNotExist)
}

// Search refreshes the index and writes matching records to w.
func (a *App) Search(query string, w io.Writer) error {
	db, err := index.Open(a.cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, a.store, a.logger); err != nil {
		a.logger.Warn("index sync failed", slog.String("error", err.Error()))
	}

	hits, err := db.Search(query, 50)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, hit := range hits {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", hit.Name, hit.InvoiceNumber, hit.Path)
	}
	return tw.Flush()
}

// Watch keeps the search index in sync with the store until ctx is
// cancelled.
func (a *App) Watch(ctx context.Context) error {
	db, err := index.Open(a.cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, a.store, a.logger); err != nil {
		a.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return index.Watch(gCtx, db, a.store, a.logger)
	})

	// Full re-sync on an interval catches events the watcher missed, e.g.
	// writes into directories created while the watch list was stale.
	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if err := index.Sync(db, a.store, a.logger); err != nil {
					a.logger.Warn("periodic sync failed", slog.String("error", err.Error()))
				}
			}
		}
	})

	return g.Wait()
}

// Git runs a git subcommand inside the store root and returns its exit
// code. Unknown subcommands pass through to git unchanged.
func (a *App) Git(args []string) int {
	vcs := repo.Open(a.store.Root(), a.logger)
	if len(args) == 0 {
		return vcs.Run("status")
	}
	return vcs.Run(args[0], args[1:]...)
}
