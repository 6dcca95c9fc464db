package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/farbraum/projektor/internal"
	"github.com/farbraum/projektor/internal/project"
	"github.com/farbraum/projektor/internal/storage"
	pkgconfig "github.com/farbraum/projektor/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func newApp(cmd *cli.Command) (*internal.App, error) {
	cfg := internal.NewDefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		// An explicitly named file must exist; only the default layers
		// are optional.
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := pkgconfig.LoadLayered(cfg, internal.ConfigPaths()...); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return internal.NewApp(internal.WithConfig(cfg))
}

// fillFrom turns repeated --fill KEY=value flags into a placeholder map.
func fillFrom(pairs []string) map[string]string {
	fill := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if key, val, ok := strings.Cut(pair, "="); ok {
			fill[key] = val
		}
	}
	return fill
}

func locationFrom(cmd *cli.Command) storage.Location {
	switch {
	case cmd.Bool("all"):
		return storage.All
	case cmd.IsSet("year"):
		return storage.Archive(int(cmd.Int("year")))
	default:
		return storage.Working
	}
}

func runNew(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("new: project name required")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	path, err := app.NewProject(name, cmd.String("template"), fillFrom(cmd.StringSlice("fill")))
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runList(_ context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.List(locationFrom(cmd), internal.ListOptions{
		Filter: cmd.String("filter"),
		Search: cmd.String("search"),
		Broken: cmd.Bool("broken"),
	}, os.Stdout)
}

func runCSV(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("csv: project name required")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	billType := project.BillInvoice
	if cmd.Bool("offer") {
		billType = project.BillOffer
	}
	return app.BillCSV(name, billType, os.Stdout)
}

func runArchive(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("archive: project name required")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	target, err := app.Archive(name, int(cmd.Int("year")), cmd.Bool("force"))
	if err != nil {
		return err
	}
	fmt.Println(target)
	return nil
}

func runUnarchive(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" || !cmd.IsSet("year") {
		return fmt.Errorf("unarchive: project name and --year required")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	target, err := app.Unarchive(int(cmd.Int("year")), name)
	if err != nil {
		return err
	}
	fmt.Println(target)
	return nil
}

func runSearch(_ context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("search: query required")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.Search(query, os.Stdout)
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Watch(ctx)
}

func runGit(_ context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if code := app.Git(cmd.Args().Slice()); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file",
		Sources: cli.EnvVars("PROJEKTOR_CONFIG_FILE"),
	}
	yearFlag := &cli.IntFlag{
		Name:  "year",
		Usage: "Archive year",
	}

	cmd := &cli.Command{
		Name:  "projektor",
		Usage: "Directory-based project store with offers, invoices and archiving",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "Create a project from a template",
				ArgsUsage: "<name>",
				Action:    runNew,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Template name"},
					&cli.StringSliceFlag{Name: "fill", Usage: "Template placeholder as KEY=value"},
				},
			},
			{
				Name:   "list",
				Usage:  "List projects",
				Action: runList,
				Flags: []cli.Flag{
					configFlag,
					yearFlag,
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Working and all archive years"},
					&cli.StringFlag{Name: "filter", Usage: "Only projects matching key:value"},
					&cli.StringFlag{Name: "search", Usage: "Only projects matching a search term"},
					&cli.BoolFlag{Name: "broken", Usage: "Only projects failing validation"},
				},
			},
			{
				Name:      "csv",
				Usage:     "Print a project's bill as CSV",
				ArgsUsage: "<name>",
				Action:    runCSV,
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "offer", Usage: "Offer bill instead of invoice bill"},
				},
			},
			{
				Name:      "archive",
				Usage:     "Move a working project into the archive",
				ArgsUsage: "<name>",
				Action:    runArchive,
				Flags: []cli.Flag{
					configFlag,
					yearFlag,
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Archive even when not ready"},
				},
			},
			{
				Name:      "unarchive",
				Usage:     "Move an archived project back into working",
				ArgsUsage: "<name>",
				Action:    runUnarchive,
				Flags:     []cli.Flag{configFlag, yearFlag},
			},
			{
				Name:      "search",
				Usage:     "Full-text search over all projects",
				ArgsUsage: "<query>",
				Action:    runSearch,
				Flags:     []cli.Flag{configFlag},
			},
			{
				Name:   "watch",
				Usage:  "Keep the search index in sync until interrupted",
				Action: runWatch,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:            "git",
				Usage:           "Run a git command inside the store",
				ArgsUsage:       "<args>...",
				Action:          runGit,
				SkipFlagParsing: true,
				Flags:           []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
