package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazytable/internal/app"
	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/export"
	"github.com/rebeliceyang/lazytable/internal/filtering"
	"github.com/rebeliceyang/lazytable/internal/history"
	"github.com/rebeliceyang/lazytable/internal/logger"
	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/source"
	"github.com/rebeliceyang/lazytable/internal/state"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet(config.AppName, pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file.csv | postgres://...?table=t | sqlite://path?table=t>\n\n", config.AppName)
		flags.PrintDefaults()
	}

	flags.String("filter", "", "initial search text")
	flags.String("columns", "", "comma-separated glob patterns of the columns to search")
	flags.String("sort", "", "sort column, COL or COL:desc")
	flags.Int("page-size", 0, "rows per page (0 uses the config value)")
	flags.String("export", "", "write the filtered rows to PATH (.csv, .json, optionally .gz) and exit")
	flags.String("config", "", "config file path")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("theme", "", "color theme: "+strings.Join(theme.Names(), ", "))
	flags.Int("limit", 0, "maximum number of rows to read")
	return flags
}

func run(args []string) error {
	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("expected exactly one data source")
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		if configPath != "" {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	exportPath, _ := flags.GetString("export")
	headless := exportPath != ""

	// The terminal belongs to the UI, so interactive runs log to a file
	logCfg := logger.Config{Level: cfg.Log.Level, OutputPaths: []string{cfg.LogPath()}}
	if headless {
		logCfg = logger.Config{Level: cfg.Log.Level, Development: true, OutputPaths: []string{"stderr"}}
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Close() }()

	src, err := source.Open(flags.Arg(0), cfg.Source)
	if err != nil {
		return err
	}

	filter, _ := flags.GetString("filter")
	patterns, _ := flags.GetString("columns")
	sortFlag, _ := flags.GetString("sort")
	sortName, sortDir := app.ParseSort(sortFlag)

	opts := app.Options{
		Config:  cfg,
		Source:  src,
		Logger:  log,
		Filter:  filter,
		Columns: splitPatterns(patterns),
		Sort:    sortName,
		SortDir: sortDir,
	}

	if headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return exportHeadless(logger.WithLogger(ctx, log), exportPath, opts)
	}

	return runInteractive(opts)
}

func runInteractive(opts app.Options) error {
	cfg, log := opts.Config, opts.Logger

	if dir, err := config.GetConfigPath(); err != nil {
		log.Warnw("no config directory, history and views disabled", "error", err)
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warnw("failed to create config directory", "path", dir, "error", err)
	} else {
		if cfg.History.Enabled {
			store, err := history.NewStore(filepath.Join(dir, "history.db"))
			if err != nil {
				log.Warnw("search history disabled", "error", err)
			} else {
				defer func() { _ = store.Close() }()
				opts.History = store
			}
		}

		views, err := state.NewManager(dir)
		if err != nil {
			log.Warnw("saved views disabled", "error", err)
		} else {
			opts.Views = views
		}
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	log.Infow("starting", "source", opts.Source.Key())
	p := tea.NewProgram(app.New(opts), programOpts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}

// exportHeadless loads the source, applies the search and sort, and writes
// the result without starting the UI
func exportHeadless(ctx context.Context, path string, opts app.Options) error {
	log := logger.FromContext(ctx)

	if _, err := export.FormatFromPath(path); err != nil {
		return err
	}

	table, err := opts.Source.Load(ctx)
	if err != nil {
		return err
	}

	fs := app.NewFiltering(opts.Config.Filtering)
	fs.Search(opts.Filter, filtering.ResolveColumns(filtering.FilterableColumns(table.Columns), opts.Columns))

	var sortCol *models.Column
	if opts.Sort != "" {
		if sortCol = table.ColumnByName(opts.Sort); sortCol == nil {
			log.Warnw("unknown sort column", "column", opts.Sort)
		}
	}

	rows := app.ApplyView(table.Rows, fs, sortCol, opts.SortDir)
	if err := export.ExportFile(path, table.Columns, rows); err != nil {
		return err
	}

	log.Infow("exported rows", "path", path, "rows", len(rows), "total", len(table.Rows))
	fmt.Printf("Exported %d of %d rows to %s\n", len(rows), len(table.Rows), path)
	return nil
}

func splitPatterns(value string) []string {
	var patterns []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
