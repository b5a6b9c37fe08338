package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rendis/casegraph/internal/catalog"
	"github.com/rendis/casegraph/internal/expressions"
	"github.com/rendis/casegraph/internal/ingest"
	"github.com/rendis/casegraph/internal/logging"
	"github.com/rendis/casegraph/internal/store"
	"github.com/rendis/casegraph/internal/streaming"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string // --config
	casesFile  string // --file
	logLevel   string // --log-level

	cfg    Config
	level  *slog.LevelVar
	logger *slog.Logger
	stderr io.Writer
}

func newApp() *app {
	return &app{level: new(slog.LevelVar), stderr: os.Stderr}
}

// init loads the configuration and builds the logger. Flags win over config.
func (a *app) init() error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.level.Set(level)
	a.cfg = cfg
	a.logger = logging.New(a.stderr, a.level)
	return nil
}

// openStore returns the store commands read from: an in-memory store loaded
// from --file when it is set, otherwise the migrated libSQL database.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.casesFile != "" {
		return a.loadFileStore(ctx, a.casesFile)
	}
	return a.openDB(ctx)
}

func (a *app) openDB(ctx context.Context) (store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(a.cfg.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	s, err := store.NewLibSQLStore(a.cfg.dbURI())
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate %s: %w", a.cfg.DBPath, err)
	}
	return s, nil
}

func (a *app) loadFileStore(ctx context.Context, path string) (store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cases file: %w", err)
	}
	defer f.Close()

	s := store.NewMemoryStore()
	if _, err := a.newImporter(s, nil).Import(ctx, path, f); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *app) newImporter(s store.Store, hub streaming.EventHub) *ingest.Importer {
	im := ingest.NewImporter(ingest.ImporterDeps{Store: s, Hub: hub, Logger: a.logger})
	im.Prune = a.cfg.Prune
	return im
}

func (a *app) newCatalog(s store.Store) (*catalog.Catalog, error) {
	engines, err := expressions.NewRegistry()
	if err != nil {
		return nil, err
	}
	return catalog.New(catalog.Deps{
		Store:   s,
		Engines: engines,
		Layout:  a.cfg.Layout,
		Logger:  a.logger,
	}), nil
}

// withCatalog opens the store, runs fn with a catalog over it and closes the
// store afterwards.
func (a *app) withCatalog(ctx context.Context, fn func(*catalog.Catalog, store.Store) error) error {
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := a.newCatalog(s)
	if err != nil {
		return err
	}
	return fn(c, s)
}
