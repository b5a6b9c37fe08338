package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rendis/casegraph/internal/logging"
	"github.com/rendis/casegraph/internal/panel"
	"github.com/rendis/casegraph/internal/scheduler"
	"github.com/rendis/casegraph/internal/streaming"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the case timeline HTTP API",
		Long: `Serve the case timeline HTTP API.

When cases_file is configured it is imported at startup, and re-imported on
reload_schedule (a 5-field cron expression) when one is set. SIGHUP reloads
the settings file; only log_level applies without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.ListenAddr = listen
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "TCP listen address (default from config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	log := a.logger

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	hub := streaming.NewMemoryHub()
	importer := a.newImporter(s, hub)
	cat, err := a.newCatalog(s)
	if err != nil {
		return err
	}

	var reloader *scheduler.Reloader
	switch {
	case a.cfg.CasesFile != "" && a.cfg.ReloadSchedule != "":
		reloader, err = scheduler.NewReloader(importer, a.cfg.CasesFile, a.cfg.ReloadSchedule, log)
		if err != nil {
			return err
		}
		if err := reloader.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := reloader.Stop(); err != nil {
				log.Error("stop reloader", "error", err)
			}
		}()
	case a.cfg.CasesFile != "":
		f, err := os.Open(a.cfg.CasesFile)
		if err != nil {
			return fmt.Errorf("open cases file: %w", err)
		}
		_, err = importer.Import(ctx, a.cfg.CasesFile, f)
		f.Close()
		if err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr: a.cfg.ListenAddr,
		Handler: panel.NewPanelServer(panel.PanelDeps{
			Catalog:       cat,
			Store:         s,
			Importer:      importer,
			Hub:           hub,
			Logger:        log,
			MermaidBinDir: a.cfg.MermaidBinDir,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if err := writePIDFile(); err != nil {
		log.Warn("cannot write pid file", "path", pidPath(), "error", err)
	} else {
		defer os.Remove(pidPath())
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go a.watchReload(ctx, hup)

	errCh := make(chan error, 1)
	go func() {
		log.Info("casegraph listening", "addr", a.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// watchReload re-reads the settings file on every signal until ctx is done.
func (a *app) watchReload(ctx context.Context, sig <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			a.reloadConfig()
		}
	}
}

// reloadConfig applies the settings that can change while running and
// reports the ones that need a restart.
func (a *app) reloadConfig() {
	next, err := loadConfig(a.configPath)
	if err != nil {
		a.logger.Error("config reload failed", "error", err)
		return
	}
	d := diffConfigs(a.cfg, next)
	if d.LogLevelChanged {
		level, _ := logging.ParseLevel(next.LogLevel) // validated by loadConfig
		a.level.Set(level)
		a.cfg.LogLevel = next.LogLevel
		a.logger.Info("log level changed", "level", next.LogLevel)
	}
	if len(d.RestartNeeded) > 0 {
		a.logger.Warn("config changes need a restart", "fields", d.RestartNeeded)
	}
}

func writePIDFile() error {
	if err := os.MkdirAll(casegraphDir(), 0o700); err != nil {
		return err
	}
	return os.WriteFile(pidPath(), []byte(strconv.Itoa(os.Getpid())), 0o644)
}
