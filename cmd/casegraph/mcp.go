package main

import (
	"github.com/spf13/cobra"

	"github.com/rendis/casegraph/internal/scheduler"
	"github.com/rendis/casegraph/internal/streaming"
	casemcp "github.com/rendis/casegraph/pkg/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the case timeline tools over MCP stdio",
		Long: `Serve the case timeline tools over MCP stdio.

With cases_file and reload_schedule configured, scheduled re-imports run in
the background and clients are notified of the cases that changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			hub := streaming.NewMemoryHub()
			if a.cfg.CasesFile != "" && a.cfg.ReloadSchedule != "" {
				reloader, err := scheduler.NewReloader(a.newImporter(s, hub), a.cfg.CasesFile, a.cfg.ReloadSchedule, a.logger)
				if err != nil {
					return err
				}
				if err := reloader.Start(ctx); err != nil {
					return err
				}
				defer reloader.Stop()
			}

			cat, err := a.newCatalog(s)
			if err != nil {
				return err
			}
			srv := casemcp.NewCaseGraphServer(casemcp.CaseGraphServerDeps{
				Catalog:       cat,
				Hub:           hub,
				Logger:        a.logger,
				MermaidBinDir: a.cfg.MermaidBinDir,
			})
			return srv.Serve(ctx)
		},
	}
}
