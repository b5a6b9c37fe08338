package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "casegraph",
		Short:         "Case decision timelines: import, query, render and serve",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (default ~/.casegraph/settings.yaml)")
	flags.StringVarP(&a.casesFile, "file", "f", "", "read cases from this document instead of the database")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newImportCmd(a),
		newListCmd(a),
		newFilterCmd(a),
		newGraphCmd(a),
		newRenderCmd(a),
		newImportsCmd(a),
		newServeCmd(a),
		newReloadCmd(a),
		newMCPCmd(a),
		newInstallToolsCmd(a),
		newVersionCmd(),
	)
	return root
}
