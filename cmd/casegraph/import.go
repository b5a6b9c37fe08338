package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rendis/casegraph/internal/ingest"
	"github.com/rendis/casegraph/internal/store"
)

func newImportCmd(a *app) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a cases document and load it into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open cases file: %w", err)
			}
			defer f.Close()

			s, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			im := a.newImporter(s, nil)
			if cmd.Flags().Changed("prune") {
				im.Prune = prune
			}
			res, err := im.Import(ctx, path, f)
			if err != nil {
				return err
			}
			printImportResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "delete stored cases missing from the document")
	return cmd
}

func printImportResult(w io.Writer, res *ingest.Result) {
	st := stylesFor(w)
	fmt.Fprintf(w, "%s imported %d cases from %s (import %s)\n",
		st.ok.Render("✓"), res.CaseCount, res.Source, st.dim.Render(res.ImportID))
	if res.Pruned > 0 {
		fmt.Fprintf(w, "  pruned %d cases\n", res.Pruned)
	}
	for _, issue := range res.Warnings {
		fmt.Fprintf(w, "  %s %s\n", st.warn.Render("warning:"), issue.String())
	}
}

func newImportsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List recent import runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListImports(ctx, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "no imports yet")
				return nil
			}
			fmt.Fprint(w, formatImports(stylesFor(w), runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")
	return cmd
}

func formatImports(st styles, runs []*store.ImportRun) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := string(run.Status)
		switch run.Status {
		case store.ImportCompleted:
			status = st.ok.Render(status)
		case store.ImportFailed:
			status = st.fail.Render(status)
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			status,
			strconv.Itoa(run.CaseCount),
			run.Source,
			run.Error,
		})
	}
	return renderTable(st, []string{"ID", "STARTED", "STATUS", "CASES", "SOURCE", "ERROR"}, rows)
}
