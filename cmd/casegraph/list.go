package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rendis/casegraph/internal/catalog"
	"github.com/rendis/casegraph/internal/expressions"
	"github.com/rendis/casegraph/internal/store"
)

func newListCmd(a *app) *cobra.Command {
	var query, selected, tmpl string
	var long bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List case ids, optionally narrowed by a substring query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			return a.withCatalog(ctx, func(c *catalog.Catalog, s store.Store) error {
				sel, err := c.Search(ctx, query, selected)
				if err != nil {
					return err
				}

				switch {
				case tmpl != "":
					for _, id := range sel.Dropdown {
						rec, err := c.Case(ctx, id)
						if err != nil {
							return err
						}
						line, err := expressions.Interpolate(tmpl, expressions.RecordEnv(id, &rec.Data))
						if err != nil {
							return err
						}
						fmt.Fprintln(w, line)
					}
				case long:
					summaries, err := s.ListCases(ctx, store.CaseFilter{})
					if err != nil {
						return err
					}
					fmt.Fprint(w, formatCaseTable(stylesFor(w), sel, summaries))
				default:
					printSelection(w, sel)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive substring of the case id")
	cmd.Flags().StringVar(&selected, "selected", "", "selected case id, always listed")
	cmd.Flags().StringVar(&tmpl, "template", "", "print each case with a ${{record.field}} template")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show a summary table")
	return cmd
}

// printSelection prints the dropdown ids, marking the selected one.
func printSelection(w io.Writer, sel *catalog.Selection) {
	st := stylesFor(w)
	if len(sel.Dropdown) == 0 {
		fmt.Fprintln(w, st.dim.Render("no cases"))
		return
	}
	for _, id := range sel.Dropdown {
		if id == sel.Selected {
			fmt.Fprintln(w, st.selected.Render("* "+id))
			continue
		}
		fmt.Fprintln(w, "  "+id)
	}
}

func formatCaseTable(st styles, sel *catalog.Selection, summaries []*store.CaseSummary) string {
	byID := make(map[string]*store.CaseSummary, len(summaries))
	for _, sum := range summaries {
		byID[sum.ID] = sum
	}

	rows := make([][]string, 0, len(sel.Dropdown))
	for _, id := range sel.Dropdown {
		sum, ok := byID[id]
		if !ok {
			continue
		}
		marker := " "
		if id == sel.Selected {
			marker = st.selected.Render("*")
		}
		rows = append(rows, []string{
			marker,
			id,
			orDash(sum.Officer),
			orDash(sum.DateCreated),
			orDash(sum.DateClosed),
			strconv.Itoa(sum.DecisionCount),
		})
	}
	return renderTable(st, []string{"", "CASE", "OFFICER", "CREATED", "CLOSED", "DECISIONS"}, rows)
}
