package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rendis/casegraph/internal/catalog"
	"github.com/rendis/casegraph/internal/diagram"
	"github.com/rendis/casegraph/internal/store"
	"github.com/rendis/casegraph/pkg/schema"
)

func newFilterCmd(a *app) *cobra.Command {
	var engine, expression string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the ids of cases matching a cel, expr or jq predicate over record",
		Example: `  casegraph filter --expr 'record.open && record.decision_count > 3'
  casegraph filter --engine jq --expr 'any(.record.decisions[]; .category == "relief")'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withCatalog(ctx, func(c *catalog.Catalog, _ store.Store) error {
				ids, err := c.Where(ctx, engine, expression)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&engine, "engine", "e", "cel", "expression engine: cel, expr or jq")
	cmd.Flags().StringVar(&expression, "expr", "", "boolean expression")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}

func newGraphCmd(a *app) *cobra.Command {
	var jq string

	cmd := &cobra.Command{
		Use:   "graph <case-id>",
		Short: "Print the positioned timeline graph of a case as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withCatalog(ctx, func(c *catalog.Catalog, _ store.Store) error {
				var out any
				var err error
				if jq != "" {
					out, err = c.Project(ctx, args[0], jq)
				} else {
					out, err = c.Timeline(ctx, args[0])
				}
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			})
		},
	}

	cmd.Flags().StringVar(&jq, "jq", "", "jq program applied to the graph JSON")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "render <case-id>",
		Short: "Render the timeline of a case as ascii, mermaid, svg or png",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch format {
			case "ascii", "mermaid", "svg", "png":
			default:
				return schema.NewErrorf(schema.ErrCodeValidation,
					"unsupported format %q (want ascii, mermaid, svg or png)", format)
			}
			if format == "png" && out == "" && isTerminal(cmd.OutOrStdout()) {
				return fmt.Errorf("refusing to write png to a terminal; use --out")
			}

			return a.withCatalog(ctx, func(c *catalog.Catalog, _ store.Store) error {
				g, err := c.Timeline(ctx, args[0])
				if err != nil {
					return err
				}

				var data []byte
				switch format {
				case "ascii":
					data = []byte(diagram.RenderASCIIAuto(g, a.cfg.MermaidBinDir))
				case "mermaid":
					data = []byte(diagram.RenderMermaid(g))
				default:
					data, err = diagram.RenderImage(ctx, g, diagram.ImageFormat(format))
					if err != nil {
						return err
					}
				}

				if out == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Written: %s (%d bytes)\n", out, len(data))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "ascii", "output format: ascii, mermaid, svg or png")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}
