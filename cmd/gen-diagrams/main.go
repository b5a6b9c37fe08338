// gen-diagrams renders the sample cases into diagram files for the docs.
// Run: go run ./cmd/gen-diagrams [cases.json]
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rendis/casegraph/internal/diagram"
	"github.com/rendis/casegraph/internal/ingest"
	"github.com/rendis/casegraph/internal/timeline"
)

func main() {
	src := filepath.Join("examples", "cases", "sample_cases.json")
	if len(os.Args) > 1 {
		src = os.Args[1]
	}

	doc, err := ingest.DecodeFile(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode error: %v\n", err)
		os.Exit(1)
	}

	outDir := filepath.Join("docs", "assets")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", outDir, err)
		os.Exit(1)
	}

	home, _ := os.UserHomeDir()
	binDir := filepath.Join(home, ".casegraph", "bin")

	ids := doc.IDs()
	slices.Sort(ids)
	for _, id := range ids {
		data := doc[id]
		g := timeline.Build(&data)

		// ASCII (mermaid-ascii with hand-rolled fallback)
		ascii := diagram.RenderASCIIAuto(g, binDir)
		write(filepath.Join(outDir, id+"-ascii.txt"), []byte(ascii))
		fmt.Printf("=== %s ASCII ===\n%s\n", id, ascii)

		// Mermaid
		mermaid := diagram.RenderMermaid(g)
		write(filepath.Join(outDir, id+"-mermaid.md"), []byte("```mermaid\n"+mermaid+"\n```\n"))

		// Image (PNG)
		png, err := diagram.RenderImage(context.Background(), g, diagram.ImagePNG)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s image error: %v\n", id, err)
			continue
		}
		pngPath := filepath.Join(outDir, id+".png")
		write(pngPath, png)
		fmt.Printf("Written: %s (%d bytes)\n", pngPath, len(png))
	}
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
	}
}
