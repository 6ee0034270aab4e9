package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zboralski/lattice/render"

	"unswf/internal/output"
	"unswf/internal/refgraph"
)

func cmdGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	in := fs.String("in", "", "path to movie file")
	strict := fs.Bool("strict", false, "fail acceptance checks")
	maxTags := fs.Int("max-tags", 0, "tag walker record cap")
	maxCount := fs.Int("max-count", 0, "table and path element cap")
	outDir := fs.String("out", "", "output directory for graph.dot")

	if err := fs.Parse(args); err != nil {
		return err
	}

	movie, err := loadMovie(*in, decodeOptions(*strict, *maxTags, *maxCount))
	if err != nil {
		return err
	}

	g := refgraph.Build(movie)
	dot := render.DOT(g, "characters")
	fmt.Fprintf(os.Stderr, "%d nodes, %d edges\n", len(g.Nodes), len(g.Edges))

	if *outDir != "" {
		if err := ensureDir(*outDir); err != nil {
			return err
		}
		if err := output.WriteGraphDOT(*outDir, dot); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote graph.dot to %s\n", *outDir)
		return nil
	}

	fmt.Print(dot)
	return nil
}
