package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"unswf/internal/output"
	"unswf/internal/scene"
)

func cmdDisplay(args []string) error {
	fs := flag.NewFlagSet("display", flag.ExitOnError)
	in := fs.String("in", "", "path to movie file")
	strict := fs.Bool("strict", false, "fail acceptance checks")
	maxTags := fs.Int("max-tags", 0, "tag walker record cap")
	maxCount := fs.Int("max-count", 0, "table and path element cap")
	outDir := fs.String("out", "", "output directory for display.json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := decodeOptions(*strict, *maxTags, *maxCount)
	movie, err := loadMovie(*in, opts)
	if err != nil {
		return err
	}

	sc := scene.Translate(movie, opts)
	fmt.Fprintf(os.Stderr, "%d placements after the final record, %d diagnostics\n",
		len(sc.DisplayList), len(sc.Diags))

	if *outDir != "" {
		if err := ensureDir(*outDir); err != nil {
			return err
		}
		if err := output.WriteDisplayJSON(*outDir, sc.DisplayList); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote display.json to %s\n", *outDir)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sc.DisplayList)
}
