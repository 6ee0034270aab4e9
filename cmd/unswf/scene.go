package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"unswf/internal/output"
	"unswf/internal/scene"
)

func cmdScene(args []string) error {
	fs := flag.NewFlagSet("scene", flag.ExitOnError)
	in := fs.String("in", "", "path to movie file")
	strict := fs.Bool("strict", false, "fail acceptance checks")
	maxTags := fs.Int("max-tags", 0, "tag walker record cap")
	maxCount := fs.Int("max-count", 0, "table and path element cap")
	jsonOut := fs.Bool("json", false, "output as JSON")
	outDir := fs.String("out", "", "output directory for scene.json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := decodeOptions(*strict, *maxTags, *maxCount)
	movie, err := loadMovie(*in, opts)
	if err != nil {
		return err
	}

	sc := scene.Translate(movie, opts)
	doc := output.BuildSceneDoc(sc)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	counts := make(map[string]int)
	for _, c := range sc.Commands {
		counts[c.Op()]++
	}
	for _, op := range []string{"begin_shape", "set_fill_styles", "set_line_styles", "draw_path", "place", "remove"} {
		if counts[op] > 0 {
			fmt.Printf("%-16s %d\n", op, counts[op])
		}
	}
	fmt.Printf("%-16s %d\n", "display list", len(sc.DisplayList))

	if len(sc.Diags) > 0 {
		fmt.Printf("\nDiagnostics (%d):\n", len(sc.Diags))
		for _, d := range sc.Diags {
			fmt.Printf("  %s\n", d)
		}
	}

	if *outDir != "" {
		if err := ensureDir(*outDir); err != nil {
			return err
		}
		if err := output.WriteSceneJSON(*outDir, doc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote scene.json to %s\n", *outDir)
	}
	return nil
}
