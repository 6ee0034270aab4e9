package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"unswf/internal/output"
	"unswf/internal/tags"
)

func cmdShapes(args []string) error {
	fs := flag.NewFlagSet("shapes", flag.ExitOnError)
	in := fs.String("in", "", "path to movie file")
	strict := fs.Bool("strict", false, "fail acceptance checks")
	maxTags := fs.Int("max-tags", 0, "tag walker record cap")
	maxCount := fs.Int("max-count", 0, "table and path element cap")
	outDir := fs.String("out", "", "output directory for shapes.json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	movie, err := loadMovie(*in, decodeOptions(*strict, *maxTags, *maxCount))
	if err != nil {
		return err
	}

	var entries []output.ShapeEntry
	for _, rec := range movie.Tags {
		sh, ok := rec.Payload.(tags.DefineShape)
		if !ok {
			continue
		}
		entries = append(entries, output.ShapeEntry{Offset: rec.Offset, Shape: sh})
		fmt.Fprintf(os.Stderr, "shape %d v%d: %d fills, %d lines, %d records\n",
			sh.CharacterID, sh.Version, len(sh.FillStyles), len(sh.LineStyles), len(sh.Records))
	}
	fmt.Fprintf(os.Stderr, "%d shape definitions\n", len(entries))

	if *outDir != "" {
		if err := ensureDir(*outDir); err != nil {
			return err
		}
		if err := output.WriteShapesJSON(*outDir, entries); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote shapes.json to %s\n", *outDir)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
