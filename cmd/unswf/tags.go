package main

import (
	"flag"
	"fmt"
	"os"

	"unswf/internal/output"
	"unswf/internal/tags"
)

func cmdTags(args []string) error {
	fs := flag.NewFlagSet("tags", flag.ExitOnError)
	in := fs.String("in", "", "path to movie file")
	strict := fs.Bool("strict", false, "fail acceptance checks")
	maxTags := fs.Int("max-tags", 0, "tag walker record cap")
	maxCount := fs.Int("max-count", 0, "table and path element cap")
	outDir := fs.String("out", "", "output directory for movie.json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	movie, err := loadMovie(*in, decodeOptions(*strict, *maxTags, *maxCount))
	if err != nil {
		return err
	}

	printRecords(movie.Tags, 0)
	fmt.Fprintf(os.Stderr, "%d records, %d diagnostics\n", len(movie.Tags), len(movie.Diags))

	if *outDir != "" {
		if err := ensureDir(*outDir); err != nil {
			return err
		}
		if err := output.WriteMovieJSON(*outDir, movie); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote movie.json to %s\n", *outDir)
	}
	return nil
}

// printRecords lists one line per record, with sprite timelines indented
// under their definition.
func printRecords(recs []tags.Record, indent int) {
	for _, rec := range recs {
		fmt.Printf("%*s%08x  %-24s code=%-3d len=%d", indent, "", rec.Offset, rec.Name, rec.Code, rec.Length)
		if rec.Err != "" {
			fmt.Printf("  error: %s", rec.Err)
		}
		fmt.Println()
		if sp, ok := rec.Payload.(tags.DefineSprite); ok {
			printRecords(sp.Tags, indent+2)
		}
	}
}
