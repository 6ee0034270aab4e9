package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"unswf/internal/output"
	"unswf/internal/tags"
)

func cmdABC(args []string) error {
	fs := flag.NewFlagSet("abc", flag.ExitOnError)
	in := fs.String("in", "", "path to movie file")
	strict := fs.Bool("strict", false, "fail acceptance checks")
	maxTags := fs.Int("max-tags", 0, "tag walker record cap")
	maxCount := fs.Int("max-count", 0, "table and path element cap")
	jsonOut := fs.Bool("json", false, "output as JSON")
	outDir := fs.String("out", "", "output directory for abc.json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	movie, err := loadMovie(*in, decodeOptions(*strict, *maxTags, *maxCount))
	if err != nil {
		return err
	}

	var entries []output.ABCEntry
	for _, rec := range movie.Tags {
		t, ok := rec.Payload.(tags.DoABC)
		if !ok {
			continue
		}
		entries = append(entries, output.ABCEntry{
			Offset: rec.Offset,
			Name:   t.Name,
			Flags:  t.Flags,
			Error:  rec.Err,
			Module: t.Module,
		})
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no bytecode modules")
		return nil
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = "(unnamed)"
		}
		if e.Module == nil {
			fmt.Printf("%08x  %-20s no module decoded: %s\n", e.Offset, name, e.Error)
			continue
		}
		m := e.Module
		fmt.Printf("%08x  %-20s abc %d.%d  %d methods, %d classes, %d scripts, %d strings\n",
			e.Offset, name, m.MajorVersion, m.MinorVersion,
			len(m.Methods), len(m.Classes), len(m.Scripts), len(m.Pool.Strings))
		if e.Error != "" {
			fmt.Printf("%8s  error: %s\n", "", e.Error)
		}
		if len(m.Diags) > 0 {
			fmt.Printf("%8s  %d diagnostics\n", "", len(m.Diags))
		}
	}

	if *outDir != "" {
		if err := ensureDir(*outDir); err != nil {
			return err
		}
		if err := output.WriteABCJSON(*outDir, entries); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote abc.json to %s\n", *outDir)
	}
	return nil
}
