package main

import (
	"fmt"
	"os"

	"unswf/internal/container"
	"unswf/internal/swffmt"
)

// decodeOptions builds decode options from the flags every command shares.
func decodeOptions(strict bool, maxTags, maxCount int) swffmt.Options {
	opts := swffmt.Options{
		Mode:     swffmt.ModeBestEffort,
		MaxTags:  maxTags,
		MaxCount: maxCount,
	}
	if strict {
		opts.Mode = swffmt.ModeStrict
	}
	return opts
}

// loadMovie reads and decodes the movie at path.
func loadMovie(path string, opts swffmt.Options) (*container.Movie, error) {
	if path == "" {
		return nil, fmt.Errorf("--in is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	movie, err := container.Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return movie, nil
}

// ensureDir creates the output directory for commands that take --out.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
