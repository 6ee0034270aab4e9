package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"unswf/internal/container"
	"unswf/internal/scene"
	"unswf/internal/swffmt"
)

// movieInfo is the header summary printed by the info command.
type movieInfo struct {
	Signature   string        `json:"signature"`
	Compression string        `json:"compression"`
	Version     uint8         `json:"version"`
	FileLength  uint32        `json:"fileLength"`
	StageBounds swffmt.Rect   `json:"stageBounds"`
	StageWidth  float64       `json:"stageWidth"`
	StageHeight float64       `json:"stageHeight"`
	FrameRate   float64       `json:"frameRate"`
	FrameCount  uint16        `json:"frameCount"`
	Tags        int           `json:"tags"`
	Diags       []swffmt.Diag `json:"diagnostics,omitempty"`
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	in := fs.String("in", "", "path to movie file")
	strict := fs.Bool("strict", false, "fail acceptance checks")
	maxTags := fs.Int("max-tags", 0, "tag walker record cap")
	maxCount := fs.Int("max-count", 0, "table and path element cap")
	jsonOut := fs.Bool("json", false, "output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	movie, err := loadMovie(*in, decodeOptions(*strict, *maxTags, *maxCount))
	if err != nil {
		return err
	}

	stage := scene.PixelBounds(movie.StageBounds)
	info := movieInfo{
		Signature:   movie.Signature,
		Compression: compressionName(movie.Signature),
		Version:     movie.Version,
		FileLength:  movie.FileLength,
		StageBounds: movie.StageBounds,
		StageWidth:  stage.Width(),
		StageHeight: stage.Height(),
		FrameRate:   movie.FrameRate,
		FrameCount:  movie.FrameCount,
		Tags:        len(movie.Tags),
		Diags:       movie.Diags,
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("Signature:  %s (%s), version %d\n", info.Signature, info.Compression, info.Version)
	fmt.Printf("Length:     %d bytes declared\n", info.FileLength)
	fmt.Printf("Stage:      %gx%g px (x %d..%d, y %d..%d twips)\n",
		info.StageWidth, info.StageHeight,
		movie.StageBounds.XMin, movie.StageBounds.XMax,
		movie.StageBounds.YMin, movie.StageBounds.YMax)
	fmt.Printf("Frames:     %d at %g fps\n", info.FrameCount, info.FrameRate)
	fmt.Printf("Tags:       %d\n", info.Tags)

	if len(movie.Diags) > 0 {
		fmt.Printf("\nDiagnostics (%d):\n", len(movie.Diags))
		for _, d := range movie.Diags {
			fmt.Printf("  %s\n", d)
		}
	}
	return nil
}

// compressionName names the payload encoding selected by the signature.
func compressionName(sig string) string {
	switch sig {
	case container.SignatureUncompressed:
		return "uncompressed"
	case container.SignatureZlib:
		return "zlib"
	case container.SignatureLZMA:
		return "lzma"
	}
	return "unknown"
}
