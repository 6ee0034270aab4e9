// Package output writes unswf decode results to files.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"unswf/internal/abc"
	"unswf/internal/container"
	"unswf/internal/scene"
	"unswf/internal/tags"
)

// WriteMovieJSON writes the full decoded movie to movie.json.
func WriteMovieJSON(dir string, movie *container.Movie) error {
	return writeJSON(filepath.Join(dir, "movie.json"), movie)
}

// ShapeEntry is one shape definition with its stream offset.
type ShapeEntry struct {
	Offset int              `json:"offset"`
	Shape  tags.DefineShape `json:"shape"`
}

// WriteShapesJSON writes shape definitions to shapes.json.
func WriteShapesJSON(dir string, shapes []ShapeEntry) error {
	return writeJSON(filepath.Join(dir, "shapes.json"), shapes)
}

// ABCEntry is one decoded bytecode module with its tag context.
type ABCEntry struct {
	Offset int         `json:"offset"`
	Name   string      `json:"name,omitempty"`
	Flags  uint32      `json:"flags,omitempty"`
	Error  string      `json:"error,omitempty"`
	Module *abc.Module `json:"module,omitempty"`
}

// WriteABCJSON writes bytecode modules to abc.json.
func WriteABCJSON(dir string, entries []ABCEntry) error {
	return writeJSON(filepath.Join(dir, "abc.json"), entries)
}

// CommandEntry pairs a render command with its operation name, so the
// JSON form stays self-describing across the command variants.
type CommandEntry struct {
	Op   string        `json:"op"`
	Args scene.Command `json:"args"`
}

// SceneDoc is the artifact written for a translated scene.
type SceneDoc struct {
	Commands    []CommandEntry    `json:"commands"`
	DisplayList []scene.Placement `json:"displayList"`
	Diags       any               `json:"diagnostics,omitempty"`
}

// BuildSceneDoc wraps a translated scene for serialization.
func BuildSceneDoc(sc *scene.Scene) *SceneDoc {
	doc := &SceneDoc{DisplayList: sc.DisplayList}
	for _, c := range sc.Commands {
		doc.Commands = append(doc.Commands, CommandEntry{Op: c.Op(), Args: c})
	}
	if len(sc.Diags) > 0 {
		doc.Diags = sc.Diags
	}
	return doc
}

// WriteSceneJSON writes the translated scene to scene.json.
func WriteSceneJSON(dir string, doc *SceneDoc) error {
	return writeJSON(filepath.Join(dir, "scene.json"), doc)
}

// WriteDisplayJSON writes the display list snapshot to display.json.
func WriteDisplayJSON(dir string, list []scene.Placement) error {
	return writeJSON(filepath.Join(dir, "display.json"), list)
}

// WriteGraphDOT writes the character reference graph to graph.dot.
func WriteGraphDOT(dir string, dot string) error {
	path := filepath.Join(dir, "graph.dot")
	if err := os.WriteFile(path, []byte(dot), 0644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}
