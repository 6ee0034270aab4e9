package refgraph

import (
	"slices"
	"testing"

	"github.com/zboralski/lattice"

	"unswf/internal/container"
	"unswf/internal/tags"
)

func ptr[T any](v T) *T { return &v }

func recordsOf(payloads ...tags.Tag) []tags.Record {
	recs := make([]tags.Record, len(payloads))
	for i, p := range payloads {
		recs[i] = tags.Record{Payload: p}
	}
	return recs
}

func countEdge(g *lattice.Graph, from, to string) int {
	var n int
	for _, e := range g.Edges {
		if e.Caller == from && e.Callee == to {
			n++
		}
	}
	return n
}

func TestBuild_Edges(t *testing.T) {
	movie := &container.Movie{Tags: recordsOf(
		tags.DefineBitsJPEG2{CharacterID: 7},
		tags.DefineShape{
			Version:     1,
			CharacterID: 3,
			FillStyles:  []tags.FillStyle{tags.BitmapFill{BitmapID: 7}},
		},
		tags.DefineFont2{Version: 2, FontID: 2},
		tags.DefineText{
			Version:     1,
			CharacterID: 4,
			Records:     []tags.TextRecord{{FontID: ptr(uint16(2))}},
		},
		tags.DefineSprite{
			SpriteID:   9,
			FrameCount: 1,
			Tags: recordsOf(
				tags.PlaceObject2{Depth: 1, CharacterID: ptr(uint16(3))},
			),
		},
		tags.DefineBinaryData{CharacterID: 12},
		tags.PlaceObject2{Depth: 1, CharacterID: ptr(uint16(9))},
		tags.ExportAssets{Assets: []tags.AssetBinding{{CharacterID: 3, Name: "logo"}}},
		tags.SymbolClass{Symbols: []tags.AssetBinding{
			{CharacterID: 0, Name: "com.example.Main"},
			{CharacterID: 12, Name: "com.example.Data"},
		}},
	)}

	g := Build(movie)

	for _, node := range []string{
		"timeline", "shape 3", "bitmap 7", "sprite 9", "text 4", "font 2",
		"binary 12", "export logo", "class com.example.Main",
	} {
		if !slices.Contains(g.Nodes, node) {
			t.Errorf("nodes = %v, missing %q", g.Nodes, node)
		}
	}
	edges := [][2]string{
		{"shape 3", "bitmap 7"},
		{"text 4", "font 2"},
		{"sprite 9", "shape 3"},
		{"timeline", "sprite 9"},
		{"export logo", "shape 3"},
		{"class com.example.Main", "timeline"},
		{"class com.example.Data", "binary 12"},
	}
	for _, e := range edges {
		if countEdge(g, e[0], e[1]) != 1 {
			t.Errorf("edge %q -> %q missing, have %v", e[0], e[1], g.Edges)
		}
	}
}

func TestBuild_DanglingReferenceKeepsEdge(t *testing.T) {
	movie := &container.Movie{Tags: recordsOf(
		tags.PlaceObject{CharacterID: 42, Depth: 1},
	)}

	g := Build(movie)
	if countEdge(g, "timeline", "character 42") != 1 {
		t.Fatalf("edges = %v, want the dangling reference kept", g.Edges)
	}
	if slices.Contains(g.Nodes, "character 42") {
		t.Errorf("nodes = %v, undefined ids should not become nodes", g.Nodes)
	}
}

func TestBuild_DedupCollapsesRepeats(t *testing.T) {
	movie := &container.Movie{Tags: recordsOf(
		tags.DefineShape{Version: 1, CharacterID: 3},
		tags.PlaceObject2{Depth: 1, CharacterID: ptr(uint16(3))},
		tags.PlaceObject2{Depth: 2, CharacterID: ptr(uint16(3))},
	)}

	g := Build(movie)
	if n := countEdge(g, "timeline", "shape 3"); n != 1 {
		t.Errorf("got %d timeline -> shape 3 edges, want repeats deduplicated to 1", n)
	}
}

func TestBuild_EditTextFonts(t *testing.T) {
	movie := &container.Movie{Tags: recordsOf(
		tags.DefineFont2{Version: 3, FontID: 5},
		tags.DefineEditText{CharacterID: 6, FontID: ptr(uint16(5))},
		tags.DefineEditText{CharacterID: 8, FontClass: ptr("fonts.Body")},
	)}

	g := Build(movie)
	if countEdge(g, "text 6", "font 5") != 1 {
		t.Errorf("edges = %v, want text 6 -> font 5", g.Edges)
	}
	if countEdge(g, "text 8", "class fonts.Body") != 1 {
		t.Errorf("edges = %v, want text 8 -> class fonts.Body", g.Edges)
	}
}
