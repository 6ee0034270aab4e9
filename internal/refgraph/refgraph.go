// Package refgraph builds the character reference graph of a decoded
// movie: which definitions the timelines place, which bitmaps the shapes
// fill with, which fonts the text blocks draw from, and which characters
// the export and class binding tags publish.
package refgraph

import (
	"fmt"

	"github.com/zboralski/lattice"

	"unswf/internal/container"
	"unswf/internal/tags"
)

// Build constructs a lattice.Graph over the movie's characters. Nodes are
// typed labels such as "shape 3" or "font 2"; the root timeline is the
// "timeline" node. References to ids that were never defined keep their
// edge with a plain "character N" label, since dangling references are
// exactly what the graph is for.
func Build(movie *container.Movie) *lattice.Graph {
	b := &builder{
		g:      &lattice.Graph{},
		labels: make(map[uint16]string),
	}
	b.node("timeline")
	b.index(movie.Tags)
	b.link("timeline", movie.Tags)
	b.g.Dedup()
	return b.g
}

type builder struct {
	g      *lattice.Graph
	labels map[uint16]string
}

// index assigns every definition its typed node label before any edge is
// drawn, so forward references inside the stream still resolve.
func (b *builder) index(recs []tags.Record) {
	for i := range recs {
		switch p := recs[i].Payload.(type) {
		case tags.DefineShape:
			b.define(p.CharacterID, "shape")
		case tags.DefineSprite:
			b.define(p.SpriteID, "sprite")
			b.index(p.Tags)
		case tags.DefineText:
			b.define(p.CharacterID, "text")
		case tags.DefineEditText:
			b.define(p.CharacterID, "text")
		case tags.DefineFont:
			b.define(p.FontID, "font")
		case tags.DefineFont2:
			b.define(p.FontID, "font")
		case tags.DefineBits:
			b.define(p.CharacterID, "bitmap")
		case tags.DefineBitsJPEG2:
			b.define(p.CharacterID, "bitmap")
		case tags.DefineBitsJPEG3:
			b.define(p.CharacterID, "bitmap")
		case tags.DefineBitsLossless:
			b.define(p.CharacterID, "bitmap")
		case tags.DefineBinaryData:
			b.define(p.CharacterID, "binary")
		}
	}
}

func (b *builder) define(id uint16, kind string) {
	label := fmt.Sprintf("%s %d", kind, id)
	b.labels[id] = label
	b.node(label)
}

func (b *builder) node(label string) {
	b.g.Nodes = append(b.g.Nodes, label)
}

// label resolves a character reference, falling back to an untyped label
// for ids with no definition in the stream.
func (b *builder) label(id uint16) string {
	if l, ok := b.labels[id]; ok {
		return l
	}
	return fmt.Sprintf("character %d", id)
}

func (b *builder) edge(from, to string) {
	b.g.Edges = append(b.g.Edges, lattice.Edge{Caller: from, Callee: to})
}

// link draws edges for one tag stream. from is the placing timeline:
// "timeline" for the root stream, the sprite's own label for nested ones.
func (b *builder) link(from string, recs []tags.Record) {
	for i := range recs {
		switch p := recs[i].Payload.(type) {
		case tags.DefineShape:
			owner := b.label(p.CharacterID)
			for _, id := range shapeBitmapRefs(p) {
				b.edge(owner, b.label(id))
			}
		case tags.DefineText:
			owner := b.label(p.CharacterID)
			for _, rec := range p.Records {
				if rec.FontID != nil {
					b.edge(owner, b.label(*rec.FontID))
				}
			}
		case tags.DefineEditText:
			owner := b.label(p.CharacterID)
			if p.FontID != nil {
				b.edge(owner, b.label(*p.FontID))
			}
			if p.FontClass != nil {
				b.node("class " + *p.FontClass)
				b.edge(owner, "class "+*p.FontClass)
			}
		case tags.DefineSprite:
			b.link(b.label(p.SpriteID), p.Tags)
		case tags.PlaceObject:
			b.edge(from, b.label(p.CharacterID))
		case tags.PlaceObject2:
			if p.CharacterID != nil {
				b.edge(from, b.label(*p.CharacterID))
			}
		case tags.PlaceObject3:
			if p.CharacterID != nil {
				b.edge(from, b.label(*p.CharacterID))
			} else if p.ClassName != nil {
				b.node("class " + *p.ClassName)
				b.edge(from, "class "+*p.ClassName)
			}
		case tags.ExportAssets:
			for _, a := range p.Assets {
				b.node("export " + a.Name)
				b.edge("export "+a.Name, b.label(a.CharacterID))
			}
		case tags.SymbolClass:
			for _, s := range p.Symbols {
				to := "timeline"
				if s.CharacterID != 0 {
					to = b.label(s.CharacterID)
				}
				b.node("class " + s.Name)
				b.edge("class "+s.Name, to)
			}
		}
	}
}

// shapeBitmapRefs collects bitmap ids from every fill table a shape
// carries: the head tables, mid-shape replacements, and fill-painted
// strokes.
func shapeBitmapRefs(sh tags.DefineShape) []uint16 {
	var ids []uint16
	addFills := func(fills []tags.FillStyle) {
		for _, fs := range fills {
			if bm, ok := fs.(tags.BitmapFill); ok {
				ids = append(ids, bm.BitmapID)
			}
		}
	}
	addLines := func(lines []tags.LineStyle) {
		for _, ls := range lines {
			if el, ok := ls.(tags.EnhancedLineStyle); ok && el.Fill != nil {
				if bm, ok := el.Fill.(tags.BitmapFill); ok {
					ids = append(ids, bm.BitmapID)
				}
			}
		}
	}
	addFills(sh.FillStyles)
	addLines(sh.LineStyles)
	for _, rec := range sh.Records {
		if sc, ok := rec.(tags.StyleChange); ok && sc.NewStyles != nil {
			addFills(sc.NewStyles.FillStyles)
			addLines(sc.NewStyles.LineStyles)
		}
	}
	return ids
}
