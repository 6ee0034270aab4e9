package scene

import (
	"sort"

	"unswf/internal/container"
	"unswf/internal/swffmt"
	"unswf/internal/tags"
)

// Translate walks the decoded records in stream order and produces the
// render command list plus the final display list snapshot. Records that
// failed to decode contribute whatever partial payload they carry. Sprite
// timelines are not expanded: the root timeline references a sprite like
// any other character, and its own placements stay inside its record.
func Translate(movie *container.Movie, opts swffmt.Options) *Scene {
	t := &translator{
		opts: opts,
		list: make(map[uint16]Placement),
	}
	for i := range movie.Tags {
		t.record(&movie.Tags[i])
	}
	return &Scene{
		Commands:    t.commands,
		DisplayList: t.snapshot(),
		Diags:       t.diags.Items(),
	}
}

// translator accumulates commands and display list state across one walk.
// The display list is the only mutable state that persists between
// records; everything else is per record.
type translator struct {
	opts     swffmt.Options
	commands []Command
	list     map[uint16]Placement
	diags    swffmt.Diags
}

func (t *translator) record(rec *tags.Record) {
	off := uint64(rec.Offset)
	switch p := rec.Payload.(type) {
	case tags.DefineShape:
		t.shape(off, p)
	case tags.PlaceObject:
		t.placeV1(p)
	case tags.PlaceObject2:
		t.place(off, p, nil)
	case tags.PlaceObject3:
		t.place(off, p.PlaceObject2, &p)
	case tags.RemoveObject:
		t.remove(off, p.Depth)
	case tags.RemoveObject2:
		t.remove(off, p.Depth)
	}
}

// placeV1 handles the v1 placement, which always supplies a character and
// always takes the depth over from whatever occupied it.
func (t *translator) placeV1(p tags.PlaceObject) {
	pl := Placement{
		Depth:       p.Depth,
		CharacterID: p.CharacterID,
		Matrix:      matrixToPixels(p.Matrix),
		Visible:     true,
	}
	if p.ColorTransform != nil {
		cx := promoteColorTransform(*p.ColorTransform)
		pl.ColorTransform = &cx
	}
	t.list[pl.Depth] = pl
	t.commands = append(t.commands, Place{Placement: pl})
}

// place resolves a v2 or v3 placement against the display list. A tag
// carrying a character (or a class binding on a non-move) starts a fresh
// entry at the depth, replacing any occupant; a tag carrying neither
// modifies the existing entry, updating only the fields it sets.
func (t *translator) place(off uint64, p tags.PlaceObject2, ext *tags.PlaceObject3) {
	fresh := p.CharacterID != nil
	if !fresh && ext != nil && ext.ClassName != nil && !p.Move {
		fresh = true
	}

	var pl Placement
	if fresh {
		pl = Placement{Depth: p.Depth, Matrix: identityMatrix(), Visible: true}
		if p.CharacterID != nil {
			pl.CharacterID = *p.CharacterID
		}
	} else {
		cur, ok := t.list[p.Depth]
		if !ok {
			t.diags.Addf(off, swffmt.DiagBadRef,
				"place at depth %d modifies an empty slot", p.Depth)
			return
		}
		pl = cur
	}

	if p.Matrix != nil {
		pl.Matrix = matrixToPixels(*p.Matrix)
	}
	if p.ColorTransform != nil {
		cx := *p.ColorTransform
		pl.ColorTransform = &cx
	}
	if p.Ratio != nil {
		pl.Ratio = *p.Ratio
	}
	if p.Name != nil {
		pl.Name = *p.Name
	}
	if p.ClipDepth != nil {
		pl.ClipDepth = *p.ClipDepth
	}
	if ext != nil {
		if ext.ClassName != nil {
			pl.ClassName = *ext.ClassName
		}
		if ext.BlendMode != nil {
			pl.BlendMode = ext.BlendMode.String()
		}
		if ext.Visible != nil {
			pl.Visible = *ext.Visible
		}
		if len(ext.Filters) > 0 {
			pl.Filters = ext.Filters
		}
	}

	t.list[pl.Depth] = pl
	t.commands = append(t.commands, Place{Placement: pl})
}

// remove clears a depth unconditionally. The v1 form names a character
// too, but the depth alone decides what goes.
func (t *translator) remove(off uint64, depth uint16) {
	if _, ok := t.list[depth]; !ok {
		t.diags.Addf(off, swffmt.DiagBadRef,
			"remove at depth %d with nothing placed", depth)
	}
	delete(t.list, depth)
	t.commands = append(t.commands, Remove{Depth: depth})
}

// snapshot returns the display list sorted by depth. Depths are sparse
// and stay exactly as placed.
func (t *translator) snapshot() []Placement {
	out := make([]Placement, 0, len(t.list))
	for _, pl := range t.list {
		out = append(out, pl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}

func matrixToPixels(m swffmt.Matrix) Matrix {
	return Matrix{
		ScaleX:      m.ScaleX,
		ScaleY:      m.ScaleY,
		RotateSkew0: m.RotateSkew0,
		RotateSkew1: m.RotateSkew1,
		TranslateX:  px(m.TranslateX),
		TranslateY:  px(m.TranslateY),
	}
}

func identityMatrix() Matrix { return Matrix{ScaleX: 1, ScaleY: 1} }

// promoteColorTransform widens the v1 alpha-less transform to the alpha
// form with an identity alpha channel.
func promoteColorTransform(cx swffmt.ColorTransform) swffmt.ColorTransformAlpha {
	out := swffmt.IdentityColorTransform()
	out.RedMult, out.GreenMult, out.BlueMult = cx.RedMult, cx.GreenMult, cx.BlueMult
	out.RedAdd, out.GreenAdd, out.BlueAdd = cx.RedAdd, cx.GreenAdd, cx.BlueAdd
	return out
}
