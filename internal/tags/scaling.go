package tags

import (
	"fmt"

	"unswf/internal/swffmt"
)

// DefineScalingGrid attaches a 9-slice scaling rectangle to a character.
// The splitter rect's edges divide the character's bounds into the nine
// scaling regions; corners never stretch.
type DefineScalingGrid struct {
	CharacterID uint16      `json:"characterId"`
	Splitter    swffmt.Rect `json:"splitter"`
}

func (DefineScalingGrid) isTag() {}

func decodeDefineScalingGrid(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var sg DefineScalingGrid
	var err error
	if sg.CharacterID, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("scaling grid: id: %w", err)
	}
	if sg.Splitter, err = r.ReadRect(); err != nil {
		return sg, fmt.Errorf("scaling grid %d: splitter: %w", sg.CharacterID, err)
	}
	return sg, nil
}
