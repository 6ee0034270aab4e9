package tags

import (
	"fmt"

	"unswf/internal/swffmt"
)

// ShowFrame advances the timeline by one frame.
type ShowFrame struct{}

// SetBackgroundColor sets the stage background. The wire color has no alpha
// channel; it decodes opaque.
type SetBackgroundColor struct {
	Color swffmt.Color `json:"color"`
}

// FrameLabel names the current frame. Anchor is the trailing named-anchor
// flag some writers append after the label's terminator.
type FrameLabel struct {
	Name   string `json:"name"`
	Anchor bool   `json:"anchor,omitempty"`
}

// Protect marks the file as protected. The optional password digest is kept
// raw and uninterpreted.
type Protect struct {
	Password []byte `json:"-"`
}

// ScriptLimits overrides the player's script sandbox limits.
type ScriptLimits struct {
	MaxRecursionDepth    uint16 `json:"maxRecursionDepth"`
	ScriptTimeoutSeconds uint16 `json:"scriptTimeoutSeconds"`
}

// FileAttributes is the v8+ capability bitfield tag.
type FileAttributes struct {
	UseDirectBlit bool `json:"useDirectBlit"`
	UseGPU        bool `json:"useGPU"`
	HasMetadata   bool `json:"hasMetadata"`
	ActionScript3 bool `json:"actionScript3"`
	UseNetwork    bool `json:"useNetwork"`
}

// Metadata carries the file's RDF description verbatim.
type Metadata struct {
	XML string `json:"xml"`
}

// AssetBinding pairs a dictionary character with an exported name.
type AssetBinding struct {
	CharacterID uint16 `json:"characterId"`
	Name        string `json:"name"`
}

// ExportAssets publishes characters for import by other files.
type ExportAssets struct {
	Assets []AssetBinding `json:"assets"`
}

// SymbolClass binds characters to bytecode class names. Character id 0
// addresses the main timeline.
type SymbolClass struct {
	Symbols []AssetBinding `json:"symbols"`
}

// SceneEntry marks a scene starting at a frame offset.
type SceneEntry struct {
	Offset uint32 `json:"offset"`
	Name   string `json:"name"`
}

// FrameLabelEntry labels an absolute frame number.
type FrameLabelEntry struct {
	Frame uint32 `json:"frame"`
	Label string `json:"label"`
}

// SceneAndFrameLabelData carries the main timeline's scene table.
type SceneAndFrameLabelData struct {
	Scenes      []SceneEntry      `json:"scenes"`
	FrameLabels []FrameLabelEntry `json:"frameLabels"`
}

func (ShowFrame) isTag()              {}
func (SetBackgroundColor) isTag()     {}
func (FrameLabel) isTag()             {}
func (Protect) isTag()                {}
func (ScriptLimits) isTag()           {}
func (FileAttributes) isTag()         {}
func (Metadata) isTag()               {}
func (ExportAssets) isTag()           {}
func (SymbolClass) isTag()            {}
func (SceneAndFrameLabelData) isTag() {}

func decodeShowFrame(w *Walker, body []byte) (Tag, error) {
	return ShowFrame{}, nil
}

func decodeSetBackgroundColor(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	c, err := r.ReadRGB()
	if err != nil {
		return nil, fmt.Errorf("background color: %w", err)
	}
	return SetBackgroundColor{Color: c}, nil
}

func decodeFrameLabel(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	name, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("frame label: %w", err)
	}
	fl := FrameLabel{Name: name}
	if r.Remaining() > 0 {
		b, _ := r.ReadUint8()
		fl.Anchor = b != 0
	}
	return fl, nil
}

func decodeProtect(w *Walker, body []byte) (Tag, error) {
	return Protect{Password: body}, nil
}

func decodeScriptLimits(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var sl ScriptLimits
	var err error
	if sl.MaxRecursionDepth, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("script limits: %w", err)
	}
	if sl.ScriptTimeoutSeconds, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("script limits: %w", err)
	}
	return sl, nil
}

func decodeFileAttributes(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var fa FileAttributes
	flags := []struct {
		bits int
		dst  *bool
	}{
		{1, nil}, // reserved
		{1, &fa.UseDirectBlit},
		{1, &fa.UseGPU},
		{1, &fa.HasMetadata},
		{1, &fa.ActionScript3},
		{2, nil}, // reserved
		{1, &fa.UseNetwork},
	}
	for _, f := range flags {
		v, err := r.ReadUB(f.bits)
		if err != nil {
			return nil, fmt.Errorf("file attributes: %w", err)
		}
		if f.dst != nil {
			*f.dst = v != 0
		}
	}
	return fa, nil
}

func decodeMetadata(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	xml, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return Metadata{XML: xml}, nil
}

// readAssetBindings decodes the (count, id+name pairs) layout shared by
// ExportAssets and SymbolClass.
func readAssetBindings(w *Walker, r *swffmt.Reader, what string) ([]AssetBinding, error) {
	count, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("%s count: %w", what, err)
	}
	if err := w.checkCount(what, int(count)); err != nil {
		return nil, err
	}
	out := make([]AssetBinding, 0, count)
	for i := 0; i < int(count); i++ {
		var b AssetBinding
		if b.CharacterID, err = r.ReadUint16(); err != nil {
			return out, fmt.Errorf("%s %d/%d id: %w", what, i, count, err)
		}
		if b.Name, err = r.ReadString(); err != nil {
			return out, fmt.Errorf("%s %d/%d name: %w", what, i, count, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func decodeExportAssets(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	assets, err := readAssetBindings(w, r, "export")
	if err != nil {
		return ExportAssets{Assets: assets}, err
	}
	return ExportAssets{Assets: assets}, nil
}

func decodeSymbolClass(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	symbols, err := readAssetBindings(w, r, "symbol")
	if err != nil {
		return SymbolClass{Symbols: symbols}, err
	}
	return SymbolClass{Symbols: symbols}, nil
}

func decodeSceneAndFrameLabelData(w *Walker, body []byte) (Tag, error) {
	r := swffmt.NewReader(body)
	var out SceneAndFrameLabelData
	sceneCount, err := r.ReadEncodedU32()
	if err != nil {
		return nil, fmt.Errorf("scene count: %w", err)
	}
	if err := w.checkCount("scene", int(sceneCount)); err != nil {
		return nil, err
	}
	for i := uint32(0); i < sceneCount; i++ {
		var s SceneEntry
		if s.Offset, err = r.ReadEncodedU32(); err != nil {
			return out, fmt.Errorf("scene %d/%d offset: %w", i, sceneCount, err)
		}
		if s.Name, err = r.ReadString(); err != nil {
			return out, fmt.Errorf("scene %d/%d name: %w", i, sceneCount, err)
		}
		out.Scenes = append(out.Scenes, s)
	}
	labelCount, err := r.ReadEncodedU32()
	if err != nil {
		return out, fmt.Errorf("frame label count: %w", err)
	}
	if err := w.checkCount("frame label", int(labelCount)); err != nil {
		return out, err
	}
	for i := uint32(0); i < labelCount; i++ {
		var fl FrameLabelEntry
		if fl.Frame, err = r.ReadEncodedU32(); err != nil {
			return out, fmt.Errorf("frame label %d/%d frame: %w", i, labelCount, err)
		}
		if fl.Label, err = r.ReadString(); err != nil {
			return out, fmt.Errorf("frame label %d/%d label: %w", i, labelCount, err)
		}
		out.FrameLabels = append(out.FrameLabels, fl)
	}
	return out, nil
}
