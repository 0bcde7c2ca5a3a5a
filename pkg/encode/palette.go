package encode

import (
	"fmt"

	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/model"
)

// ColorMode selects which palette keys a node's base color.
type ColorMode int

const (
	// ColorByFamily uses the per-family palette (the default).
	ColorByFamily ColorMode = iota
	// ColorByCategory uses the raw detected category ("technical" mode).
	ColorByCategory
)

// String returns the color mode name.
func (m ColorMode) String() string {
	if m == ColorByCategory {
		return "category"
	}
	return "family"
}

// MarshalText implements encoding.TextMarshaler.
func (m ColorMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ColorMode) UnmarshalText(text []byte) error {
	parsed, err := ParseColorMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseColorMode maps a color mode name to its ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "family":
		return ColorByFamily, nil
	case "category":
		return ColorByCategory, nil
	default:
		return ColorByFamily, fmt.Errorf("unknown color mode %q", s)
	}
}

// familyPalette is the single lookup table for per-family base colors.
// All per-family visual behavior lives in tables like this one rather
// than in branching scattered across components.
var familyPalette = map[model.Family]Color{
	model.FamilyLogic:    hex(0x4f8ef7),
	model.FamilyUI:       hex(0xe66ad2),
	model.FamilyData:     hex(0x43c59e),
	model.FamilyConfig:   hex(0xf2b134),
	model.FamilyAssets:   hex(0x9a6df2),
	model.FamilyDocs:     hex(0x8fa3b0),
	model.FamilyExternal: hex(0x5c6370),
	model.FamilyUnknown:  hex(0x7d8491),
}

// categoryPalette covers the common raw categories for technical coloring.
// Categories not listed fall back to categoryDefault.
var categoryPalette = map[string]Color{
	"Python":     hex(0x3776ab),
	"JavaScript": hex(0xf7df1e),
	"TypeScript": hex(0x3178c6),
	"React":      hex(0x61dafb),
	"Go":         hex(0x00add8),
	"Rust":       hex(0xdea584),
	"HTML":       hex(0xe34c26),
	"CSS":        hex(0x563d7c),
	"SCSS":       hex(0xc6538c),
	"JSON":       hex(0x8bc34a),
	"YAML":       hex(0xcb171e),
	"Markdown":   hex(0x83a598),
	"Image":      hex(0xb385f2),
	"External":   hex(0x5c6370),
}

var categoryDefault = hex(0x7d8491)

// missionHighlights maps each mission to the color matching nodes blend
// toward while the mission is active.
var missionHighlights = map[filter.Mission]Color{
	filter.MissionRisk:     hex(0xff4d4d),
	filter.MissionRot:      hex(0xb9770e),
	filter.MissionOnboard:  hex(0x2ecc71),
	filter.MissionIncident: hex(0xff8c00),
	filter.MissionOptimize: hex(0x00bcd4),
}

// soloHighlight is the blend target for solo-family emphasis.
var soloHighlight = hex(0xffffff)

// FamilyColor returns the base color for a family.
func FamilyColor(f model.Family) Color { return familyPalette[f] }

// CategoryColor returns the technical-mode color for a raw category.
func CategoryColor(category string) Color {
	if c, ok := categoryPalette[category]; ok {
		return c
	}
	return categoryDefault
}

// MissionColor returns the highlight color for a mission.
// MissionNone yields the default color.
func MissionColor(m filter.Mission) Color {
	if c, ok := missionHighlights[m]; ok {
		return c
	}
	return categoryDefault
}
