package model

import (
	"fmt"
	"strings"
)

// Family is the derived semantic grouping of a file, distinct from its raw
// detected category. Families drive layout sectors, formation ordering, and
// the default color palette, so the declaration order here is meaningful:
// it is the left-to-right order of family blocks in formation layout.
type Family int

const (
	// FamilyUnknown is the fallback for categories without a mapping.
	FamilyUnknown Family = iota
	// FamilyLogic covers source code in any language.
	FamilyLogic
	// FamilyUI covers markup and styling.
	FamilyUI
	// FamilyData covers structured data and database files.
	FamilyData
	// FamilyConfig covers configuration formats and files whose name marks
	// them as configuration regardless of format.
	FamilyConfig
	// FamilyAssets covers media and binary resources.
	FamilyAssets
	// FamilyDocs covers documentation and plain text.
	FamilyDocs
	// FamilyExternal covers third-party dependencies outside the project.
	FamilyExternal

	familyCount
)

// Families lists all families in formation order.
var Families = []Family{
	FamilyUnknown, FamilyLogic, FamilyUI, FamilyData,
	FamilyConfig, FamilyAssets, FamilyDocs, FamilyExternal,
}

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyLogic:
		return "logic"
	case FamilyUI:
		return "ui"
	case FamilyData:
		return "data"
	case FamilyConfig:
		return "config"
	case FamilyAssets:
		return "assets"
	case FamilyDocs:
		return "docs"
	case FamilyExternal:
		return "external"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so families serialize as
// their names in JSON and BSON payloads.
func (f Family) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized names
// are an error, so typos surface instead of silently becoming Unknown.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFamily maps a family name to its Family.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families {
		if f.String() == s {
			return f, nil
		}
	}
	return FamilyUnknown, fmt.Errorf("unknown family %q", s)
}

// categoryFamilies maps the analyzer's raw category strings to families.
// Categories not listed fall back to FamilyUnknown.
var categoryFamilies = map[string]Family{
	// Code
	"Python":            FamilyLogic,
	"JavaScript":        FamilyLogic,
	"JavaScript Module": FamilyLogic,
	"React":             FamilyLogic,
	"TypeScript":        FamilyLogic,
	"TypeScript React":  FamilyLogic,
	"TypeScript Module": FamilyLogic,
	"Java":              FamilyLogic,
	"C#":                FamilyLogic,
	"C++":               FamilyLogic,
	"C":                 FamilyLogic,
	"Header":            FamilyLogic,
	"Go":                FamilyLogic,
	"Rust":              FamilyLogic,
	"PHP":               FamilyLogic,
	"Ruby":              FamilyLogic,
	"Swift":             FamilyLogic,
	"Kotlin":            FamilyLogic,
	"Perl":              FamilyLogic,
	"Shell":             FamilyLogic,
	"PowerShell":        FamilyLogic,
	"Batch":             FamilyLogic,

	// Markup and styling
	"HTML": FamilyUI,
	"CSS":  FamilyUI,
	"SCSS": FamilyUI,
	"Less": FamilyUI,

	// Structured data
	"JSON":        FamilyData,
	"XML":         FamilyData,
	"CSV":         FamilyData,
	"SQL":         FamilyData,
	"Database":    FamilyData,
	"SQLite":      FamilyData,
	"Spreadsheet": FamilyData,

	// Configuration formats
	"TOML": FamilyConfig,
	"YAML": FamilyConfig,
	"INI":  FamilyConfig,
	"ENV":  FamilyConfig,

	// Media and binary resources
	"Image":   FamilyAssets,
	"SVG":     FamilyAssets,
	"Icon":    FamilyAssets,
	"Video":   FamilyAssets,
	"Audio":   FamilyAssets,
	"Font":    FamilyAssets,
	"Archive": FamilyAssets,

	// Documentation
	"Markdown": FamilyDocs,
	"Text":     FamilyDocs,
	"Document": FamilyDocs,

	"External": FamilyExternal,
}

// configNameHints mark a file as configuration by name alone, overriding
// whatever the category table says. A constants.ts file is configuration in
// spirit even though its category is TypeScript.
var configNameHints = []string{"config", "settings", "constant"}

// FamilyOf derives the family for a file from its raw category and id.
// The filename heuristic wins over the category table, except for external
// nodes which always stay external.
func FamilyOf(id, category string) Family {
	fam := categoryFamilies[category]
	if fam == FamilyExternal {
		return fam
	}
	name := strings.ToLower(basename(id))
	for _, hint := range configNameHints {
		if strings.Contains(name, hint) {
			return FamilyConfig
		}
	}
	return fam
}

// basename returns the final path segment of a slash-separated id.
func basename(id string) string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}
