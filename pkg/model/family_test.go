package model

import "testing"

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		category string
		want     Family
	}{
		{"Python", "src/app.py", "Python", FamilyLogic},
		{"TypeScriptReact", "src/View.tsx", "TypeScript React", FamilyLogic},
		{"CSS", "styles/main.css", "CSS", FamilyUI},
		{"JSON", "data/fixtures.json", "FamilyData", FamilyUnknown},
		{"JSONMapped", "data/fixtures.json", "JSON", FamilyData},
		{"YAML", "ci/pipeline.yaml", "YAML", FamilyConfig},
		{"Markdown", "README.md", "Markdown", FamilyDocs},
		{"Image", "logo.png", "Image", FamilyAssets},
		{"External", "ext:react", "External", FamilyExternal},
		{"UnknownCategory", "weird.xyz", "Mystery", FamilyUnknown},

		// Filename heuristic overrides the category table.
		{"ConfigByName", "src/config.ts", "TypeScript", FamilyConfig},
		{"SettingsByName", "app/Settings.py", "Python", FamilyConfig},
		{"ConstantsByName", "lib/constants.js", "JavaScript", FamilyConfig},
		{"CaseInsensitive", "src/AppConfig.java", "Java", FamilyConfig},
		{"HeuristicOnlyOnBasename", "config/app.py", "Python", FamilyLogic},
		{"ExternalWinsOverName", "ext:config-loader", "External", FamilyExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FamilyOf(tt.id, tt.category); got != tt.want {
				t.Errorf("FamilyOf(%q, %q) = %v, want %v", tt.id, tt.category, got, tt.want)
			}
		})
	}
}

func TestFamilyTextRoundTrip(t *testing.T) {
	for _, f := range Families {
		text, err := f.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", f, err)
		}
		var back Family
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if back != f {
			t.Errorf("round trip %v → %q → %v", f, text, back)
		}
	}
}

func TestFamilyUnmarshalRejectsUnknownNames(t *testing.T) {
	tests := []string{"logc", "LOGIC", "definitely-not-a-family", ""}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			var f Family
			if err := f.UnmarshalText([]byte(name)); err == nil {
				t.Errorf("UnmarshalText(%q) = nil error, want rejection", name)
			}
			if _, err := ParseFamily(name); err == nil {
				t.Errorf("ParseFamily(%q) = nil error, want rejection", name)
			}
		})
	}
}
