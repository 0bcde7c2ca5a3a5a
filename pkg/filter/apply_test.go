package filter

import (
	"testing"
	"time"

	"github.com/codegnosis/depspace/pkg/model"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func famPtr(f model.Family) *model.Family { return &f }

func testGraph(t *testing.T) *model.Graph {
	t.Helper()
	return model.Build(model.Analysis{
		FileGraph: map[string][]string{
			"main.ts":   {"util.ts", "style.css"},
			"util.ts":   {"helper.ts", "ext:lodash"},
			"index.ts":  {"util.ts"},
			"helper.ts": {},
		},
		FileData: map[string]model.FileRecord{
			"main.ts":   {Category: "TypeScript", IsEntryPoint: true},
			"util.ts":   {Category: "TypeScript"},
			"index.ts":  {Category: "TypeScript", IsEntryPoint: true},
			"helper.ts": {Category: "TypeScript"},
			"style.css": {Category: "CSS"},
		},
	})
}

func TestApplyPrecedence(t *testing.T) {
	g := testGraph(t)

	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{
			name:  "NoFilters",
			state: State{},
			want:  []string{"ext:lodash", "helper.ts", "index.ts", "main.ts", "style.css", "util.ts"},
		},
		{
			name:  "SelectedNodeNeighborhood",
			state: State{SelectedNode: "util.ts"},
			want:  []string{"ext:lodash", "helper.ts", "index.ts", "main.ts", "util.ts"},
		},
		{
			name:  "FamilyMultiSelect",
			state: State{Families: []model.Family{model.FamilyUI}},
			want:  []string{"style.css"},
		},
		{
			name:  "SoloWinsOverMultiSelect",
			state: State{SoloFamily: famPtr(model.FamilyUI), Families: []model.Family{model.FamilyLogic}},
			want:  []string{"style.css"},
		},
		{
			name:  "HideExternal",
			state: State{SelectedNode: "util.ts", HideExternal: true},
			want:  []string{"helper.ts", "index.ts", "main.ts", "util.ts"},
		},
		{
			name:  "SelectionThenFamily",
			state: State{SelectedNode: "util.ts", Families: []model.Family{model.FamilyLogic}},
			want:  []string{"helper.ts", "index.ts", "main.ts", "util.ts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Apply(g, tt.state, testNow)
			got := v.NodeIDs()
			if len(got) != len(tt.want) {
				t.Fatalf("visible = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("visible = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestApplyEdgesNeedBothEndpoints(t *testing.T) {
	g := testGraph(t)
	v := Apply(g, State{HideExternal: true}, testNow)
	for _, e := range v.Edges {
		if !v.Contains(e.From) || !v.Contains(e.To) {
			t.Errorf("edge %s→%s kept with filtered endpoint", e.From, e.To)
		}
	}
	// util.ts→ext:lodash must be gone, util.ts→helper.ts must survive.
	var sawExt, sawHelper bool
	for _, e := range v.Edges {
		if e.To == "ext:lodash" {
			sawExt = true
		}
		if e.From == "util.ts" && e.To == "helper.ts" {
			sawHelper = true
		}
	}
	if sawExt {
		t.Error("edge to hidden external survived")
	}
	if !sawHelper {
		t.Error("edge between visible nodes dropped")
	}
}

func TestApplyNeverEmpty(t *testing.T) {
	g := testGraph(t)
	// No Docs files exist, so this filter would empty the set.
	v := Apply(g, State{Families: []model.Family{model.FamilyDocs}}, testNow)
	if !v.Fallback {
		t.Fatal("expected never-empty fallback")
	}
	if len(v.Nodes) != g.NodeCount() {
		t.Errorf("fallback returned %d nodes, want full graph %d", len(v.Nodes), g.NodeCount())
	}
	if len(v.Edges) != g.EdgeCount() {
		t.Errorf("fallback returned %d edges, want %d", len(v.Edges), g.EdgeCount())
	}
}

func TestApplyEmptyGraph(t *testing.T) {
	v := Apply(model.NewGraph(), State{}, testNow)
	if len(v.Nodes) != 0 || v.Fallback {
		t.Errorf("empty graph should produce empty non-fallback view, got %d nodes", len(v.Nodes))
	}
}

// Selecting util.ts with edges util.ts→helper.ts and main.ts→util.ts
// yields {util.ts, helper.ts, main.ts}.
func TestSelectionScenario(t *testing.T) {
	g := model.Build(model.Analysis{
		FileGraph: map[string][]string{
			"util.ts": {"helper.ts"},
			"main.ts": {"util.ts"},
		},
	})
	v := Apply(g, State{SelectedNode: "util.ts"}, testNow)
	want := []string{"helper.ts", "main.ts", "util.ts"}
	got := v.NodeIDs()
	if len(got) != len(want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("visible = %v, want %v", got, want)
		}
	}
}

func TestMemoReusesViews(t *testing.T) {
	g := testGraph(t)
	m := NewMemo(g)

	s := State{Families: []model.Family{model.FamilyLogic}}
	v1 := m.Apply(s, testNow)
	v2 := m.Apply(s, testNow.Add(time.Second))
	if len(v1.Nodes) != len(v2.Nodes) {
		t.Fatalf("memoized views differ: %d vs %d nodes", len(v1.Nodes), len(v2.Nodes))
	}

	// A different state must not hit the same entry.
	v3 := m.Apply(State{Families: []model.Family{model.FamilyUI}}, testNow)
	if len(v3.Nodes) == len(v1.Nodes) {
		t.Fatal("distinct states returned identical views")
	}
}

func TestMemoIncidentKeyRotates(t *testing.T) {
	s := State{Mission: MissionIncident}
	k1 := fingerprint(s, testNow)
	k2 := fingerprint(s, testNow.Add(2*time.Minute))
	if k1 == k2 {
		t.Error("incident fingerprints should rotate with time")
	}
	k3 := fingerprint(State{Mission: MissionRisk}, testNow)
	k4 := fingerprint(State{Mission: MissionRisk}, testNow.Add(2*time.Minute))
	if k3 != k4 {
		t.Error("non-incident fingerprints should be time independent")
	}
}
