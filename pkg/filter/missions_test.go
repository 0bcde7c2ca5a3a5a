package filter

import (
	"testing"
	"time"

	"github.com/codegnosis/depspace/pkg/model"
)

func node(m model.Metrics, fam model.Family) *model.Node {
	return &model.Node{ID: "n", Family: fam, Metrics: m}
}

func TestMissionPredicates(t *testing.T) {
	now := testNow
	tests := []struct {
		name    string
		mission Mission
		node    *model.Node
		want    bool
	}{
		{"RiskHighInbound", MissionRisk, node(model.Metrics{Inbound: 9}, model.FamilyLogic), true},
		{"RiskAtThreshold", MissionRisk, node(model.Metrics{Inbound: 8}, model.FamilyLogic), false},
		{"RiskCycle", MissionRisk, node(model.Metrics{CycleParticipation: 1}, model.FamilyLogic), true},
		{"RiskClean", MissionRisk, node(model.Metrics{Inbound: 2}, model.FamilyLogic), false},

		{"RotUnused", MissionRot, node(model.Metrics{Unused: true, Inbound: 4}, model.FamilyLogic), true},
		{"RotOrphan", MissionRot, node(model.Metrics{}, model.FamilyLogic), true},
		{"RotEntryPointNotOrphan", MissionRot, node(model.Metrics{EntryPoint: true}, model.FamilyLogic), false},
		{"RotReferencedFile", MissionRot, node(model.Metrics{Inbound: 3}, model.FamilyLogic), false},

		{"OnboardEntryPoint", MissionOnboard, node(model.Metrics{EntryPoint: true, Inbound: 5}, model.FamilyLogic), true},
		{"OnboardOrphan", MissionOnboard, node(model.Metrics{}, model.FamilyLogic), true},
		{"OnboardRegular", MissionOnboard, node(model.Metrics{Inbound: 2}, model.FamilyLogic), false},

		{"IncidentFresh", MissionIncident, node(model.Metrics{Inbound: 1, LastModified: now.Add(-2 * time.Hour)}, model.FamilyLogic), true},
		{"IncidentWeekOld", MissionIncident, node(model.Metrics{Inbound: 1, LastModified: now.Add(-5 * 24 * time.Hour)}, model.FamilyLogic), true},
		{"IncidentAncient", MissionIncident, node(model.Metrics{Inbound: 1, LastModified: now.Add(-60 * 24 * time.Hour)}, model.FamilyLogic), false},
		{"IncidentHighFanout", MissionIncident, node(model.Metrics{Inbound: 1, Outbound: 9}, model.FamilyLogic), true},

		{"OptimizeAsset", MissionOptimize, node(model.Metrics{Inbound: 1}, model.FamilyAssets), true},
		{"OptimizeDeepChain", MissionOptimize, node(model.Metrics{Inbound: 1, ChainDepth: 7}, model.FamilyLogic), true},
		{"OptimizeShallow", MissionOptimize, node(model.Metrics{Inbound: 1, ChainDepth: 3}, model.FamilyLogic), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mission.Matches(tt.node, now); got != tt.want {
				t.Errorf("%s.Matches = %t, want %t", tt.mission, got, tt.want)
			}
		})
	}
}

func TestIncidentStrengthTiers(t *testing.T) {
	fresh := node(model.Metrics{Inbound: 1, LastModified: testNow.Add(-time.Hour)}, model.FamilyLogic)
	stale := node(model.Metrics{Inbound: 1, LastModified: testNow.Add(-3 * 24 * time.Hour)}, model.FamilyLogic)

	if got := MissionIncident.Strength(fresh, testNow); got != 1 {
		t.Errorf("fresh strength = %v, want 1", got)
	}
	got := MissionIncident.Strength(stale, testNow)
	if got <= 0 || got >= 1 {
		t.Errorf("stale strength = %v, want weaker highlight in (0,1)", got)
	}
}

// Mission rot over {index.ts entry point, util.ts inbound=3, orphan.ts}
// yields exactly {orphan.ts}.
func TestRotScenario(t *testing.T) {
	g := model.Build(model.Analysis{
		FileGraph: map[string][]string{
			"index.ts":  {"util.ts"},
			"a.ts":      {"util.ts"},
			"b.ts":      {"util.ts"},
			"orphan.ts": {},
		},
		FileData: map[string]model.FileRecord{
			"index.ts":  {Category: "TypeScript", IsEntryPoint: true},
			"util.ts":   {Category: "TypeScript"},
			"orphan.ts": {Category: "TypeScript"},
			"a.ts":      {Category: "TypeScript", IsEntryPoint: true},
			"b.ts":      {Category: "TypeScript", IsEntryPoint: true},
		},
	})

	v := Apply(g, State{Mission: MissionRot}, testNow)
	if len(v.Nodes) != 1 || v.Nodes[0].ID != "orphan.ts" {
		t.Fatalf("rot visible = %v, want [orphan.ts]", v.NodeIDs())
	}
}

func TestClassifyOrder(t *testing.T) {
	// Satisfies both risk (inbound > 8) and incident (outbound > 8); the
	// ordered chain reports risk.
	n := node(model.Metrics{Inbound: 9, Outbound: 9}, model.FamilyLogic)
	m, ok := Classify(n, testNow)
	if !ok || m != MissionRisk {
		t.Errorf("Classify = %v/%t, want risk first", m, ok)
	}

	clean := node(model.Metrics{Inbound: 2, Outbound: 1}, model.FamilyLogic)
	if _, ok := Classify(clean, testNow); ok {
		t.Error("clean node should match no mission")
	}
}

func TestMissionValid(t *testing.T) {
	for _, m := range append([]Mission{MissionNone}, Missions...) {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if Mission("bogus").Valid() {
		t.Error("bogus mission accepted")
	}
}
