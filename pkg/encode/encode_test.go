package encode

import (
	"testing"
	"time"

	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/model"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fanInGraph(t *testing.T, hubFans int) *model.Graph {
	t.Helper()
	deps := map[string][]string{"hub.py": {}}
	for i := 0; i < hubFans; i++ {
		id := string(rune('a'+i)) + ".py"
		deps[id] = []string{"hub.py"}
	}
	return model.Build(model.Analysis{FileGraph: deps})
}

func TestSizeMonotonicInInbound(t *testing.T) {
	m := NewMapper(Params{})
	g := model.NewGraph()
	prev := -1.0
	for inbound := 0; inbound <= 40; inbound++ {
		n := &model.Node{ID: "n", Metrics: model.Metrics{Inbound: inbound}}
		size := m.Size(g, n)
		if size < prev {
			t.Fatalf("size decreased at inbound=%d: %.3f < %.3f", inbound, size, prev)
		}
		prev = size
	}
	p := DefaultParams()
	if prev != p.SizeMax {
		t.Errorf("size should saturate at max %.1f, got %.3f", p.SizeMax, prev)
	}
}

func TestHubFixedMaximumSize(t *testing.T) {
	g := fanInGraph(t, 3)
	m := NewMapper(Params{})
	p := DefaultParams()

	hub, ok := g.Hub()
	if !ok {
		t.Fatal("no hub")
	}
	if size := m.Size(g, hub); size != p.SizeMax {
		t.Errorf("hub size = %.2f, want fixed max %.2f", size, p.SizeMax)
	}
	// A low-inbound non-hub node stays small.
	n, _ := g.Node("a.py")
	if size := m.Size(g, n); size >= p.SizeMax {
		t.Errorf("non-hub size = %.2f, want below max", size)
	}
}

func TestDimmedNotHidden(t *testing.T) {
	g := fanInGraph(t, 2)
	m := NewMapper(Params{})
	s := filter.State{SelectedNode: "a.py"}
	view := filter.Apply(g, s, testNow)

	dim, _ := g.Node("b.py")
	vis := m.Node(g, dim, view, s, 1, testNow)
	if vis.Opacity != DefaultParams().DimOpacity {
		t.Errorf("filtered-out node opacity = %.2f, want dim %.2f", vis.Opacity, DefaultParams().DimOpacity)
	}
	if vis.Opacity == 0 {
		t.Error("non-matching nodes must be dimmed, never hidden")
	}

	kept, _ := g.Node("a.py")
	if vis := m.Node(g, kept, view, s, 1, testNow); vis.Opacity != 1 {
		t.Errorf("matching node opacity = %.2f, want 1", vis.Opacity)
	}
}

func TestMissionBlendFollowsProgress(t *testing.T) {
	g := model.Build(model.Analysis{
		FileData: map[string]model.FileRecord{
			"old.py": {Category: "Python", CycleParticipation: 1},
		},
	})
	m := NewMapper(Params{})
	s := filter.State{Mission: filter.MissionRisk}
	view := filter.Apply(g, s, testNow)
	n, _ := g.Node("old.py")

	atZero := m.Node(g, n, view, s, 0, testNow)
	atHalf := m.Node(g, n, view, s, 0.5, testNow)
	atOne := m.Node(g, n, view, s, 1, testNow)

	if atZero.Color != FamilyColor(model.FamilyLogic).Hex() {
		t.Errorf("progress 0 color = %s, want base family color", atZero.Color)
	}
	if atHalf.Color == atZero.Color || atHalf.Color == atOne.Color {
		t.Error("mid-progress color should sit between base and highlight")
	}
	if atOne.Color != MissionColor(filter.MissionRisk).Hex() {
		t.Errorf("settled color = %s, want mission highlight", atOne.Color)
	}
}

func TestPulseOnlyAfterTransitionCompletes(t *testing.T) {
	g := model.Build(model.Analysis{
		FileData: map[string]model.FileRecord{
			"cyc.py": {Category: "Python", CycleParticipation: 1},
		},
	})
	m := NewMapper(Params{})
	s := filter.State{Mission: filter.MissionRisk}
	view := filter.Apply(g, s, testNow)
	n, _ := g.Node("cyc.py")

	// Pick an instant where the oscillation is nonzero.
	at := testNow.Add(123 * time.Millisecond)

	mid := m.Node(g, n, view, s, 0.7, at)
	if mid.Pulse != 1 {
		t.Errorf("pulse during transition = %.3f, want 1", mid.Pulse)
	}
	done := m.Node(g, n, view, s, 1, at)
	if done.Highlight <= 1 {
		t.Fatalf("highlight = %.3f, want > 1 for matched mission node", done.Highlight)
	}
	if done.Pulse == 1 {
		t.Error("pulse should oscillate once the transition has completed")
	}

	// Unhighlighted nodes never pulse.
	plain := filter.State{}
	fullView := filter.Apply(g, plain, testNow)
	idle := m.Node(g, n, fullView, plain, 1, at)
	if idle.Pulse != 1 {
		t.Errorf("idle pulse = %.3f, want 1", idle.Pulse)
	}
}

func TestTechnicalColorMode(t *testing.T) {
	g := model.Build(model.Analysis{
		FileData: map[string]model.FileRecord{"app.py": {Category: "Python"}},
	})
	m := NewMapper(Params{})
	s := filter.State{}
	view := filter.Apply(g, s, testNow)
	n, _ := g.Node("app.py")

	family := m.Node(g, n, view, s, 1, testNow)
	m.SetColorMode(ColorByCategory)
	technical := m.Node(g, n, view, s, 1, testNow)

	if family.Color == technical.Color {
		t.Error("family and technical modes should color Python differently")
	}
	if technical.Color != CategoryColor("Python").Hex() {
		t.Errorf("technical color = %s, want category color", technical.Color)
	}
}

func TestEdgeDimsWithHiddenEndpoint(t *testing.T) {
	g := model.Build(model.Analysis{
		FileGraph: map[string][]string{"a.py": {"ext:lib"}},
		FileData:  map[string]model.FileRecord{"a.py": {Category: "Python"}},
	})
	m := NewMapper(Params{})
	s := filter.State{HideExternal: true}
	view := filter.Apply(g, s, testNow)

	ev := m.Edge(g, model.Edge{From: "a.py", To: "ext:lib"}, view)
	full := m.Edge(g, model.Edge{From: "a.py", To: "a.py"}, view)
	if ev.Opacity >= full.Opacity {
		t.Errorf("edge with hidden endpoint opacity = %.2f, want below %.2f", ev.Opacity, full.Opacity)
	}
}

func TestColorHexAndLerp(t *testing.T) {
	black, white := Color{}, Color{1, 1, 1}
	if got := black.Hex(); got != "#000000" {
		t.Errorf("black = %s", got)
	}
	if got := white.Hex(); got != "#ffffff" {
		t.Errorf("white = %s", got)
	}
	mid := black.Lerp(white, 0.5)
	if mid.R != 0.5 || mid.G != 0.5 || mid.B != 0.5 {
		t.Errorf("mid = %+v, want 0.5 channels", mid)
	}
	if got := black.Lerp(white, 2); got != white {
		t.Errorf("lerp should clamp t, got %+v", got)
	}
}
