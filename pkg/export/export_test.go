package export

import (
	"strings"
	"testing"
	"time"

	"github.com/codegnosis/depspace/pkg/encode"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/model"
)

func exportGraph(t *testing.T) *model.Graph {
	t.Helper()
	g := model.NewGraph()
	nodes := []model.Node{
		{ID: "a.py", Category: "Python", Family: model.FamilyLogic},
		{ID: "b.py", Category: "Python", Family: model.FamilyLogic, Metrics: model.Metrics{CycleParticipation: 1}},
		{ID: "style.css", Category: "CSS", Family: model.FamilyUI},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range []model.Edge{
		{From: "a.py", To: "b.py"},
		{From: "style.css", To: "b.py"},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func TestToDOTBasics(t *testing.T) {
	g := exportGraph(t)
	v := filter.Apply(g, filter.State{}, time.Now())

	dot := ToDOT(g, v, Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Fatalf("DOT missing header:\n%s", dot)
	}
	for _, want := range []string{
		`"a.py" [`,
		`"style.css" [`,
		`"a.py" -> "b.py";`,
		`"style.css" -> "b.py";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Family palette colors flow into fills.
	if !strings.Contains(dot, encode.FamilyColor(model.FamilyUI).Hex()) {
		t.Error("DOT missing UI family fill color")
	}
}

func TestToDOTMarksUnhealthyAndHub(t *testing.T) {
	g := exportGraph(t)
	v := filter.Apply(g, filter.State{}, time.Now())

	dot := ToDOT(g, v, Options{})

	var cyclic string
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, `"b.py" [`) {
			cyclic = line
		}
	}
	if !strings.Contains(cyclic, "dashed") {
		t.Errorf("cyclic node should render dashed: %s", cyclic)
	}
	// b.py has the highest inbound degree, making it the hub.
	if !strings.Contains(cyclic, "penwidth=3") {
		t.Errorf("hub node should render bold: %s", cyclic)
	}
}

func TestToDOTHonorsFilter(t *testing.T) {
	g := exportGraph(t)
	ui := model.FamilyUI
	v := filter.Apply(g, filter.State{SoloFamily: &ui}, time.Now())

	dot := ToDOT(g, v, Options{})

	if strings.Contains(dot, `"a.py"`) {
		t.Error("filtered-out node leaked into export")
	}
	if strings.Contains(dot, "->") {
		t.Error("edges with hidden endpoints must not export")
	}
	if !strings.Contains(dot, `"style.css"`) {
		t.Error("visible node missing from export")
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	g := exportGraph(t)
	v := filter.Apply(g, filter.State{}, time.Now())

	dot := ToDOT(g, v, Options{Detailed: true, ColorMode: encode.ColorByCategory})

	if !strings.Contains(dot, "family: logic") {
		t.Error("detailed label missing family line")
	}
	if !strings.Contains(dot, "category: CSS") {
		t.Error("detailed label missing category line")
	}
	if !strings.Contains(dot, encode.CategoryColor("CSS").Hex()) {
		t.Error("technical color mode should use category palette")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="148pt" height="220pt" viewBox="0.00 0.00 147.59 219.60" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 147.59 219.60"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="148" height="220"`) {
		t.Errorf("pixel dimensions not rewritten: %s", out)
	}

	// SVG without a viewBox passes through untouched.
	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}
