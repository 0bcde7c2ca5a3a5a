package filter

import (
	"time"

	"github.com/codegnosis/depspace/pkg/model"
)

// View is the visible subgraph plus the context needed to render it.
// Nodes are sorted by id; Edges keep graph insertion order.
type View struct {
	Nodes []*model.Node
	Edges []model.Edge

	// Fallback is set when the filters would have emptied the view and
	// the full graph was substituted instead.
	Fallback bool

	visible map[string]bool
}

// Contains reports whether the node id survived filtering.
func (v View) Contains(id string) bool { return v.visible[id] }

// NodeIDs returns the visible node ids in sorted order.
func (v View) NodeIDs() []string {
	ids := make([]string, len(v.Nodes))
	for i, n := range v.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Apply computes the visible subgraph for the filter state.
//
// Conditions apply in precedence order: the selected node restricts to
// its direct neighborhood first, then the family solo/multi-select, then
// the active mission predicate, then the external toggle. An edge is kept
// only when both endpoints survive every active filter.
//
// The result is never empty while the graph is not: if filtering empties
// the node set, the unfiltered graph is returned with Fallback set.
func Apply(g *model.Graph, s State, now time.Time) View {
	if g.NodeCount() == 0 {
		return View{visible: map[string]bool{}}
	}

	visible := make(map[string]bool, g.NodeCount())

	if sel, ok := g.Node(s.SelectedNode); ok && s.SelectedNode != "" {
		visible[sel.ID] = true
		for _, id := range g.Predecessors(sel.ID) {
			visible[id] = true
		}
		for _, id := range g.Successors(sel.ID) {
			visible[id] = true
		}
	} else {
		for _, id := range g.NodeIDs() {
			visible[id] = true
		}
	}

	for id := range visible {
		n, _ := g.Node(id)
		switch {
		case !s.familyAllowed(n.Family),
			!s.Mission.Matches(n, now),
			s.HideExternal && n.Family == model.FamilyExternal:
			delete(visible, id)
		}
	}

	if len(visible) == 0 {
		return fullView(g, true)
	}
	return assemble(g, visible, false)
}

// fullView returns the whole graph as a view.
func fullView(g *model.Graph, fallback bool) View {
	visible := make(map[string]bool, g.NodeCount())
	for _, id := range g.NodeIDs() {
		visible[id] = true
	}
	return assemble(g, visible, fallback)
}

func assemble(g *model.Graph, visible map[string]bool, fallback bool) View {
	v := View{
		Nodes:    make([]*model.Node, 0, len(visible)),
		Fallback: fallback,
		visible:  visible,
	}
	for _, n := range g.Nodes() {
		if visible[n.ID] {
			v.Nodes = append(v.Nodes, n)
		}
	}
	for _, e := range g.Edges() {
		if visible[e.From] && visible[e.To] {
			v.Edges = append(v.Edges, e)
		}
	}
	return v
}
