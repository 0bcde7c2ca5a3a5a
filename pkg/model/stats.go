package model

// Stats summarizes a graph for the UI shell's status surfaces.
type Stats struct {
	Nodes       int            `json:"nodes" bson:"nodes"`
	Edges       int            `json:"edges" bson:"edges"`
	ByFamily    map[string]int `json:"by_family" bson:"by_family"`
	EntryPoints int            `json:"entry_points" bson:"entry_points"`
	Unused      int            `json:"unused" bson:"unused"`
	InCycles    int            `json:"in_cycles" bson:"in_cycles"`
	Hub         string         `json:"hub,omitempty" bson:"hub,omitempty"`
}

// Summarize computes summary statistics for the graph.
func Summarize(g *Graph) Stats {
	s := Stats{
		Nodes:    g.NodeCount(),
		Edges:    g.EdgeCount(),
		ByFamily: make(map[string]int),
	}
	for _, n := range g.Nodes() {
		s.ByFamily[n.Family.String()]++
		if n.Metrics.EntryPoint {
			s.EntryPoints++
		}
		if n.Metrics.Unused {
			s.Unused++
		}
		if n.Unhealthy() {
			s.InCycles++
		}
	}
	if hub, ok := g.Hub(); ok {
		s.Hub = hub.ID
	}
	return s
}
