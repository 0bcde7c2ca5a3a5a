package model

import (
	"slices"
	"strings"
)

// externalPrefix marks virtual nodes the analyzer synthesizes for imports
// that resolve outside the project tree.
const externalPrefix = "ext:"

// Build normalizes an analyzer payload into a Graph snapshot.
//
// Node creation is the union of three sources: keys of the dependency map,
// keys of the metadata map, and any non-empty dependency target. Targets
// without a metadata record become minimally-populated nodes so edges are
// never silently incomplete. Edges with an empty endpoint id, self-loops,
// and duplicates are dropped; everything else is guaranteed to resolve.
//
// An empty payload produces an empty graph, not an error.
func Build(a Analysis) *Graph {
	g := NewGraph()

	ids := make([]string, 0, len(a.FileGraph)+len(a.FileData))
	for id := range a.FileGraph {
		ids = append(ids, id)
	}
	for id := range a.FileData {
		if _, ok := a.FileGraph[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	for _, id := range ids {
		if id == "" {
			continue
		}
		g.AddNode(nodeFor(id, a.FileData))
	}

	// Second pass over sorted sources keeps edge insertion order stable.
	seen := make(map[Edge]bool)
	for _, from := range ids {
		if from == "" {
			continue
		}
		for _, to := range a.FileGraph[from] {
			if to == "" || to == from {
				continue
			}
			if _, ok := g.Node(to); !ok {
				g.AddNode(nodeFor(to, a.FileData))
			}
			e := Edge{From: from, To: to}
			if seen[e] {
				continue
			}
			seen[e] = true
			// Both endpoints exist at this point, but an AddEdge failure is
			// still a silent drop per the error-handling contract.
			_ = g.AddEdge(e)
		}
	}

	g.refreshDegrees()
	return g
}

// nodeFor creates the node for id, minimally populated when the metadata
// map has no record for it.
func nodeFor(id string, data map[string]FileRecord) Node {
	rec, ok := data[id]
	missing := false
	if !ok {
		if strings.HasPrefix(id, externalPrefix) {
			// Same safe defaults the analyzer uses for virtual externals.
			rec = FileRecord{Category: "External", ChainDepth: 1}
		} else {
			missing = true
		}
	}
	return Node{
		ID:       id,
		Category: rec.Category,
		Family:   FamilyOf(id, rec.Category),
		Metrics:  rec.metrics(),
		Missing:  missing,
	}
}
