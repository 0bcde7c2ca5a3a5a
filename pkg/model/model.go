// Package model builds and holds the dependency graph snapshot that the
// layout, filter, encoding, and camera packages operate on.
//
// A Graph is (re)built once per analysis run from the external analyzer's
// payload and is immutable afterwards, with two exceptions: the layout
// engine mutates node positions and pin flags. Everything else — edges,
// metrics, family classification, the hub — is fixed at build time.
//
// The one structural invariant the package enforces is that every edge's
// endpoints exist in the node set. AddEdge refuses edges that would violate
// it, and Build drops such edges silently, so downstream consumers never
// need to re-check endpoint resolution.
package model

import (
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs (file paths) must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Metrics holds the per-file measurements the analyzer computed, plus the
// degree counts recomputed from the edge list at build time.
type Metrics struct {
	Inbound            int       `json:"inbound" bson:"inbound"`
	Outbound           int       `json:"outbound" bson:"outbound"`
	CycleParticipation int       `json:"cycle_participation,omitempty" bson:"cycle_participation,omitempty"`
	Unused             bool      `json:"unused,omitempty" bson:"unused,omitempty"`
	EntryPoint         bool      `json:"entry_point,omitempty" bson:"entry_point,omitempty"`
	ChainDepth         int       `json:"chain_depth,omitempty" bson:"chain_depth,omitempty"`
	LastModified       time.Time `json:"last_modified,omitempty" bson:"last_modified,omitempty"`
	SizeBytes          int64     `json:"size_bytes,omitempty" bson:"size_bytes,omitempty"`
	Lines              int       `json:"lines,omitempty" bson:"lines,omitempty"`
}

// Node is a file in the dependency graph.
//
// Pos is undefined until the first layout pass runs; check Placed before
// reading it. Pos, Placed, and Pinned are owned by the layout engine — all
// other packages treat them as read-only.
type Node struct {
	ID       string  `json:"id" bson:"id"`
	Category string  `json:"category,omitempty" bson:"category,omitempty"`
	Family   Family  `json:"family" bson:"family"`
	Metrics  Metrics `json:"metrics" bson:"metrics"`

	// Missing marks a node that was referenced as a dependency target but
	// had no metadata record: a broken reference in the scanned project.
	Missing bool `json:"missing,omitempty" bson:"missing,omitempty"`

	Pos    Vec3 `json:"pos" bson:"pos"`
	Placed bool `json:"placed,omitempty" bson:"placed,omitempty"`
	Pinned bool `json:"pinned,omitempty" bson:"pinned,omitempty"`
}

// PathDepth returns the number of path segments in the node's id.
// External ids count as depth 1 regardless of their shape.
func (n *Node) PathDepth() int {
	if n.Family == FamilyExternal {
		return 1
	}
	return strings.Count(n.ID, "/") + 1
}

// Unhealthy reports whether the node participates in a dependency cycle or
// is a broken reference. Formation layout lifts unhealthy nodes out of
// their family block.
func (n *Node) Unhealthy() bool { return n.Metrics.CycleParticipation > 0 || n.Missing }

// Edge is a directed dependency between two files.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Graph is the immutable dependency graph snapshot.
//
// Adjacency is kept as id-keyed lists rather than node pointers, so cyclic
// dependency structures never produce mutually-referencing objects. The
// graph is not safe for concurrent mutation; the scene loop is the single
// execution context that touches it.
type Graph struct {
	nodes    map[string]*Node
	order    []string // node ids, sorted, for deterministic iteration
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	hubID    string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID for an empty
// ID or ErrDuplicateNodeID if the ID is already present.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	g.nodes[node.ID] = node
	i, _ := slices.BinarySearch(g.order, node.ID)
	g.order = slices.Insert(g.order, i, node.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Returns
// ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is missing;
// this is what keeps dangling edges out of the working set.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
// The returned pointer refers to the live node; the layout engine uses it
// to mutate positions.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in sorted order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the IDs this node depends on (outgoing edges).
// The returned slice is a read-only view.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the IDs that depend on this node (incoming edges).
// The returned slice is a read-only view.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// InDegree returns the number of incoming edges, 0 for unknown nodes.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of outgoing edges, 0 for unknown nodes.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// Hub returns the single node with the highest inbound count, if any.
// The hub is rendered at fixed maximum size regardless of the general
// size formula.
func (g *Graph) Hub() (*Node, bool) {
	if g.hubID == "" {
		return nil, false
	}
	return g.nodes[g.hubID], true
}

// IsHub reports whether id is the graph's hub node.
func (g *Graph) IsHub(id string) bool { return g.hubID != "" && g.hubID == id }

// FamilyMembers returns the IDs of all nodes in the family, sorted.
// The sort order is what assigns in-family rank for organic seeding and
// grid cells for formation layout.
func (g *Graph) FamilyMembers(f Family) []string {
	var ids []string
	for _, id := range g.order {
		if g.nodes[id].Family == f {
			ids = append(ids, id)
		}
	}
	return ids
}

// refreshDegrees recomputes inbound/outbound metrics from the adjacency
// lists and elects the hub. Called once at the end of Build; analyzer
// supplied counts are overwritten so metrics always agree with the edges
// actually in the working set.
func (g *Graph) refreshDegrees() {
	g.hubID = ""
	best := 0
	for _, id := range g.order {
		n := g.nodes[id]
		n.Metrics.Inbound = len(g.incoming[id])
		n.Metrics.Outbound = len(g.outgoing[id])
		// Strict > with sorted iteration: ties go to the smallest id.
		// A graph with no edges has no hub.
		if n.Metrics.Inbound > best {
			best = n.Metrics.Inbound
			g.hubID = id
		}
	}
}
