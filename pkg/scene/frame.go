package scene

import (
	"time"

	"github.com/codegnosis/depspace/pkg/camera"
	"github.com/codegnosis/depspace/pkg/encode"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/layout"
	"github.com/codegnosis/depspace/pkg/model"
)

// NodeFrame is one node's renderable state within a frame.
type NodeFrame struct {
	ID     string        `json:"id"`
	Pos    model.Vec3    `json:"pos"`
	Visual encode.Visual `json:"visual"`
}

// EdgeFrame is one edge's renderable state within a frame.
type EdgeFrame struct {
	From   string            `json:"from"`
	To     string            `json:"to"`
	Visual encode.EdgeVisual `json:"visual"`
}

// Frame is a complete render snapshot: everything a renderer needs to
// draw one tick, with no access to scene internals.
type Frame struct {
	Seq       uint64           `json:"seq"`
	Time      time.Time        `json:"time"`
	Mode      layout.Mode      `json:"mode"`
	ColorMode encode.ColorMode `json:"color_mode"`
	Progress  float64          `json:"progress"`
	State     filter.State     `json:"state"`
	Visible   int              `json:"visible"`
	Fallback  bool             `json:"fallback"`
	Camera    camera.Pose      `json:"camera"`
	Stats     model.Stats      `json:"stats"`
	Nodes     []NodeFrame      `json:"nodes"`
	Edges     []EdgeFrame      `json:"edges"`
}

// assemble builds the frame snapshot for the current state. Every node is
// present; filtered-out nodes carry dimmed visuals rather than being
// omitted, so the renderer keeps spatial context.
func (s *Scene) assemble(now time.Time) Frame {
	view := s.memo.Apply(s.state, now)
	progress := s.engine.Progress(now)

	f := Frame{
		Seq:       s.seq,
		Time:      now,
		Mode:      s.engine.Mode(),
		ColorMode: s.mapper.ColorMode(),
		Progress:  progress,
		State:     s.state,
		Visible:   len(view.Nodes),
		Fallback:  view.Fallback,
		Camera:    s.camera.Pose(),
		Stats:     model.Summarize(s.graph),
		Nodes:     make([]NodeFrame, 0, s.graph.NodeCount()),
		Edges:     make([]EdgeFrame, 0, s.graph.EdgeCount()),
	}
	for _, n := range s.graph.Nodes() {
		f.Nodes = append(f.Nodes, NodeFrame{
			ID:     n.ID,
			Pos:    n.Pos,
			Visual: s.mapper.Node(s.graph, n, view, s.state, progress, now),
		})
	}
	for _, e := range s.graph.Edges() {
		f.Edges = append(f.Edges, EdgeFrame{
			From:   e.From,
			To:     e.To,
			Visual: s.mapper.Edge(s.graph, e, view),
		})
	}
	return f
}
