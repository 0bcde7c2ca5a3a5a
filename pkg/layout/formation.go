package layout

import (
	"time"

	"github.com/codegnosis/depspace/pkg/model"
)

// beginFormation captures every node's current position as the animation
// start point, computes grid targets, and starts the eased interpolation.
// Captured positions may themselves be mid-interpolation when a previous
// transition was superseded; targets are always recomputed, never reused.
func (e *Engine) beginFormation(now time.Time) {
	if e.graph.NodeCount() == 0 {
		e.trans = nil
		return
	}
	t := &transition{
		gen:      e.gen,
		start:    make(map[string]model.Vec3, e.graph.NodeCount()),
		target:   e.formationTargets(),
		began:    now,
		duration: e.params.TransitionDuration,
	}
	for _, n := range e.graph.Nodes() {
		t.start[n.ID] = n.Pos
		n.Pinned = true
		// Velocity is discarded so a later return to organic mode starts
		// from rest instead of replaying stale momentum.
		delete(e.vel, n.ID)
	}
	e.trans = t
}

// formationTargets computes the structured grid position for every node:
//
//   - primary axis (X): a fixed offset per family, in family declaration
//     order, plus the grid column
//   - secondary axis (Z): path depth, the number of path segments
//   - tertiary axis (Y): the grid row, plus a fixed lift for nodes in a
//     dependency cycle or with a broken reference
//
// Within a family, nodes are sorted lexicographically by id and fill
// fixed-width columns, so each gets a unique (row, column) cell. The lift
// is deliberately not a multiple of the row spacing, so lifted and
// unlifted rows can never coincide.
func (e *Engine) formationTargets() map[string]model.Vec3 {
	targets := make(map[string]model.Vec3, e.graph.NodeCount())
	center := float64(len(model.Families)-1) / 2

	for fi, fam := range model.Families {
		offset := (float64(fi) - center) * e.params.FamilySpacing
		for i, id := range e.graph.FamilyMembers(fam) {
			n, _ := e.graph.Node(id)
			col := i % e.params.Columns
			row := i / e.params.Columns

			y := float64(row) * e.params.RowSpacing
			if n.Unhealthy() {
				y += e.params.UnhealthyLift
			}
			targets[id] = model.Vec3{
				X: offset + float64(col)*e.params.ColumnWidth,
				Y: y,
				Z: float64(n.PathDepth()) * e.params.DepthSpacing,
			}
		}
	}
	return targets
}
