package layout

import "github.com/codegnosis/depspace/pkg/model"

// physicsTick runs one force-simulation step: attraction along edges,
// pairwise repulsion, and a weak centering pull, with alpha and velocity
// decay in the d3-force style. Pinned nodes exert forces but never move.
func (e *Engine) physicsTick() {
	if e.alpha < e.params.AlphaMin {
		return
	}
	e.alpha += (0 - e.alpha) * e.params.AlphaDecay

	nodes := e.graph.Nodes()
	forces := make(map[string]model.Vec3, len(nodes))

	// Link attraction: spring toward the rest length.
	for _, edge := range e.graph.Edges() {
		a, _ := e.graph.Node(edge.From)
		b, _ := e.graph.Node(edge.To)
		delta := b.Pos.Sub(a.Pos)
		dist := delta.Length()
		if dist < 1e-6 {
			continue
		}
		stretch := (dist - e.params.LinkDistance) / dist
		pull := delta.Scale(stretch * e.params.LinkStrength)
		forces[edge.From] = forces[edge.From].Add(pull)
		forces[edge.To] = forces[edge.To].Sub(pull)
	}

	// Pairwise repulsion with inverse-square falloff. Distances are
	// clamped so coincident seeds do not explode.
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			delta := a.Pos.Sub(b.Pos)
			dist := delta.Length()
			if dist < 1 {
				dist = 1
				delta = jitterApart(a.ID)
			}
			push := delta.Scale(e.params.RepulsionStrength / (dist * dist * dist))
			forces[a.ID] = forces[a.ID].Add(push)
			forces[b.ID] = forces[b.ID].Sub(push)
		}
	}

	// Weak centering toward the origin keeps the cloud on screen.
	for _, n := range nodes {
		forces[n.ID] = forces[n.ID].Sub(n.Pos.Scale(e.params.CenterStrength))
	}

	for _, n := range nodes {
		if n.Pinned {
			continue
		}
		v := e.vel[n.ID].Add(forces[n.ID].Scale(e.alpha)).Scale(1 - e.params.VelocityDecay)
		e.vel[n.ID] = v
		n.Pos = n.Pos.Add(v)
		n.Placed = true
	}
}

// jitterApart returns a tiny deterministic displacement used to separate
// exactly coincident nodes.
func jitterApart(id string) model.Vec3 {
	h := idHash(id)
	return model.Vec3{
		X: frac(h, 4) - 0.5,
		Y: (frac(h, 5) - 0.5) * 0.2,
		Z: frac(h, 6) - 0.5,
	}
}
