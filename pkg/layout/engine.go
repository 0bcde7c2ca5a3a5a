// Package layout assigns and animates 3D positions for the dependency
// graph under one of two mutually exclusive modes.
//
// Organic mode seeds each node deterministically from a hash of its id
// within its family's angular sector and then runs a continuous force
// simulation. Formation mode computes a structured grid grouped by family
// and path depth and interpolates every node there over a fixed duration.
//
// The engine is the single writer of node positions and pin flags. It is
// driven cooperatively: the scene loop calls Tick once per frame, and
// nothing here blocks or spawns goroutines. A mode switch supersedes any
// transition already in flight; the new target always wins.
package layout

import (
	"fmt"
	"time"

	"github.com/codegnosis/depspace/pkg/model"
)

// Mode selects the active layout strategy.
type Mode int

const (
	// ModeOrganic is the physics-driven default.
	ModeOrganic Mode = iota
	// ModeFormation is the structured grid grouped by family and depth.
	ModeFormation
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeFormation {
		return "formation"
	}
	return "organic"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode maps a mode name to its Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "organic":
		return ModeOrganic, nil
	case "formation":
		return ModeFormation, nil
	default:
		return ModeOrganic, fmt.Errorf("unknown layout mode %q", s)
	}
}

// Params holds the layout tunables. Zero values are replaced by
// DefaultParams; the numbers are tuned for gradual settling rather than
// rapid convergence, which reads as visually jarring.
type Params struct {
	// Force simulation
	LinkDistance      float64 // rest length of the edge spring
	LinkStrength      float64
	RepulsionStrength float64 // pairwise push, inverse-square falloff
	CenterStrength    float64 // weak pull toward the origin
	AlphaDecay        float64
	AlphaMin          float64 // below this the simulation is considered settled
	VelocityDecay     float64
	ReheatAlpha       float64 // alpha restored when re-entering organic mode

	// Organic seeding
	BaseRadius     float64 // radial offset of rank 0 within a family
	RadiusStep     float64 // radial growth per in-family rank
	ExternalRing   float64 // fixed ring radius for external nodes
	VerticalJitter float64

	// Formation grid
	FamilySpacing float64 // primary-axis gap between family blocks
	ColumnWidth   float64
	RowSpacing    float64
	DepthSpacing  float64 // secondary-axis step per path segment
	UnhealthyLift float64 // extra height for cyclic or broken nodes
	Columns       int     // fixed grid width within a family block

	// Transition
	TransitionDuration time.Duration
}

// DefaultParams returns the standard tuning.
func DefaultParams() Params {
	return Params{
		LinkDistance:      34,
		LinkStrength:      0.08,
		RepulsionStrength: 900,
		CenterStrength:    0.012,
		AlphaDecay:        0.018,
		AlphaMin:          0.003,
		VelocityDecay:     0.35,
		ReheatAlpha:       0.55,

		BaseRadius:     40,
		RadiusStep:     3.5,
		ExternalRing:   210,
		VerticalJitter: 9,

		FamilySpacing: 90,
		ColumnWidth:   12,
		RowSpacing:    6,
		DepthSpacing:  14,
		UnhealthyLift: 25,
		Columns:       6,

		TransitionDuration: 900 * time.Millisecond,
	}
}

// withDefaults fills zero fields from DefaultParams.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.LinkDistance == 0 {
		p.LinkDistance = d.LinkDistance
	}
	if p.LinkStrength == 0 {
		p.LinkStrength = d.LinkStrength
	}
	if p.RepulsionStrength == 0 {
		p.RepulsionStrength = d.RepulsionStrength
	}
	if p.CenterStrength == 0 {
		p.CenterStrength = d.CenterStrength
	}
	if p.AlphaDecay == 0 {
		p.AlphaDecay = d.AlphaDecay
	}
	if p.AlphaMin == 0 {
		p.AlphaMin = d.AlphaMin
	}
	if p.VelocityDecay == 0 {
		p.VelocityDecay = d.VelocityDecay
	}
	if p.ReheatAlpha == 0 {
		p.ReheatAlpha = d.ReheatAlpha
	}
	if p.BaseRadius == 0 {
		p.BaseRadius = d.BaseRadius
	}
	if p.RadiusStep == 0 {
		p.RadiusStep = d.RadiusStep
	}
	if p.ExternalRing == 0 {
		p.ExternalRing = d.ExternalRing
	}
	if p.VerticalJitter == 0 {
		p.VerticalJitter = d.VerticalJitter
	}
	if p.FamilySpacing == 0 {
		p.FamilySpacing = d.FamilySpacing
	}
	if p.ColumnWidth == 0 {
		p.ColumnWidth = d.ColumnWidth
	}
	if p.RowSpacing == 0 {
		p.RowSpacing = d.RowSpacing
	}
	if p.DepthSpacing == 0 {
		p.DepthSpacing = d.DepthSpacing
	}
	if p.UnhealthyLift == 0 {
		p.UnhealthyLift = d.UnhealthyLift
	}
	if p.Columns == 0 {
		p.Columns = d.Columns
	}
	if p.TransitionDuration == 0 {
		p.TransitionDuration = d.TransitionDuration
	}
	return p
}

// transition is one in-flight animated move from captured start positions
// to fixed targets. gen is the cancellation token: a transition whose gen
// no longer matches the engine's has been superseded and never applies.
type transition struct {
	gen      uint64
	start    map[string]model.Vec3
	target   map[string]model.Vec3
	began    time.Time
	duration time.Duration
}

// Engine is the two-mode spatial layout state machine.
type Engine struct {
	graph  *model.Graph
	params Params
	mode   Mode

	alpha float64
	vel   map[string]model.Vec3

	gen   uint64
	trans *transition
}

// New creates an engine for the graph, seeds organic positions, and starts
// in organic mode with a hot simulation. An empty graph is fine; every
// operation degrades to a no-op.
func New(g *model.Graph, params Params) *Engine {
	e := &Engine{
		graph:  g,
		params: params.withDefaults(),
		mode:   ModeOrganic,
		alpha:  1,
		vel:    make(map[string]model.Vec3, g.NodeCount()),
	}
	e.seedOrganic()
	return e
}

// Mode returns the active layout mode.
func (e *Engine) Mode() Mode { return e.mode }

// Params returns the engine's effective parameters, defaults applied.
func (e *Engine) Params() Params { return e.params }

// Alpha returns the current simulation energy.
func (e *Engine) Alpha() float64 { return e.alpha }

// Transitioning reports whether a mode transition is animating.
func (e *Engine) Transitioning() bool { return e.trans != nil }

// SetMode switches the layout mode. Switching while a previous transition
// is still animating cancels it outright and starts fresh from the nodes'
// current positions; the last request always wins. Setting the current
// mode again is a no-op.
func (e *Engine) SetMode(mode Mode, now time.Time) {
	if mode == e.mode && e.trans == nil {
		return
	}
	e.gen++ // invalidates any in-flight transition
	e.mode = mode

	switch mode {
	case ModeFormation:
		e.beginFormation(now)
	case ModeOrganic:
		e.trans = nil
		for _, n := range e.graph.Nodes() {
			if n.Family == model.FamilyExternal {
				// Externals return to their fixed ring so the outer
				// boundary stays stable across mode round-trips.
				n.Pos = e.externalRingPos(n.ID)
				n.Pinned = true
				continue
			}
			n.Pinned = false
		}
		e.alpha = e.params.ReheatAlpha
	}
}

// Tick advances the layout by one frame. In organic mode it runs a physics
// step; during a formation transition it moves every node along its eased
// interpolation and keeps it pinned there.
func (e *Engine) Tick(now time.Time) {
	if e.graph.NodeCount() == 0 {
		return
	}
	if t := e.trans; t != nil {
		if t.gen != e.gen {
			e.trans = nil
		} else {
			e.stepTransition(t, now)
			return
		}
	}
	if e.mode == ModeOrganic {
		e.physicsTick()
	}
}

// Progress returns the eased progress of the current transition in [0,1].
// It reads 1 when no transition is animating, so visual state driven by it
// settles in sync with positions.
func (e *Engine) Progress(now time.Time) float64 {
	t := e.trans
	if t == nil {
		return 1
	}
	return easeOutCubic(clamp01(now.Sub(t.began).Seconds() / t.duration.Seconds()))
}

func (e *Engine) stepTransition(t *transition, now time.Time) {
	raw := clamp01(now.Sub(t.began).Seconds() / t.duration.Seconds())
	eased := easeOutCubic(raw)
	for id, target := range t.target {
		n, ok := e.graph.Node(id)
		if !ok {
			continue
		}
		n.Pos = t.start[id].Lerp(target, eased)
		n.Placed = true
		n.Pinned = true
	}
	if raw >= 1 {
		e.trans = nil
	}
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
