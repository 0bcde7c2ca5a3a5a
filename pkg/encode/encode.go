// Package encode derives the per-node and per-edge visual attributes —
// size, color, opacity, highlight, pulse — from graph metrics and the
// current filter state. It only reads node data; positions and filter
// state are owned elsewhere.
package encode

import (
	"math"
	"time"

	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/model"
)

// Params holds the encoding tunables.
type Params struct {
	SizeMin   float64
	SizeMax   float64
	SizeBase  float64
	SizeScale float64

	// DimOpacity is applied to nodes that fail the active filters;
	// they are dimmed, not hidden, to preserve spatial context.
	DimOpacity float64

	HighlightScale float64 // scale applied to fully matched nodes
	PulsePeriod    time.Duration
	PulseAmp       float64
}

// DefaultParams returns the standard encoding tuning.
func DefaultParams() Params {
	return Params{
		SizeMin:        2.5,
		SizeMax:        14,
		SizeBase:       3,
		SizeScale:      0.22,
		DimOpacity:     0.18,
		HighlightScale: 1.35,
		PulsePeriod:    1600 * time.Millisecond,
		PulseAmp:       0.12,
	}
}

// Visual is the full visual encoding of one node.
type Visual struct {
	Size      float64 `json:"size" bson:"size"`
	Color     string  `json:"color" bson:"color"`
	Opacity   float64 `json:"opacity" bson:"opacity"`
	Highlight float64 `json:"highlight" bson:"highlight"`
	Pulse     float64 `json:"pulse" bson:"pulse"`
}

// EdgeVisual is the visual encoding of one edge.
type EdgeVisual struct {
	Color   string  `json:"color" bson:"color"`
	Opacity float64 `json:"opacity" bson:"opacity"`
}

// Mapper derives visual attributes. It is stateless apart from its
// parameters; the transition progress and clock are passed per call so
// visual state settles in sync with the layout's eased timeline.
type Mapper struct {
	params Params
	mode   ColorMode
}

// NewMapper creates a mapper with the given parameters.
func NewMapper(params Params) *Mapper {
	if params == (Params{}) {
		params = DefaultParams()
	}
	return &Mapper{params: params}
}

// SetColorMode switches between family and technical coloring.
func (m *Mapper) SetColorMode(mode ColorMode) { m.mode = mode }

// ColorMode returns the active coloring mode.
func (m *Mapper) ColorMode() ColorMode { return m.mode }

// Size returns the node's rendered size. The hub is exempt from the
// general formula and always renders at the fixed maximum.
func (m *Mapper) Size(g *model.Graph, n *model.Node) float64 {
	if g.IsHub(n.ID) {
		return m.params.SizeMax
	}
	size := m.params.SizeBase + math.Pow(float64(n.Metrics.Inbound), 1.5)*m.params.SizeScale
	return clamp(m.params.SizeMin, m.params.SizeMax, size)
}

// Node computes the node's full visual encoding.
//
// progress is the layout transition's eased progress in [0,1]; highlight
// color blending follows it so color settles together with position.
// Pulsing applies only once the transition has fully completed and the
// node's highlight scale exceeds 1.
func (m *Mapper) Node(g *model.Graph, n *model.Node, view filter.View, s filter.State, progress float64, now time.Time) Visual {
	base := m.baseColor(n)
	matched := view.Contains(n.ID)

	vis := Visual{
		Size:      m.Size(g, n),
		Opacity:   1,
		Highlight: 1,
		Pulse:     1,
	}
	if !matched {
		vis.Opacity = m.params.DimOpacity
	}

	color := base
	if matched {
		switch {
		case s.Mission != filter.MissionNone:
			strength := s.Mission.Strength(n, now)
			color = base.Lerp(MissionColor(s.Mission), progress*strength)
			vis.Highlight = 1 + (m.params.HighlightScale-1)*strength
		case s.SoloFamily != nil && n.Family == *s.SoloFamily:
			color = base.Lerp(soloHighlight, progress*0.5)
			vis.Highlight = m.params.HighlightScale
		}
	}
	vis.Color = color.Hex()

	if vis.Highlight > 1 && progress >= 1 {
		phase := 2 * math.Pi * float64(now.UnixMilli()) / float64(m.params.PulsePeriod.Milliseconds())
		vis.Pulse = 1 + m.params.PulseAmp*math.Sin(phase)
	}
	return vis
}

// Edge computes an edge's visual encoding from its endpoints' visibility.
func (m *Mapper) Edge(g *model.Graph, e model.Edge, view filter.View) EdgeVisual {
	from, okF := g.Node(e.From)
	if !okF {
		return EdgeVisual{Color: categoryDefault.Hex(), Opacity: 0}
	}
	ev := EdgeVisual{Color: m.baseColor(from).Hex(), Opacity: 0.55}
	if !view.Contains(e.From) || !view.Contains(e.To) {
		ev.Opacity = m.params.DimOpacity * 0.5
	}
	return ev
}

func (m *Mapper) baseColor(n *model.Node) Color {
	if m.mode == ColorByCategory {
		return CategoryColor(n.Category)
	}
	return FamilyColor(n.Family)
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
