// Package filter computes the currently visible subgraph from the graph
// and the active filter predicates. Apply is a pure function of
// (graph, state, now); the only state lives in the optional memoization
// layer around it.
package filter

import (
	"slices"
	"time"

	"github.com/codegnosis/depspace/pkg/model"
)

// Mission is a named filter predicate bundle highlighting one
// architectural concern.
type Mission string

const (
	// MissionNone disables mission filtering.
	MissionNone Mission = ""
	// MissionRisk highlights heavily depended-on and cyclic files.
	MissionRisk Mission = "risk"
	// MissionRot highlights unused files and orphans.
	MissionRot Mission = "rot"
	// MissionOnboard highlights entry points and orphans for newcomers.
	MissionOnboard Mission = "onboard"
	// MissionIncident highlights recently modified and high-fanout files.
	MissionIncident Mission = "incident"
	// MissionOptimize highlights assets and deep dependency chains.
	MissionOptimize Mission = "optimize"
)

// Missions lists all missions in their fixed evaluation order.
var Missions = []Mission{
	MissionRisk, MissionRot, MissionOnboard, MissionIncident, MissionOptimize,
}

// Valid reports whether m is a known mission or none.
func (m Mission) Valid() bool {
	return m == MissionNone || slices.Contains(Missions, m)
}

// Thresholds shared by the mission predicates.
const (
	riskInboundThreshold     = 8
	incidentOutboundLimit    = 8
	optimizeChainDepthLimit  = 6
	incidentRecentWindow     = 24 * time.Hour
	incidentStaleWindow      = 7 * 24 * time.Hour
	incidentWeakHighlight    = 0.6
	incidentRegularHighlight = 1.0
)

// State is the complete filter configuration. The visible subgraph is a
// pure function of (graph, State); State itself carries no graph data and
// is reset whenever a new analysis replaces the graph.
type State struct {
	Mission      Mission        `json:"mission,omitempty" bson:"mission,omitempty"`
	SoloFamily   *model.Family  `json:"solo_family,omitempty" bson:"solo_family,omitempty"`
	Families     []model.Family `json:"families,omitempty" bson:"families,omitempty"`
	SelectedNode string         `json:"selected_node,omitempty" bson:"selected_node,omitempty"`
	HideExternal bool           `json:"hide_external,omitempty" bson:"hide_external,omitempty"`
}

// familyAllowed applies the solo/multi-select family restriction.
// Solo, when set, is the restriction; the multi-select set applies
// otherwise. An empty state allows everything.
func (s State) familyAllowed(f model.Family) bool {
	if s.SoloFamily != nil {
		return f == *s.SoloFamily
	}
	if len(s.Families) == 0 {
		return true
	}
	return slices.Contains(s.Families, f)
}

// Matches reports whether the node passes the mission predicate at the
// given time. MissionNone matches everything.
func (m Mission) Matches(n *model.Node, now time.Time) bool {
	return m.Strength(n, now) > 0
}

// Strength returns the highlight strength the mission assigns to the node:
// 0 when the node does not match, 1 for a regular match, and a weaker
// value for incident matches that are only within the 7-day window.
func (m Mission) Strength(n *model.Node, now time.Time) float64 {
	mt := n.Metrics
	switch m {
	case MissionNone:
		return 1
	case MissionRisk:
		if mt.Inbound > riskInboundThreshold || mt.CycleParticipation > 0 {
			return 1
		}
	case MissionRot:
		// Orphans only: entry points legitimately have no inbound edges.
		if mt.Unused || (mt.Inbound == 0 && !mt.EntryPoint) {
			return 1
		}
	case MissionOnboard:
		if mt.EntryPoint || mt.Inbound == 0 {
			return 1
		}
	case MissionIncident:
		if !mt.LastModified.IsZero() {
			age := now.Sub(mt.LastModified)
			if age >= 0 && age <= incidentRecentWindow {
				return incidentRegularHighlight
			}
			if age >= 0 && age <= incidentStaleWindow {
				return incidentWeakHighlight
			}
		}
		if mt.Outbound > incidentOutboundLimit {
			return 1
		}
	case MissionOptimize:
		if n.Family == model.FamilyAssets || mt.ChainDepth > optimizeChainDepthLimit {
			return 1
		}
	}
	return 0
}

// Classify returns the first mission whose predicate the node satisfies,
// evaluated in the fixed Missions order. The risk and incident predicates
// overlap (both key off degree thresholds), so for nodes satisfying
// several missions the result depends on this evaluation order rather
// than an explicit priority rule; that order-dependence is inherited
// behavior, kept as-is.
func Classify(n *model.Node, now time.Time) (Mission, bool) {
	for _, m := range Missions {
		if m.Matches(n, now) {
			return m, true
		}
	}
	return MissionNone, false
}
