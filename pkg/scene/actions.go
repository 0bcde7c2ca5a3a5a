package scene

import (
	"context"
	"slices"
	"time"

	"github.com/codegnosis/depspace/pkg/camera"
	"github.com/codegnosis/depspace/pkg/encode"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/layout"
	"github.com/codegnosis/depspace/pkg/model"
	"github.com/codegnosis/depspace/pkg/observability"
)

// Action is a state mutation applied on the frame loop. The concrete
// action types below are the only mutation entry points the scene has.
type Action interface {
	apply(s *Scene, now time.Time)
}

// SetMode switches the layout mode, starting or reversing the
// organic/formation transition.
type SetMode struct {
	Mode layout.Mode
}

func (a SetMode) apply(s *Scene, now time.Time) {
	from := s.engine.Mode()
	if from == a.Mode {
		return
	}
	s.engine.SetMode(a.Mode, now)
	observability.Scene().OnModeChange(context.Background(), from.String(), a.Mode.String())
}

// SetMission activates a filter mission, or clears it with MissionNone.
type SetMission struct {
	Mission filter.Mission
}

func (a SetMission) apply(s *Scene, now time.Time) {
	if !a.Mission.Valid() {
		s.opts.Logger.Warn("ignoring unknown mission", "mission", a.Mission)
		return
	}
	s.state.Mission = a.Mission
}

// ToggleFamily adds or removes a family from the multi-select set. An
// empty set shows every family.
type ToggleFamily struct {
	Family model.Family
}

func (a ToggleFamily) apply(s *Scene, now time.Time) {
	if i := slices.Index(s.state.Families, a.Family); i >= 0 {
		s.state.Families = slices.Delete(s.state.Families, i, i+1)
		return
	}
	s.state.Families = append(s.state.Families, a.Family)
	slices.Sort(s.state.Families)
}

// SoloFamily shows exactly one family, overriding the multi-select set.
// A nil Family releases the solo.
type SoloFamily struct {
	Family *model.Family
}

func (a SoloFamily) apply(s *Scene, now time.Time) {
	s.state.SoloFamily = a.Family
}

// SetHideExternal toggles visibility of external dependency nodes.
type SetHideExternal struct {
	Hide bool
}

func (a SetHideExternal) apply(s *Scene, now time.Time) {
	s.state.HideExternal = a.Hide
}

// SelectNode focuses a node and restricts the view to its neighborhood.
// Selecting an unknown id is ignored with a log line.
type SelectNode struct {
	ID string
}

func (a SelectNode) apply(s *Scene, now time.Time) {
	if _, ok := s.graph.Node(a.ID); !ok {
		s.opts.Logger.Warn("ignoring selection of unknown node", "id", a.ID)
		return
	}
	if s.state.SelectedNode == a.ID {
		return
	}
	s.state.SelectedNode = a.ID
	s.emitSelection(SelectionEvent{ID: a.ID, Time: now})
}

// ClearSelection releases the focused node.
type ClearSelection struct{}

func (ClearSelection) apply(s *Scene, now time.Time) {
	if s.state.SelectedNode == "" {
		return
	}
	s.state.SelectedNode = ""
	s.emitSelection(SelectionEvent{Time: now})
}

// SetFilterState replaces the whole filter state, used when resuming a
// saved session. Unknown missions and selections are dropped rather than
// failing the restore.
type SetFilterState struct {
	State filter.State
}

func (a SetFilterState) apply(s *Scene, now time.Time) {
	st := a.State
	if !st.Mission.Valid() {
		s.opts.Logger.Warn("dropping unknown mission from restored state", "mission", st.Mission)
		st.Mission = filter.MissionNone
	}
	if st.SelectedNode != "" {
		if _, ok := s.graph.Node(st.SelectedNode); !ok {
			s.opts.Logger.Warn("dropping unknown selection from restored state", "id", st.SelectedNode)
			st.SelectedNode = ""
		}
	}
	changed := st.SelectedNode != s.state.SelectedNode
	s.state = st
	if changed {
		s.emitSelection(SelectionEvent{ID: st.SelectedNode, Time: now})
	}
}

// SetColorMode switches between family and technical (raw category)
// coloring.
type SetColorMode struct {
	Mode encode.ColorMode
}

func (a SetColorMode) apply(s *Scene, now time.Time) {
	s.mapper.SetColorMode(a.Mode)
}

// SetCameraPose applies a user-driven camera pose.
type SetCameraPose struct {
	Pose camera.Pose
}

func (a SetCameraPose) apply(s *Scene, now time.Time) {
	s.camera.SetPose(a.Pose)
}

// MovementSettled tells the camera controller that user camera motion has
// come to rest, allowing a corrective pan.
type MovementSettled struct{}

func (MovementSettled) apply(s *Scene, now time.Time) {
	view := s.memo.Apply(s.state, now)
	s.camera.MovementSettled(view.Nodes, now)
}

// RestoreHorizon re-aims the camera at the origin, keeping its position.
type RestoreHorizon struct{}

func (RestoreHorizon) apply(s *Scene, now time.Time) {
	s.camera.RestoreHorizon()
}

// ResetView returns the camera to its default pose.
type ResetView struct{}

func (ResetView) apply(s *Scene, now time.Time) {
	s.camera.ResetView()
}

// ReplaceGraph swaps in a new analysis run. Filter and camera state are
// reset; the layout engine reseeds from scratch.
type ReplaceGraph struct {
	Graph *model.Graph
}

func (a ReplaceGraph) apply(s *Scene, now time.Time) {
	if a.Graph == nil {
		s.opts.Logger.Warn("ignoring graph replacement with nil graph")
		return
	}
	s.graph = a.Graph
	s.engine = layout.New(a.Graph, s.opts.Layout)
	s.memo = filter.NewMemo(a.Graph)
	s.state = filter.State{}
	s.camera.ResetView()
	s.opts.Logger.Info("graph replaced",
		"nodes", a.Graph.NodeCount(),
		"edges", a.Graph.EdgeCount())
}

// drainActions applies every queued action in arrival order.
func (s *Scene) drainActions(now time.Time) {
	for {
		select {
		case a := <-s.actions:
			a.apply(s, now)
		default:
			return
		}
	}
}
