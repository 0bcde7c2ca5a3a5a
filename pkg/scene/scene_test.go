package scene

import (
	"testing"
	"time"

	"github.com/codegnosis/depspace/pkg/camera"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/layout"
	"github.com/codegnosis/depspace/pkg/model"
)

func testGraph(t *testing.T) *model.Graph {
	t.Helper()
	g := model.NewGraph()
	for _, id := range []string{"a.py", "b.py", "c.py", "style.css"} {
		n := model.Node{ID: id, Category: "Python", Placed: true}
		if id == "style.css" {
			n.Category = "CSS"
		}
		n.Family = model.FamilyOf(id, n.Category)
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	if err := g.AddEdge(model.Edge{From: "a.py", To: "b.py"}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return g
}

func testScene(t *testing.T) *Scene {
	t.Helper()
	s, err := New(testGraph(t), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewRequiresGraph(t *testing.T) {
	if _, err := New(nil, Options{}); err != ErrNilGraph {
		t.Errorf("New(nil) error = %v, want ErrNilGraph", err)
	}
}

func TestDispatchAppliesOnStep(t *testing.T) {
	s := testScene(t)
	if err := s.Dispatch(SetMission{Mission: filter.MissionRisk}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	f := s.Step(time.Now())
	if f.State.Mission != filter.MissionRisk {
		t.Errorf("mission = %q, want %q", f.State.Mission, filter.MissionRisk)
	}
}

func TestUnknownMissionIgnored(t *testing.T) {
	s := testScene(t)
	s.Dispatch(SetMission{Mission: filter.Mission("bogus")})
	f := s.Step(time.Now())
	if f.State.Mission != filter.MissionNone {
		t.Errorf("unknown mission mutated state to %q", f.State.Mission)
	}
}

func TestSelectNodeRestrictsViewAndEmitsEvent(t *testing.T) {
	s := testScene(t)
	s.Dispatch(SelectNode{ID: "a.py"})
	f := s.Step(time.Now())

	if f.State.SelectedNode != "a.py" {
		t.Errorf("selected = %q, want a.py", f.State.SelectedNode)
	}
	// a.py plus its direct neighbor b.py.
	if f.Visible != 2 {
		t.Errorf("visible = %d, want 2", f.Visible)
	}

	select {
	case ev := <-s.Selections():
		if ev.ID != "a.py" {
			t.Errorf("selection event id = %q, want a.py", ev.ID)
		}
	default:
		t.Fatal("expected a selection event")
	}
}

func TestSelectUnknownNodeIgnored(t *testing.T) {
	s := testScene(t)
	s.Dispatch(SelectNode{ID: "ghost.py"})
	f := s.Step(time.Now())

	if f.State.SelectedNode != "" {
		t.Errorf("unknown node selected: %q", f.State.SelectedNode)
	}
	select {
	case ev := <-s.Selections():
		t.Errorf("unexpected selection event %+v", ev)
	default:
	}
}

func TestClearSelectionEmitsEmptyEvent(t *testing.T) {
	s := testScene(t)
	s.Dispatch(SelectNode{ID: "a.py"})
	s.Step(time.Now())
	<-s.Selections()

	s.Dispatch(ClearSelection{})
	f := s.Step(time.Now())
	if f.State.SelectedNode != "" {
		t.Errorf("selection not cleared: %q", f.State.SelectedNode)
	}
	select {
	case ev := <-s.Selections():
		if ev.ID != "" {
			t.Errorf("clear event id = %q, want empty", ev.ID)
		}
	default:
		t.Fatal("expected a clear event")
	}
}

func TestToggleFamilyRoundTrips(t *testing.T) {
	s := testScene(t)
	s.Dispatch(ToggleFamily{Family: model.FamilyUI})
	f := s.Step(time.Now())
	if len(f.State.Families) != 1 || f.State.Families[0] != model.FamilyUI {
		t.Fatalf("families = %v, want [UI]", f.State.Families)
	}
	// Only style.css is UI.
	if f.Visible != 1 {
		t.Errorf("visible = %d, want 1", f.Visible)
	}

	s.Dispatch(ToggleFamily{Family: model.FamilyUI})
	f = s.Step(time.Now())
	if len(f.State.Families) != 0 {
		t.Errorf("families = %v, want empty after second toggle", f.State.Families)
	}
	if f.Visible != 4 {
		t.Errorf("visible = %d, want all 4", f.Visible)
	}
}

func TestModeTransitionCompletes(t *testing.T) {
	s := testScene(t)
	t0 := time.Now()

	s.Dispatch(SetMode{Mode: layout.ModeFormation})
	f := s.Step(t0)
	if f.Mode != layout.ModeFormation {
		t.Fatalf("mode = %v, want formation", f.Mode)
	}
	if f.Progress >= 1 {
		t.Errorf("progress = %v immediately after mode switch, want < 1", f.Progress)
	}

	f = s.Step(t0.Add(2 * time.Second))
	if f.Progress != 1 {
		t.Errorf("progress = %v after transition window, want 1", f.Progress)
	}
}

func TestReplaceGraphResetsState(t *testing.T) {
	s := testScene(t)
	s.Dispatch(SetMission{Mission: filter.MissionRot})
	s.Dispatch(SelectNode{ID: "a.py"})
	s.Step(time.Now())

	g := model.NewGraph()
	g.AddNode(model.Node{ID: "solo.go", Category: "Go", Family: model.FamilyLogic})
	s.Dispatch(ReplaceGraph{Graph: g})
	f := s.Step(time.Now())

	if f.State.Mission != filter.MissionNone || f.State.SelectedNode != "" ||
		f.State.SoloFamily != nil || len(f.State.Families) != 0 {
		t.Errorf("filter state not reset: %+v", f.State)
	}
	if f.Stats.Nodes != 1 {
		t.Errorf("stats.Nodes = %d, want 1 from the new graph", f.Stats.Nodes)
	}
	if f.Camera != s.camera.Pose() {
		t.Errorf("frame camera diverged from controller pose")
	}
}

func TestDispatchQueueBounded(t *testing.T) {
	s, err := New(testGraph(t), Options{ActionBuffer: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Dispatch(ClearSelection{}); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := s.Dispatch(ClearSelection{}); err != ErrQueueFull {
		t.Errorf("second dispatch error = %v, want ErrQueueFull", err)
	}
}

func TestSubscribeLatestWins(t *testing.T) {
	s := testScene(t)
	frames, cancel := s.Subscribe()
	defer cancel()

	t0 := time.Now()
	s.publish(s.Step(t0))
	s.publish(s.Step(t0.Add(33 * time.Millisecond)))

	f := <-frames
	if f.Seq != 2 {
		t.Errorf("got frame seq %d, want the latest (2)", f.Seq)
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := testScene(t)
	frames, cancel := s.Subscribe()
	cancel()
	cancel() // idempotent

	if _, ok := <-frames; ok {
		t.Error("cancelled subscription channel should be closed")
	}
}

func TestFrameCarriesDispatchedCameraPose(t *testing.T) {
	s := testScene(t)
	pose := camera.Pose{
		Position: model.Vec3{X: 4, Y: 8, Z: 15},
		Target:   model.Vec3{X: 16, Y: 23, Z: 42},
	}
	s.Dispatch(SetCameraPose{Pose: pose})

	f := s.Step(time.Now())
	if f.Camera != pose {
		t.Errorf("frame camera = %+v, want dispatched pose %+v", f.Camera, pose)
	}
}

func TestSurfaceProbeAttachesCamera(t *testing.T) {
	s, err := New(testGraph(t), Options{
		Surface: func() (camera.Viewport, bool) {
			return camera.Viewport{Width: 800, Height: 600}, true
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Step(time.Now())
	if !s.camera.Attached() {
		t.Error("camera should attach on the first frame with a ready surface")
	}
}
