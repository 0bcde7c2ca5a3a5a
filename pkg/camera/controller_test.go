package camera

import (
	"math"
	"testing"
	"time"

	"github.com/codegnosis/depspace/pkg/model"
)

func testController(t *testing.T) *Controller {
	t.Helper()
	c, err := NewController(Options{
		DefaultPose: Pose{Position: model.Vec3{Z: 200}},
		FOV:         math.Pi / 3,
		SafeMargin:  0.1,
		BoxPadding:  12,
		PanDuration: 600 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if err := c.Resize(Viewport{Width: 800, Height: 600}); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	return c
}

func clusterNodes() []*model.Node {
	return []*model.Node{
		{ID: "a.py", Pos: model.Vec3{}, Placed: true},
		{ID: "b.py", Pos: model.Vec3{X: 10, Y: 10}, Placed: true},
		{ID: "c.py", Pos: model.Vec3{X: -10, Y: -10}, Placed: true},
	}
}

func TestProjectCenteredPoint(t *testing.T) {
	pose := Pose{Position: model.Vec3{Z: 200}}
	sp, ok := project(pose, Viewport{Width: 800, Height: 600}, math.Pi/3, model.Vec3{})
	if !ok {
		t.Fatal("point in front of camera should project")
	}
	if math.Abs(sp.X-400) > 1e-9 || math.Abs(sp.Y-300) > 1e-9 {
		t.Errorf("center point projected to (%v, %v), want viewport center", sp.X, sp.Y)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	pose := Pose{Position: model.Vec3{Z: 200}}
	if _, ok := project(pose, Viewport{Width: 800, Height: 600}, math.Pi/3, model.Vec3{Z: 500}); ok {
		t.Error("point behind the camera must not project")
	}
}

func TestNoCorrectionWhenFramed(t *testing.T) {
	c := testController(t)
	c.MovementSettled(clusterNodes(), time.Now())
	if c.Panning() {
		t.Error("well-framed view should not trigger a corrective pan")
	}
}

// A camera panned far enough sideways that the whole bounding box leaves
// the safe zone must produce exactly one corrective animation, and the
// corrected pose must put at least one screen-rect corner back inside.
func TestCorrectivePanRecoversFrame(t *testing.T) {
	c := testController(t)
	c.SetPose(Pose{
		Position: model.Vec3{X: 300, Z: 200},
		Target:   model.Vec3{X: 300},
	})
	nodes := clusterNodes()

	// Sanity: every screen-rect corner is outside the safe zone.
	box, ok := boundsOf(nodes, c.opts.BoxPadding)
	if !ok {
		t.Fatal("boundsOf: no placed nodes")
	}
	sr, _, visible := box.screenRect(c.pose, c.viewport, c.opts.FOV)
	if !visible {
		t.Fatal("cluster should still be in front of the camera")
	}
	zone := c.safeZone()
	for _, corner := range sr.corners() {
		if zone.contains(corner) {
			t.Fatalf("setup error: corner %+v already inside safe zone", corner)
		}
	}

	t0 := time.Now()
	c.MovementSettled(nodes, t0)
	if !c.Panning() {
		t.Fatal("out-of-frame view must start a corrective pan")
	}
	first := c.pan

	// A second settle event while the pan runs must not stack another.
	c.MovementSettled(nodes, t0.Add(50*time.Millisecond))
	if c.pan != first {
		t.Fatal("corrective pans must not stack")
	}

	c.Tick(t0.Add(700 * time.Millisecond))
	if c.Panning() {
		t.Fatal("pan should complete after its duration")
	}

	sr, _, visible = box.screenRect(c.pose, c.viewport, c.opts.FOV)
	if !visible {
		t.Fatal("corrected pose lost sight of the cluster")
	}
	inside := false
	for _, corner := range sr.corners() {
		if zone.contains(corner) {
			inside = true
			break
		}
	}
	if !inside {
		t.Errorf("after correction no corner is inside the safe zone: rect %+v zone %+v", sr, zone)
	}
}

func TestSettledWithNothingVisibleFallsBackToDefault(t *testing.T) {
	c := testController(t)
	// Look away from the cluster entirely.
	c.SetPose(Pose{Position: model.Vec3{Z: 200}, Target: model.Vec3{Z: 400}})

	t0 := time.Now()
	c.MovementSettled(clusterNodes(), t0)
	if !c.Panning() {
		t.Fatal("invisible cluster should trigger a recovery pan")
	}
	c.Tick(t0.Add(time.Second))
	if c.pose != c.opts.DefaultPose {
		t.Errorf("recovery should land on the default pose, got %+v", c.pose)
	}
}

func TestUserInputCancelsPan(t *testing.T) {
	c := testController(t)
	c.SetPose(Pose{Position: model.Vec3{X: 300, Z: 200}, Target: model.Vec3{X: 300}})
	c.MovementSettled(clusterNodes(), time.Now())
	if !c.Panning() {
		t.Fatal("expected a corrective pan")
	}

	user := Pose{Position: model.Vec3{X: 50, Z: 180}, Target: model.Vec3{X: 50}}
	c.SetPose(user)
	if c.Panning() {
		t.Error("user-driven pose must cancel an in-flight pan")
	}
	if c.Pose() != user {
		t.Error("user pose must win over the corrective pan")
	}
}

func TestPanInterpolates(t *testing.T) {
	c := testController(t)
	c.SetPose(Pose{Position: model.Vec3{X: 300, Z: 200}, Target: model.Vec3{X: 300}})
	t0 := time.Now()
	c.MovementSettled(clusterNodes(), t0)
	from := c.pan.from
	to := c.pan.to

	c.Tick(t0.Add(300 * time.Millisecond))
	mid := c.Pose()
	if mid == from || mid == to {
		t.Error("mid-pan pose should be strictly between endpoints")
	}
	if !c.Panning() {
		t.Error("pan should still be in flight at half time")
	}
}

func TestRestoreHorizonKeepsPosition(t *testing.T) {
	c := testController(t)
	c.SetPose(Pose{Position: model.Vec3{X: 40, Y: 80, Z: 120}, Target: model.Vec3{X: 40, Y: 10}})
	c.RestoreHorizon()
	if c.Pose().Position != (model.Vec3{X: 40, Y: 80, Z: 120}) {
		t.Error("restore horizon must not move the camera")
	}
	if c.Pose().Target != (model.Vec3{}) {
		t.Error("restore horizon must aim at the origin")
	}
}

func TestResetView(t *testing.T) {
	c := testController(t)
	c.SetPose(Pose{Position: model.Vec3{X: 300, Z: 200}, Target: model.Vec3{X: 300}})
	c.MovementSettled(clusterNodes(), time.Now())
	c.ResetView()
	if c.Panning() {
		t.Error("reset must cancel any corrective pan")
	}
	if c.Pose() != c.opts.DefaultPose {
		t.Error("reset must restore the default pose")
	}
}

func TestPollSurfaceAttaches(t *testing.T) {
	c, err := NewController(Options{SurfaceAttempts: 5})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	calls := 0
	probe := func() (Viewport, bool) {
		calls++
		if calls < 3 {
			return Viewport{}, false
		}
		return Viewport{Width: 640, Height: 480}, true
	}
	for i := 0; i < 10; i++ {
		c.PollSurface(probe)
	}
	if !c.Attached() {
		t.Fatal("controller should attach once the surface is ready")
	}
	if calls != 3 {
		t.Errorf("probe called %d times, want 3 (polling must stop after attach)", calls)
	}
}

func TestPollSurfaceGivesUpQuietly(t *testing.T) {
	c, err := NewController(Options{SurfaceAttempts: 4})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	calls := 0
	probe := func() (Viewport, bool) {
		calls++
		return Viewport{}, false
	}
	for i := 0; i < 10; i++ {
		c.PollSurface(probe)
	}
	if c.Attached() {
		t.Fatal("controller must not attach to a surface that never appears")
	}
	if calls != 4 {
		t.Errorf("probe called %d times, want exactly the attempt budget of 4", calls)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"negative margin", Options{SafeMargin: -0.1}, ErrInvalidMargin},
		{"margin too large", Options{SafeMargin: 0.5}, ErrInvalidMargin},
		{"fov too wide", Options{FOV: math.Pi}, ErrInvalidFOV},
		{"fov negative", Options{FOV: -1}, ErrInvalidFOV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewController(tt.opts); err != tt.want {
				t.Errorf("NewController() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestResizeRejectsEmptyViewport(t *testing.T) {
	c := testController(t)
	if err := c.Resize(Viewport{}); err != ErrInvalidViewport {
		t.Errorf("Resize(zero) error = %v, want ErrInvalidViewport", err)
	}
}

func TestBoundsOfSkipsUnplaced(t *testing.T) {
	nodes := []*model.Node{
		{ID: "a.py", Pos: model.Vec3{X: 5}, Placed: true},
		{ID: "b.py", Pos: model.Vec3{X: 9000}},
	}
	b, ok := boundsOf(nodes, 1)
	if !ok {
		t.Fatal("expected bounds from the placed node")
	}
	if b.max.X > 6+1e-9 {
		t.Errorf("unplaced node leaked into bounds: max.X = %v", b.max.X)
	}

	if _, ok := boundsOf(nil, 1); ok {
		t.Error("no placed nodes should yield no bounds")
	}
}
