package camera

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codegnosis/depspace/pkg/model"
	"github.com/codegnosis/depspace/pkg/observability"
)

// ============================================================================
// Errors
// ============================================================================

var (
	// ErrInvalidViewport indicates a zero or negative render surface size.
	ErrInvalidViewport = errors.New("camera: invalid viewport")
	// ErrInvalidFOV indicates a field of view outside (0, pi).
	ErrInvalidFOV = errors.New("camera: invalid field of view")
	// ErrInvalidMargin indicates a safe-zone margin outside [0, 0.5).
	ErrInvalidMargin = errors.New("camera: invalid safe-zone margin")
)

// ============================================================================
// Options
// ============================================================================

// Options configures a Controller. The zero value is usable after
// ValidateAndSetDefaults.
type Options struct {
	// DefaultPose is the pose applied at start and by ResetView.
	DefaultPose Pose

	// FOV is the vertical field of view in radians.
	FOV float64

	// BoxPadding is world-space padding added to the visible bounding box
	// before projection.
	BoxPadding float64

	// SafeMargin is the safe-zone inset, as a fraction of each viewport
	// dimension.
	SafeMargin float64

	// PanDuration is the length of a corrective pan animation.
	PanDuration time.Duration

	// SurfaceAttempts bounds render-surface polling before giving up.
	SurfaceAttempts int

	// Logger receives give-up and correction events. Defaults to the
	// package-level logger.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.FOV == 0 {
		o.FOV = math.Pi / 3
	}
	if o.FOV <= 0 || o.FOV >= math.Pi {
		return ErrInvalidFOV
	}
	if o.SafeMargin < 0 || o.SafeMargin >= 0.5 {
		return ErrInvalidMargin
	}
	if o.SafeMargin == 0 {
		o.SafeMargin = 0.1
	}
	if o.BoxPadding == 0 {
		o.BoxPadding = 12
	}
	if o.PanDuration == 0 {
		o.PanDuration = 600 * time.Millisecond
	}
	if o.SurfaceAttempts == 0 {
		o.SurfaceAttempts = 120
	}
	if (o.DefaultPose == Pose{}) {
		o.DefaultPose = Pose{Position: model.Vec3{Y: 60, Z: 260}}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// ============================================================================
// Controller
// ============================================================================

// Controller owns the camera pose. It reframes the view with a single
// corrective pan when the visible set has drifted entirely out of the
// safe zone, and only checks once camera movement has settled.
type Controller struct {
	opts Options
	pose Pose

	viewport Viewport
	attached bool
	gaveUp   bool
	attempts int

	pan *panAnim
}

// panAnim is an in-flight corrective pan.
type panAnim struct {
	from, to Pose
	began    time.Time
	duration time.Duration
}

// NewController builds a controller at the default pose.
func NewController(opts Options) (*Controller, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Controller{opts: opts, pose: opts.DefaultPose}, nil
}

// Pose returns the current camera pose.
func (c *Controller) Pose() Pose { return c.pose }

// Attached reports whether a render surface has been acquired.
func (c *Controller) Attached() bool { return c.attached }

// Panning reports whether a corrective pan is in flight.
func (c *Controller) Panning() bool { return c.pan != nil }

// SetPose applies an externally driven pose, e.g. user orbit input.
// It cancels any corrective pan: the user wins.
func (c *Controller) SetPose(p Pose) {
	c.pan = nil
	c.pose = p
}

// PollSurface attempts to acquire the render surface once. probe returns
// the surface size and whether it is ready. Polling is bounded: after the
// configured number of failed attempts the controller gives up quietly
// and stops asking.
func (c *Controller) PollSurface(probe func() (Viewport, bool)) {
	if c.attached || c.gaveUp {
		return
	}
	vp, ok := probe()
	if ok && vp.Width > 0 && vp.Height > 0 {
		c.viewport = vp
		c.attached = true
		observability.Camera().OnSurfaceAttached(context.Background(), vp.Width, vp.Height)
		return
	}
	c.attempts++
	if c.attempts >= c.opts.SurfaceAttempts {
		c.gaveUp = true
		observability.Camera().OnSurfaceGiveUp(context.Background(), c.attempts)
		c.opts.Logger.Debug("render surface never became ready, giving up",
			"attempts", c.attempts)
	}
}

// Resize updates the viewport after the surface changes size.
func (c *Controller) Resize(vp Viewport) error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return ErrInvalidViewport
	}
	c.viewport = vp
	c.attached = true
	return nil
}

// safeZone returns the viewport inset by the configured margin.
func (c *Controller) safeZone() rect {
	mx := c.viewport.Width * c.opts.SafeMargin
	my := c.viewport.Height * c.opts.SafeMargin
	return rect{MinX: mx, MinY: my, MaxX: c.viewport.Width - mx, MaxY: c.viewport.Height - my}
}

// MovementSettled is called when camera motion has come to rest. If every
// corner of the visible set's projected bounding rectangle lies outside
// the safe zone, it starts exactly one corrective pan that brings the
// nearest corner back in. With any corner still inside, nothing happens.
func (c *Controller) MovementSettled(nodes []*model.Node, now time.Time) {
	if !c.attached || c.pan != nil {
		return
	}
	box, ok := boundsOf(nodes, c.opts.BoxPadding)
	if !ok {
		return
	}
	sr, depth, visible := box.screenRect(c.pose, c.viewport, c.opts.FOV)
	if !visible {
		// The whole set is behind the camera; a pan cannot help.
		c.beginPan(c.opts.DefaultPose, now)
		return
	}
	zone := c.safeZone()
	for _, corner := range sr.corners() {
		if zone.contains(corner) {
			return
		}
	}
	shift := nearestShift(sr, zone)
	c.beginPan(c.shiftedPose(shift, depth), now)
	observability.Camera().OnCorrectivePan(context.Background(), shift.X, shift.Y)
	c.opts.Logger.Debug("view drifted out of safe zone, panning back",
		"dx", shift.X, "dy", shift.Y)
}

// nearestShift returns the smallest screen-space translation that moves
// at least one corner of sr inside zone.
func nearestShift(sr, zone rect) screenPoint {
	best := screenPoint{X: math.Inf(1), Y: math.Inf(1)}
	bestLen := math.Inf(1)
	for _, corner := range sr.corners() {
		s := screenPoint{
			X: clampShift(corner.X, zone.MinX, zone.MaxX),
			Y: clampShift(corner.Y, zone.MinY, zone.MaxY),
		}
		if l := math.Hypot(s.X, s.Y); l < bestLen {
			best, bestLen = s, l
		}
	}
	return best
}

// reentryNudge keeps the corrected corner strictly inside the safe zone
// rather than exactly on its edge.
const reentryNudge = 6.0

// clampShift returns the delta that moves v into [lo, hi], zero if it is
// already inside.
func clampShift(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v + reentryNudge
	}
	if v > hi {
		return hi - v - reentryNudge
	}
	return 0
}

// shiftedPose converts a desired screen-space content shift into a camera
// pan. The deepest corner depth sets the pixel-to-world scale, so every
// shallower point shifts at least the requested amount. Position and
// target move together so orientation is preserved.
func (c *Controller) shiftedPose(shift screenPoint, depth float64) Pose {
	b := poseBasis(c.pose)
	z := depth
	if z < 1e-6 {
		z = 1
	}
	f := (c.viewport.Height / 2) / math.Tan(c.opts.FOV/2)
	// Content shifts opposite the camera along right, and with the camera
	// along up because screen Y points down.
	t := b.right.Scale(-shift.X * z / f).Add(b.up.Scale(-shift.Y * z / f))
	return Pose{Position: c.pose.Position.Add(t), Target: c.pose.Target.Add(t)}
}

func (c *Controller) beginPan(to Pose, now time.Time) {
	c.pan = &panAnim{from: c.pose, to: to, began: now, duration: c.opts.PanDuration}
}

// RestoreHorizon levels the camera by aiming it back at the scene origin.
// Position is untouched.
func (c *Controller) RestoreHorizon() {
	c.pan = nil
	c.pose.Target = model.Vec3{}
}

// ResetView returns the camera to the default pose immediately.
func (c *Controller) ResetView() {
	c.pan = nil
	c.pose = c.opts.DefaultPose
}

// Tick advances an in-flight corrective pan.
func (c *Controller) Tick(now time.Time) {
	if c.pan == nil {
		return
	}
	raw := now.Sub(c.pan.began).Seconds() / c.pan.duration.Seconds()
	if raw >= 1 {
		c.pose = c.pan.to
		c.pan = nil
		return
	}
	if raw < 0 {
		raw = 0
	}
	t := easeOutCubic(raw)
	c.pose = Pose{
		Position: c.pan.from.Position.Lerp(c.pan.to.Position, t),
		Target:   c.pan.from.Target.Lerp(c.pan.to.Target, t),
	}
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}
