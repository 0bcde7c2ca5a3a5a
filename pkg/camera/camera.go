// Package camera keeps the viewing camera usefully aimed at the visible
// node set. The controller owns CameraState exclusively: the renderer and
// UI shell read poses, and report movement, but never write them.
package camera

import (
	"math"

	"github.com/codegnosis/depspace/pkg/model"
)

// Pose is the camera's position and look-target.
type Pose struct {
	Position model.Vec3 `json:"position" bson:"position"`
	Target   model.Vec3 `json:"target" bson:"target"`
}

// Viewport is the render surface size in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// screenPoint is a projected position in pixels, origin top-left.
type screenPoint struct {
	X, Y float64
}

// rect is an axis-aligned screen rectangle.
type rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r rect) corners() [4]screenPoint {
	return [4]screenPoint{
		{r.MinX, r.MinY},
		{r.MaxX, r.MinY},
		{r.MinX, r.MaxY},
		{r.MaxX, r.MaxY},
	}
}

func (r rect) contains(p screenPoint) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// basis is the camera's orthonormal frame: forward toward the target,
// right and up spanning the image plane.
type basis struct {
	forward, right, up model.Vec3
}

func poseBasis(p Pose) basis {
	forward := normalize(p.Target.Sub(p.Position))
	worldUp := model.Vec3{Y: 1}
	right := normalize(cross(forward, worldUp))
	if right.Length() < 1e-9 {
		// Looking straight up or down; any horizontal right works.
		right = model.Vec3{X: 1}
	}
	return basis{forward: forward, right: right, up: cross(right, forward)}
}

// project maps a world point to screen pixels. ok is false for points at
// or behind the camera plane.
func project(p Pose, vp Viewport, fov float64, world model.Vec3) (screenPoint, bool) {
	b := poseBasis(p)
	d := world.Sub(p.Position)
	z := dot(d, b.forward)
	if z < 1e-6 {
		return screenPoint{}, false
	}
	f := (vp.Height / 2) / math.Tan(fov/2)
	return screenPoint{
		X: vp.Width/2 + dot(d, b.right)*f/z,
		Y: vp.Height/2 - dot(d, b.up)*f/z,
	}, true
}

func dot(a, b model.Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func cross(a, b model.Vec3) model.Vec3 {
	return model.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func normalize(v model.Vec3) model.Vec3 {
	l := v.Length()
	if l < 1e-9 {
		return model.Vec3{}
	}
	return v.Scale(1 / l)
}

// bounds is a world-space axis-aligned bounding box.
type bounds struct {
	min, max model.Vec3
}

// boundsOf computes the padded bounding box of the placed nodes.
// ok is false when no node has a defined position yet.
func boundsOf(nodes []*model.Node, padding float64) (bounds, bool) {
	var b bounds
	found := false
	for _, n := range nodes {
		if !n.Placed {
			continue
		}
		if !found {
			b.min, b.max = n.Pos, n.Pos
			found = true
			continue
		}
		b.min.X = math.Min(b.min.X, n.Pos.X)
		b.min.Y = math.Min(b.min.Y, n.Pos.Y)
		b.min.Z = math.Min(b.min.Z, n.Pos.Z)
		b.max.X = math.Max(b.max.X, n.Pos.X)
		b.max.Y = math.Max(b.max.Y, n.Pos.Y)
		b.max.Z = math.Max(b.max.Z, n.Pos.Z)
	}
	if !found {
		return bounds{}, false
	}
	pad := model.Vec3{X: padding, Y: padding, Z: padding}
	b.min = b.min.Sub(pad)
	b.max = b.max.Add(pad)
	return b, true
}

func (b bounds) corners() [8]model.Vec3 {
	return [8]model.Vec3{
		{X: b.min.X, Y: b.min.Y, Z: b.min.Z},
		{X: b.max.X, Y: b.min.Y, Z: b.min.Z},
		{X: b.min.X, Y: b.max.Y, Z: b.min.Z},
		{X: b.max.X, Y: b.max.Y, Z: b.min.Z},
		{X: b.min.X, Y: b.min.Y, Z: b.max.Z},
		{X: b.max.X, Y: b.min.Y, Z: b.max.Z},
		{X: b.min.X, Y: b.max.Y, Z: b.max.Z},
		{X: b.max.X, Y: b.max.Y, Z: b.max.Z},
	}
}

// screenRect projects the box corners and returns their screen-space
// bounding rectangle plus the depth of the deepest visible corner.
// ok is false when every corner is behind the camera.
func (b bounds) screenRect(p Pose, vp Viewport, fov float64) (rect, float64, bool) {
	base := poseBasis(p)
	r := rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	maxZ := 0.0
	any := false
	for _, c := range b.corners() {
		sp, ok := project(p, vp, fov, c)
		if !ok {
			continue
		}
		any = true
		r.MinX = math.Min(r.MinX, sp.X)
		r.MinY = math.Min(r.MinY, sp.Y)
		r.MaxX = math.Max(r.MaxX, sp.X)
		r.MaxY = math.Max(r.MaxY, sp.Y)
		maxZ = math.Max(maxZ, dot(c.Sub(p.Position), base.forward))
	}
	return r, maxZ, any
}
