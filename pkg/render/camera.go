package render

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
)

// Camera is a yaw/pitch fly camera that produces the view and projection
// matrices for a Pipeline.
type Camera struct {
	Position math3d.Vec3

	Pitch float64 // Radians, around X
	Yaw   float64 // Radians, around Y

	FOV         float64 // Vertical, radians
	AspectRatio float64
	Near        float64
	Far         float64

	view      math3d.Mat4
	proj      math3d.Mat4
	viewDirty bool
	projDirty bool
}

// NewCamera creates a camera at the origin looking down -Z with a 60°
// field of view.
func NewCamera() *Camera {
	return &Camera{
		FOV:         math.Pi / 3,
		AspectRatio: 1,
		Near:        0.1,
		Far:         100,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition moves the camera to pos.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets width/height.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far plane distances.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the unit right vector in the horizontal plane.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.view = math3d.LookAt(c.Position, c.Position.Add(c.Forward()), math3d.Up())
		c.viewDirty = false
	}
	return c.view
}

// ProjectionMatrix returns the perspective projection, depth in [0, 1].
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.proj = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.proj
}

// Apply loads the camera's view and projection into p.
func (c *Camera) Apply(p *Pipeline) {
	p.SetViewMatrix(c.ViewMatrix())
	p.SetProjMatrix(c.ProjectionMatrix())
}

// MoveForward moves along the view direction.
func (c *Camera) MoveForward(distance float64) {
	c.SetPosition(c.Position.Add(c.Forward().Scale(distance)))
}

// MoveRight strafes along the right vector.
func (c *Camera) MoveRight(distance float64) {
	c.SetPosition(c.Position.Add(c.Right().Scale(distance)))
}

// MoveUp moves along world +Y.
func (c *Camera) MoveUp(distance float64) {
	c.SetPosition(c.Position.Add(math3d.Up().Scale(distance)))
}

// Rotate adds to pitch and yaw. Pitch stays just short of straight up or
// down.
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	const maxPitch = math.Pi/2 - 0.01
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch+deltaPitch))
	c.Yaw += deltaYaw
	c.viewDirty = true
}

// LookAt turns the camera towards target.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.viewDirty = true
}

// Frame places the camera on the +Z side of box so that the whole box fits
// the vertical field of view, and fits the clip planes around it.
func (c *Camera) Frame(box AABB) {
	center := box.Min.Add(box.Max).Scale(0.5)
	radius := box.Max.Sub(box.Min).Len() / 2
	if radius == 0 {
		radius = 1
	}
	dist := radius / math.Sin(c.FOV/2)

	c.SetPosition(center.Add(math3d.V3(0, 0, dist)))
	c.LookAt(center)
	c.SetClipPlanes(math.Max(dist-radius, radius*0.01)*0.5, (dist+radius)*2)
}

// WorldToScreen projects a world point onto a width×height target with the
// same mapping the pipeline uses. visible is false for points outside the
// clip volume.
func (c *Camera) WorldToScreen(world math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	vp := c.ProjectionMatrix().Mul(c.ViewMatrix())
	clip := vp.MulVec4(math3d.V4FromV3(world, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}

	sv := project(world, vp, float64(width), float64(height))
	ndcX, ndcY := clip.X/clip.W, clip.Y/clip.W
	if ndcX < -1 || ndcX > 1 || ndcY < -1 || ndcY > 1 || sv.Z < 0 || sv.Z > 1 {
		return sv.X, sv.Y, sv.Z, false
	}
	return sv.X, sv.Y, sv.Z, true
}
