// Package scene holds what the renderer draws: a camera, meshes placed in
// the world through transforms, and the scene that groups them.
package scene

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
)

// Profile describes the camera lens.
type Profile struct {
	FOV         float64 // vertical field of view in radians
	AspectRatio float64 // width / height
	Near        float64
	Far         float64
}

// DefaultProfile is a 60° lens for a 16:9 target.
func DefaultProfile() Profile {
	return Profile{
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
	}
}

// Camera is a perspective camera placed by position and Euler rotation.
// Its view, projection and view-projection matrices are cached and rebuilt
// only after a mutator marks them dirty, so the fields are reachable through
// methods only.
type Camera struct {
	position math3d.Vec3
	rotation math3d.Vec3 // pitch (X), yaw (Y), roll (Z); positive pitch looks down
	profile  Profile

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

// NewCamera creates a camera at the origin looking down +Z.
func NewCamera(profile Profile) *Camera {
	return &Camera{
		profile:       profile,
		viewDirty:     true,
		projDirty:     true,
		viewProjDirty: true,
	}
}

// Position returns the camera position in world space.
func (c *Camera) Position() math3d.Vec3 { return c.position }

// Rotation returns (pitch, yaw, roll) in radians.
func (c *Camera) Rotation() math3d.Vec3 { return c.rotation }

// Profile returns the lens parameters.
func (c *Camera) Profile() Profile { return c.profile }

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.position = pos
	c.markView()
}

// SetRotation sets the camera rotation (pitch, yaw, roll in radians).
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.rotation = math3d.V3(pitch, yaw, roll)
	c.markView()
}

// SetProfile replaces the lens parameters.
func (c *Camera) SetProfile(p Profile) {
	c.profile = p
	c.markProj()
}

// SetAspectRatio updates only the aspect ratio, e.g. after a resize.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.profile.AspectRatio = aspect
	c.markProj()
}

func (c *Camera) markView() {
	c.viewDirty = true
	c.viewProjDirty = true
}

func (c *Camera) markProj() {
	c.projDirty = true
	c.viewProjDirty = true
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.Euler(c.rotation).MulDir(math3d.Forward())
}

// Right returns the unit right direction.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.Euler(c.rotation).MulDir(math3d.Right())
}

// Up returns the unit up direction.
func (c *Camera) Up() math3d.Vec3 {
	return math3d.Euler(c.rotation).MulDir(math3d.Up())
}

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		// inverse of Translate(pos) * Euler(rot)
		rot := math3d.RotateZ(-c.rotation.Z).
			Mul(math3d.RotateX(-c.rotation.X)).
			Mul(math3d.RotateY(-c.rotation.Y))
		c.viewMatrix = rot.Mul(math3d.Translate(c.position.Negate()))
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the view-to-clip matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		p := c.profile
		c.projMatrix = math3d.PerspectiveLH(p.FOV, p.AspectRatio, p.Near, p.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined world-to-clip matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewProjDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// MoveForward moves the camera along its view direction.
func (c *Camera) MoveForward(distance float64) {
	c.SetPosition(c.position.Add(c.Forward().Scale(distance)))
}

// MoveRight moves the camera along its right direction.
func (c *Camera) MoveRight(distance float64) {
	c.SetPosition(c.position.Add(c.Right().Scale(distance)))
}

// MoveUp moves the camera along world up.
func (c *Camera) MoveUp(distance float64) {
	c.SetPosition(c.position.Add(math3d.Up().Scale(distance)))
}

// Rotate adds the given angles (in radians). Pitch is clamped short of
// straight up or down.
func (c *Camera) Rotate(deltaPitch, deltaYaw, deltaRoll float64) {
	const maxPitch = math.Pi/2 - 0.01
	r := c.rotation.Add(math3d.V3(deltaPitch, deltaYaw, deltaRoll))
	r.X = math3d.Clamp(r.X, -maxPitch, maxPitch)
	c.rotation = r
	c.markView()
}

// LookAt points the camera at target, clearing roll.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.position).Normalize()
	c.rotation = math3d.V3(math.Asin(-dir.Y), math.Atan2(dir.X, dir.Z), 0)
	c.markView()
}

// Orbit places the camera on a sphere of the given radius around target
// and looks at it. yaw and pitch are in radians; positive pitch lifts the
// camera above the target.
func (c *Camera) Orbit(target math3d.Vec3, radius, yaw, pitch float64) {
	offset := math3d.V3(
		-math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		-math.Cos(yaw)*math.Cos(pitch),
	).Scale(radius)
	c.position = target.Add(offset)
	c.LookAt(target)
}
