package doomsie3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// maxPitch keeps the view matrix away from pole degeneracy.
var maxPitch = degreesToRadians(89)

const farPlane = 65536.0

// Camera holds the eye's position and orientation. It is mutated only
// by the input layer through Apply and read by the projector; it does no
// input polling itself.
type Camera struct {
	Pos   mgl64.Vec3
	Yaw   float64 // radians around +Y; 0 faces +Z (map north)
	Pitch float64 // radians, positive looks up, clamped to maxPitch
	FOV   float64 // horizontal field of view, radians
	Near  float64 // near-plane distance in map units
}

func NewCamera(pos mgl64.Vec3, yaw float64) *Camera {
	return &Camera{
		Pos:  pos,
		Yaw:  yaw,
		FOV:  degreesToRadians(90),
		Near: 4,
	}
}

// ViewMatrix is the world-to-camera transform: yaw and translation
// applied in reverse. Pitch is deliberately not part of the matrix;
// the rasterizer renders it as a vertical screen shear, which keeps
// camera-space z constant along a wall's vertical edges.
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DY(-c.Yaw)
	return rot.Mul4(mgl64.Translate3D(-c.Pos.X(), -c.Pos.Y(), -c.Pos.Z()))
}

// ProjectionMatrix is the camera-to-clip transform for the given aspect
// ratio (width/height).
func (c *Camera) ProjectionMatrix(aspect float64) mgl64.Mat4 {
	fovY := 2 * math.Atan(math.Tan(c.FOV/2)/aspect)
	return mgl64.Perspective(fovY, aspect, c.Near, farPlane)
}

// Forward is the view direction including pitch.
func (c *Camera) Forward() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	return mgl64.Vec3{math.Sin(c.Yaw) * cp, math.Sin(c.Pitch), math.Cos(c.Yaw) * cp}
}

// Right is the screen-right direction, always horizontal.
func (c *Camera) Right() mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(c.Yaw), 0, -math.Sin(c.Yaw)}
}

// Turn adds yaw and pitch deltas, clamping pitch.
func (c *Camera) Turn(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = clampFloat(c.Pitch+dpitch, -maxPitch, maxPitch)
}

// Move translates horizontally relative to the current yaw; pitch never
// affects movement, matching Doom's ground-bound player.
func (c *Camera) Move(forward, strafe float64) {
	dir := mgl64.Vec3{math.Sin(c.Yaw), 0, math.Cos(c.Yaw)}
	c.Pos = c.Pos.Add(dir.Mul(forward)).Add(c.Right().Mul(strafe))
}

// Intent is one frame's worth of already-sampled movement deltas,
// produced by the external input layer.
type Intent struct {
	Forward float64 // map units, +ahead
	Strafe  float64 // map units, +right
	Yaw     float64 // radians
	Pitch   float64 // radians
}

// Apply consumes an intent set before a frame is rendered.
func (c *Camera) Apply(in Intent) {
	c.Turn(in.Yaw, in.Pitch)
	c.Move(in.Forward, in.Strafe)
}

// SetFromThing places the camera at a spawn thing, eye height above the
// floor. Thing angles are map-plane degrees with 0 = east.
func (c *Camera) SetFromThing(t Thing, floorHeight, eyeHeight float64) {
	c.Pos = mgl64.Vec3{t.X, floorHeight + eyeHeight, t.Y}
	c.Yaw = math.Pi/2 - t.Angle
	c.Pitch = 0
}
