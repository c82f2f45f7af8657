package scene

import (
	"math"
	"sync"
)

// Default camera poses. The 3D pose is only a starting point; the camera
// resumes wherever the user left it when 3D mode returns.
var (
	default3DPose   = Vec3{X: 0, Y: 0, Z: 40}
	topDownPose     = Vec3{X: 0, Y: 0, Z: 30}
	fullPolarRange  = math.Pi
	hemispherePolar = math.Pi / 2
)

// Camera tracks the viewpoint pose and the polar rotation limit applied per
// visualization mode.
type Camera struct {
	mu       sync.Mutex
	position Vec3
	maxPolar float64

	saved3D Vec3
	has3D   bool
}

// NewCamera returns a camera in the default 3D pose.
func NewCamera() *Camera {
	return &Camera{
		position: default3DPose,
		maxPolar: fullPolarRange,
	}
}

// Position returns the current camera pose.
func (c *Camera) Position() Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// MaxPolarAngle returns the current polar rotation clamp in radians.
func (c *Camera) MaxPolarAngle() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxPolar
}

// SetPosition applies an externally driven camera move (orbit controls).
func (c *Camera) SetPosition(pos Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
}

// ApplyFraming adjusts the camera for a completed mode switch. Leaving 3D
// saves the pose so a later return to 3D resumes it; the flat modes snap to a
// fixed top-down pose and clamp polar rotation to a hemisphere.
func (c *Camera) ApplyFraming(from, to Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if from.Is3D() && !to.Is3D() {
		c.saved3D = c.position
		c.has3D = true
	}

	if to.Is3D() {
		if c.has3D {
			c.position = c.saved3D
		} else {
			c.position = default3DPose
		}
		c.maxPolar = fullPolarRange
		return
	}

	c.position = topDownPose
	c.maxPolar = hemispherePolar
}
