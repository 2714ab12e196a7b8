package sim

import "math"

// Frustum is a 2D observation cone: everything within FOV/2 of the heading
// and closer than the far plane.
type Frustum struct {
	Pos     Vec2
	Heading float64 // radians
	FOV     float64 // radians, total arc width
	Far     float64
}

// ContainsPoint reports whether p falls inside the cone.
func (f Frustum) ContainsPoint(p Vec2) bool {
	d := p.Sub(f.Pos)
	dist := d.Len()
	if dist > f.Far || dist < 1e-6 {
		return false
	}
	diff := normalizeAngle(math.Atan2(d.Y, d.X) - f.Heading)
	half := f.FOV / 2
	return diff >= -half && diff <= half
}

// ContainsBounds reports whether any part of the box falls inside the cone.
// Corner-and-center sampling; exact edge clipping is not worth it at the
// box sizes involved.
func (f Frustum) ContainsBounds(b AABB) bool {
	if f.ContainsPoint(b.Center()) {
		return true
	}
	for _, c := range b.Corners() {
		if f.ContainsPoint(c) {
			return true
		}
	}
	return false
}
