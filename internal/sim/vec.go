package sim

import "math"

// Vec2 is a 2D world-space point or direction.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns the unit vector, or the zero vector for near-zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Dist returns the distance between two points.
func Dist(a, b Vec2) float64 {
	return b.Sub(a).Len()
}

// HeadingTo returns the angle in radians from `from` toward `to`.
// 0 = +X, pi/2 = +Y.
func HeadingTo(from, to Vec2) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// turnToward steps `heading` toward `target` by at most maxStep radians,
// snapping when the remaining difference is smaller than the step.
func turnToward(heading, target, maxStep float64) float64 {
	diff := normalizeAngle(target - heading)
	if math.Abs(diff) <= maxStep {
		return target
	}
	if diff > 0 {
		return normalizeAngle(heading + maxStep)
	}
	return normalizeAngle(heading - maxStep)
}
