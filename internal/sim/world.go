package sim

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max Vec2
}

// Corners returns the four corner points.
func (b AABB) Corners() [4]Vec2 {
	return [4]Vec2{
		{b.Min.X, b.Min.Y},
		{b.Max.X, b.Min.Y},
		{b.Max.X, b.Max.Y},
		{b.Min.X, b.Max.Y},
	}
}

// Center returns the box midpoint.
func (b AABB) Center() Vec2 {
	return Vec2{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2}
}

// boundsAround builds a square AABB of the given half-extent around a point.
func boundsAround(p Vec2, r float64) AABB {
	return AABB{Min: Vec2{p.X - r, p.Y - r}, Max: Vec2{p.X + r, p.Y + r}}
}

// Obstacle is a rectangular piece of scene geometry. Transparent obstacles
// (windows) block movement but not sight; they never occlude a probe.
type Obstacle struct {
	X, Y, W, H  float64
	Transparent bool
}

// Bounds returns the obstacle's AABB.
func (o Obstacle) Bounds() AABB {
	return AABB{Min: Vec2{o.X, o.Y}, Max: Vec2{o.X + o.W, o.Y + o.H}}
}

// Target is the entity being perceived. The controller reads it but never
// mutates it; scripts and the viewer move it around.
type Target struct {
	Pos     Vec2
	Radius  float64
	Frustum Frustum // the target's own observation frustum (follows Pos)
}

// Bounds returns the target's bounding box.
func (t *Target) Bounds() AABB {
	return boundsAround(t.Pos, t.Radius)
}

// MoveTo places the target and keeps its frustum origin attached.
func (t *Target) MoveTo(p Vec2) {
	t.Pos = p
	t.Frustum.Pos = p
}

// Face points the target's observation frustum.
func (t *Target) Face(heading float64) {
	t.Frustum.Heading = heading
}

// World is the static scene plus the tracked target. It answers the spatial
// queries the perception engine needs.
type World struct {
	Width, Height float64
	Obstacles     []Obstacle
	Target        *Target
}

// NewWorld creates an empty arena of the given size.
func NewWorld(w, h float64) *World {
	return &World{Width: w, Height: h}
}

// AddObstacle appends a solid rectangle.
func (w *World) AddObstacle(x, y, width, height float64) {
	w.Obstacles = append(w.Obstacles, Obstacle{X: x, Y: y, W: width, H: height})
}

// AddWindow appends a rectangle that blocks movement but not sight.
func (w *World) AddWindow(x, y, width, height float64) {
	w.Obstacles = append(w.Obstacles, Obstacle{X: x, Y: y, W: width, H: height, Transparent: true})
}
