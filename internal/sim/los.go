package sim

import "math"

// RayHit classifies the first surface struck by a line-of-sight probe.
// A probe that reaches its endpoint untouched has Hit == false.
type RayHit struct {
	Hit       bool
	HitTarget bool // first surface was the tracked target
	HitSolid  bool // first surface was solid scene geometry
	T         float64
}

// LineOfSight casts a segment from `from` to `to` through the scene and
// returns the first surface struck. Transparent obstacles are ignored; the
// target's bounding box competes with solid geometry for the nearest hit.
func (w *World) LineOfSight(from, to Vec2) RayHit {
	bestT := math.Inf(1)
	hitSolid := false

	for _, o := range w.Obstacles {
		if o.Transparent {
			continue
		}
		b := o.Bounds()
		if t, ok := segmentAABBHitT(from, to, b.Min, b.Max); ok && t < bestT {
			bestT = t
			hitSolid = true
		}
	}

	if w.Target != nil {
		b := w.Target.Bounds()
		if t, ok := segmentAABBHitT(from, to, b.Min, b.Max); ok && t < bestT {
			bestT = t
			hitSolid = false
		}
	}

	if math.IsInf(bestT, 1) {
		return RayHit{}
	}
	return RayHit{Hit: true, HitTarget: !hitSolid, HitSolid: hitSolid, T: bestT}
}

// segmentAABBHitT returns the first segment parameter t in [0,1] where the
// line from `from` to `to` enters the AABB. The bool is false when no hit
// exists. Slab test on both axes.
func segmentAABBHitT(from, to, min, max Vec2) (float64, bool) {
	dx := to.X - from.X
	dy := to.Y - from.Y

	tMin := 0.0
	tMax := 1.0

	// X slab
	if math.Abs(dx) < 1e-12 {
		if from.X < min.X || from.X > max.X {
			return 0, false
		}
	} else {
		invD := 1.0 / dx
		t1 := (min.X - from.X) * invD
		t2 := (max.X - from.X) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	// Y slab
	if math.Abs(dy) < 1e-12 {
		if from.Y < min.Y || from.Y > max.Y {
			return 0, false
		}
	} else {
		invD := 1.0 / dy
		t1 := (min.Y - from.Y) * invD
		t2 := (max.Y - from.Y) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 || tMin > 1 {
		return 0, false
	}
	if tMin < 0 {
		tMin = 0
	}
	return tMin, true
}
