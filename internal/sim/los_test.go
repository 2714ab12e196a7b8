package sim

import "testing"

func losWorld() *World {
	w := NewWorld(640, 480)
	w.Target = &Target{Pos: Vec2{X: 400, Y: 240}, Radius: 6}
	return w
}

func TestLineOfSight_ClearPathHitsTarget(t *testing.T) {
	w := losWorld()
	hit := w.LineOfSight(Vec2{X: 100, Y: 240}, w.Target.Pos)
	if !hit.Hit || !hit.HitTarget || hit.HitSolid {
		t.Fatalf("expected clean target hit, got %+v", hit)
	}
}

func TestLineOfSight_BlockedBySolid(t *testing.T) {
	w := losWorld()
	w.AddObstacle(240, 200, 20, 80)
	hit := w.LineOfSight(Vec2{X: 100, Y: 240}, w.Target.Pos)
	if !hit.Hit || !hit.HitSolid || hit.HitTarget {
		t.Fatalf("expected solid occluder, got %+v", hit)
	}
}

func TestLineOfSight_WindowDoesNotOcclude(t *testing.T) {
	w := losWorld()
	w.AddWindow(240, 200, 20, 80)
	hit := w.LineOfSight(Vec2{X: 100, Y: 240}, w.Target.Pos)
	if !hit.HitTarget {
		t.Fatalf("window should be transparent to sight, got %+v", hit)
	}
}

func TestLineOfSight_ObstacleBehindTargetIgnored(t *testing.T) {
	w := losWorld()
	w.AddObstacle(500, 200, 20, 80) // beyond the target along the probe
	hit := w.LineOfSight(Vec2{X: 100, Y: 240}, w.Target.Pos)
	if !hit.HitTarget {
		t.Fatalf("nearest surface is the target, got %+v", hit)
	}
}

func TestLineOfSight_NoTargetNoObstacles(t *testing.T) {
	w := NewWorld(640, 480)
	hit := w.LineOfSight(Vec2{X: 10, Y: 10}, Vec2{X: 600, Y: 400})
	if hit.Hit {
		t.Fatalf("empty scene should produce no hit, got %+v", hit)
	}
}

func TestSegmentAABB_VerticalSegment(t *testing.T) {
	// Degenerate dx == 0 must still clip against the Y slab.
	if _, ok := segmentAABBHitT(Vec2{X: 50, Y: 0}, Vec2{X: 50, Y: 100},
		Vec2{X: 40, Y: 40}, Vec2{X: 60, Y: 60}); !ok {
		t.Fatal("vertical segment through box should hit")
	}
	if _, ok := segmentAABBHitT(Vec2{X: 30, Y: 0}, Vec2{X: 30, Y: 100},
		Vec2{X: 40, Y: 40}, Vec2{X: 60, Y: 60}); ok {
		t.Fatal("vertical segment beside box should miss")
	}
}

func TestSegmentAABB_SegmentEndsShortOfBox(t *testing.T) {
	if _, ok := segmentAABBHitT(Vec2{X: 0, Y: 50}, Vec2{X: 30, Y: 50},
		Vec2{X: 40, Y: 40}, Vec2{X: 60, Y: 60}); ok {
		t.Fatal("segment ending before the box should miss")
	}
}
