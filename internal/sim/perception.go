package sim

import "math"

// PerceptionState is recomputed once per tick and cached; transitions,
// tasks, and the viewer all read the same result so one tick never acts on
// two different answers to "can I see the target".
type PerceptionState struct {
	TargetVisible bool

	// LastKnownTargetPos is written only on ticks where TargetVisible is
	// true; it persists unchanged otherwise. HasLastKnown is false until the
	// first sighting.
	LastKnownTargetPos Vec2
	HasLastKnown       bool

	// Reciprocal visibility: does the target currently see the agent? Side
	// signal for external consumers, never used by transition logic.
	AgentVisibleToTarget bool
	AgentOccluded        bool
}

// Memory is the decaying belief that the agent still knows where the target
// is. Active is true exactly while Timer > 0.
type Memory struct {
	Timer  float64
	Active bool
}

// Perception combines the sight tests and the memory timer.
type Perception struct {
	cfg   *Config
	world *World

	State  PerceptionState
	Memory Memory

	// memoryLost is the one-shot "memory expired this tick" edge. Cleared at
	// the start of every Update so reading it is idempotent within a tick.
	memoryLost bool
}

// NewPerception binds the perception engine to a world and config.
func NewPerception(cfg *Config, world *World) *Perception {
	return &Perception{cfg: cfg, world: world}
}

// MemoryLost reports whether memory expired on the current tick.
func (p *Perception) MemoryLost() bool { return p.memoryLost }

// Update runs both visibility tests and advances the memory timer. pos and
// heading are the agent's; bounds is the agent's bounding box for the
// reciprocal frustum test.
func (p *Perception) Update(pos Vec2, heading float64, bounds AABB, dt float64) {
	p.memoryLost = false

	visible := p.testTargetVisible(pos, heading)
	p.State.TargetVisible = visible
	if visible {
		p.State.LastKnownTargetPos = p.world.Target.Pos
		p.State.HasLastKnown = true
	}

	p.updateReciprocal(pos, bounds)
	p.updateMemory(visible, dt)
}

// testTargetVisible applies the three gates in cheap-to-expensive order:
// distance, angle, then the line-of-sight probe. The target is visible only
// when the first surface the probe strikes is the target itself.
func (p *Perception) testTargetVisible(pos Vec2, heading float64) bool {
	target := p.world.Target
	d := target.Pos.Sub(pos)
	dist := d.Len()
	if dist >= p.cfg.Perception.ViewDistance || dist < 1e-6 {
		return false
	}

	diff := normalizeAngle(math.Atan2(d.Y, d.X) - heading)
	if math.Abs(diff) >= p.cfg.Perception.FOVRadians()/2 {
		return false
	}

	return p.world.LineOfSight(pos, target.Pos).HitTarget
}

// updateReciprocal computes whether the target can see the agent: a solid
// surface between them marks the agent occluded; otherwise containment in
// the target's observation frustum marks it visible.
func (p *Perception) updateReciprocal(pos Vec2, bounds AABB) {
	hit := p.world.LineOfSight(pos, p.world.Target.Pos)
	p.State.AgentOccluded = hit.HitSolid
	if p.State.AgentOccluded {
		p.State.AgentVisibleToTarget = false
		return
	}
	p.State.AgentVisibleToTarget = p.world.Target.Frustum.ContainsBounds(bounds)
}

// updateMemory resets the timer on sight and decays it otherwise. The
// transition to inactive is a one-time edge surfaced via MemoryLost.
func (p *Perception) updateMemory(visible bool, dt float64) {
	if visible {
		p.Memory.Timer = p.cfg.Perception.MemoryDuration
		p.Memory.Active = p.Memory.Timer > 0
		return
	}
	if !p.Memory.Active {
		return
	}
	p.Memory.Timer -= dt
	if p.Memory.Timer <= 0 {
		p.Memory.Timer = 0
		p.Memory.Active = false
		p.memoryLost = true
	}
}
