package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Agent is the controlled entity: one behavior state, one perception engine,
// one navigator, and at most one bound timed sub-behavior task. Everything
// advances in lockstep from Step; there are no goroutines, so all timing is
// simulation time and runs are deterministic for a given seed.
type Agent struct {
	cfg   *Config
	world *World
	nav   *Navigator
	rng   *rand.Rand
	log   *SimLog
	obs   Observer

	demeanor   Demeanor
	state      BehaviorState
	perception *Perception
	task       task

	tick int

	// previous published flags, for change-detection on the observer
	prevTargetVisible bool
	prevSeenByTarget  bool
}

// NewAgent wires the controller to its collaborators. A missing collaborator
// or invalid config is a fatal configuration error: the caller reports it
// once and leaves the agent idle.
func NewAgent(cfg *Config, world *World, nav *Navigator, opts ...AgentOption) (*Agent, error) {
	if cfg == nil {
		return nil, errors.New("sim: agent requires a config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: agent config: %w", err)
	}
	if world == nil {
		return nil, errors.New("sim: agent requires a world")
	}
	if world.Target == nil {
		return nil, errors.New("sim: agent requires a tracked target in the world")
	}
	if nav == nil {
		return nil, errors.New("sim: agent requires a navigation service")
	}

	a := &Agent{
		cfg:        cfg,
		world:      world,
		nav:        nav,
		rng:        rand.New(rand.NewSource(1)), // #nosec G404 -- simulation, not crypto
		log:        NewSimLog(false),
		obs:        NopObserver{},
		state:      StateWander,
		perception: NewPerception(cfg, world),
	}
	for _, o := range opts {
		o(a)
	}
	stateHandlers[a.state].enter(a)
	a.obs.StateChanged(a.state)
	return a, nil
}

// AgentOption customizes an agent at construction.
type AgentOption func(*Agent)

// WithAgentDemeanor sets which pursuit state perception drives the agent into.
func WithAgentDemeanor(d Demeanor) AgentOption {
	return func(a *Agent) { a.demeanor = d }
}

// WithAgentRand sets the RNG used for wander/search point picking and stalk
// phase choices.
func WithAgentRand(rng *rand.Rand) AgentOption {
	return func(a *Agent) { a.rng = rng }
}

// WithAgentLog attaches a structured event log.
func WithAgentLog(log *SimLog) AgentOption {
	return func(a *Agent) { a.log = log }
}

// WithAgentObserver attaches the visualization/telemetry consumer.
func WithAgentObserver(obs Observer) AgentOption {
	return func(a *Agent) { a.obs = obs }
}

// State returns the current behavior state.
func (a *Agent) State() BehaviorState { return a.state }

// Demeanor returns the agent's pursuit disposition.
func (a *Agent) Demeanor() Demeanor { return a.demeanor }

// Pos returns the agent's position.
func (a *Agent) Pos() Vec2 { return a.nav.Pos() }

// Heading returns the agent's facing in radians.
func (a *Agent) Heading() float64 { return a.nav.Heading() }

// Perception exposes the cached per-tick perception state.
func (a *Agent) Perception() *Perception { return a.perception }

// Bounds returns the agent's bounding box.
func (a *Agent) Bounds() AABB {
	return boundsAround(a.nav.Pos(), a.cfg.Movement.AgentRadius)
}

// HasBoundTask reports whether a timed sub-behavior task is currently bound.
func (a *Agent) HasBoundTask() bool { return a.task != nil }

// boundTaskState returns the state the bound task belongs to. Only valid
// when HasBoundTask.
func (a *Agent) boundTaskState() BehaviorState { return a.task.base().bound }

// Step advances one simulation tick: perception refresh, transition
// evaluation, task resumption, movement intent, then locomotion. dt is
// elapsed simulation time in seconds.
func (a *Agent) Step(dt float64) {
	a.tick++

	// 1. SENSE — one visibility computation per tick; everyone downstream
	// reads the cached result.
	wasVisible := a.perception.State.TargetVisible
	a.perception.Update(a.nav.Pos(), a.nav.Heading(), a.Bounds(), dt)
	st := &a.perception.State
	if st.TargetVisible != wasVisible {
		if st.TargetVisible {
			a.log.Add(a.tick, "perception", "acquired",
				fmt.Sprintf("target at (%.0f,%.0f)", st.LastKnownTargetPos.X, st.LastKnownTargetPos.Y), 0)
		} else {
			a.log.Add(a.tick, "perception", "lost", "target out of sight", 0)
		}
	}
	if a.perception.MemoryLost() {
		a.log.Add(a.tick, "memory", "lost", "memory timer expired", 0)
	}

	// 2. TRANSITIONS
	a.evaluateTransitions()

	// 3. TASKS — resume the bound task, if any.
	a.tickTask(dt)

	// 4. MOVEMENT INTENT for whatever state we ended up in.
	if h := stateHandlers[a.state].tick; h != nil {
		h(a, dt)
	}

	// 5. LOCOMOTION
	a.nav.Advance(dt)

	// 6. PUBLISH side signals on change.
	if st.TargetVisible != a.prevTargetVisible || st.AgentVisibleToTarget != a.prevSeenByTarget {
		a.obs.PerceptionChanged(st.TargetVisible, st.AgentVisibleToTarget)
		a.prevTargetVisible = st.TargetVisible
		a.prevSeenByTarget = st.AgentVisibleToTarget
	}
}

// evaluateTransitions applies the priority-ordered transition rules for the
// tick. It is idempotent: re-running it with unchanged perception yields the
// same state and bindings.
func (a *Agent) evaluateTransitions() {
	vis := a.perception.State.TargetVisible

	switch {
	case vis:
		// Perceiving the target (which also refreshes memory) forces the
		// demeanor's pursuit state from anywhere — one reacquisition policy
		// for WANDER, SEARCH, and mid-pursuit alike.
		a.setState(a.demeanor.pursuitState())
		// Reacquiring sight mid-chase leaves the state unchanged, so the
		// transition alone would not cancel a running grace period. Clear it
		// here so a later loss of sight starts a fresh one.
		if _, ok := a.task.(*graceTask); ok {
			a.cancelTask()
		}

	case a.state == StateChase:
		// Sight lost while chasing: hold the chase for the grace period.
		if a.task == nil && a.cfg.Behavior.ChaseLostSightTime > 0 {
			a.bindTask(newGraceTask(a.cfg.Behavior.ChaseLostSightTime))
		}

	case a.state == StateSearch:
		// Keep searching until the bound task decides otherwise.

	case (a.state == StateStalk || a.state == StateHide) && a.task != nil:
		// The bound task owns the exit condition.

	default:
		a.setState(StateWander)
	}

	// Memory expiring is a one-time edge that forces a search around the
	// last known position, unless perception already re-forced pursuit this
	// tick.
	if a.perception.MemoryLost() && !vis && a.state != StateSearch {
		a.setState(StateSearch)
	}
}

// setState transitions to s: the task bound to the state being left is
// cancelled before the new state's entry runs, so a stale task can never
// fire after a newer one is bound. Entering the current state is a no-op.
func (a *Agent) setState(s BehaviorState) {
	if a.state == s {
		return
	}
	a.cancelTask()
	prev := a.state
	a.state = s
	a.log.Add(a.tick, "state", "change", fmt.Sprintf("%s -> %s", prev, s), 0)
	if h := stateHandlers[s].enter; h != nil {
		h(a)
	}
	a.obs.StateChanged(s)
}

// bindTask attaches a task. At most one may be bound; binding over a live
// task cancels it first.
func (a *Agent) bindTask(t task) {
	if a.task != nil {
		a.cancelTask()
	}
	a.task = t
	a.logTask(t, "start", "")
}

// cancelTask cooperatively cancels the bound task: it is marked cancelled
// and unbound, and since cancelled tasks are never resumed, any completion
// effects that would have fired this tick are suppressed.
func (a *Agent) cancelTask() {
	if a.task == nil {
		return
	}
	a.task.base().cancelled = true
	a.logTask(a.task, "cancel", "")
	a.task = nil
}

// tickTask resumes the bound task once. A task that finished (and was not
// replaced by a transition it triggered) is unbound.
func (a *Agent) tickTask(dt float64) {
	t := a.task
	if t == nil || t.base().finished() {
		return
	}
	t.tick(a, dt)
	if a.task == t && t.base().finished() {
		a.task = nil
	}
}

func (a *Agent) logTask(t task, key, detail string) {
	a.log.Add(a.tick, "task", key, fmt.Sprintf("%s(%s) %s", t.name(), t.base().bound, detail), 0)
}

// --- per-state entry and movement intent ---

func (a *Agent) enterWander() {
	a.nav.SetSpeed(a.cfg.Movement.WanderSpeed)
}

func (a *Agent) tickWander(_ float64) {
	if a.nav.HasPendingPath() {
		return
	}
	p := a.randomPointAround(a.nav.Pos(), a.cfg.Behavior.WanderRadius)
	a.nav.RequestDestination(p)
}

func (a *Agent) enterChase() {
	a.nav.SetSpeed(a.cfg.Movement.ChaseSpeed)
}

func (a *Agent) tickChase(_ float64) {
	// Continuously track the live position; the navigator dedupes requests
	// that land in the same cell.
	a.nav.RequestDestination(a.world.Target.Pos)
}

func (a *Agent) enterSearch() {
	a.nav.SetSpeed(a.cfg.Movement.SearchSpeed)
	a.bindTask(newSearchTask(&a.cfg.Behavior, a.rng))
}

func (a *Agent) tickSearch(_ float64) {
	if a.nav.HasPendingPath() {
		return
	}
	center := a.perception.State.LastKnownTargetPos
	if !a.perception.State.HasLastKnown {
		center = a.nav.Pos()
	}
	p := a.randomPointAround(center, a.cfg.Behavior.SearchRadius)
	a.nav.RequestDestination(p)
}

func (a *Agent) enterHide() {
	a.nav.SetSpeed(a.cfg.Movement.HideSpeed)
	a.bindTask(newHideTask())
}

func (a *Agent) enterStalk() {
	a.nav.SetSpeed(a.cfg.Movement.StalkSpeed)
	a.bindTask(newStalkTask(a.rng))
}

// randomPointAround picks a uniform random point within radius of center,
// projected onto traversable ground.
func (a *Agent) randomPointAround(center Vec2, radius float64) Vec2 {
	angle := a.rng.Float64() * 2 * math.Pi
	r := math.Sqrt(a.rng.Float64()) * radius
	p := Vec2{
		X: center.X + math.Cos(angle)*r,
		Y: center.Y + math.Sin(angle)*r,
	}
	return a.nav.ProjectToTraversable(p, radius)
}
