package sim

import "math/rand"

// task is a cancelable unit of work bound to exactly one behavior state.
// Tasks are cooperative: the agent resumes the bound task once per tick with
// the elapsed simulation time, and a cancelled task is simply never resumed
// again, so its completion effects cannot fire after cancellation. At most
// one task is bound at a time.
type task interface {
	base() *taskBase
	tick(a *Agent, dt float64)
	name() string
}

type taskBase struct {
	bound     BehaviorState
	cancelled bool
	done      bool
}

func (t *taskBase) base() *taskBase { return t }

func (t *taskBase) finished() bool { return t.done || t.cancelled }

// --- lose-sight grace period (bound to CHASE) ---

// graceTask waits out the grace period after losing sight mid-chase. On
// expiry it drops to SEARCH unless sight was regained; regaining sight
// cancels it outright (transition rule 2), so the expiry branch only
// double-checks the same tick's cached perception.
type graceTask struct {
	taskBase
	remaining float64
}

func newGraceTask(duration float64) *graceTask {
	return &graceTask{taskBase: taskBase{bound: StateChase}, remaining: duration}
}

func (t *graceTask) name() string { return "grace" }

func (t *graceTask) tick(a *Agent, dt float64) {
	t.remaining -= dt
	if t.remaining > 0 {
		return
	}
	t.done = true
	if !a.perception.State.TargetVisible {
		a.logTask(t, "expired", "chase abandoned")
		a.setState(StateSearch)
	} else {
		// Chase continues; clearing the binding lets a future loss of sight
		// spawn a fresh grace period.
		a.logTask(t, "expired", "sight regained, chase continues")
	}
}

// --- randomized search (bound to SEARCH) ---

// searchTask combs the last-known area for a random duration, then gives up
// and wanders. Reacquisition is handled by the transition rules, which
// cancel this task when they force the pursuit state.
type searchTask struct {
	taskBase
	remaining float64
}

func newSearchTask(cfg *BehaviorConfig, rng *rand.Rand) *searchTask {
	d := cfg.MinSearchTime + rng.Float64()*(cfg.MaxSearchTime-cfg.MinSearchTime)
	return &searchTask{taskBase: taskBase{bound: StateSearch}, remaining: d}
}

func (t *searchTask) name() string { return "search" }

func (t *searchTask) tick(a *Agent, dt float64) {
	if a.perception.Memory.Active && a.perception.State.TargetVisible {
		// Transitions fire before tasks each tick, so this is normally
		// unreachable; kept as the task's own exit per its contract.
		t.done = true
		a.setState(a.demeanor.pursuitState())
		return
	}
	t.remaining -= dt
	if t.remaining <= 0 {
		t.done = true
		a.logTask(t, "expired", "search exhausted")
		a.setState(StateWander)
	}
}

// --- stalk oscillation (bound to STALK) ---

type stalkPhase int

const (
	stalkChoose stalkPhase = iota
	stalkHold
	stalkApproach
	stalkCooldown
)

// stalkTask alternates between holding position (staring at the target) and
// closing in on its live position. After each phase it bails to WANDER if
// the target is no longer visible, otherwise pauses briefly and goes again.
type stalkTask struct {
	taskBase
	phase stalkPhase
	wait  float64
	rng   *rand.Rand
}

func newStalkTask(rng *rand.Rand) *stalkTask {
	return &stalkTask{taskBase: taskBase{bound: StateStalk}, phase: stalkChoose, rng: rng}
}

func (t *stalkTask) name() string { return "stalk" }

func (t *stalkTask) tick(a *Agent, dt float64) {
	bcfg := &a.cfg.Behavior
	switch t.phase {
	case stalkChoose:
		if t.rng.Float64() < 0.5 {
			t.wait = bcfg.MinSearchTime + t.rng.Float64()*(bcfg.MaxSearchTime-bcfg.MinSearchTime)
			t.phase = stalkHold
			a.logTask(t, "phase", "hold")
		} else {
			a.nav.RequestDestination(a.world.Target.Pos)
			t.phase = stalkApproach
			a.logTask(t, "phase", "approach")
		}

	case stalkHold:
		a.nav.TurnToward(a.world.Target.Pos, dt)
		t.wait -= dt
		if t.wait <= 0 {
			t.endPhase(a, bcfg)
		}

	case stalkApproach:
		// Arrival check first: re-requesting clears the arrived flag.
		if a.nav.HasArrived() {
			t.endPhase(a, bcfg)
			return
		}
		a.nav.RequestDestination(a.world.Target.Pos)

	case stalkCooldown:
		t.wait -= dt
		if t.wait <= 0 {
			t.phase = stalkChoose
		}
	}
}

func (t *stalkTask) endPhase(a *Agent, bcfg *BehaviorConfig) {
	if !a.perception.State.TargetVisible {
		t.done = true
		a.logTask(t, "lost", "target gone, giving up")
		a.setState(StateWander)
		return
	}
	t.wait = bcfg.StalkPauseTime
	t.phase = stalkCooldown
}

// --- flee-and-hide loop (bound to HIDE) ---

type hidePhase int

const (
	hideFlee hidePhase = iota
	hideTravel
	hideWait
)

// hideTask repeatedly flees directly away from the target, waits out a short
// pause at each bolt-hole, and drops to WANDER once it is no longer seen.
type hideTask struct {
	taskBase
	phase hidePhase
	wait  float64
}

func newHideTask() *hideTask {
	return &hideTask{taskBase: taskBase{bound: StateHide}, phase: hideFlee}
}

func (t *hideTask) name() string { return "hide" }

func (t *hideTask) tick(a *Agent, dt float64) {
	bcfg := &a.cfg.Behavior
	switch t.phase {
	case hideFlee:
		away := a.nav.Pos().Sub(a.world.Target.Pos).Normalize()
		if (away == Vec2{}) {
			away = Vec2{X: 1}
		}
		dest := a.nav.Pos().Add(away.Scale(bcfg.WanderRadius))
		dest = a.nav.ProjectToTraversable(dest, bcfg.WanderRadius)
		a.nav.RequestDestination(dest)
		t.phase = hideTravel
		a.logTask(t, "phase", "flee")

	case hideTravel:
		if a.nav.HasArrived() || !a.nav.HasPendingPath() {
			if !a.perception.State.TargetVisible {
				t.done = true
				a.logTask(t, "safe", "out of sight")
				a.setState(StateWander)
				return
			}
			t.wait = bcfg.HidePauseTime
			t.phase = hideWait
		}

	case hideWait:
		t.wait -= dt
		if t.wait <= 0 {
			t.phase = hideFlee
		}
	}
}
