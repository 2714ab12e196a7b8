package sim

import "testing"

// staticConfig zeroes all movement speeds so transition timing can be
// asserted without the agent wandering out of the setup geometry.
func staticConfig() *Config {
	cfg := DefaultConfig()
	cfg.Movement.WanderSpeed = 0
	cfg.Movement.ChaseSpeed = 0
	cfg.Movement.SearchSpeed = 0
	cfg.Movement.HideSpeed = 0
	cfg.Movement.StalkSpeed = 0
	return cfg
}

// staticHarness places a pinned agent with the target in plain sight.
func staticHarness(opts ...HarnessOption) *Harness {
	base := []HarnessOption{
		WithArena(640, 480),
		WithConfig(staticConfig()),
		WithSeed(3),
		WithAgentAt(100, 240, 0),
		WithTargetAt(200, 240),
	}
	return NewHarness(append(base, opts...)...)
}

const farAway = 5000.0 // beyond any view distance used in tests

func TestAgent_StartsWandering(t *testing.T) {
	hs := staticHarness(WithTargetAt(farAway, 240))
	if hs.Agent.State() != StateWander {
		t.Fatalf("fresh agent should wander, got %s", hs.Agent.State())
	}
	hs.RunTicks(10)
	if hs.Agent.State() != StateWander {
		t.Fatalf("nothing to see, agent should keep wandering, got %s", hs.Agent.State())
	}
}

func TestSight_ForcesPursuitByDemeanor(t *testing.T) {
	cases := []struct {
		demeanor Demeanor
		want     BehaviorState
	}{
		{DemeanorHunter, StateChase},
		{DemeanorStalker, StateStalk},
		{DemeanorSkulker, StateHide},
	}
	for _, tc := range cases {
		hs := staticHarness(WithDemeanor(tc.demeanor))
		hs.Step()
		if got := hs.Agent.State(); got != tc.want {
			t.Errorf("%s seeing the target: got %s, want %s", tc.demeanor, got, tc.want)
		}
	}
}

func TestChase_HoldsThroughGracePeriod(t *testing.T) {
	hs := staticHarness()
	hs.Step()
	if hs.Agent.State() != StateChase {
		t.Fatalf("setup: expected chase, got %s", hs.Agent.State())
	}

	hs.MoveTarget(farAway, 240)
	hs.RunSeconds(1)

	if hs.Agent.State() != StateChase {
		t.Fatalf("1s into a 3s grace period the chase should hold, got %s", hs.Agent.State())
	}
	if !hs.Agent.HasBoundTask() || hs.Agent.boundTaskState() != StateChase {
		t.Fatal("losing sight mid-chase should bind a grace task to chase")
	}
}

func TestTransitions_IdempotentWithinTick(t *testing.T) {
	hs := staticHarness()
	script := []func(){
		func() {},                                // acquire
		func() { hs.MoveTarget(farAway, 240) },   // lose
		func() { hs.RunSeconds(4) },              // through grace into search
		func() { hs.MoveTarget(200, 240) },       // reacquire
		func() { hs.RunSeconds(1) },              // settled chase
	}
	for i, drive := range script {
		drive()
		hs.Step()
		before := hs.Agent.State()
		hs.Agent.evaluateTransitions()
		if hs.Agent.State() != before {
			t.Fatalf("step %d: re-evaluating transitions moved %s -> %s", i, before, hs.Agent.State())
		}
	}
}

func TestSearch_UsesLastKnownPosition(t *testing.T) {
	hs := staticHarness()
	hs.Step()
	hs.MoveTarget(farAway, 240)
	hs.RunSeconds(3.5)

	if hs.Agent.State() != StateSearch {
		t.Fatalf("grace elapsed, expected search, got %s\n%s", hs.Agent.State(), hs.Log.Format())
	}
	st := hs.Agent.Perception().State
	if !st.HasLastKnown || st.LastKnownTargetPos != (Vec2{X: 200, Y: 240}) {
		t.Fatalf("search should center on the stale sighting, got %+v", st)
	}
}

type recordingObserver struct {
	states      []BehaviorState
	perceptions int
}

func (r *recordingObserver) StateChanged(s BehaviorState) { r.states = append(r.states, s) }
func (r *recordingObserver) PerceptionChanged(targetVisible, seenByTarget bool) {
	r.perceptions++
}

func TestObserver_ReceivesStateAndPerceptionChanges(t *testing.T) {
	obs := &recordingObserver{}
	hs := staticHarness(WithObserver(obs))
	hs.Step()

	if len(obs.states) < 2 || obs.states[len(obs.states)-1] != StateChase {
		t.Fatalf("observer should see the initial state and the chase transition, got %v", obs.states)
	}
	if obs.perceptions == 0 {
		t.Fatal("acquiring the target should publish a perception change")
	}

	n := obs.perceptions
	hs.RunTicks(5)
	if obs.perceptions != n {
		t.Fatal("perception publishes only on change, not every tick")
	}
}

func TestStateColor_DistinctPerState(t *testing.T) {
	seen := map[[3]uint8]BehaviorState{}
	for s := StateWander; s < stateCount; s++ {
		c := StateColor(s)
		key := [3]uint8{c.R, c.G, c.B}
		if prev, dup := seen[key]; dup {
			t.Fatalf("%s and %s share a color", prev, s)
		}
		seen[key] = s
	}
}

func TestNewAgent_RejectsMissingCollaborators(t *testing.T) {
	cfg := DefaultConfig()
	world := NewWorld(640, 480)
	world.Target = &Target{Pos: Vec2{X: 200, Y: 240}}
	grid := NewNavGrid(640, 480, nil, cfg.Movement.AgentRadius)
	nav := NewNavigator(grid, Vec2{X: 100, Y: 240}, 0, cfg.Movement.TurnRate)

	if _, err := NewAgent(nil, world, nav); err == nil {
		t.Error("nil config should be rejected")
	}
	if _, err := NewAgent(cfg, nil, nav); err == nil {
		t.Error("nil world should be rejected")
	}
	if _, err := NewAgent(cfg, NewWorld(640, 480), nav); err == nil {
		t.Error("world without a target should be rejected")
	}
	if _, err := NewAgent(cfg, world, nil); err == nil {
		t.Error("nil navigator should be rejected")
	}

	bad := DefaultConfig()
	bad.Perception.ViewDistance = 0
	if _, err := NewAgent(bad, world, nav); err == nil {
		t.Error("invalid config should be rejected")
	}
}
