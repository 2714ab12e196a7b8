package sim

import "testing"

func TestGrace_ExpiresIntoSearch(t *testing.T) {
	hs := staticHarness()
	hs.Step()
	hs.MoveTarget(farAway, 240)

	tick := hs.RunUntil(func(hs *Harness) bool {
		return hs.Agent.State() == StateSearch
	}, 60*4)
	if tick < 0 {
		t.Fatalf("grace period never gave way to search\n%s", hs.Log.Format())
	}

	// Sight was lost on tick 2; the 3s grace runs out 180 ticks later.
	elapsed := tick - 2
	if elapsed < 178 || elapsed > 182 {
		t.Fatalf("search began %d ticks after losing sight, want ~180", elapsed)
	}
	if !hs.Agent.HasBoundTask() || hs.Agent.boundTaskState() != StateSearch {
		t.Fatal("entering search should bind a search task")
	}
}

func TestGrace_CancelledOnReacquire(t *testing.T) {
	hs := staticHarness()
	hs.Step()
	hs.MoveTarget(farAway, 240)
	hs.RunSeconds(1)
	if !hs.Agent.HasBoundTask() {
		t.Fatal("setup: grace task should be running")
	}

	hs.MoveTarget(200, 240)
	hs.Step()

	if hs.Agent.State() != StateChase {
		t.Fatalf("reacquired mid-grace, expected chase, got %s", hs.Agent.State())
	}
	if hs.Agent.HasBoundTask() {
		t.Fatal("reacquisition should cancel the grace task")
	}
	if !hs.Log.HasEntry("task", "cancel", "grace") {
		t.Fatalf("missing grace cancel entry\n%s", hs.Log.Format())
	}

	// A second loss of sight starts a fresh grace period.
	hs.MoveTarget(farAway, 240)
	hs.Step()
	if !hs.Agent.HasBoundTask() || hs.Agent.boundTaskState() != StateChase {
		t.Fatal("second loss of sight should bind a new grace task")
	}
	starts := 0
	for _, e := range hs.Log.Filter("task", "start") {
		if len(e.Value) >= 5 && e.Value[:5] == "grace" {
			starts++
		}
	}
	if starts != 2 {
		t.Fatalf("expected 2 grace task starts, got %d\n%s", starts, hs.Log.Format())
	}
}

func TestGrace_CancellationSuppressesSameTickExpiry(t *testing.T) {
	hs := staticHarness()
	hs.Step()
	hs.MoveTarget(farAway, 240)

	// Run the grace down to its final tick, then reacquire on the very tick
	// it would expire. Cancellation must win: no drop to search.
	hs.RunTicks(179)
	if hs.Agent.State() != StateChase {
		t.Fatalf("setup: grace should still be holding, got %s", hs.Agent.State())
	}
	hs.MoveTarget(200, 240)
	hs.Step()

	if hs.Agent.State() != StateChase {
		t.Fatalf("cancelled grace must not fire, got %s\n%s", hs.Agent.State(), hs.Log.Format())
	}
	if hs.Log.HasEntry("state", "change", "-> search") {
		t.Fatalf("cancelled grace still forced a search\n%s", hs.Log.Format())
	}
	if !hs.Log.HasEntry("task", "cancel", "grace") {
		t.Fatalf("expected a grace cancel entry\n%s", hs.Log.Format())
	}
}

func TestSearch_ExpiresIntoWander(t *testing.T) {
	hs := staticHarness()
	hs.Step()
	hs.MoveTarget(farAway, 240)

	// Grace (3s) then a random 4-8s search; give it headroom.
	tick := hs.RunUntil(func(hs *Harness) bool {
		return hs.Agent.State() == StateWander
	}, 60*15)
	if tick < 0 {
		t.Fatalf("search never wound down to wander\n%s", hs.Log.Format())
	}
	if !hs.Log.HasEntry("task", "expired", "search exhausted") {
		t.Fatalf("wander should come from search expiry\n%s", hs.Log.Format())
	}
	if hs.Agent.HasBoundTask() {
		t.Fatal("no task should remain bound after the search expires")
	}

	// Memory (5s) dies mid-search and must not disturb it; search's own
	// expiry is what ends it.
	memLost, ok := hs.Log.FirstOf("memory", "lost")
	if !ok {
		t.Fatalf("memory should have expired along the way\n%s", hs.Log.Format())
	}
	if memLost.Tick >= tick {
		t.Fatalf("memory expired at T=%d, after wander began at T=%d", memLost.Tick, tick)
	}
}

func TestSearch_CancelledOnReacquire(t *testing.T) {
	hs := staticHarness()
	hs.Step()
	hs.MoveTarget(farAway, 240)
	hs.RunSeconds(3.5)
	if hs.Agent.State() != StateSearch {
		t.Fatalf("setup: expected search, got %s", hs.Agent.State())
	}

	hs.MoveTarget(200, 240)
	hs.Step()

	if hs.Agent.State() != StateChase {
		t.Fatalf("reacquired mid-search, expected chase, got %s", hs.Agent.State())
	}
	if !hs.Log.HasEntry("task", "cancel", "search") {
		t.Fatalf("search task should be cancelled on reacquisition\n%s", hs.Log.Format())
	}
	if hs.Log.HasEntry("task", "expired", "search exhausted") {
		t.Fatal("a cancelled search must not also expire")
	}
}

func TestStalk_GivesUpAfterTargetVanishes(t *testing.T) {
	hs := NewHarness(
		WithArena(1280, 720),
		WithSeed(11),
		WithDemeanor(DemeanorStalker),
		WithObstacle(900, 100, 60, 60),
		WithAgentAt(300, 360, 0),
		WithTargetAt(500, 360),
	)
	hs.Step()
	if hs.Agent.State() != StateStalk {
		t.Fatalf("stalker seeing the target should stalk, got %s", hs.Agent.State())
	}

	// Tuck the target behind the block; every sight line now hits stone.
	hs.MoveTarget(920, 120)
	tick := hs.RunUntil(func(hs *Harness) bool {
		return hs.Agent.State() == StateWander
	}, 60*30)
	if tick < 0 {
		t.Fatalf("stalker never gave up on a vanished target\n%s", hs.Log.Format())
	}
	if hs.Agent.HasBoundTask() {
		t.Fatal("no task should survive the return to wander")
	}
}

func TestHide_BreaksOffOnceUnseen(t *testing.T) {
	hs := NewHarness(
		WithArena(1280, 720),
		WithSeed(5),
		WithDemeanor(DemeanorSkulker),
		WithAgentAt(400, 360, 0),
		WithTargetAt(460, 360),
	)
	start := hs.Agent.Pos()
	hs.Step()
	if hs.Agent.State() != StateHide {
		t.Fatalf("skulker seeing the target should hide, got %s", hs.Agent.State())
	}

	tick := hs.RunUntil(func(hs *Harness) bool {
		return hs.Agent.State() == StateWander
	}, 60*15)
	if tick < 0 {
		t.Fatalf("hide never resolved to wander\n%s", hs.Log.Format())
	}
	if Dist(hs.Agent.Pos(), hs.World.Target.Pos) <= Dist(start, hs.World.Target.Pos) {
		t.Fatal("hiding should put distance between agent and target")
	}
}
