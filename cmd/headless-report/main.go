package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"prowler/internal/sim"
)

// telemetryRow is one per-tick CSV record.
type telemetryRow struct {
	Tick          int     `csv:"tick"`
	Time          float64 `csv:"time_s"`
	State         string  `csv:"state"`
	TargetVisible bool    `csv:"target_visible"`
	SeenByTarget  bool    `csv:"seen_by_target"`
	MemoryTimer   float64 `csv:"memory_timer_s"`
	AgentX        float64 `csv:"agent_x"`
	AgentY        float64 `csv:"agent_y"`
	TargetX       float64 `csv:"target_x"`
	TargetY       float64 `csv:"target_y"`
}

type runStats struct {
	runIndex int
	seed     int64

	firstAcquireTick int
	firstChaseTick   int
	firstSearchTick  int
	backToWanderTick int

	acquisitions int
	losses       int
	stateChanges int
	taskStarts   int
	taskCancels  int
	memoryLosses int
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var outDir string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run (60 ticks = 1s)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "drive-by", "scenario name (drive-by, peekaboo, stakeout)")
	flag.StringVar(&outDir, "out", "", "directory for per-run telemetry CSV (disabled when empty)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	script, ok := scenarios[scenario]
	if !ok {
		fmt.Printf("error: unsupported scenario %q (supported: drive-by, peekaboo, stakeout)\n", scenario)
		return
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			fmt.Printf("error: creating output directory: %v\n", err)
			return
		}
	}

	fmt.Printf("=== Prowler Headless Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		scenario, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runOne(i+1, seed, ticks, script, outDir, scenario)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

// scenarioScript builds a harness and drives the target each tick.
type scenarioScript struct {
	options func() []sim.HarnessOption
	drive   func(hs *sim.Harness, tick int)
}

var scenarios = map[string]scenarioScript{
	// Target walks across the agent's field of view, then straight out of
	// range: acquire -> chase -> grace -> search -> wander.
	"drive-by": {
		options: func() []sim.HarnessOption {
			return []sim.HarnessOption{
				sim.WithArena(1280, 720),
				sim.WithAgentAt(300, 360, 0),
				sim.WithTargetAt(700, 60),
			}
		},
		drive: func(hs *sim.Harness, tick int) {
			t := hs.World.Target.Pos
			hs.MoveTarget(t.X, t.Y+1.8)
		},
	},
	// Target strafes behind a wall and back out, exercising occlusion and
	// repeated grace periods.
	"peekaboo": {
		options: func() []sim.HarnessOption {
			return []sim.HarnessOption{
				sim.WithArena(1280, 720),
				sim.WithObstacle(600, 240, 40, 240),
				sim.WithAgentAt(300, 360, 0),
				sim.WithTargetAt(900, 360),
			}
		},
		drive: func(hs *sim.Harness, tick int) {
			// Oscillate vertically behind the wall edge.
			y := 360 + 220*math.Sin(float64(tick)/120)
			hs.MoveTarget(900, y)
		},
	},
	// Stalker demeanor against a slowly drifting target.
	"stakeout": {
		options: func() []sim.HarnessOption {
			return []sim.HarnessOption{
				sim.WithArena(1280, 720),
				sim.WithDemeanor(sim.DemeanorStalker),
				sim.WithAgentAt(300, 360, 0),
				sim.WithTargetAt(800, 360),
			}
		},
		drive: func(hs *sim.Harness, tick int) {
			x := 800 + 120*math.Cos(float64(tick)/240)
			hs.MoveTarget(x, 360)
		},
	},
}

func runOne(runIndex int, seed int64, ticks int, script scenarioScript, outDir, scenario string) (runStats, error) {
	opts := append(script.options(), sim.WithSeed(seed))
	hs := sim.NewHarness(opts...)

	var rows []*telemetryRow
	for i := 0; i < ticks; i++ {
		script.drive(hs, hs.CurrentTick())
		hs.Step()
		if outDir != "" {
			st := hs.Agent.Perception().State
			rows = append(rows, &telemetryRow{
				Tick:          hs.CurrentTick(),
				Time:          hs.Time(),
				State:         hs.Agent.State().String(),
				TargetVisible: st.TargetVisible,
				SeenByTarget:  st.AgentVisibleToTarget,
				MemoryTimer:   hs.Agent.Perception().Memory.Timer,
				AgentX:        hs.Agent.Pos().X,
				AgentY:        hs.Agent.Pos().Y,
				TargetX:       hs.World.Target.Pos.X,
				TargetY:       hs.World.Target.Pos.Y,
			})
		}
	}

	if outDir != "" {
		path := filepath.Join(outDir, fmt.Sprintf("%s-run%02d.csv", scenario, runIndex))
		f, err := os.Create(path)
		if err != nil {
			return runStats{}, fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		if err := gocsv.MarshalFile(&rows, f); err != nil {
			return runStats{}, fmt.Errorf("writing %s: %w", path, err)
		}
	}

	return collectStats(runIndex, seed, hs.Log), nil
}

func collectStats(runIndex int, seed int64, log *sim.SimLog) runStats {
	stats := runStats{
		runIndex:         runIndex,
		seed:             seed,
		firstAcquireTick: -1,
		firstChaseTick:   -1,
		firstSearchTick:  -1,
		backToWanderTick: -1,
	}

	if e, ok := log.FirstOf("perception", "acquired"); ok {
		stats.firstAcquireTick = e.Tick
	}
	for _, e := range log.Filter("state", "change") {
		stats.stateChanges++
		switch {
		case stats.firstChaseTick < 0 && enteredState(e.Value, "chase"):
			stats.firstChaseTick = e.Tick
		case stats.firstSearchTick < 0 && enteredState(e.Value, "search"):
			stats.firstSearchTick = e.Tick
		case stats.firstSearchTick >= 0 && stats.backToWanderTick < 0 && enteredState(e.Value, "wander"):
			stats.backToWanderTick = e.Tick
		}
	}
	stats.acquisitions = log.Count("perception", "acquired")
	stats.losses = log.Count("perception", "lost")
	stats.taskStarts = log.Count("task", "start")
	stats.taskCancels = log.Count("task", "cancel")
	stats.memoryLosses = log.Count("memory", "lost")
	return stats
}

// enteredState matches transition log values of the form "a -> b" against
// the entered state b.
func enteredState(value, state string) bool {
	return len(value) >= len(state) && value[len(value)-len(state):] == state
}

func printRun(s runStats) {
	fmt.Printf("--- run %d (seed %d) ---\n", s.runIndex, s.seed)
	fmt.Printf("  first acquire:  %s\n", tickStr(s.firstAcquireTick))
	fmt.Printf("  first chase:    %s\n", tickStr(s.firstChaseTick))
	fmt.Printf("  first search:   %s\n", tickStr(s.firstSearchTick))
	fmt.Printf("  back to wander: %s\n", tickStr(s.backToWanderTick))
	fmt.Printf("  acquisitions=%d losses=%d state_changes=%d tasks_started=%d tasks_cancelled=%d memory_losses=%d\n\n",
		s.acquisitions, s.losses, s.stateChanges, s.taskStarts, s.taskCancels, s.memoryLosses)
}

func tickStr(t int) string {
	if t < 0 {
		return "never"
	}
	return fmt.Sprintf("T=%d (%.1fs)", t, float64(t)/60)
}

func printAggregate(all []runStats) {
	fmt.Printf("=== aggregate over %d runs ===\n", len(all))
	printDist("first acquire", all, func(s runStats) int { return s.firstAcquireTick })
	printDist("first chase", all, func(s runStats) int { return s.firstChaseTick })
	printDist("first search", all, func(s runStats) int { return s.firstSearchTick })
	printDist("back to wander", all, func(s runStats) int { return s.backToWanderTick })

	totalChanges := 0
	for _, s := range all {
		totalChanges += s.stateChanges
	}
	fmt.Printf("  mean state changes per run: %.1f\n", float64(totalChanges)/float64(len(all)))
}

func printDist(label string, all []runStats, get func(runStats) int) {
	lo, hi, sum, n := math.MaxInt32, -1, 0, 0
	for _, s := range all {
		v := get(s)
		if v < 0 {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
		n++
	}
	if n == 0 {
		fmt.Printf("  %-15s never (all %d runs)\n", label, len(all))
		return
	}
	fmt.Printf("  %-15s min=T%d mean=T%.0f max=T%d (%d/%d runs)\n",
		label, lo, float64(sum)/float64(n), hi, n, len(all))
}
