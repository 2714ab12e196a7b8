package sim

import (
	"fmt"
	"math/rand"
)

// Harness is a headless simulation used by tests and the headless reporter.
// It assembles a world, navigator, and agent, and advances them with a fixed
// simulation timestep, independent of any renderer or wall clock.
type Harness struct {
	World *World
	Agent *Agent
	Nav   *Navigator
	Log   *SimLog

	cfg      *Config
	dt       float64
	rng      *rand.Rand
	tick     int
	demeanor Demeanor
	observer Observer

	agentStart   Vec2
	agentHeading float64
	targetStart  Vec2
	targetFacing float64
	verbose      bool
}

// harnessOptionKind controls the pass in which an option is applied.
type harnessOptionKind int

const (
	harnessOptInfra harnessOptionKind = iota // arena, obstacles, seed, config — applied first
	harnessOptActor                          // agent/target placement — applied after the nav grid exists
)

// HarnessOption is a builder function applied during construction.
type HarnessOption struct {
	kind harnessOptionKind
	fn   func(*Harness)
}

// WithArena sets the playfield dimensions.
func WithArena(w, h float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.World.Width = w
		hs.World.Height = h
	}}
}

// WithObstacle adds a solid rectangle.
func WithObstacle(x, y, w, h float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.World.AddObstacle(x, y, w, h)
	}}
}

// WithWindow adds a rectangle that blocks movement but not sight.
func WithWindow(x, y, w, h float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.World.AddWindow(x, y, w, h)
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.cfg = cfg
	}}
}

// WithTickRate sets how many ticks make up one second of simulation time.
func WithTickRate(hz float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.dt = 1 / hz
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.verbose = v
	}}
}

// WithDemeanor sets the agent's pursuit disposition.
func WithDemeanor(d Demeanor) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.demeanor = d
	}}
}

// WithObserver attaches a visualization/telemetry consumer.
func WithObserver(o Observer) HarnessOption {
	return HarnessOption{harnessOptInfra, func(hs *Harness) {
		hs.observer = o
	}}
}

// WithAgentAt places the agent.
func WithAgentAt(x, y, heading float64) HarnessOption {
	return HarnessOption{harnessOptActor, func(hs *Harness) {
		hs.agentStart = Vec2{X: x, Y: y}
		hs.agentHeading = heading
	}}
}

// WithTargetAt places the target.
func WithTargetAt(x, y float64) HarnessOption {
	return HarnessOption{harnessOptActor, func(hs *Harness) {
		hs.targetStart = Vec2{X: x, Y: y}
	}}
}

// WithTargetFacing points the target's observation frustum.
func WithTargetFacing(heading float64) HarnessOption {
	return HarnessOption{harnessOptActor, func(hs *Harness) {
		hs.targetFacing = heading
	}}
}

// NewHarness constructs a harness in two ordered passes: infrastructure
// (arena, obstacles, seed, config), then actor placement once the nav grid
// exists.
func NewHarness(opts ...HarnessOption) *Harness {
	hs := &Harness{
		World:       NewWorld(1280, 720),
		cfg:         DefaultConfig(),
		dt:          1.0 / 60,
		rng:         rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
		agentStart:  Vec2{X: 200, Y: 360},
		targetStart: Vec2{X: 1000, Y: 360},
	}
	for _, o := range opts {
		if o.kind == harnessOptInfra {
			o.fn(hs)
		}
	}
	for _, o := range opts {
		if o.kind == harnessOptActor {
			o.fn(hs)
		}
	}

	hs.Log = NewSimLog(hs.verbose)
	hs.World.Target = &Target{
		Pos:    hs.targetStart,
		Radius: hs.cfg.Target.Radius,
		Frustum: Frustum{
			Pos:     hs.targetStart,
			Heading: hs.targetFacing,
			FOV:     hs.cfg.Target.FrustumFOVRadians(),
			Far:     hs.cfg.Target.FrustumFar,
		},
	}

	grid := NewNavGrid(hs.World.Width, hs.World.Height, hs.World.Obstacles, hs.cfg.Movement.AgentRadius)
	hs.Nav = NewNavigator(grid, hs.agentStart, hs.agentHeading, hs.cfg.Movement.TurnRate)

	agentOpts := []AgentOption{
		WithAgentDemeanor(hs.demeanor),
		WithAgentRand(hs.rng),
		WithAgentLog(hs.Log),
	}
	if hs.observer != nil {
		agentOpts = append(agentOpts, WithAgentObserver(hs.observer))
	}
	agent, err := NewAgent(hs.cfg, hs.World, hs.Nav, agentOpts...)
	if err != nil {
		// The harness always supplies every collaborator, so this only
		// trips on an invalid config handed to WithConfig.
		panic(fmt.Sprintf("sim: harness setup: %v", err))
	}
	hs.Agent = agent
	return hs
}

// DT returns the simulation timestep in seconds.
func (hs *Harness) DT() float64 { return hs.dt }

// CurrentTick returns the current simulation tick.
func (hs *Harness) CurrentTick() int { return hs.tick }

// Time returns elapsed simulation time in seconds.
func (hs *Harness) Time() float64 { return float64(hs.tick) * hs.dt }

// MoveTarget teleports the target; scripts and tests use this to drive the
// scenario.
func (hs *Harness) MoveTarget(x, y float64) {
	hs.World.Target.MoveTo(Vec2{X: x, Y: y})
}

// FaceTarget points the target's observation frustum.
func (hs *Harness) FaceTarget(heading float64) {
	hs.World.Target.Face(heading)
}

// Step advances the simulation one tick.
func (hs *Harness) Step() {
	hs.tick++
	hs.Agent.Step(hs.dt)
	hs.logVerboseTick()
}

// RunTicks advances the simulation n ticks.
func (hs *Harness) RunTicks(n int) {
	for i := 0; i < n; i++ {
		hs.Step()
	}
}

// RunSeconds advances the simulation by the given amount of sim time.
func (hs *Harness) RunSeconds(s float64) {
	hs.RunTicks(int(s/hs.dt + 0.5))
}

// RunUntil advances up to maxTicks, stopping early if predicate returns
// true. Returns the tick at which the predicate was satisfied, or -1.
func (hs *Harness) RunUntil(predicate func(*Harness) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		hs.Step()
		if predicate(hs) {
			return hs.tick
		}
	}
	return -1
}

func (hs *Harness) logVerboseTick() {
	pos := hs.Agent.Pos()
	hs.Log.AddVerbose(hs.tick, "nav", "position",
		fmt.Sprintf("(%.1f,%.1f)", pos.X, pos.Y), 0)
	hs.Log.AddVerbose(hs.tick, "memory", "timer",
		fmt.Sprintf("%.3f", hs.Agent.Perception().Memory.Timer), hs.Agent.Perception().Memory.Timer)
	hs.Log.AddVerbose(hs.tick, "state", "current", hs.Agent.State().String(), 0)
}
