package sim

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const targetMoveSpeed = 3.0 // pixels per frame under key control

// View is the interactive ebiten front-end: it owns a harness, steps it once
// per frame, and renders the agent tinted with its state color plus the
// perception debug overlays. The target is driven with WASD/arrow keys.
type View struct {
	harness *Harness
	opts    []HarnessOption

	paused   bool
	prevKeys map[ebiten.Key]bool
}

// NewView builds a view around a fresh harness. The same options are reused
// when the scene is reset with R.
func NewView(opts ...HarnessOption) *View {
	return &View{
		harness:  NewHarness(opts...),
		opts:     opts,
		prevKeys: make(map[ebiten.Key]bool),
	}
}

// keyJustPressed is edge-triggered key detection.
func (v *View) keyJustPressed(k ebiten.Key) bool {
	down := ebiten.IsKeyPressed(k)
	was := v.prevKeys[k]
	v.prevKeys[k] = down
	return down && !was
}

// Update advances the simulation one tick per frame and applies input.
func (v *View) Update() error {
	if v.keyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if v.keyJustPressed(ebiten.KeyR) {
		v.harness = NewHarness(v.opts...)
	}

	v.moveTarget()

	if !v.paused {
		v.harness.Step()
	}
	return nil
}

// moveTarget applies WASD/arrow control to the target and turns its
// observation frustum to face the travel direction.
func (v *View) moveTarget() {
	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		dx -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		dx += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		dy -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		dy += 1
	}
	if dx == 0 && dy == 0 {
		return
	}

	speed := targetMoveSpeed
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		speed *= 2.5
	}

	t := v.harness.World.Target
	p := t.Pos
	p.X = clamp(p.X+dx*speed, 0, v.harness.World.Width)
	p.Y = clamp(p.Y+dy*speed, 0, v.harness.World.Height)
	t.MoveTo(p)
	t.Face(math.Atan2(dy, dx))
}

// Draw renders the arena, target, agent, and debug overlays.
func (v *View) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 28, G: 34, B: 30, A: 255})

	v.drawObstacles(screen)
	v.drawTarget(screen)
	v.drawAgent(screen)
	v.drawHUD(screen)
}

func (v *View) drawObstacles(screen *ebiten.Image) {
	for _, o := range v.harness.World.Obstacles {
		c := color.RGBA{R: 90, G: 90, B: 100, A: 255}
		if o.Transparent {
			c = color.RGBA{R: 120, G: 160, B: 190, A: 150}
		}
		vector.DrawFilledRect(screen,
			float32(o.X), float32(o.Y), float32(o.W), float32(o.H), c, false)
	}
}

func (v *View) drawTarget(screen *ebiten.Image) {
	t := v.harness.World.Target

	// Observation frustum edges.
	half := t.Frustum.FOV / 2
	fc := color.RGBA{R: 200, G: 200, B: 220, A: 80}
	for _, a := range []float64{t.Frustum.Heading - half, t.Frustum.Heading + half} {
		ex := t.Pos.X + math.Cos(a)*t.Frustum.Far
		ey := t.Pos.Y + math.Sin(a)*t.Frustum.Far
		ebitenutil.DrawLine(screen, t.Pos.X, t.Pos.Y, ex, ey, fc)
	}

	vector.DrawFilledCircle(screen,
		float32(t.Pos.X), float32(t.Pos.Y), float32(t.Radius),
		color.RGBA{R: 235, G: 235, B: 235, A: 255}, true)
}

func (v *View) drawAgent(screen *ebiten.Image) {
	a := v.harness.Agent
	pos := a.Pos()
	st := a.Perception().State

	// Vision cone edges at the configured FOV and range.
	half := v.harness.cfg.Perception.FOVRadians() / 2
	dist := v.harness.cfg.Perception.ViewDistance
	cc := color.RGBA{R: 255, G: 255, B: 255, A: 60}
	for _, ang := range []float64{a.Heading() - half, a.Heading() + half} {
		ebitenutil.DrawLine(screen, pos.X, pos.Y,
			pos.X+math.Cos(ang)*dist, pos.Y+math.Sin(ang)*dist, cc)
	}

	// Line of sight to the target: green while visible, dim red otherwise.
	lc := color.RGBA{R: 200, G: 60, B: 60, A: 70}
	if st.TargetVisible {
		lc = color.RGBA{R: 80, G: 230, B: 80, A: 180}
	}
	ebitenutil.DrawLine(screen, pos.X, pos.Y,
		v.harness.World.Target.Pos.X, v.harness.World.Target.Pos.Y, lc)

	// Last known position marker while memory holds.
	if a.Perception().Memory.Active && st.HasLastKnown {
		lk := st.LastKnownTargetPos
		mc := color.RGBA{R: 240, G: 200, B: 40, A: 200}
		ebitenutil.DrawLine(screen, lk.X-5, lk.Y-5, lk.X+5, lk.Y+5, mc)
		ebitenutil.DrawLine(screen, lk.X+5, lk.Y-5, lk.X-5, lk.Y+5, mc)
	}

	// Remaining path waypoints.
	if v.harness.Nav.HasPendingPath() {
		wc := color.RGBA{R: 255, G: 255, B: 255, A: 50}
		for _, wp := range v.harness.Nav.path[v.harness.Nav.pathIndex:] {
			vector.DrawFilledCircle(screen, float32(wp.X), float32(wp.Y), 1.5, wc, false)
		}
	}

	// Body, tinted by state — the observable "light color" signal.
	r := float32(v.harness.cfg.Movement.AgentRadius)
	vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), r, StateColor(a.State()), true)

	// White ring while the target can see the agent.
	if st.AgentVisibleToTarget {
		vector.StrokeCircle(screen, float32(pos.X), float32(pos.Y), r+3, 1.0,
			color.RGBA{R: 255, G: 255, B: 255, A: 220}, true)
	}

	// Heading line.
	hLen := float64(r) * 2
	ebitenutil.DrawLine(screen, pos.X, pos.Y,
		pos.X+math.Cos(a.Heading())*hLen, pos.Y+math.Sin(a.Heading())*hLen,
		color.RGBA{R: 255, G: 255, B: 255, A: 160})
}

func (v *View) drawHUD(screen *ebiten.Image) {
	a := v.harness.Agent
	st := a.Perception().State
	mem := a.Perception().Memory

	line1 := fmt.Sprintf("T=%d  state=%s  demeanor=%s", v.harness.CurrentTick(), a.State(), a.Demeanor())
	line2 := fmt.Sprintf("visible=%v  seen_by_target=%v  occluded=%v  memory=%.2fs",
		st.TargetVisible, st.AgentVisibleToTarget, st.AgentOccluded, mem.Timer)
	line3 := "move target: WASD/arrows (shift = sprint)  space: pause  R: reset"
	if v.paused {
		line1 += "  [PAUSED]"
	}
	ebitenutil.DebugPrintAt(screen, line1, 8, 8)
	ebitenutil.DebugPrintAt(screen, line2, 8, 24)
	ebitenutil.DebugPrintAt(screen, line3, 8, 40)
}

// Layout reports the arena size as the logical screen size.
func (v *View) Layout(_, _ int) (int, int) {
	return int(v.harness.World.Width), int(v.harness.World.Height)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
