package sim

import (
	"container/heap"
	"math"
)

const navCellSize = 16.0

// NavGrid is a 2D walkability grid where true = blocked. Both solid and
// transparent obstacles block movement; transparency only matters for sight.
type NavGrid struct {
	cols    int
	rows    int
	blocked []bool
}

// NewNavGrid builds a walkability grid from the arena dimensions and
// obstacles, padding each obstacle by the agent radius so paths keep
// clearance.
func NewNavGrid(w, h float64, obstacles []Obstacle, agentRadius float64) *NavGrid {
	cols := int(w / navCellSize)
	rows := int(h / navCellSize)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	ng := &NavGrid{
		cols:    cols,
		rows:    rows,
		blocked: make([]bool, cols*rows),
	}

	for _, o := range obstacles {
		x0 := o.X - agentRadius
		y0 := o.Y - agentRadius
		x1 := o.X + o.W + agentRadius
		y1 := o.Y + o.H + agentRadius

		cMinX := maxInt(0, int(x0/navCellSize))
		cMinY := maxInt(0, int(y0/navCellSize))
		cMaxX := minInt(cols-1, int(math.Ceil(x1/navCellSize))-1)
		cMaxY := minInt(rows-1, int(math.Ceil(y1/navCellSize))-1)

		for cy := cMinY; cy <= cMaxY; cy++ {
			for cx := cMinX; cx <= cMaxX; cx++ {
				ng.blocked[cy*cols+cx] = true
			}
		}
	}
	return ng
}

// IsBlocked returns true if the cell at (cx, cy) is not walkable.
func (ng *NavGrid) IsBlocked(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= ng.cols || cy >= ng.rows {
		return true
	}
	return ng.blocked[cy*ng.cols+cx]
}

func (ng *NavGrid) worldToCell(p Vec2) (int, int) {
	return int(p.X / navCellSize), int(p.Y / navCellSize)
}

func (ng *NavGrid) cellToWorld(cx, cy int) Vec2 {
	return Vec2{
		X: float64(cx)*navCellSize + navCellSize/2,
		Y: float64(cy)*navCellSize + navCellSize/2,
	}
}

// NearestWalkable returns the center of the closest walkable cell to p,
// searching outward in expanding rings. maxRadius bounds the preferred
// search; if nothing walkable lies within it the search keeps widening so a
// degraded-but-usable point is still returned. Falls back to p itself only
// when the entire grid is blocked.
func (ng *NavGrid) NearestWalkable(p Vec2, maxRadius float64) Vec2 {
	cx, cy := ng.worldToCell(p)
	if !ng.IsBlocked(cx, cy) {
		return ng.cellToWorld(cx, cy)
	}

	maxRing := maxInt(ng.cols, ng.rows)
	preferred := int(math.Ceil(maxRadius / navCellSize))
	bestDist := math.Inf(1)
	var best Vec2
	found := false

	for ring := 1; ring <= maxRing; ring++ {
		for dy := -ring; dy <= ring; dy++ {
			for dx := -ring; dx <= ring; dx++ {
				if maxInt(absInt(dx), absInt(dy)) != ring {
					continue
				}
				nx, ny := cx+dx, cy+dy
				if ng.IsBlocked(nx, ny) {
					continue
				}
				wp := ng.cellToWorld(nx, ny)
				if d := Dist(p, wp); d < bestDist {
					bestDist = d
					best = wp
					found = true
				}
			}
		}
		// Finish the ring that produced a hit, then stop; a closer cell
		// cannot appear in a later ring.
		if found && (ring >= preferred || bestDist <= float64(ring)*navCellSize) {
			return best
		}
	}
	if found {
		return best
	}
	return p
}

// --- A* pathfinding ---

type pathNode struct {
	cx, cy int
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int           { return len(ol) }
func (ol openList) Less(i, j int) bool { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }
func (ol openList) Swap(i, j int) {
	ol[i], ol[j] = ol[j], ol[i]
	ol[i].index = i
	ol[j].index = j
}
func (ol *openList) Push(x interface{}) {
	n := x.(*pathNode)
	n.index = len(*ol)
	*ol = append(*ol, n)
}
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var navDirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath returns world-coordinate waypoints from start to goal, or nil if
// no path exists. Octile-heuristic A* with diagonal corner-cut prevention.
func (ng *NavGrid) FindPath(start, goal Vec2) []Vec2 {
	scx, scy := ng.worldToCell(start)
	gcx, gcy := ng.worldToCell(goal)

	if ng.IsBlocked(scx, scy) || ng.IsBlocked(gcx, gcy) {
		return nil
	}

	key := func(cx, cy int) int { return cy*ng.cols + cx }
	heuristic := func(ax, ay, bx, by int) float64 {
		dx := math.Abs(float64(ax - bx))
		dy := math.Abs(float64(ay - by))
		return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
	}

	startNode := &pathNode{cx: scx, cy: scy, g: 0, h: heuristic(scx, scy, gcx, gcy)}
	ol := &openList{startNode}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := make(map[int]*pathNode)
	best[key(scx, scy)] = startNode

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cx == gcx && cur.cy == gcy {
			return ng.buildPath(cur)
		}
		k := key(cur.cx, cur.cy)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range navDirs {
			nx, ny := cur.cx+d[0], cur.cy+d[1]
			if ng.IsBlocked(nx, ny) {
				continue
			}
			// Prevent diagonal corner-cutting through blocked cells.
			if d[0] != 0 && d[1] != 0 {
				if ng.IsBlocked(cur.cx+d[0], cur.cy) || ng.IsBlocked(cur.cx, cur.cy+d[1]) {
					continue
				}
			}
			nk := key(nx, ny)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = math.Sqrt2
			}
			g := cur.g + cost
			if prev, ok := best[nk]; ok && g >= prev.g {
				continue
			}
			node := &pathNode{cx: nx, cy: ny, g: g, h: heuristic(nx, ny, gcx, gcy), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

func (ng *NavGrid) buildPath(end *pathNode) []Vec2 {
	var cells [][2]int
	for n := end; n != nil; n = n.parent {
		cells = append(cells, [2]int{n.cx, n.cy})
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	path := make([]Vec2, len(cells))
	for i, c := range cells {
		path[i] = ng.cellToWorld(c[0], c[1])
	}
	return path
}

// Navigator is the locomotion service the behavior controller delegates to.
// It owns the agent's position and facing, holds the single mutable
// destination slot, and advances along the active A* path once per tick.
type Navigator struct {
	grid     *NavGrid
	pos      Vec2
	heading  float64
	speed    float64
	turnRate float64 // radians per second

	path      []Vec2
	pathIndex int
	goalCX    int
	goalCY    int
	hasGoal   bool
	arrived   bool
}

// NewNavigator places a navigator on the grid at start, facing heading.
func NewNavigator(grid *NavGrid, start Vec2, heading, turnRate float64) *Navigator {
	return &Navigator{grid: grid, pos: start, heading: heading, turnRate: turnRate}
}

// Pos returns the current position.
func (n *Navigator) Pos() Vec2 { return n.pos }

// Heading returns the current facing in radians.
func (n *Navigator) Heading() float64 { return n.heading }

// SetSpeed sets movement speed in world units per second.
func (n *Navigator) SetSpeed(s float64) { n.speed = s }

// HasPendingPath reports whether an active path still has waypoints left.
func (n *Navigator) HasPendingPath() bool {
	return n.path != nil && n.pathIndex < len(n.path)
}

// HasArrived reports whether the last requested destination was reached.
// It resets to false the moment a new destination is requested.
func (n *Navigator) HasArrived() bool { return n.arrived }

// ProjectToTraversable maps a desired point onto the nearest walkable spot,
// preferring matches within maxRadius but never returning an unusable
// destination.
func (n *Navigator) ProjectToTraversable(p Vec2, maxRadius float64) Vec2 {
	return n.grid.NearestWalkable(p, maxRadius)
}

// RequestDestination routes toward p. A destination in blocked space is
// projected to the nearest traversable point first. Re-requesting a point in
// the same grid cell as the active goal is a no-op so per-tick chase updates
// do not replan needlessly.
func (n *Navigator) RequestDestination(p Vec2) {
	dest := n.ProjectToTraversable(p, 4*navCellSize)
	cx, cy := n.grid.worldToCell(dest)
	if n.hasGoal && cx == n.goalCX && cy == n.goalCY && n.HasPendingPath() {
		return
	}

	n.arrived = false
	n.goalCX, n.goalCY = cx, cy
	n.hasGoal = true
	n.path = n.grid.FindPath(n.pos, dest)
	n.pathIndex = 0
	if n.path == nil {
		// Unreachable even after projection; stand fast and let the next
		// tick's re-evaluation pick a different point.
		n.hasGoal = false
	}
}

// TurnToward rotates the facing toward p without moving, respecting the
// turn rate. Used by behaviors that hold position but keep watching.
func (n *Navigator) TurnToward(p Vec2, dt float64) {
	n.heading = turnToward(n.heading, HeadingTo(n.pos, p), n.turnRate*dt)
}

// Advance moves along the active path by speed*dt, turning the facing toward
// each waypoint as it goes. Sets the arrived flag when the path is exhausted.
func (n *Navigator) Advance(dt float64) {
	if !n.HasPendingPath() {
		return
	}

	remaining := n.speed * dt
	for remaining > 0 && n.pathIndex < len(n.path) {
		wp := n.path[n.pathIndex]
		d := wp.Sub(n.pos)
		dist := d.Len()

		if dist > 1e-6 {
			n.heading = turnToward(n.heading, math.Atan2(d.Y, d.X), n.turnRate*dt)
		}

		if dist <= remaining {
			n.pos = wp
			remaining -= dist
			n.pathIndex++
		} else {
			n.pos = n.pos.Add(d.Scale(remaining / dist))
			remaining = 0
		}
	}

	if n.pathIndex >= len(n.path) {
		n.path = nil
		n.hasGoal = false
		n.arrived = true
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
