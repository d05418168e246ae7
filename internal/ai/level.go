package ai

import (
	"container/heap"
	"math"
)

const navCellSize = 16

// Rect is an axis-aligned wall in world pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Level is rectangular-wall geometry with a walkability grid over it.
// It implements both Raycaster and NavQuerier, which is all the
// decision core ever asks of a map.
type Level struct {
	width, height float64
	walls         []Rect

	cols, rows int
	blocked    []bool
}

// NewLevel builds a level and rasterizes the walls into the nav grid,
// padded by agentRadius so paths keep clearance.
func NewLevel(width, height float64, walls []Rect, agentRadius float64) *Level {
	cols := int(width) / navCellSize
	rows := int(height) / navCellSize
	l := &Level{
		width:   width,
		height:  height,
		walls:   walls,
		cols:    cols,
		rows:    rows,
		blocked: make([]bool, cols*rows),
	}

	for _, w := range walls {
		x0 := w.X - agentRadius
		y0 := w.Y - agentRadius
		x1 := w.X + w.W + agentRadius
		y1 := w.Y + w.H + agentRadius

		cMinX := maxInt(0, int(x0)/navCellSize)
		cMinY := maxInt(0, int(y0)/navCellSize)
		cMaxX := minInt(cols-1, int(x1-1)/navCellSize)
		cMaxY := minInt(rows-1, int(y1-1)/navCellSize)

		for cy := cMinY; cy <= cMaxY; cy++ {
			for cx := cMinX; cx <= cMaxX; cx++ {
				l.blocked[cy*cols+cx] = true
			}
		}
	}
	return l
}

// Walls returns the level geometry.
func (l *Level) Walls() []Rect {
	return l.walls
}

// Bounds returns the level dimensions in pixels.
func (l *Level) Bounds() (w, h float64) {
	return l.width, l.height
}

// LineOfSight reports whether the segment a→b misses every wall.
func (l *Level) LineOfSight(a, b Vec2) bool {
	for _, w := range l.walls {
		if _, ok := segmentAABBHit(a, b, w); ok {
			return false
		}
	}
	return true
}

// FirstBlocker returns the nearest wall intersection along a→b.
func (l *Level) FirstBlocker(a, b Vec2) (Vec2, bool) {
	bestT := math.Inf(1)
	for _, w := range l.walls {
		if t, ok := segmentAABBHit(a, b, w); ok && t < bestT {
			bestT = t
		}
	}
	if math.IsInf(bestT, 1) {
		return Vec2{}, false
	}
	return a.Add(b.Sub(a).Scale(bestT)), true
}

// segmentAABBHit returns the first parameter t in [0,1] where the
// segment a→b enters the rect. Slab test.
func segmentAABBHit(a, b Vec2, r Rect) (float64, bool) {
	dx := b.X - a.X
	dy := b.Y - a.Y

	tMin := 0.0
	tMax := 1.0

	if math.Abs(dx) < 1e-12 {
		if a.X < r.X || a.X > r.X+r.W {
			return 0, false
		}
	} else {
		invD := 1.0 / dx
		t1 := (r.X - a.X) * invD
		t2 := (r.X + r.W - a.X) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if math.Abs(dy) < 1e-12 {
		if a.Y < r.Y || a.Y > r.Y+r.H {
			return 0, false
		}
	} else {
		invD := 1.0 / dy
		t1 := (r.Y - a.Y) * invD
		t2 := (r.Y + r.H - a.Y) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// --- nav grid queries ---

func (l *Level) cellBlocked(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= l.cols || cy >= l.rows {
		return true
	}
	return l.blocked[cy*l.cols+cx]
}

func (l *Level) worldToCell(p Vec2) (int, int) {
	return int(p.X) / navCellSize, int(p.Y) / navCellSize
}

func (l *Level) cellToWorld(cx, cy int) Vec2 {
	return Vec2{
		X: float64(cx*navCellSize) + navCellSize/2,
		Y: float64(cy*navCellSize) + navCellSize/2,
	}
}

// Navigable reports whether p falls on an unblocked cell.
func (l *Level) Navigable(p Vec2) bool {
	cx, cy := l.worldToCell(p)
	return !l.cellBlocked(cx, cy)
}

// NearestNavigable clips p to the closest unblocked cell center,
// searching outward in rings. Returns p unchanged when already
// navigable.
func (l *Level) NearestNavigable(p Vec2) Vec2 {
	cx, cy := l.worldToCell(p)
	if !l.cellBlocked(cx, cy) {
		return p
	}
	for radius := 1; radius < maxInt(l.cols, l.rows); radius++ {
		best := Vec2{}
		bestD := math.Inf(1)
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if maxInt(absInt(dx), absInt(dy)) != radius {
					continue
				}
				if l.cellBlocked(cx+dx, cy+dy) {
					continue
				}
				c := l.cellToWorld(cx+dx, cy+dy)
				if d := c.Dist(p); d < bestD {
					bestD = d
					best = c
				}
			}
		}
		if !math.IsInf(bestD, 1) {
			return best
		}
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

func (ol openList) Len() int            { return len(ol) }
func (ol openList) Less(i, j int) bool  { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
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

// FindPath returns world-space waypoints from a to b, or nil when no
// path exists. Octile A* with corner-cut prevention.
func (l *Level) FindPath(a, b Vec2) []Vec2 {
	scx, scy := l.worldToCell(a)
	gcx, gcy := l.worldToCell(b)

	if l.cellBlocked(scx, scy) || l.cellBlocked(gcx, gcy) {
		return nil
	}

	key := func(cx, cy int) int { return cy*l.cols + cx }
	heuristic := func(ax, ay, bx, by int) float64 {
		dx := math.Abs(float64(ax - bx))
		dy := math.Abs(float64(ay - by))
		return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
	}

	start := &pathNode{cx: scx, cy: scy, g: 0, h: heuristic(scx, scy, gcx, gcy)}
	ol := &openList{start}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := make(map[int]*pathNode)
	best[key(scx, scy)] = start

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cx == gcx && cur.cy == gcy {
			return l.buildPath(cur)
		}
		k := key(cur.cx, cur.cy)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range navDirs {
			nx, ny := cur.cx+d[0], cur.cy+d[1]
			if l.cellBlocked(nx, ny) {
				continue
			}
			// Prevent diagonal corner-cutting through blocked cells.
			if d[0] != 0 && d[1] != 0 {
				if l.cellBlocked(cur.cx+d[0], cur.cy) || l.cellBlocked(cur.cx, cur.cy+d[1]) {
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

func (l *Level) buildPath(end *pathNode) []Vec2 {
	var cells [][2]int
	for n := end; n != nil; n = n.parent {
		cells = append(cells, [2]int{n.cx, n.cy})
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	path := make([]Vec2, len(cells))
	for i, c := range cells {
		path[i] = l.cellToWorld(c[0], c[1])
	}
	return path
}

// PathLength returns the walkable distance from a to b.
func (l *Level) PathLength(a, b Vec2) (float64, bool) {
	path := l.FindPath(a, b)
	if path == nil {
		return 0, false
	}
	total := 0.0
	prev := a
	for _, p := range path {
		total += prev.Dist(p)
		prev = p
	}
	return total, true
}

// DiscoverCoverPoints places cover candidates around each wall's
// perimeter, one per face midpoint and corner, clipped to navigable
// ground. IDs follow discovery order.
func (l *Level) DiscoverCoverPoints(standoff float64) []CoverPoint {
	var pts []CoverPoint
	add := func(p Vec2) {
		p = l.NearestNavigable(p)
		pts = append(pts, CoverPoint{ID: len(pts), Pos: p})
	}
	for _, w := range l.walls {
		cx := w.X + w.W/2
		cy := w.Y + w.H/2
		add(Vec2{cx, w.Y - standoff})       // north
		add(Vec2{cx, w.Y + w.H + standoff}) // south
		add(Vec2{w.X - standoff, cy})       // west
		add(Vec2{w.X + w.W + standoff, cy}) // east
		add(Vec2{w.X - standoff, w.Y - standoff})
		add(Vec2{w.X + w.W + standoff, w.Y - standoff})
		add(Vec2{w.X - standoff, w.Y + w.H + standoff})
		add(Vec2{w.X + w.W + standoff, w.Y + w.H + standoff})
	}
	return pts
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
