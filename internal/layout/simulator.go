// Package layout implements a spring-and-charge force-directed layout over a
// graph snapshot. The simulator owns every presentation-only field: node
// positions and velocities, the visited flag of nodes and the highlighted
// flag of edges. It must be stepped from a single goroutine.
package layout

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/metrics"
	"github.com/vk/recipemap/internal/ruleid"
)

// ErrNotInitialized is returned by Step before Initialize has been called.
var ErrNotInitialized = errors.New("layout is not initialized")

// Point is a position or velocity on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) length() float64       { return math.Hypot(p.X, p.Y) }
func (p Point) dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }

// Bounds is the axis-aligned box enclosing every node.
type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

type spring struct {
	a, b int
}

// Simulator advances node positions one step at a time.
type Simulator struct {
	cfg Config

	snap    *graph.Snapshot
	ids     []ruleid.ID
	index   map[ruleid.ID]int
	pos     []Point
	vel     []Point
	force   []Point
	springs []spring

	visited     map[ruleid.ID]bool
	highlighted map[graph.EdgeKey]bool
	steps       int
}

// New creates an uninitialized simulator.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg}, nil
}

// Config returns the simulator's force constants.
func (s *Simulator) Config() Config { return s.cfg }

// Initialize places every node of snap uniformly at random within the
// configured extent, with zero velocity. Placement depends only on the seed
// and the snapshot's node ids. Presentation flags are reset.
func (s *Simulator) Initialize(snap *graph.Snapshot) {
	s.snap = snap
	s.ids = snap.IDs()
	s.index = make(map[ruleid.ID]int, len(s.ids))
	for i, id := range s.ids {
		s.index[id] = i
	}

	rng := rand.New(rand.NewSource(s.cfg.Seed))
	ext := s.cfg.InitialExtent
	s.pos = make([]Point, len(s.ids))
	s.vel = make([]Point, len(s.ids))
	s.force = make([]Point, len(s.ids))
	for i := range s.pos {
		s.pos[i] = Point{X: rng.Float64()*2*ext - ext, Y: rng.Float64()*2*ext - ext}
	}

	s.springs = s.springs[:0]
	for _, e := range snap.Edges() {
		a, okA := s.index[e.From]
		b, okB := s.index[e.To]
		if !okA || !okB || a == b {
			continue
		}
		s.springs = append(s.springs, spring{a: a, b: b})
	}

	s.visited = make(map[ruleid.ID]bool)
	s.highlighted = make(map[graph.EdgeKey]bool)
	s.steps = 0
}

// Initialized reports whether Initialize has been called.
func (s *Simulator) Initialized() bool { return s.snap != nil }

// Snapshot returns the snapshot being laid out.
func (s *Simulator) Snapshot() *graph.Snapshot { return s.snap }

// Steps returns how many steps ran since Initialize.
func (s *Simulator) Steps() int { return s.steps }

// Step applies one round of forces and returns the kinetic energy of the
// system afterwards. The result depends only on the current positions and
// velocities.
func (s *Simulator) Step() (float64, error) {
	if !s.Initialized() {
		return 0, ErrNotInitialized
	}

	for i := range s.force {
		s.force[i] = Point{}
	}
	s.applyRepulsion()
	s.applyAttraction()

	energy := 0.0
	for i := range s.pos {
		v := s.vel[i].add(s.force[i]).scale(s.cfg.Damping)
		if speed := v.length(); speed > s.cfg.MaxSpeed {
			v = v.scale(s.cfg.MaxSpeed / speed)
		}
		s.vel[i] = v
		s.pos[i] = s.pos[i].add(v)
		energy += 0.5 * v.dot(v)
	}

	s.steps++
	metrics.LayoutStepsTotal.Inc()
	metrics.LayoutEnergy.Set(energy)
	return energy, nil
}

// applyRepulsion pushes every pair of nodes apart with an inverse-square
// force. Coincident nodes are separated along the x axis, lower index first.
func (s *Simulator) applyRepulsion() {
	minD := s.cfg.MinDistance
	for i := 0; i < len(s.pos); i++ {
		for j := i + 1; j < len(s.pos); j++ {
			delta := s.pos[i].sub(s.pos[j])
			d := delta.length()
			dir := Point{X: 1}
			if d > 0 {
				dir = delta.scale(1 / d)
			}
			f := dir.scale(s.cfg.Repulsion / math.Pow(math.Max(d, minD), 2))
			s.force[i] = s.force[i].add(f)
			s.force[j] = s.force[j].sub(f)
		}
	}
}

// applyAttraction pulls the endpoints of every edge together.
func (s *Simulator) applyAttraction() {
	for _, sp := range s.springs {
		delta := s.pos[sp.b].sub(s.pos[sp.a])
		d := delta.length()
		if d == 0 {
			continue
		}
		mag := s.cfg.Attraction * math.Log(d/s.cfg.ReferenceDistance+1)
		f := delta.scale(mag / d)
		s.force[sp.a] = s.force[sp.a].add(f)
		s.force[sp.b] = s.force[sp.b].sub(f)
	}
}

// Settle steps until the energy drops below minEnergy, maxSteps is reached,
// or ctx is done. It returns the number of steps taken and the last energy.
func (s *Simulator) Settle(ctx context.Context, maxSteps int, minEnergy float64) (int, float64, error) {
	if !s.Initialized() {
		return 0, 0, ErrNotInitialized
	}
	energy := math.Inf(1)
	for n := 0; n < maxSteps; n++ {
		if err := ctx.Err(); err != nil {
			return n, energy, err
		}
		var err error
		if energy, err = s.Step(); err != nil {
			return n, energy, err
		}
		if energy < minEnergy {
			return n + 1, energy, nil
		}
	}
	return maxSteps, energy, nil
}

// Position returns the coordinates of id.
func (s *Simulator) Position(id ruleid.ID) (Point, bool) {
	i, ok := s.index[id]
	if !ok {
		return Point{}, false
	}
	return s.pos[i], true
}

// SetPosition moves id to p and stops it.
func (s *Simulator) SetPosition(id ruleid.ID, p Point) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.pos[i] = p
	s.vel[i] = Point{}
	return true
}

// Positions returns a copy of every node position keyed by id.
func (s *Simulator) Positions() map[ruleid.ID]Point {
	out := make(map[ruleid.ID]Point, len(s.ids))
	for i, id := range s.ids {
		out[id] = s.pos[i]
	}
	return out
}

// Bounds returns the box enclosing every node. It is zero when there are no
// nodes.
func (s *Simulator) Bounds() Bounds {
	if len(s.pos) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: s.pos[0], Max: s.pos[0]}
	for _, p := range s.pos[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// SetVisited sets the visited flag of id.
func (s *Simulator) SetVisited(id ruleid.ID, visited bool) {
	if _, ok := s.index[id]; !ok {
		return
	}
	if visited {
		s.visited[id] = true
	} else {
		delete(s.visited, id)
	}
}

// Visited reports the visited flag of id.
func (s *Simulator) Visited(id ruleid.ID) bool { return s.visited[id] }

// ClearVisited resets every visited flag.
func (s *Simulator) ClearVisited() { clear(s.visited) }

// SetHighlighted sets the highlighted flag of the edge identified by k.
func (s *Simulator) SetHighlighted(k graph.EdgeKey, on bool) {
	if s.highlighted == nil {
		return
	}
	if on {
		s.highlighted[k] = true
	} else {
		delete(s.highlighted, k)
	}
}

// Highlighted reports the highlighted flag of the edge identified by k.
func (s *Simulator) Highlighted(k graph.EdgeKey) bool { return s.highlighted[k] }

// HighlightNeighbourhood highlights every edge touching id and clears the
// rest.
func (s *Simulator) HighlightNeighbourhood(id ruleid.ID) {
	if s.snap == nil {
		return
	}
	clear(s.highlighted)
	for _, e := range s.snap.Edges() {
		if e.From == id || e.To == id {
			s.highlighted[e.Key()] = true
		}
	}
}
