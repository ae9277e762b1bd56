// Package cluster runs a density-based diagnostic over one prefix group of airports.
// Points are projected to Mercator kilometers, ordered with OPTICS and labelled
// DBSCAN-style at the neighbourhood radius. The labels come from that single cut, not
// from xi (steepness) extraction over the reachability plot, so cluster counts can
// differ from an xi-extracted OPTICS run on the same points. Nothing here mutates a
// registry.
package cluster

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/icao-airports/internal/airport"
	"github.com/sells-group/icao-airports/internal/geo"
)

// Noise is the label of points that belong to no cluster.
const Noise = -1

// Defaults applied to zero-valued Options.
const (
	DefaultMaxEpsKM   = 2000
	DefaultMinSamples = 2
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50
	tolerance   = 1e-6
)

// Options configures a clustering run.
type Options struct {
	// MaxEpsKM is the neighbourhood radius in projected kilometers.
	MaxEpsKM float64
	// MinSamples is the neighbourhood size, self included, that makes a core point.
	MinSamples int
}

func (o Options) withDefaults() Options {
	if o.MaxEpsKM == 0 {
		o.MaxEpsKM = DefaultMaxEpsKM
	}
	if o.MinSamples == 0 {
		o.MinSamples = DefaultMinSamples
	}
	return o
}

func (o Options) validate() error {
	if o.MaxEpsKM <= 0 || math.IsNaN(o.MaxEpsKM) || math.IsInf(o.MaxEpsKM, 0) {
		return eris.Errorf("cluster: max eps must be a positive distance, got %g", o.MaxEpsKM)
	}
	if o.MinSamples < 1 {
		return eris.Errorf("cluster: min samples must be at least 1, got %d", o.MinSamples)
	}
	return nil
}

// Result is the label assignment of one run.
type Result struct {
	// Labels maps every input code to a cluster label or Noise.
	Labels map[string]int
	// Ordering is the OPTICS visiting order of the projected points.
	Ordering []string
	// Reachability is the reachability distance per projected code; +Inf starts a
	// new density region.
	Reachability map[string]float64
	// CoreDistance is the core distance per projected code; +Inf for non-core points.
	CoreDistance map[string]float64
	// Skipped lists codes that could not be projected. They are labelled Noise.
	Skipped []string
}

// Counts returns the number of airports per label.
func (r *Result) Counts() map[int]int {
	out := make(map[int]int)
	for _, l := range r.Labels {
		out[l]++
	}
	return out
}

// Clusters returns the number of non-noise labels.
func (r *Result) Clusters() int {
	n := 0
	for l := range r.Counts() {
		if l != Noise {
			n++
		}
	}
	return n
}

// Members returns the sorted codes carrying label.
func (r *Result) Members(label int) []string {
	var out []string
	for code, l := range r.Labels {
		if l == label {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// LabelsSorted returns the distinct labels in ascending order, Noise first.
func (r *Result) LabelsSorted() []int {
	counts := r.Counts()
	out := make([]int, 0, len(counts))
	for l := range counts {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

type point struct {
	code string
	x, y float64
	rect *rtreego.Rect
}

func (p *point) Bounds() *rtreego.Rect {
	return p.rect
}

type neighbor struct {
	idx  int
	dist float64
}

// Run clusters group. Codes must be unique within group.
func Run(group []airport.Airport, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("component", "cluster"))

	res := &Result{
		Labels:       make(map[string]int, len(group)),
		Reachability: make(map[string]float64, len(group)),
		CoreDistance: make(map[string]float64, len(group)),
	}

	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	points := make([]*point, 0, len(group))
	for _, a := range group {
		if _, dup := res.Labels[a.Code]; dup {
			return nil, eris.Errorf("cluster: duplicate code %s", a.Code)
		}
		res.Labels[a.Code] = Noise

		x, y, ok := geo.Mercator(a.Latitude, a.Longitude)
		if !ok {
			res.Skipped = append(res.Skipped, a.Code)
			log.Warn("airport cannot be projected, labelled noise", zap.String("code", a.Code), zap.Float64("lat", a.Latitude))
			continue
		}
		p := &point{code: a.Code, x: x, y: y, rect: rtreego.Point{x, y}.ToRect(tolerance)}
		points = append(points, p)
		tree.Insert(p)
	}
	sort.Strings(res.Skipped)

	index := make(map[*point]int, len(points))
	for i, p := range points {
		index[p] = i
	}

	neighbors := make([][]neighbor, len(points))
	core := make([]float64, len(points))
	for i, p := range points {
		nb, err := within(tree, index, p, opts.MaxEpsKM)
		if err != nil {
			return nil, err
		}
		neighbors[i] = nb
		core[i] = math.Inf(1)
		if len(nb) >= opts.MinSamples {
			core[i] = nb[opts.MinSamples-1].dist
		}
	}

	ordering, reach := order(neighbors, core)

	// Labels follow the ordering: a point that is unreachable at eps but is itself a
	// core point opens the next cluster; an unreachable non-core point is noise.
	label := Noise
	for _, i := range ordering {
		p := points[i]
		farReach := reach[i] > opts.MaxEpsKM
		nearCore := core[i] <= opts.MaxEpsKM
		if farReach && nearCore {
			label++
		}
		l := label
		if farReach && !nearCore {
			l = Noise
		}
		res.Labels[p.code] = l
		res.Ordering = append(res.Ordering, p.code)
		res.Reachability[p.code] = reach[i]
		res.CoreDistance[p.code] = core[i]
	}

	log.Debug("clustering finished",
		zap.Int("airports", len(group)),
		zap.Int("clusters", res.Clusters()),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// within returns the points no further than eps from p, p included, nearest first.
func within(tree *rtreego.Rtree, index map[*point]int, p *point, eps float64) ([]neighbor, error) {
	box, err := rtreego.NewRect(rtreego.Point{p.x - eps, p.y - eps}, []float64{2*eps + tolerance, 2*eps + tolerance})
	if err != nil {
		return nil, eris.Wrapf(err, "cluster: search box for %s", p.code)
	}

	var out []neighbor
	for _, s := range tree.SearchIntersect(box) {
		q := s.(*point)
		d := math.Hypot(q.x-p.x, q.y-p.y)
		if d <= eps {
			out = append(out, neighbor{idx: index[q], dist: d})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].dist != out[b].dist {
			return out[a].dist < out[b].dist
		}
		return out[a].idx < out[b].idx
	})
	return out, nil
}

// order computes the OPTICS ordering. The next point is always the unprocessed one
// with the smallest reachability, lowest index first.
func order(neighbors [][]neighbor, core []float64) ([]int, []float64) {
	n := len(core)
	reach := make([]float64, n)
	for i := range reach {
		reach[i] = math.Inf(1)
	}
	processed := make([]bool, n)
	ordering := make([]int, 0, n)

	for len(ordering) < n {
		next := -1
		for i := 0; i < n; i++ {
			if processed[i] {
				continue
			}
			if next < 0 || reach[i] < reach[next] {
				next = i
			}
		}
		processed[next] = true
		ordering = append(ordering, next)

		if math.IsInf(core[next], 1) {
			continue
		}
		for _, nb := range neighbors[next] {
			if processed[nb.idx] {
				continue
			}
			if d := math.Max(nb.dist, core[next]); d < reach[nb.idx] {
				reach[nb.idx] = d
			}
		}
	}
	return ordering, reach
}
