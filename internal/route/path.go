package route

import (
	"fmt"
	"math"
	"slices"

	"github.com/matijazezelj/fuelnet/pkg/models"
)

// dijkstra holds the state of one single-source run.
type dijkstra struct {
	g       Graph
	dist    map[int]float64
	prev    map[int]int
	settled map[int]bool
	order   []int
	queue   stationQueue
}

func newDijkstra(g Graph, start int) *dijkstra {
	d := &dijkstra{
		g:       g,
		dist:    map[int]float64{start: 0},
		prev:    make(map[int]int),
		settled: make(map[int]bool),
	}
	d.queue.push(start, 0)
	return d
}

// distance returns the tentative distance of id, +Inf if never reached.
func (d *dijkstra) distance(id int) float64 {
	if v, ok := d.dist[id]; ok {
		return v
	}
	return math.Inf(1)
}

// next settles the closest unsettled station and relaxes its connections.
// ok is false once the frontier is exhausted.
func (d *dijkstra) next() (int, bool) {
	for {
		id, priority, ok := d.queue.popMin()
		if !ok {
			return 0, false
		}
		if d.settled[id] || priority > d.distance(id) {
			continue
		}
		d.settled[id] = true
		d.order = append(d.order, id)

		for _, n := range mustNeighbors(d.g, id) {
			if d.settled[n.ID] {
				continue
			}
			alt := priority + n.Weight
			if alt < d.distance(n.ID) {
				d.dist[n.ID] = alt
				d.prev[n.ID] = id
				d.queue.push(n.ID, alt)
			}
		}
		return id, true
	}
}

// run settles stations until end is settled, or everything reachable when
// end is negative.
func (d *dijkstra) run(end int) {
	for {
		id, ok := d.next()
		if !ok || id == end {
			return
		}
	}
}

// pathTo rebuilds the start→end path from the predecessor map.
func (d *dijkstra) pathTo(end int) models.Path {
	p := models.Path{Weight: d.dist[end]}
	for id := end; ; {
		p.Stations = append(p.Stations, id)
		prev, ok := d.prev[id]
		if !ok {
			break
		}
		id = prev
	}
	slices.Reverse(p.Stations)
	return p
}

// ShortestPath returns the lightest path from start to end. When start and
// end are the same station the result is that station alone with weight 0.
func ShortestPath(g Graph, start, end int) (models.Path, error) {
	if err := checkEndpoints(g, start, end); err != nil {
		return models.Path{}, err
	}
	if start == end {
		return models.Path{Stations: []int{start}, Weight: 0}, nil
	}

	d := newDijkstra(g, start)
	d.run(end)
	if !d.settled[end] {
		return models.Path{}, fmt.Errorf("%w: %d to %d", ErrUnreachable, start, end)
	}
	return d.pathTo(end), nil
}

// Distances returns the shortest distance from start to every reachable
// station, start included at 0.
func Distances(g Graph, start int) (map[int]float64, error) {
	if err := checkEndpoints(g, start, start); err != nil {
		return nil, err
	}

	d := newDijkstra(g, start)
	d.run(-1)
	out := make(map[int]float64, len(d.order))
	for _, id := range d.order {
		out[id] = d.dist[id]
	}
	return out, nil
}

// Nearest returns the reachable station closest to start by connection
// weight, excluding start. Ties go to the smallest id.
func Nearest(g Graph, start int) (models.Reach, error) {
	if err := checkEndpoints(g, start, start); err != nil {
		return models.Reach{}, err
	}

	d := newDijkstra(g, start)
	for {
		id, ok := d.next()
		if !ok {
			return models.Reach{}, fmt.Errorf("%w: from %d", ErrNoneReachable, start)
		}
		if id == start {
			continue
		}
		st, err := g.Station(id)
		if err != nil {
			return models.Reach{}, err
		}
		p := d.pathTo(id)
		return models.Reach{Station: st, Distance: p.Weight, Path: p}, nil
	}
}
