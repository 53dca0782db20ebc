package graph

import (
	"fmt"
	"math"
	"slices"

	"github.com/matijazezelj/fuelnet/pkg/models"
)

// Graph owns the stations of a network and the undirected weighted
// connections between them.
//
// Stations live in a slice indexed by id. Ids are assigned in increasing
// order and never reused, so a removed station leaves an empty slot behind.
// Each slot keeps its adjacency entries in insertion order; that order is
// the order Neighbors returns and the order traversals discover stations in.
//
// A Graph is not safe for concurrent use. Callers that share one across
// goroutines must serialize mutations against queries themselves.
type Graph struct {
	slots    []slot
	live     int
	edges    int
	capacity int
}

type slot struct {
	station models.Station
	adj     []models.Neighbor
	live    bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithCapacity limits the number of live stations. Zero or negative means
// unbounded.
func WithCapacity(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.capacity = n
		}
	}
}

// New creates an empty Graph.
func New(opts ...Option) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddStation inserts a station and returns its id.
func (g *Graph) AddStation(name string, price float64) (int, error) {
	return g.AddStationWith(models.Station{Name: name, Price: price})
}

// AddStationWith inserts a station copying its descriptive fields. The ID
// field of s is ignored; the assigned id is returned.
func (g *Graph) AddStationWith(s models.Station) (int, error) {
	if s.Price < 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, s.Price)
	}
	if g.capacity > 0 && g.live >= g.capacity {
		return 0, fmt.Errorf("%w: limit %d", ErrCapacityExceeded, g.capacity)
	}

	s.ID = len(g.slots)
	g.slots = append(g.slots, slot{station: s, live: true})
	g.live++
	return s.ID, nil
}

// RemoveStation deletes a station together with every connection touching it.
func (g *Graph) RemoveStation(id int) error {
	if !g.Has(id) {
		return notFound(id)
	}

	for _, n := range g.slots[id].adj {
		g.slots[n.ID].adj = dropNeighbor(g.slots[n.ID].adj, id)
		g.edges--
	}
	g.slots[id] = slot{}
	g.live--
	return nil
}

// AddConnection connects a and b with the given weight in both directions.
// Connecting an already connected pair replaces the weight and keeps the
// pair's position in both adjacency lists.
func (g *Graph) AddConnection(a, b int, weight float64) error {
	if !g.Has(a) {
		return notFound(a)
	}
	if !g.Has(b) {
		return notFound(b)
	}
	if a == b {
		return fmt.Errorf("%w: station %d", ErrSelfLoop, a)
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("%w: %v between %d and %d", ErrInvalidWeight, weight, a, b)
	}

	if i := indexOf(g.slots[a].adj, b); i >= 0 {
		g.slots[a].adj[i].Weight = weight
		j := indexOf(g.slots[b].adj, a)
		g.slots[b].adj[j].Weight = weight
		return nil
	}

	g.slots[a].adj = append(g.slots[a].adj, models.Neighbor{ID: b, Weight: weight})
	g.slots[b].adj = append(g.slots[b].adj, models.Neighbor{ID: a, Weight: weight})
	g.edges++
	return nil
}

// RemoveConnection disconnects a and b. Removing a connection that does not
// exist is not an error.
func (g *Graph) RemoveConnection(a, b int) error {
	if !g.Has(a) {
		return notFound(a)
	}
	if !g.Has(b) {
		return notFound(b)
	}
	if indexOf(g.slots[a].adj, b) < 0 {
		return nil
	}

	g.slots[a].adj = dropNeighbor(g.slots[a].adj, b)
	g.slots[b].adj = dropNeighbor(g.slots[b].adj, a)
	g.edges--
	return nil
}

// Has reports whether id names a live station.
func (g *Graph) Has(id int) bool {
	return id >= 0 && id < len(g.slots) && g.slots[id].live
}

// Station returns a copy of the station record.
func (g *Graph) Station(id int) (models.Station, error) {
	if !g.Has(id) {
		return models.Station{}, notFound(id)
	}
	return g.slots[id].station, nil
}

// Neighbors returns a copy of the station's adjacency entries in insertion
// order.
func (g *Graph) Neighbors(id int) ([]models.Neighbor, error) {
	if !g.Has(id) {
		return nil, notFound(id)
	}
	return slices.Clone(g.slots[id].adj), nil
}

// Weight returns the weight of the connection between a and b, if any.
func (g *Graph) Weight(a, b int) (float64, bool) {
	if !g.Has(a) || !g.Has(b) {
		return 0, false
	}
	i := indexOf(g.slots[a].adj, b)
	if i < 0 {
		return 0, false
	}
	return g.slots[a].adj[i].Weight, true
}

// StationIDs returns the ids of all live stations in ascending order.
func (g *Graph) StationIDs() []int {
	ids := make([]int, 0, g.live)
	for id, s := range g.slots {
		if s.live {
			ids = append(ids, id)
		}
	}
	return ids
}

// Stations returns copies of all live stations ordered by id.
func (g *Graph) Stations() []models.Station {
	stations := make([]models.Station, 0, g.live)
	for _, s := range g.slots {
		if s.live {
			stations = append(stations, s.station)
		}
	}
	return stations
}

// Connections returns every connection once, with From < To, ordered by
// From and then by adjacency order.
func (g *Graph) Connections() []models.Connection {
	conns := make([]models.Connection, 0, g.edges)
	for id, s := range g.slots {
		for _, n := range s.adj {
			if id < n.ID {
				conns = append(conns, models.Connection{From: id, To: n.ID, Weight: n.Weight})
			}
		}
	}
	return conns
}

// Len returns the number of live stations.
func (g *Graph) Len() int {
	return g.live
}

// EdgeCount returns the number of connections.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Capacity returns the station limit, or 0 when unbounded.
func (g *Graph) Capacity() int {
	return g.capacity
}

// Clone returns an independent deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		slots:    make([]slot, len(g.slots)),
		live:     g.live,
		edges:    g.edges,
		capacity: g.capacity,
	}
	for i, s := range g.slots {
		c.slots[i] = slot{station: s.station, adj: slices.Clone(s.adj), live: s.live}
	}
	return c
}

func notFound(id int) error {
	return fmt.Errorf("%w: %d", ErrNotFound, id)
}

func indexOf(adj []models.Neighbor, id int) int {
	return slices.IndexFunc(adj, func(n models.Neighbor) bool { return n.ID == id })
}

func dropNeighbor(adj []models.Neighbor, id int) []models.Neighbor {
	return slices.DeleteFunc(adj, func(n models.Neighbor) bool { return n.ID == id })
}
