// Package route implements read-only queries over a station network:
// breadth-first and depth-first traversal, Dijkstra shortest paths, and
// cheapest/nearest station searches.
//
// Every function takes a Graph and leaves it untouched. Results are fresh
// values owned by the caller. The package keeps no state between calls.
//
// Determinism: traversals discover neighbors in the order Graph.Neighbors
// returns them. Dijkstra settles stations in order of tentative distance and,
// on equal distances, smallest station id first.
package route

import (
	"errors"

	"github.com/matijazezelj/fuelnet/pkg/models"
)

// Graph is the read surface the engine needs. *graph.Graph satisfies it.
type Graph interface {
	Has(id int) bool
	Station(id int) (models.Station, error)
	Neighbors(id int) ([]models.Neighbor, error)
	StationIDs() []int
}

var (
	// ErrUnreachable indicates no path exists between two stations.
	ErrUnreachable = errors.New("route: destination unreachable")

	// ErrNoneReachable indicates no station other than the origin is reachable.
	ErrNoneReachable = errors.New("route: no other station reachable")

	// ErrInvalidHops indicates a negative hop budget.
	ErrInvalidHops = errors.New("route: hop budget must be non-negative")

	// ErrEmptyNetwork indicates a query over a network without stations.
	ErrEmptyNetwork = errors.New("route: network has no stations")
)

// mustNeighbors returns the adjacency of a station already known to exist.
// Ids reach here only from the graph itself, so a lookup failure means the
// graph changed under the query; treat the station as isolated.
func mustNeighbors(g Graph, id int) []models.Neighbor {
	ns, err := g.Neighbors(id)
	if err != nil {
		return nil
	}
	return ns
}
