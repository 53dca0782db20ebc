package route

import (
	"fmt"

	"github.com/matijazezelj/fuelnet/pkg/models"
)

// CheapestWithinHops returns the lowest-priced station whose hop count from
// start is at most maxHops, start included. A station's hop count is one more
// than the hop count of the station that discovered it. Equal prices keep the
// station discovered first.
func CheapestWithinHops(g Graph, start, maxHops int) (models.Station, error) {
	if err := checkEndpoints(g, start, start); err != nil {
		return models.Station{}, err
	}
	if maxHops < 0 {
		return models.Station{}, fmt.Errorf("%w: %d", ErrInvalidHops, maxHops)
	}

	best, err := g.Station(start)
	if err != nil {
		return models.Station{}, err
	}

	hops := map[int]int{start: 0}
	queue := []int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		st, err := g.Station(current)
		if err != nil {
			return models.Station{}, err
		}
		if st.Price < best.Price {
			best = st
		}

		if hops[current] >= maxHops {
			continue
		}
		for _, n := range mustNeighbors(g, current) {
			if _, seen := hops[n.ID]; seen {
				continue
			}
			hops[n.ID] = hops[current] + 1
			queue = append(queue, n.ID)
		}
	}
	return best, nil
}

// CheapestOverall returns the lowest-priced station in the whole network,
// regardless of connectivity. Equal prices keep the smallest id.
func CheapestOverall(g Graph) (models.Station, error) {
	ids := g.StationIDs()
	if len(ids) == 0 {
		return models.Station{}, ErrEmptyNetwork
	}

	var best models.Station
	for i, id := range ids {
		st, err := g.Station(id)
		if err != nil {
			return models.Station{}, err
		}
		if i == 0 || st.Price < best.Price {
			best = st
		}
	}
	return best, nil
}
