package route

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matijazezelj/fuelnet/internal/graph"
)

type stationSpec struct {
	name  string
	price float64
}

type edgeSpec struct {
	a, b   int
	weight float64
}

// buildGraph adds stations in order (ids 0..n-1) and then the edges.
func buildGraph(t *testing.T, stations []stationSpec, edges []edgeSpec) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, s := range stations {
		_, err := g.AddStation(s.name, s.price)
		require.NoError(t, err)
	}
	for _, e := range edges {
		require.NoError(t, g.AddConnection(e.a, e.b, e.weight))
	}
	return g
}

// exampleGraph: A(5) -2- B(3) -1- C(9).
func exampleGraph(t *testing.T) *graph.Graph {
	return buildGraph(t,
		[]stationSpec{{"A", 5}, {"B", 3}, {"C", 9}},
		[]edgeSpec{{0, 1, 2.0}, {1, 2, 1.0}},
	)
}

// diamondGraph:
//
//	    1
//	 1 / \ 4
//	  0   3 -2- 4     5 (isolated)
//	 2 \ / 1
//	    2
func diamondGraph(t *testing.T) *graph.Graph {
	return buildGraph(t,
		[]stationSpec{{"S0", 4}, {"S1", 6}, {"S2", 2}, {"S3", 7}, {"S4", 1}, {"S5", 0.5}},
		[]edgeSpec{{0, 1, 1}, {0, 2, 2}, {1, 3, 4}, {2, 3, 1}, {3, 4, 2}},
	)
}
