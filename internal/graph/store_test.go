package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijazezelj/fuelnet/pkg/models"
)

// newTriangle builds A(5) - B(3) - C(9) with A-B=2 and B-C=1.
func newTriangle(t *testing.T) (*Graph, int, int, int) {
	t.Helper()
	g := New()
	a, err := g.AddStation("A", 5)
	require.NoError(t, err)
	b, err := g.AddStation("B", 3)
	require.NoError(t, err)
	c, err := g.AddStation("C", 9)
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(a, b, 2))
	require.NoError(t, g.AddConnection(b, c, 1))
	return g, a, b, c
}

func TestAddStation_AssignsSequentialIDs(t *testing.T) {
	g := New()
	for want := 0; want < 4; want++ {
		id, err := g.AddStation("s", 1)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	assert.Equal(t, 4, g.Len())
}

func TestAddStation_InvalidPrice(t *testing.T) {
	g := New()
	for _, p := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := g.AddStation("bad", p)
		assert.ErrorIs(t, err, ErrInvalidPrice, "price %v", p)
	}
	assert.Equal(t, 0, g.Len())
}

func TestAddStationWith_CopiesFields(t *testing.T) {
	g := New()
	id, err := g.AddStationWith(models.Station{ID: 42, Name: "Bole", Price: 71.5, Area: "Bole", Location: "Airport Rd"})
	require.NoError(t, err)

	s, err := g.Station(id)
	require.NoError(t, err)
	assert.Equal(t, models.Station{ID: 0, Name: "Bole", Price: 71.5, Area: "Bole", Location: "Airport Rd"}, s)
}

func TestCapacity(t *testing.T) {
	g := New(WithCapacity(2))
	_, err := g.AddStation("a", 1)
	require.NoError(t, err)
	b, err := g.AddStation("b", 1)
	require.NoError(t, err)

	_, err = g.AddStation("c", 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 2, g.Len())

	// Removing frees a slot, but the new station still gets a fresh id.
	require.NoError(t, g.RemoveStation(b))
	id, err := g.AddStation("c", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestAddConnection_Symmetric(t *testing.T) {
	g, a, b, _ := newTriangle(t)

	na, err := g.Neighbors(a)
	require.NoError(t, err)
	assert.Contains(t, na, models.Neighbor{ID: b, Weight: 2})

	nb, err := g.Neighbors(b)
	require.NoError(t, err)
	assert.Contains(t, nb, models.Neighbor{ID: a, Weight: 2})
	assert.Equal(t, 2, g.EdgeCount())
}

func TestAddConnection_Errors(t *testing.T) {
	g, a, b, _ := newTriangle(t)
	before := g.Connections()

	tests := []struct {
		name   string
		a, b   int
		weight float64
		want   error
	}{
		{"unknown source", 99, b, 1, ErrNotFound},
		{"unknown target", a, -1, 1, ErrNotFound},
		{"self loop", a, a, 1, ErrSelfLoop},
		{"negative", a, b, -0.5, ErrInvalidWeight},
		{"nan", a, b, math.NaN(), ErrInvalidWeight},
		{"inf", a, b, math.Inf(1), ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddConnection(tt.a, tt.b, tt.weight)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, g.Connections(), "failed call must not mutate")
		})
	}
}

func TestAddConnection_ReplacesWeight(t *testing.T) {
	g, a, b, c := newTriangle(t)
	require.NoError(t, g.AddConnection(c, a, 7))
	require.NoError(t, g.AddConnection(b, a, 4))

	na, err := g.Neighbors(a)
	require.NoError(t, err)
	assert.Equal(t, []models.Neighbor{{ID: b, Weight: 4}, {ID: c, Weight: 7}}, na)

	w, ok := g.Weight(a, b)
	assert.True(t, ok)
	assert.Equal(t, 4.0, w)
	assert.Equal(t, 3, g.EdgeCount())
}

func TestRemoveConnection(t *testing.T) {
	g, a, b, c := newTriangle(t)

	require.NoError(t, g.RemoveConnection(b, a))
	na, _ := g.Neighbors(a)
	nb, _ := g.Neighbors(b)
	assert.Empty(t, na)
	assert.Equal(t, []models.Neighbor{{ID: c, Weight: 1}}, nb)
	assert.Equal(t, 1, g.EdgeCount())

	// No edge left between a and b: no-op.
	assert.NoError(t, g.RemoveConnection(a, b))
	assert.Equal(t, 1, g.EdgeCount())

	assert.ErrorIs(t, g.RemoveConnection(a, 50), ErrNotFound)
}

func TestRemoveStation_DropsIncidentConnections(t *testing.T) {
	g, a, b, c := newTriangle(t)
	require.NoError(t, g.AddConnection(a, c, 8))

	require.NoError(t, g.RemoveStation(b))

	assert.False(t, g.Has(b))
	for _, id := range []int{a, c} {
		ns, err := g.Neighbors(id)
		require.NoError(t, err)
		for _, n := range ns {
			assert.NotEqual(t, b, n.ID, "station %d still references removed station", id)
		}
	}
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []int{a, c}, g.StationIDs())

	_, err := g.Station(b)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = g.Neighbors(b)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, g.RemoveStation(b), ErrNotFound)
	assert.ErrorIs(t, g.AddConnection(a, b, 1), ErrNotFound)
}

func TestRemoveStation_IDsNotReused(t *testing.T) {
	g, _, b, _ := newTriangle(t)
	require.NoError(t, g.RemoveStation(b))

	id, err := g.AddStation("D", 4)
	require.NoError(t, err)
	assert.Equal(t, 3, id)
	ns, err := g.Neighbors(id)
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestNeighbors_ReturnsCopy(t *testing.T) {
	g, a, b, _ := newTriangle(t)
	ns, err := g.Neighbors(a)
	require.NoError(t, err)
	ns[0].Weight = 100

	w, _ := g.Weight(a, b)
	assert.Equal(t, 2.0, w)
}

func TestConnections_Canonical(t *testing.T) {
	g, a, b, c := newTriangle(t)
	assert.Equal(t, []models.Connection{
		{From: a, To: b, Weight: 2},
		{From: b, To: c, Weight: 1},
	}, g.Connections())
}

func TestClone_Independent(t *testing.T) {
	g, a, b, c := newTriangle(t)
	cp := g.Clone()

	require.NoError(t, cp.RemoveStation(b))
	require.NoError(t, cp.AddConnection(a, c, 3))

	assert.True(t, g.Has(b))
	_, ok := g.Weight(a, c)
	assert.False(t, ok)
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, 1, cp.EdgeCount())
}
