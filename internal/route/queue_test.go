package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationQueue_Empty(t *testing.T) {
	var q stationQueue
	_, _, ok := q.popMin()
	assert.False(t, ok)
}

func TestStationQueue_PopsInPriorityOrder(t *testing.T) {
	var q stationQueue
	q.push(4, 7.5)
	q.push(1, 0.5)
	q.push(3, 2)
	q.push(2, 9)

	var got []int
	for {
		id, _, ok := q.popMin()
		if !ok {
			break
		}
		got = append(got, id)
	}
	assert.Equal(t, []int{1, 3, 4, 2}, got)
}

func TestStationQueue_TieBreaksOnSmallestID(t *testing.T) {
	var q stationQueue
	q.push(9, 1)
	q.push(2, 1)
	q.push(5, 1)

	for _, want := range []int{2, 5, 9} {
		id, p, ok := q.popMin()
		require.True(t, ok)
		assert.Equal(t, want, id)
		assert.Equal(t, 1.0, p)
	}
}

func TestStationQueue_Duplicates(t *testing.T) {
	var q stationQueue
	q.push(3, 10)
	q.push(3, 4)
	q.push(1, 6)

	id, p, ok := q.popMin()
	require.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Equal(t, 4.0, p)

	id, _, _ = q.popMin()
	assert.Equal(t, 1, id)

	// The stale entry is still there; skipping it is the caller's job.
	id, p, ok = q.popMin()
	require.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Equal(t, 10.0, p)

	_, _, ok = q.popMin()
	assert.False(t, ok)
}

func TestStationQueue_InterleavedPushPop(t *testing.T) {
	var q stationQueue
	q.push(0, 5)
	id, _, _ := q.popMin()
	assert.Equal(t, 0, id)

	q.push(1, 3)
	q.push(2, 1)
	id, _, _ = q.popMin()
	assert.Equal(t, 2, id)
	q.push(3, 2)
	id, _, _ = q.popMin()
	assert.Equal(t, 3, id)
	id, _, _ = q.popMin()
	assert.Equal(t, 1, id)
}
