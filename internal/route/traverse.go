package route

import (
	"fmt"
	"iter"
	"slices"

	"github.com/matijazezelj/fuelnet/internal/graph"
	"github.com/matijazezelj/fuelnet/pkg/models"
)

// BFS returns the stations reachable from start in breadth-first order,
// start first. The sequence is lazy: each station's neighbors are read only
// when iteration reaches it. Stations are yielded once.
func BFS(g Graph, start int) (iter.Seq[int], error) {
	if !g.Has(start) {
		return nil, fmt.Errorf("%w: %d", graph.ErrNotFound, start)
	}

	return func(yield func(int) bool) {
		seen := map[int]bool{start: true}
		queue := []int{start}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			if !yield(current) {
				return
			}
			for _, n := range mustNeighbors(g, current) {
				if seen[n.ID] {
					continue
				}
				seen[n.ID] = true
				queue = append(queue, n.ID)
			}
		}
	}, nil
}

// DFS returns the stations reachable from start in depth-first order using
// an explicit stack. Neighbors are pushed in reverse so the first neighbor is
// explored first, giving the same order as a recursive preorder walk.
func DFS(g Graph, start int) (iter.Seq[int], error) {
	if !g.Has(start) {
		return nil, fmt.Errorf("%w: %d", graph.ErrNotFound, start)
	}

	return func(yield func(int) bool) {
		visited := make(map[int]bool)
		stack := []int{start}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[current] {
				continue
			}
			visited[current] = true
			if !yield(current) {
				return
			}
			ns := mustNeighbors(g, current)
			for i := len(ns) - 1; i >= 0; i-- {
				if !visited[ns[i].ID] {
					stack = append(stack, ns[i].ID)
				}
			}
		}
	}, nil
}

// BFSOrder collects BFS into a slice.
func BFSOrder(g Graph, start int) ([]int, error) {
	seq, err := BFS(g, start)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// DFSOrder collects DFS into a slice.
func DFSOrder(g Graph, start int) ([]int, error) {
	seq, err := DFS(g, start)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// HopPath finds the path with the fewest connections between start and end.
// Weight is the sum of connection weights along that path, which need not be
// the lightest path.
func HopPath(g Graph, start, end int) (models.Path, error) {
	if err := checkEndpoints(g, start, end); err != nil {
		return models.Path{}, err
	}
	if start == end {
		return models.Path{Stations: []int{start}}, nil
	}

	type hop struct {
		parent int
		weight float64
	}
	parents := map[int]hop{start: {parent: -1}}
	queue := []int{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, n := range mustNeighbors(g, current) {
			if _, seen := parents[n.ID]; seen {
				continue
			}
			parents[n.ID] = hop{parent: current, weight: n.Weight}
			if n.ID == end {
				var p models.Path
				for id := end; id != -1; id = parents[id].parent {
					p.Stations = append(p.Stations, id)
					p.Weight += parents[id].weight
				}
				slices.Reverse(p.Stations)
				return p, nil
			}
			queue = append(queue, n.ID)
		}
	}

	return models.Path{}, fmt.Errorf("%w: %d to %d", ErrUnreachable, start, end)
}

func checkEndpoints(g Graph, start, end int) error {
	if !g.Has(start) {
		return fmt.Errorf("%w: %d", graph.ErrNotFound, start)
	}
	if !g.Has(end) {
		return fmt.Errorf("%w: %d", graph.ErrNotFound, end)
	}
	return nil
}
