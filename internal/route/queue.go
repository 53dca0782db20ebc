package route

import "container/heap"

// stationQueue is a min-priority queue of station ids keyed by tentative
// distance. The same id may be pushed several times; consumers skip ids they
// have already settled. Equal priorities pop smallest id first.
type stationQueue struct {
	items queueItems
}

type queueItem struct {
	id       int
	priority float64
}

type queueItems []queueItem

func (q queueItems) Len() int { return len(q) }

func (q queueItems) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].id < q[j].id
}

func (q queueItems) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queueItems) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *queueItems) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

func (q *stationQueue) push(id int, priority float64) {
	heap.Push(&q.items, queueItem{id: id, priority: priority})
}

// popMin removes the entry with the smallest priority. ok is false when the
// queue is empty.
func (q *stationQueue) popMin() (id int, priority float64, ok bool) {
	if len(q.items) == 0 {
		return 0, 0, false
	}
	it := heap.Pop(&q.items).(queueItem)
	return it.id, it.priority, true
}
