package queue

import (
	"container/heap"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/id88/urlspider/pkg/models"
)

// item wraps a work item for the heap
type item struct {
	workItem *models.WorkItem
	priority int   // Lower value means higher priority (depth)
	seq      int64 // Insertion order; ties broken FIFO so traversal is breadth-first
	index    int   // Heap index (required by heap interface)
}

// workHeap implements heap.Interface ordered by (depth, insertion order)
type workHeap []*item

func (h workHeap) Len() int { return len(h) }

func (h workHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h workHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *workHeap) Push(x any) {
	n := len(*h)
	it := x.(*item)
	it.index = n
	*h = append(*h, it)
}

func (h *workHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // avoid memory leak
	it.index = -1
	*h = old[0 : n-1]
	return it
}

// WorkQueue is a thread-safe queue of crawl tasks ordered by depth, FIFO
// within a depth level, giving a breadth-first queue discipline.
// Pop blocks until an item is available or the queue is closed.
type WorkQueue struct {
	h      workHeap
	mu     sync.Mutex
	cond   *sync.Cond
	seq    int64
	closed bool
	log    *logrus.Logger
}

// NewWorkQueue creates an empty WorkQueue
func NewWorkQueue(log *logrus.Logger) *WorkQueue {
	q := &WorkQueue{log: log}
	q.cond = sync.NewCond(&q.mu)
	heap.Init(&q.h)
	return q
}

// Add pushes a work item onto the queue, prioritized by its depth
func (q *WorkQueue) Add(w *models.WorkItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.log.Warnf("Attempted to add item to closed queue: %s", w.URL)
		return
	}

	q.seq++
	heap.Push(&q.h, &item{workItem: w, priority: w.Depth, seq: q.seq})
	q.cond.Signal()
}

// Pop retrieves and removes the shallowest, oldest work item.
// It blocks while the queue is empty, returning (nil, false) once the queue
// is closed and drained.
func (q *WorkQueue) Pop() (*models.WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.h) == 0 {
		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}

	it := heap.Pop(&q.h).(*item)
	return it.workItem, true
}

// Close signals that no more items will be added; blocked workers wake up
// and drain the remaining items
func (q *WorkQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
}

// Len returns the current number of queued items
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}
