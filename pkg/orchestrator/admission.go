package orchestrator

import (
	"container/heap"
	"time"
)

// ticket is one admission-queue entry: higher Priority dispatches first;
// equal priority dispatches in Arrival order.
type ticket struct {
	job      *Job
	priority int
	arrival  time.Time
	index    int // heap bookkeeping
}

// admissionQueue is a priority-then-FIFO queue implemented on
// container/heap; no example repo in the corpus implements a generic
// priority queue, so this is the idiomatic stdlib tool for the job
// rather than a hand-rolled sorted slice.
type admissionQueue struct {
	items ticketHeap
}

func newAdmissionQueue() *admissionQueue {
	q := &admissionQueue{}
	heap.Init(&q.items)
	return q
}

func (q *admissionQueue) push(job *Job) {
	heap.Push(&q.items, &ticket{job: job, priority: job.Priority, arrival: job.Admitted})
}

// pop removes and returns the highest-priority, earliest-arrived job, or
// nil if the queue is empty.
func (q *admissionQueue) pop() *Job {
	if q.items.Len() == 0 {
		return nil
	}
	t := heap.Pop(&q.items).(*ticket)
	return t.job
}

func (q *admissionQueue) len() int {
	return q.items.Len()
}

// remove deletes the queued job with the given output_id, if present,
// returning true if it was found.
func (q *admissionQueue) remove(outputID string) bool {
	for i, t := range q.items {
		if t.job.OutputID == outputID {
			heap.Remove(&q.items, i)
			return true
		}
	}
	return false
}

// snapshot returns the currently queued jobs in dispatch order without
// mutating the queue.
func (q *admissionQueue) snapshot() []*Job {
	ordered := make(ticketHeap, len(q.items))
	copy(ordered, q.items)
	jobs := make([]*Job, 0, len(ordered))
	for len(ordered) > 0 {
		t := heap.Pop(&ordered).(*ticket)
		jobs = append(jobs, t.job)
	}
	return jobs
}

// ticketHeap implements heap.Interface ordering by (priority desc,
// arrival asc).
type ticketHeap []*ticket

func (h ticketHeap) Len() int { return len(h) }

func (h ticketHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].arrival.Before(h[j].arrival)
}

func (h ticketHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *ticketHeap) Push(x any) {
	t := x.(*ticket)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *ticketHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
