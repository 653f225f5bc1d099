package game

import "container/heap"

// Handle identifies a scheduled entry. The zero Handle is never issued.
type Handle uint64

type deferred struct {
	due   float64
	seq   uint64
	fn    func()
	index int
}

type deferredQueue []*deferred

func (q deferredQueue) Len() int { return len(q) }

func (q deferredQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q deferredQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *deferredQueue) Push(x any) {
	d := x.(*deferred)
	d.index = len(*q)
	*q = append(*q, d)
}

func (q *deferredQueue) Pop() any {
	old := *q
	n := len(old)
	d := old[n-1]
	old[n-1] = nil
	d.index = -1
	*q = old[:n-1]
	return d
}

// Scheduler is a deferred-work queue polled once per tick. Entries fire in
// due-time order, ties in scheduling order. Time is whatever clock the caller
// passes to Schedule and Poll; the session uses run elapsed seconds, so
// entries do not advance while paused.
type Scheduler struct {
	queue   deferredQueue
	byID    map[Handle]*deferred
	nextSeq uint64
	now     float64
}

// NewScheduler creates an empty scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{byID: make(map[Handle]*deferred)}
}

// Schedule runs fn once the clock reaches now+delay.
func (s *Scheduler) Schedule(delay float64, fn func()) Handle {
	s.nextSeq++
	d := &deferred{due: s.now + max(delay, 0), seq: s.nextSeq, fn: fn}
	heap.Push(&s.queue, d)
	h := Handle(d.seq)
	s.byID[h] = d
	return h
}

// Cancel removes a pending entry. Returns false if it already fired or was cancelled.
func (s *Scheduler) Cancel(h Handle) bool {
	d, ok := s.byID[h]
	if !ok {
		return false
	}
	delete(s.byID, h)
	heap.Remove(&s.queue, d.index)
	return true
}

// CancelAll drops every pending entry.
func (s *Scheduler) CancelAll() {
	clear(s.queue)
	s.queue = s.queue[:0]
	clear(s.byID)
}

// Poll advances the clock to now and runs every entry that is due.
// Entries scheduled by a callback with zero delay run in the same poll.
// Returns the number of entries run.
func (s *Scheduler) Poll(now float64) int {
	if now > s.now {
		s.now = now
	}
	ran := 0
	for len(s.queue) > 0 && s.queue[0].due <= s.now {
		d := heap.Pop(&s.queue).(*deferred)
		delete(s.byID, Handle(d.seq))
		d.fn()
		ran++
	}
	return ran
}

// Reset cancels everything and rewinds the clock to zero.
func (s *Scheduler) Reset() {
	s.CancelAll()
	s.now = 0
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Now returns the scheduler clock.
func (s *Scheduler) Now() float64 {
	return s.now
}
