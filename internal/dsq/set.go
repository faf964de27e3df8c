package dsq

import (
	"fmt"
	"sync"

	"dsqsched/internal/sched"
)

// Set holds the queues created by a policy, keyed by ID.
type Set struct {
	mu       sync.RWMutex
	capacity int
	queues   map[sched.DSQID]*Queue
}

// NewSet creates an empty set. New queues get the given capacity.
func NewSet(capacity int) *Set {
	return &Set{
		capacity: capacity,
		queues:   make(map[sched.DSQID]*Queue),
	}
}

// Create adds an empty queue.
func (s *Set) Create(id sched.DSQID) (*Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queues[id]; ok {
		return nil, fmt.Errorf("dsq %d: %w", id, sched.ErrQueueExists)
	}
	q := New(id, s.capacity)
	s.queues[id] = q
	return q, nil
}

// Get returns the queue or an error wrapping sched.ErrNoQueue.
func (s *Set) Get(id sched.DSQID) (*Queue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queues[id]
	if !ok {
		return nil, fmt.Errorf("dsq %d: %w", id, sched.ErrNoQueue)
	}
	return q, nil
}

// Len returns the length of queue id, or 0 if it does not exist.
func (s *Set) Len(id sched.DSQID) int {
	q, err := s.Get(id)
	if err != nil {
		return 0
	}
	return q.Len()
}

// Reset drops every queue.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues = make(map[sched.DSQID]*Queue)
}
