// Package dsq implements the dispatch queues a host hands to scheduling
// policies: FIFO queues and queues ordered by virtual time.
package dsq

import (
	"errors"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/trees/redblacktree"

	"dsqsched/internal/sched"
)

var (
	// ErrMixedOrdering is returned when FIFO and vtime inserts hit one queue.
	ErrMixedOrdering = errors.New("dsq: mixed fifo and vtime insertion")
	// ErrDuplicate is returned when a task is inserted while already queued.
	ErrDuplicate = errors.New("dsq: task already queued")
)

type ordering int

const (
	orderNone ordering = iota
	orderFIFO
	orderVTime
)

// Queue is a dispatch queue safe for concurrent use. A queue takes its
// ordering from the first insert and keeps it until it drains.
type Queue struct {
	mu       sync.Mutex
	id       sched.DSQID
	capacity int // 0 = unbounded
	order    ordering
	seq      uint64

	fifo *linkedhashmap.Map // TaskID -> *sched.Task, insertion order
	tree *redblacktree.Tree // nodeKey -> *sched.Task, ascending vtime
	keys map[sched.TaskID]nodeKey
}

// New creates an empty queue. capacity <= 0 means unbounded.
func New(id sched.DSQID, capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{
		id:       id,
		capacity: capacity,
		fifo:     linkedhashmap.New(),
		tree:     redblacktree.NewWith(cmp),
		keys:     make(map[sched.TaskID]nodeKey),
	}
}

// ID returns the queue ID.
func (q *Queue) ID() sched.DSQID { return q.id }

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *Queue) lenLocked() int {
	if q.order == orderVTime {
		return q.tree.Size()
	}
	return q.fifo.Size()
}

// Insert appends t and grants it slice ns.
func (q *Queue) Insert(t *sched.Task, slice uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.admitLocked(t, orderFIFO); err != nil {
		return err
	}
	t.Slice = slice
	q.fifo.Put(t.ID, t)
	return nil
}

// InsertVTime inserts t at its vtime position and grants it slice ns.
// Tasks with equal vtime keep insertion order.
func (q *Queue) InsertVTime(t *sched.Task, slice, vtime uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.admitLocked(t, orderVTime); err != nil {
		return err
	}
	t.Slice = slice
	t.VTime = vtime
	q.seq++
	key := nodeKey{vtime: vtime, seq: q.seq}
	q.tree.Put(key, t)
	q.keys[t.ID] = key
	return nil
}

func (q *Queue) admitLocked(t *sched.Task, want ordering) error {
	if q.lenLocked() == 0 {
		q.order = want
	} else if q.order != want {
		return fmt.Errorf("dsq %d: %w", q.id, ErrMixedOrdering)
	}
	if q.containsLocked(t.ID) {
		return fmt.Errorf("dsq %d: task %d: %w", q.id, t.ID, ErrDuplicate)
	}
	if q.capacity > 0 && q.lenLocked() >= q.capacity {
		return fmt.Errorf("dsq %d: %w", q.id, sched.ErrQueueFull)
	}
	return nil
}

func (q *Queue) containsLocked(id sched.TaskID) bool {
	if _, ok := q.keys[id]; ok {
		return true
	}
	_, ok := q.fifo.Get(id)
	return ok
}

// Contains reports whether t is queued.
func (q *Queue) Contains(t *sched.Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.containsLocked(t.ID)
}

// Snapshot returns the queued tasks in dispatch order.
func (q *Queue) Snapshot() []*sched.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*sched.Task, 0, q.lenLocked())
	if q.order == orderVTime {
		it := q.tree.Iterator()
		for it.Next() {
			out = append(out, it.Value().(*sched.Task))
		}
		return out
	}
	it := q.fifo.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*sched.Task))
	}
	return out
}

// PopFirst removes and returns the first task in dispatch order, or nil.
func (q *Queue) PopFirst() *sched.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.order == orderVTime {
		node := q.tree.Left()
		if node == nil {
			return nil
		}
		t := node.Value.(*sched.Task)
		q.tree.Remove(node.Key)
		delete(q.keys, t.ID)
		return t
	}
	it := q.fifo.Iterator()
	if !it.First() {
		return nil
	}
	t := it.Value().(*sched.Task)
	q.fifo.Remove(it.Key())
	return t
}

// Remove takes t out of the queue. It returns false if t was not queued,
// which is how a lost claim shows up.
func (q *Queue) Remove(t *sched.Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if key, ok := q.keys[t.ID]; ok {
		q.tree.Remove(key)
		delete(q.keys, t.ID)
		return true
	}
	if _, ok := q.fifo.Get(t.ID); ok {
		q.fifo.Remove(t.ID)
		return true
	}
	return false
}

// nodeKey orders the vtime tree: vtime first, compared across wraparound,
// then insertion sequence.
type nodeKey struct {
	vtime uint64
	seq   uint64
}

func cmp(a, b any) int {
	ka, kb := a.(nodeKey), b.(nodeKey)
	switch {
	case sched.Before(ka.vtime, kb.vtime):
		return -1
	case sched.After(ka.vtime, kb.vtime):
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}
