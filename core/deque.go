package core

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
)

// taskDeque is the worker's pending-task container. It is not safe for
// concurrent use on its own; every access goes through the owning worker's
// mutex (thieves acquire that same mutex via lockInOrder).
//
// Discipline: pushFront is used by the owning worker for spawned children
// and continuations, pushBack by external submission, popFront by both the
// owner and thieves. Owner and thieves deliberately share the front end;
// see the worker documentation.
type taskDeque struct {
	list *doublylinkedlist.List
}

func newTaskDeque() *taskDeque {
	return &taskDeque{list: doublylinkedlist.New()}
}

// pushFront prepends a task. Used for spawned children and continuations,
// so freshly produced dependents run in LIFO order.
func (q *taskDeque) pushFront(t *Task) {
	q.list.Prepend(t)
}

// pushBack appends a task. Used only for external submissions, which are
// observed after local and stolen work drains from the front.
func (q *taskDeque) pushBack(t *Task) {
	q.list.Add(t)
}

// popFront removes and returns the front task, or nil if the deque is
// empty.
func (q *taskDeque) popFront() *Task {
	v, ok := q.list.Get(0)
	if !ok {
		return nil
	}
	q.list.Remove(0)
	return v.(*Task)
}

func (q *taskDeque) len() int {
	return q.list.Size()
}

func (q *taskDeque) empty() bool {
	return q.list.Empty()
}
