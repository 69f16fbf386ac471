package core

// =============================================================================
// Callable adapters: build Tasks from plain functions
// =============================================================================

// funcPayload adapts a niladic function into a Payload.
type funcPayload struct {
	fn func()
}

func (p *funcPayload) Execute() { p.fn() }

// NewTask builds a task that executes fn and discards any result. This is
// the common way to create tasks:
//
//	t := core.NewTask(func() { counter.Add(1) })
func NewTask(fn func()) *Task {
	return NewPayloadTask(&funcPayload{fn: fn})
}

// NewResultTask builds a task that executes fn and stores its result
// through out. The write to *out happens-before the task's completion, so
// reading *out after Wait returns is safe:
//
//	var sum int
//	t := core.NewResultTask(computeSum, &sum)
//	... submit, t.Wait() ...
//	use(sum)
func NewResultTask[T any](fn func() T, out *T) *Task {
	return NewTask(func() {
		*out = fn()
	})
}
