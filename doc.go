// Package dispatch provides a fork/join task scheduler with work stealing,
// continuations, parent/child task graphs and a main-thread affinity lane.
//
// Client code constructs task values, submits them for asynchronous
// execution on a pool of workers, and composes them through parent/child
// spawning and continuation links. The library balances load at
// submission through a pluggable placement policy, redistributes work
// dynamically via stealing, and signals completion so producers can wait
// or chain further work.
//
// # Quick Start
//
// Initialize the global dispatcher at application startup:
//
//	dispatch.SetWorkerCount(4)
//	dispatch.Initialize()
//	defer dispatch.Shutdown()
//
// Submit work and wait for it:
//
//	task := dispatch.NewTask(func() {
//		// Your code here
//	})
//	dispatch.Submit(task)
//	task.Wait()
//
// # Key Concepts
//
// Task: the unit of work. A task carries a reference count that starts at
// one and rises by one per spawned child; it completes when the count
// reaches zero, which is when its payload and every descendant have
// finished. At that moment its continuation (if any) is scheduled and
// waiters unblock.
//
// Spawn: inside an executing payload, dispatch.Spawn(child) links the
// child to the running task and pushes it onto the executing worker's
// front, so fresh dependents run in LIFO order with good locality.
//
// Continuation: task.SetContinuation(next) schedules next as soon as task
// completes, on whichever worker observed the completion.
//
// Affinity: tasks tagged with AffinityMain execute only on the main
// goroutine, inside dispatch.ProcessMain.
//
// # Execution model
//
// Each stealable worker runs a steal loop on its own goroutine: take from
// the front of the local deque; when empty, back off briefly and take
// from a random victim's front. Submissions land at the back, so local
// and stolen work always drains first.
//
// # Example
//
//	func main() {
//		dispatch.Initialize()
//		defer dispatch.Shutdown()
//
//		var total int
//		sum := dispatch.NewResultTask(computeSum, &total)
//		report := dispatch.NewTask(func() { fmt.Println(total) })
//		sum.SetContinuation(report)
//
//		dispatch.Submit(sum)
//		report.Wait()
//	}
package dispatch
