// Package lane provides a single-worker execution queue. Work submitted to a
// Lane runs strictly one item at a time, in submission order, on a goroutine
// owned by the Lane. Each submission returns a Future that is completed
// exactly once with the task's value or error.
//
//   - lane.go: Lane type, worker loop, Close.
//   - future.go: Future[T] and its completion helpers.
//   - errors.go: ErrClosed and PanicError.
//
// A panic inside a task is recovered and delivered to that task's Future as a
// *PanicError; the worker keeps draining the queue.
package lane
