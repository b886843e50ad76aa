// Package session owns the single inference session of the process.
//
//   - types.go: State, Options, Snapshot.
//   - engine.go: Engine/Session interfaces consumed from the native runtime.
//   - manager.go: Manager lifecycle (Initialize, Generate, Close).
//   - errors.go: typed errors and Is* helpers.
//
// Build tags and runtimes:
//
//   - In-process llama: go-llama.cpp engine, enabled with `-tags=llama`.
//     Files: engine_llama.go, llama_cgo.go.
//   - Without the tag, engine_llama_stub.go provides an engine whose Create
//     fails with a dependency error, keeping default builds CGO-free.
//
// Mutating calls (Initialize, Generate, Close) are meant to run on one
// worker lane. The Manager still guards its fields with a RWMutex so that
// status readers on other goroutines see a consistent snapshot, and it
// rejects Initialize while another Initialize is in progress.
package session
