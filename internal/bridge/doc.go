// Package bridge is the call surface exposed to host transports. Each call
// validates its parameters on the caller's goroutine and rejects missing ones
// immediately; mutating work (download, init, generate) is then submitted to
// the worker lane and answered through a lane.Future. checkModel is
// read-only and answered inline.
//
//   - bridge.go: Bridge type, constructor, Ready/Status/ListModels.
//   - calls.go: DownloadModel, CheckModel, InitModel, GenerateResponse.
//   - errors.go: ValidationError and the error-to-status mapping shared by transports.
//   - metrics.go: prometheus collectors for bridge calls and lane depth.
package bridge
