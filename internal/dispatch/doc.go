// Package dispatch orchestrates registration and execution requests
// end-to-end: program cache lookup and insertion, argument resolution
// against device-qualified remote object ids, asynchronous invocation,
// result publication, and response delivery. Every execution-path failure
// is converted into a single terminal callback invocation; nothing here
// is fatal to the process.
package dispatch
