// Package hub bridges the synchronous taskmeter core to asynchronous
// consumers. A Recorder observes a Stack and converts lifecycle transitions
// into Events; the Hub batches those events on a background goroutine and
// fans them out to pluggable sinks such as Prometheus collectors, the
// in-memory registry, or structured logging. Emit never blocks the thread
// driving the tasks.
package hub
