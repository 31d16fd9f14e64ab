// Package taskmeter tracks completion progress of long-running, possibly
// nested, multi-step operations and reports a normalized fraction in [0, 1]
// to registered callbacks as work proceeds. A Stack owns the chain of active
// tasks for one thread of control; a Task blends its own fraction with the
// contribution of nested subtasks; a Calculator converts a step count into a
// fraction using a fixed, weighted, estimated, or custom strategy.
//
// The core is synchronous and single-threaded by design: drive one Stack per
// goroutine. Asynchronous fan-out to metrics, logging, and the HTTP status
// API lives in the hub, sinks, registry, and httpapi subpackages.
package taskmeter
