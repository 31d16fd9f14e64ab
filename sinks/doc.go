// Package sinks implements concrete progress consumers: Prometheus
// collectors, the in-memory status registry, and structured logging. Each
// sink satisfies the hub.Sink interface and is safe for repeated
// Consume/Close cycles.
package sinks
