// Package progress provides the event primitives, fan-out, and emitter
// interfaces the sync pipeline uses to report what it is doing. Emission is
// synchronous because the pipeline is single-threaded; events fan out to
// pluggable sinks such as the structured log, Prometheus collectors, and the
// in-memory tracker the status server reads.
package progress
