// Package warmup provides bounded-retry initialization of long-lived client
// handles such as confidential-compute SDK instances.
//
// The central type is Initializer[C, T], which bootstraps an [Engine] and
// constructs an instance from a client configuration, retrying the pair with
// a fixed or computed delay. Each activation exposes a tri-state [Snapshot]
// (loading, ready, degraded) to its observer and can be deactivated at any
// point without further state changes. Initializers report health for
// readiness probes through a [Registry].
package warmup
