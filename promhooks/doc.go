// Package promhooks exports warmup initializer lifecycle events as
// Prometheus metrics.
//
// A Collector registers its metric vectors once and hands out warmup.Hooks
// bound to a single initializer name. Combine them with other hooks through
// warmup.MergeHooks.
package promhooks
