// Package monitoring provides Prometheus metrics for the playground.
//
// One Metrics collector is created at startup and threaded through the
// server, session manager and WebSocket handler. HTTP traffic is
// recorded by the gin middleware; compile attempts, sessions and
// socket activity are recorded at their call sites. Besides the
// Prometheus exposition endpoint, a bounded window of recent compile
// durations feeds the JSON metrics surface with quantile summaries.
package monitoring
