// Package metrics records content loading, rendering and HTTP response
// metrics.
//
// Components take a Recorder. NoopRecorder is the default so callers never
// nil-check; the serve command swaps in a PrometheusRecorder and exposes it
// through HTTPHandler.
package metrics
