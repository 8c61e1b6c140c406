// Package admin exposes a read-only HTTP surface over a running directory
// agent: health, a snapshot of the live registry, and Prometheus metrics.
// Grounded in flashbots-adcnet's api/httpserver package, adapted to
// go-chi/chi/v5 and the DA's own cache instead of a TEE registry.
package admin
