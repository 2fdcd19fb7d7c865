// Package metrics exposes the Prometheus collectors of the indexer.
//
// Collectors are registered on the default registry at package init and
// served by a dedicated listener (see cmd/start.go), separate from the API
// port so operators can scrape without an API key.
package metrics
