// Package middleware groups the Fiber middleware of the API surface:
// rayid (request correlation ids) and auth (API key protection).
package middleware
