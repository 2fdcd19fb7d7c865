// Package server holds the configuration of the HTTP surface.
//
// The API itself is read-only: the indexer exposes materialized entities and
// the audit trail, it never mutates state through HTTP. Event intake happens
// through the engine's typed method surface (see feature/forum).
package server
