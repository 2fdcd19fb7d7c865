// Package models defines the derived entities the indexer materializes and
// the composite id types that produce their keys.
//
// Soft deletion is a plain IsDeleted flag, terminal except for the explicit
// restore path which re-validates against the ledger. Deleted records stay in
// the store but are excluded from all active aggregates.
package models
