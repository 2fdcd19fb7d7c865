// Package forum implements the forum materialization feature.
//
// It ingests the ordered event stream of a forum ledger and maintains a
// derived, queryable model whose aggregates stay consistent with the ledger
// after every event: post/reply/comment counters per community, tag and
// user, per-(user, community) rating caches, per-language translation
// children, denormalized search blobs and the documentation post set of each
// community.
//
// # Engine
//
// The Engine is driven strictly one event at a time by a single worker. Each
// handler loads-or-materializes its target entity, re-pulls ledger truth
// through the chain.Client accessor, applies set and tree diffs from
// core/diff, adjusts counters through single-call-site helpers and persists
// through the store. Every processed event leaves exactly one audit record.
//
// # Components
//
//   - Engine: per-event reconciliation logic and audit recording.
//   - Service: event intake serialization plus the read surface.
//   - Handler: HTTP endpoints for intake and model queries.
//   - Loader: registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST /forum/events : Ingest one event envelope.
//   - GET /forum/posts/:id, /forum/communities/:id, /forum/users/:address
//   - GET /forum/history/tx/:hash, /forum/history/entity/:id
package forum
