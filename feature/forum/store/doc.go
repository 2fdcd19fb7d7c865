// Package store implements the entity store over GORM.
//
// Absent records are (nil, nil), never errors, so reconcilers can branch into
// lazy materialization without error inspection. There are no transactions:
// events are processed strictly one at a time by a single worker, so last
// write wins within one event is the only consistency the engine needs.
package store
