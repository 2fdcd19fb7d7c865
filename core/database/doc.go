// Package database provides the GORM connection used by the entity store.
//
// MySQL is the deployment driver. The sqlite driver exists so the full engine
// can run against an in-memory database in tests and local replays without a
// server.
package database
