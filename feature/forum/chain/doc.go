// Package chain defines the authoritative state accessor: typed, read-only
// getters over ledger truth.
//
// The actual wire protocol and ABI decoding live outside this repository; the
// engine consumes only the Client interface. The Snapshot implementation backs
// the replay command and tests with a frozen JSON state document.
package chain
