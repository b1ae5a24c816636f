// Package store provides the record stores behind the ripple ledger.
//
// Two backends implement ledger.Store:
//   - Store: SQLite-backed durable storage (this file's Open)
//   - Memory: in-process maps, used by tests and the scenario harness
//
// Both hold the same five record families: profiles, campaigns, donations,
// balances (wallets and vaults, keyed by address) and the append-only event
// log.
//
// # Transactions
//
// Update runs a read-write transaction; View a read-only one. A callback
// error aborts the transaction and none of its writes become visible.
//
// # Deterministic Query Results
//
// List queries carry a total order:
//   - donations: ORDER BY timestamp ASC, id ASC COLLATE BINARY
//   - profiles: ORDER BY total_donations DESC, owner ASC COLLATE BINARY
//   - events: ORDER BY seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Amounts are stored as 20-digit zero-padded TEXT so that SQL ordering
// matches numeric ordering over the whole uint64 range.
package store
