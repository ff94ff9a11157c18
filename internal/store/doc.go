// Package store records simulation traces in an in-memory SQLite database.
//
// The store holds one row per run and one row per delivered pulse:
//   - Runs: run ID, network hash, canonical network, engine and trace versions
//   - Events: (run_id, seq) keyed pulses with press index, endpoints and level
//
// # Patterns
//
// Logical ordering:
//   - All ordering uses seq INTEGER (the engine's logical clock), never
//     timestamps
//   - Every event query ends in ORDER BY seq ASC, so results are identical
//     across replays
//
// Idempotent writes:
//   - Duplicate (run_id, seq) inserts are ignored
//
// # Database Configuration
//
//   - Always opened as ":memory:"; nothing is written to disk
//   - A single connection, since each connection of an in-memory database
//     sees its own empty database
//   - foreign_keys=ON: events must reference a recorded run
//
// Network hashes are computed by ir.NetworkHash using canonical JSON and
// SHA-256 with domain separation.
package store
