// Package storage persists the session token between runs.
//
// A TokenStore scopes every key to an origin (the normalized backend base
// URL) and delegates the bytes to a Backend:
//
//   - memory: process-local map, used by tests and ephemeral runs
//   - file: one file per key under the store directory, shared by every
//     process on the host and able to publish change notifications
//   - badger: embedded LSM store with periodic value-log GC
//   - redis: shared store for several machines
//
// Values can be sealed at rest with an adaptive AEAD cipher. The key of the
// entry is bound as additional data so a sealed token cannot be replayed
// under another origin.
package storage
