// Package aspen implements an in-memory KVBackend optimized for concurrent
// access. It is the reference physical backend for the consistency layer in
// lib/store.
//
// Architecture:
//
//	The backend is sharded: string keys are hashed (FNV-1a with a per-instance
//	seed) to uint64 keys, which select one of NumShards partitions. Each shard
//	is a xsync.MapOf concurrent map, which itself shards keys internally, so
//	contention on unrelated keys is negligible.
//
//	Each key's entry can hold a structured document, a binary payload, or
//	both. Structured values live in the JSON-like universe described in the
//	backend package; nested key paths are resolved inside the entry's
//	document, and UpdateIn creates missing intermediate map containers along
//	the path.
//
// Atomicity:
//
//	A single UpdateIn call is atomic per root key: the read-transform-write
//	runs inside the concurrent map's Compute for that key. This is the only
//	atomicity the backend promises - multi-call critical sections are the
//	responsibility of the locking layer in lib/store.
//
// Aliasing:
//
//	All values are deep-copied on the way in and on the way out. Callers can
//	freely modify anything they got from or passed to the backend.
//
// Persistence:
//
//	Save writes a snapshot (magic header, format version, hash seed, and a
//	gob stream of entries) to an io.Writer; Load restores it. Snapshots taken
//	with Save can only be loaded by a backend configured with the same shard
//	count semantics, since keys are persisted in hashed form.
package aspen
