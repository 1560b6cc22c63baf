// Package store provides a high-level interface for consistency-aware
// key-value operations: locked read/update/write on nested key paths,
// content-addressed append-only journals, and binary payload passthrough.
// It serves as an abstraction layer over the lower-level backend.KVBackend
// implementations, adding per-key critical sections and standardized error
// reporting.
//
// The package focuses on:
//   - A unified interface (IStore) for document, journal and binary operations
//   - Pluggable storage backend architecture through backend.BackendFactory
//   - Per-key serialization so concurrent operations on the same key never
//     interleave while distinct keys proceed in parallel
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for
//     interacting with the store. All implementations share this common
//     interface, allowing applications to switch between a local store and a
//     remote client without code changes. The interface methods return custom
//     Error types that provide detailed information about operation results.
//
//   - Error System: A structured error reporting mechanism using typed error
//     codes and descriptive messages. RetCNotAJournal signals a semantic
//     violation (appending to or reading a key that holds ordinary data),
//     RetCBackendFailure signals a fault in the storage layer itself.
//
// Implementations:
//
//	The package includes one local implementation of the IStore interface:
//
//	- Consistent Store (cstore): Combines a lockmgr.ILockManager with a
//	  backend.KVBackend. Every operation runs inside the critical section of
//	  its root key, which is what makes multi-step journal appends and
//	  read-modify-write updates atomic with respect to each other.
//	  Available in the "github.com/ValentinKolb/aKV/lib/store/cstore" package.
//
//	A second, remote implementation lives in the rpc/client package and
//	speaks to an akv server over a transport; it implements the same
//	interface minus Update, which cannot travel over the wire because the
//	transform is an arbitrary closure.
package store
