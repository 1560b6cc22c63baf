// Package backend defines the physical-storage capability contract consumed
// by the consistency layer in lib/store. A backend persists opaque values
// addressed by string keys, supports nested-path reads and atomic
// read-transform-write on structured values, and stores binary payloads.
//
// The package focuses on:
//   - A unified interface (KVBackend) for storage operations across different
//     physical backends (in-memory, file, remote)
//   - Pluggable backend architecture through the BackendFactory pattern
//
// Key Components:
//
//   - KVBackend Interface: The core abstraction defining raw accessor
//     operations. All implementations share this common interface, allowing
//     the consistency layer to switch between physical backends without code
//     changes. A backend only guarantees atomicity of a single UpdateIn call
//     per root key; cross-call critical sections are provided by the locking
//     layer in lib/store.
//
//   - Feature System: Bit-flag capability detection so the layer above can
//     reject unsupported operations with a typed error instead of failing in
//     an undefined way.
//
//   - BackendFactory: A function type that abstracts the creation of
//     KVBackend instances, providing dependency injection and flexible
//     configuration of storage backends.
//
// Implementations:
//
//	The aspen engine (lib/backend/engines/aspen) is the in-memory reference
//	implementation: a sharded, concurrently accessible document store with
//	optional binary save/load persistence.
package backend
