// Package cstore provides the local, consistency-aware implementation of the
// store.IStore interface. It layers per-key critical sections (lib/lockmgr)
// over a pluggable storage backend (lib/backend) and implements
// content-addressed append-only journals on top of plain document writes.
//
// Concurrency Model:
//
//	Every operation locks the root key of its path (the first path element)
//	for its whole duration. This serializes all operations that touch the
//	same key while keeping distinct keys fully parallel. The locks live in
//	the store instance, not in the backend: two stores over the same backend
//	do not coordinate, so a backend must only ever be wrapped by one store.
//
// Journals:
//
//	A journal is a linked list of immutable entries threaded through the
//	backend. The journal key holds a mutable head cell
//
//	    []Value{TagJournal, <latest entry ID>}
//
//	and each entry is a document {previous, element} stored under its own
//	content-derived ID (SHA-256 over the canonical encoding, see lib/codec).
//	Because IDs derive from content, re-appending an identical element after
//	the same predecessor produces the same entry and is therefore idempotent.
//
//	Append writes the entry before moving the head, so a crash between the
//	two writes leaves an unreferenced entry but never a dangling head.
//	ReadLog takes the lock only to read the head; the chain walk itself is
//	lock-free since entries never change once written. Entries are never
//	garbage collected: a journal only grows.
//
//	Journal operations refuse to touch keys whose value does not carry the
//	journal tag and report store.RetCNotAJournal instead. This keeps plain
//	data and journal data strictly separated even though they share one key
//	namespace.
//
// Thread Safety:
//
//	All methods are safe for concurrent use. Callers must not invoke store
//	operations from inside an Update transform or a BGet reader function on
//	the same key, as the locks are not reentrant.
package cstore
