/*
Package testing provides a shared conformance suite for IStore
implementations.

The suite exercises the full store contract: locked reads and updates,
nested key paths, journal append/read semantics including the journal tag
check and content addressing, binary passthrough, and the concurrency
guarantees (serialized updates per key, independence across keys).

Stores that cannot execute transform closures locally, such as the RPC
client store, report RetCUnsupportedOperation for Update; the suite detects
this and skips the update-specific tests so it can run against local and
remote implementations alike.
*/
package testing
