/*
Package codec implements the canonical binary encoding for store values.

The encoding serves two purposes:

1. Content addressing: ContentID hashes the canonical form with SHA-256, so
structurally equal values always produce the same identifier. This is what
makes journal entries immutable and idempotent.

2. Wire transfer: Marshal/Unmarshal move values between client and server
without losing type information (JSON, for example, cannot distinguish
int64 from float64 or []byte from string).

Determinism is achieved by encoding map entries in ascending key order and
by using fixed-width little-endian integers throughout. The format is
versionless on purpose: identifiers derived from it are persisted, so any
change to the encoding would be a breaking change to stored data.
*/
package codec
