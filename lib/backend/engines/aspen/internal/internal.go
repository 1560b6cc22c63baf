package internal

import (
	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/backend/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Entry Type (per-key storage slot)
// --------------------------------------------------------------------------

// Entry stores what is associated with a single key: a structured document,
// a binary payload, or both. The two sides never interleave because the
// consistency layer serializes all access to a key, but they share the key
// namespace so existence checks see either one.
type Entry struct {
	Doc     backend.Value // Structured document (nil is a valid document)
	HasDoc  bool          // Whether a document is present
	Blob    []byte        // Binary payload
	HasBlob bool          // Whether a binary payload is present
}

// Empty reports whether the entry holds neither a document nor a payload.
func (e Entry) Empty() bool {
	return !e.HasDoc && !e.HasBlob
}

// --------------------------------------------------------------------------
// Shard Type (partition of the backend)
// --------------------------------------------------------------------------

// Shard represents a partition of the backend.
// Each shard has its own independent concurrent map.
type Shard struct {
	Data *xsync.MapOf[util.UintKey, Entry] // Map of active key-value entries
}

// NewShard creates a new shard with the provided hash function
func NewShard(hasher func(util.UintKey, uint64) uint64) *Shard {
	return &Shard{
		Data: xsync.NewMapOfWithHasher[util.UintKey, Entry](hasher),
	}
}

// GetShard returns the appropriate shard for a given key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetShard[T any](key util.UintKey, shards []*T) *T {
	// Shift right by 7 bits to use higher-quality bits for distribution
	shiftedKey := uint64(key) >> 7
	shardPos := shiftedKey % uint64(len(shards))
	return shards[shardPos]
}
