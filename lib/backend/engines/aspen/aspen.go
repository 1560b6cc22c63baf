package aspen

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/backend/engines/aspen/internal"
	"github.com/ValentinKolb/aKV/lib/backend/util"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("backend")

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for backend behavior and structure
const (
	magicNum     = "ASPENDB\x00" // File format identifier
	aspenVersion = 1             // Backend format version
)

func init() {
	// Register the composite value types so documents survive gob save/load.
	gob.Register(map[string]backend.Value{})
	gob.Register([]backend.Value{})
}

// --------------------------------------------------------------------------
// Core Aspen backend structure
// --------------------------------------------------------------------------

// aspenImpl implements an in-memory document backend with sharded data
type aspenImpl struct {
	numShards  int               // Number of shards
	seed       uint64            // Seed for hash function
	shards     []*internal.Shard // Array of shards
	instanceID string            // Unique ID of this backend instance
}

// Options configures the aspenImpl behavior during initialization
type Options struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default aspenImpl options
func DefaultOptions() *Options {
	return &Options{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewAspenBackend creates a new aspen backend instance with the specified
// options (optional).
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func NewAspenBackend(opts *Options) backend.KVBackend {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards <= 0 {
		opts.NumShards = runtime.NumCPU()
	}

	// Generate a seed for this aspenImpl instance
	seed := util.GenerateSeed()
	hasher := createIdentityHasher()

	// Create shards
	shards := make([]*internal.Shard, opts.NumShards)
	for i := 0; i < opts.NumShards; i++ {
		shards[i] = internal.NewShard(hasher)
	}

	return &aspenImpl{
		numShards:  opts.NumShards,
		seed:       seed,
		shards:     shards,
		instanceID: uuid.NewString(),
	}
}

// --------------------------------------------------------------------------
// Hash Helper Functions
// --------------------------------------------------------------------------

// StringToUint64 converts a string to a util.UintKey with hashing
// and applies the aspenImpl seed to ensure uniqueness between instances
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (a *aspenImpl) StringToUint64(s string) util.UintKey {
	return util.HashString(s, a.seed)
}

// createIdentityHasher creates a hash function that combines a key with a seed
func createIdentityHasher() func(util.UintKey, uint64) uint64 {
	return func(key util.UintKey, mapSeed uint64) uint64 {
		return uint64(key) ^ mapSeed
	}
}

// --------------------------------------------------------------------------
// Core KVBackend Interface Methods - Structured Values
// --------------------------------------------------------------------------

// Has checks if a key exists in the backend, regardless of whether it holds
// a structured document or a binary payload.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (a *aspenImpl) Has(key string) (bool, error) {
	intKey := a.StringToUint64(key)
	shard := internal.GetShard(intKey, a.shards)

	var ok bool
	shard.Data.Compute(intKey, func(e internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return e, true // delete=true so the missing key is not created
		}
		ok = !e.Empty()
		return e, false
	})

	return ok, nil
}

// GetPath retrieves the value at a key path. The returned value is a deep
// copy of the stored data and therefore safe to use and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (a *aspenImpl) GetPath(path []string) (backend.Value, bool, error) {
	if len(path) == 0 {
		return nil, false, fmt.Errorf("aspen: empty key path")
	}

	intKey := a.StringToUint64(path[0])
	shard := internal.GetShard(intKey, a.shards)

	var (
		value  backend.Value
		loaded bool
	)

	// Compute gives an atomic view of the entry while we copy out of it
	shard.Data.Compute(intKey, func(e internal.Entry, exists bool) (internal.Entry, bool) {
		if !exists {
			return e, true // delete=true so the missing key is not created
		}
		if !e.HasDoc {
			return e, false
		}
		if v, ok := backend.GetIn(e.Doc, path[1:]); ok {
			value = backend.DeepCopy(v)
			loaded = true
		}
		return e, false
	})

	return value, loaded, nil
}

// UpdateIn atomically applies fn to the value at a key path and stores the
// result, creating missing intermediate containers along the path. The
// transform only ever sees a copy of the stored data.
//
// Thread-safety: Atomic per root key; concurrent UpdateIn calls for the same
// root key are serialized by the underlying concurrent map.
func (a *aspenImpl) UpdateIn(path []string, fn backend.TransformFunc) (backend.Value, backend.Value, error) {
	if len(path) == 0 {
		return nil, nil, fmt.Errorf("aspen: empty key path")
	}

	intKey := a.StringToUint64(path[0])
	shard := internal.GetShard(intKey, a.shards)

	var oldVal, newVal backend.Value

	shard.Data.Compute(intKey, func(e internal.Entry, exists bool) (internal.Entry, bool) {
		nested := path[1:]

		var (
			old       backend.Value
			oldLoaded bool
		)
		if exists && e.HasDoc {
			if v, ok := backend.GetIn(e.Doc, nested); ok {
				old = backend.DeepCopy(v)
				oldLoaded = true
			}
		}

		// fn receives its own copy: a transform that mutates its argument in
		// place must not corrupt the reported pre-transform value
		next := fn(backend.DeepCopy(old), oldLoaded)

		oldVal = old
		newVal = backend.DeepCopy(next)

		e.Doc = backend.AssocIn(e.Doc, nested, backend.DeepCopy(next))
		e.HasDoc = true
		return e, false
	})

	return oldVal, newVal, nil
}

// --------------------------------------------------------------------------
// Core KVBackend Interface Methods - Binary Payloads
// --------------------------------------------------------------------------

// BGet invokes fn with a reader over the binary payload stored for key.
// fn is called on a copy of the payload, outside of the shard's internal
// locking, so it may take as long as it needs.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (a *aspenImpl) BGet(key string, fn func(r io.Reader) error) error {
	intKey := a.StringToUint64(key)
	shard := internal.GetShard(intKey, a.shards)

	var (
		blob  []byte
		found bool
	)
	shard.Data.Compute(intKey, func(e internal.Entry, exists bool) (internal.Entry, bool) {
		if !exists {
			return e, true
		}
		if e.HasBlob {
			blob = make([]byte, len(e.Blob))
			copy(blob, e.Blob)
			found = true
		}
		return e, false
	})

	if !found {
		return fmt.Errorf("aspen: no binary payload for key %q", key)
	}
	return fn(bytes.NewReader(blob))
}

// BAssoc stores the binary payload read from r under key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (a *aspenImpl) BAssoc(key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("aspen: failed to read binary payload: %w", err)
	}

	intKey := a.StringToUint64(key)
	shard := internal.GetShard(intKey, a.shards)

	shard.Data.Compute(intKey, func(e internal.Entry, _ bool) (internal.Entry, bool) {
		e.Blob = data
		e.HasBlob = true
		return e, false
	})

	return nil
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// savedEntry is the on-disk representation of a single key's entry
type savedEntry struct {
	Key     uint64
	Doc     backend.Value
	HasDoc  bool
	Blob    []byte
	HasBlob bool
}

// Save persists the backend to the writer.
//
// Thread-safety: This function takes per-shard snapshots without blocking
// modifications; concurrent reading and writing is allowed during Save.
func (a *aspenImpl) Save(w io.Writer) error {
	// Use a buffered writer for better performance
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	// Collect snapshots of all shards
	var entries []savedEntry
	for _, shard := range a.shards {
		shard.Data.Range(func(key util.UintKey, entry internal.Entry) bool {
			if entry.Empty() {
				return true
			}
			entries = append(entries, savedEntry{
				Key:     uint64(key),
				Doc:     backend.DeepCopy(entry.Doc),
				HasDoc:  entry.HasDoc,
				Blob:    append([]byte(nil), entry.Blob...),
				HasBlob: entry.HasBlob,
			})
			return true
		})
	}

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}

	// Write format version
	if err := binary.Write(bw, binary.LittleEndian, uint8(aspenVersion)); err != nil {
		return err
	}

	// Write seed
	if err := binary.Write(bw, binary.LittleEndian, a.seed); err != nil {
		return err
	}

	// Write total entry count
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}

	// Write entries as one gob stream
	enc := gob.NewEncoder(bw)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}

	// Flush buffer to ensure all data is written
	if err := bw.Flush(); err != nil {
		return err
	}

	Logger.Infof("saved snapshot (%d entries)", len(entries))
	return nil
}

// Load restores a backend from the reader
//
// Thread-safety: This function is not thread-safe and should not be called
// concurrently with any other operation.
func (a *aspenImpl) Load(r io.Reader) error {
	// Use a buffered reader for better performance
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if int(version) != aspenVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, aspenVersion)
	}

	// Read seed
	var seed uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return err
	}

	// Read entry count
	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return err
	}

	// Recreate empty shards with the loaded seed
	hasher := createIdentityHasher()
	shards := make([]*internal.Shard, a.numShards)
	for i := 0; i < a.numShards; i++ {
		shards[i] = internal.NewShard(hasher)
	}
	a.shards = shards
	a.seed = seed

	// Read entries
	dec := gob.NewDecoder(br)
	for i := uint64(0); i < count; i++ {
		var e savedEntry
		if err := dec.Decode(&e); err != nil {
			return err
		}

		key := util.UintKey(e.Key)
		shard := internal.GetShard(key, a.shards)
		shard.Data.Store(key, internal.Entry{
			Doc:     e.Doc,
			HasDoc:  e.HasDoc,
			Blob:    e.Blob,
			HasBlob: e.HasBlob,
		})
	}

	Logger.Infof("restored snapshot (%d entries)", count)
	return nil
}

// --------------------------------------------------------------------------
// KVBackend Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// approxSize gives a rough byte-size estimate for a stored value
func approxSize(v backend.Value) int {
	switch t := v.(type) {
	case map[string]backend.Value:
		size := 0
		for k, e := range t {
			size += len(k) + approxSize(e)
		}
		return size
	case []backend.Value:
		size := 0
		for _, e := range t {
			size += approxSize(e)
		}
		return size
	case []byte:
		return len(t)
	case string:
		return len(t)
	default:
		return 8
	}
}

// GetInfo returns statistics about the backend
func (a *aspenImpl) GetInfo() backend.BackendInfo {

	// create a size histogram for the info
	histogram := util.NewSizeHistogram()
	samplesPerShard := 100
	wg := sync.WaitGroup{}
	wg.Add(len(a.shards))

	// more stats
	mu := sync.Mutex{}
	shardSizes := make([]float64, len(a.shards))

	// concurrently collect samples from all shards
	for shardIndex, shard := range a.shards {
		go func(i int, s *internal.Shard) {
			defer wg.Done()
			count := 0
			s.Data.Range(func(key util.UintKey, entry internal.Entry) bool {
				histogram.AddSample(approxSize(entry.Doc) + len(entry.Blob))

				// only sample a few entries per shard
				count++
				return count < samplesPerShard
			})

			mu.Lock()
			defer mu.Unlock()
			shardSizes[i] = float64(s.Data.Size())
		}(shardIndex, shard)
	}

	// wait for all shards to finish
	wg.Wait()

	// calculate size
	entryOverhead := 24 // key, flags, map slot
	medianSize := histogram.MedianEstimate() + entryOverhead
	avgSize := histogram.AverageSize() + entryOverhead

	// weighted estimate (60% median, 40% average)
	sizeBytes := (medianSize*60 + avgSize*40) / 100

	// Metadata for this specific backend implementation
	meta := &struct {
		InstanceID        string                 `json:"instance_id"`
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		Info              string                 `json:"info"`
	}{
		InstanceID:        a.instanceID,
		ShardCount:        len(a.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		Info:              "All values (including SizeBytes) are estimates and may vary depending on the backend state.",
	}

	// features
	supportedFeatures := []backend.Feature{
		backend.FeatureHas, backend.FeatureGetPath, backend.FeatureUpdateIn,
		backend.FeatureBGet, backend.FeatureBAssoc,
		backend.FeatureSave, backend.FeatureLoad,
	}

	return backend.BackendInfo{
		SizeBytes:         sizeBytes,
		BackendType:       backend.ImplAspen,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific
// KVBackend feature
func (a *aspenImpl) SupportsFeature(feature backend.Feature) bool {
	supportedFeatures := backend.FeatureHas |
		backend.FeatureGetPath |
		backend.FeatureUpdateIn |
		backend.FeatureBGet |
		backend.FeatureBAssoc |
		backend.FeatureSave |
		backend.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close releases the backend. The aspen engine holds no external resources.
func (a *aspenImpl) Close() error {
	return nil
}
