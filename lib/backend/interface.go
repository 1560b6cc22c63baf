package backend

import "io"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplAspen Implementation = "aspen"
)

// Value is the backend-opaque payload associated with a key. Structured
// values are built from the JSON-like universe: nil, bool, int64, float64,
// string, []byte, []Value and map[string]Value. The consistency layer never
// inspects a value beyond what the append-log head cell requires.
type Value = interface{}

// TransformFunc computes the new value for a key (or a nested position
// inside its value) from the old one. loaded is false if no value was
// present, in which case old is nil.
type TransformFunc func(old Value, loaded bool) Value

// Feature represents backend capabilities as bit flags
type Feature uint64

const (
	FeatureHas      Feature = 1 << iota // Support for Has operations
	FeatureGetPath                      // Support for GetPath operations
	FeatureUpdateIn                     // Support for UpdateIn operations
	FeatureBGet                         // Support for BGet operations
	FeatureBAssoc                       // Support for BAssoc operations
	FeatureSave                         // Support for Save operations
	FeatureLoad                         // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureHas:
		return "Has"
	case FeatureGetPath:
		return "GetPath"
	case FeatureUpdateIn:
		return "UpdateIn"
	case FeatureBGet:
		return "BGet"
	case FeatureBAssoc:
		return "BAssoc"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

type BackendInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	BackendType       Implementation `json:"backend_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// BackendFactory is a function type that creates a new backend used by the
// consistency layer. This is used to abstract the creation of the backend
// from the store implementation.
type BackendFactory func() KVBackend

// --------------------------------------------------------------------------
// Backend Interface
// --------------------------------------------------------------------------

// KVBackend is the physical-storage capability contract consumed by the
// consistency layer. It provides raw accessors for structured values
// (addressed by key paths) and binary payloads.
//
// The backend guarantees atomicity of a single UpdateIn call with respect
// to other backend calls on the same root key. It does NOT serialize
// sequences of calls - that is the job of the locking layer above it.
// Implementations can vary in their feature support, which can be queried
// with SupportsFeature.
type KVBackend interface {

	// --------------------------------------------------------------------------
	// Structured Value Operations
	// --------------------------------------------------------------------------

	// Has checks whether a key exists in the backend (structured or binary).
	Has(key string) (loaded bool, err error)

	// GetPath retrieves the value at the given key path. The path's first
	// element is the root key; any further elements address a nested
	// position inside the root value. The boolean return value indicates
	// whether a value was found at that position.
	GetPath(path []string) (value Value, loaded bool, err error)

	// UpdateIn atomically applies fn to the value at the given key path and
	// stores the result, creating missing intermediate containers along the
	// path. It returns the value before and after the transform.
	UpdateIn(path []string, fn TransformFunc) (oldVal, newVal Value, err error)

	// --------------------------------------------------------------------------
	// Binary Operations
	// --------------------------------------------------------------------------

	// BGet invokes fn with a reader over the binary payload stored for key.
	// The reader is only valid until fn returns.
	BGet(key string, fn func(r io.Reader) error) error

	// BAssoc stores the binary payload read from r under key, replacing any
	// previous binary payload for that key.
	BAssoc(key string, r io.Reader) error

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of the backend to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load restores the backend state from data provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the backend implementation supports the
	// specified feature. Multiple features can be checked at once using the
	// bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the backend.
	GetInfo() (info BackendInfo)

	// Close closes the backend.
	Close() (err error)
}
