package lockmgr

// ILockManager defines the interface for a per-key mutual exclusion provider.
//
// Locks are identified by string keys and created lazily on first use. A lock
// is NOT reentrant: a goroutine that acquires a key and tries to acquire it
// again before releasing will block itself forever.
type ILockManager interface {
	// AcquireLock blocks until the lock for the given key is held by the caller.
	AcquireLock(key string)

	// ReleaseLock releases the lock for the given key. It must only be called
	// by the current holder, exactly once per acquisition.
	ReleaseLock(key string)

	// WithLock runs fn while holding the lock for the given key. The lock is
	// released when fn returns, even if it panics. The error returned by fn
	// is passed through unchanged.
	WithLock(key string, fn func() error) error
}
