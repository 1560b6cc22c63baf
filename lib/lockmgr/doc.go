// Package lockmgr implements a per-key mutual exclusion manager for
// in-process coordination. It provides the serialization layer that the
// consistency-aware store builds its critical sections on.
//
// Core Functionality:
//   - Lazy lock creation: locks spring into existence on first use
//   - Per-key granularity: operations on distinct keys never block each other
//   - Guaranteed release: WithLock releases even when the body panics
//
// Implementation Approach:
//
//	Each key maps to a buffered channel of capacity one that holds a single
//	token. Acquiring the lock means receiving the token, releasing means
//	sending it back. The channel table is a concurrent map, so creating a
//	lock for a new key requires no global locking and is race-free: when two
//	goroutines hit a fresh key at the same time, exactly one channel wins
//	and both goroutines contend on it.
//
//	Lock channels are never removed. The table grows monotonically with the
//	set of keys ever locked, which keeps acquisition free of
//	creation/deletion races at the cost of memory proportional to that set.
//
// Thread Safety:
//
//	All operations are safe for concurrent use. Locks are NOT reentrant:
//	acquiring a key twice from the same goroutine without an intervening
//	release deadlocks that goroutine. Callers must never nest WithLock
//	calls for the same key.
//
// Usage Example:
//
//	lm := lockmgr.NewLockManager()
//
//	err := lm.WithLock("resource:123", func() error {
//	    // exclusive access to resource:123 within this manager
//	    return nil
//	})
//
// Performance Impact:
//
//	Uncontended acquire/release is a pair of channel operations plus one
//	lock-free map read. Contended acquisitions park the goroutine on the
//	channel, so waiters consume no CPU.
package lockmgr
