package lockmgr

import (
	"github.com/puzpuzpuz/xsync/v3"
)

type lockMgrImpl struct {
	// one single-slot token channel per key, created lazily and never removed
	locks *xsync.MapOf[string, chan struct{}]
}

// NewLockManager creates a new in-process lock manager. Each manager owns an
// independent lock table, so two managers never contend with each other even
// for identical keys.
func NewLockManager() ILockManager {
	return &lockMgrImpl{
		locks: xsync.NewMapOf[string, chan struct{}](),
	}
}

// lock returns the token channel for a key, creating it on first use. The
// channel starts with one token in it; holding the lock means holding the
// token.
func (lm *lockMgrImpl) lock(key string) chan struct{} {
	tok, _ := lm.locks.LoadOrCompute(key, func() chan struct{} {
		ch := make(chan struct{}, 1)
		ch <- struct{}{}
		return ch
	})
	return tok
}

func (lm *lockMgrImpl) AcquireLock(key string) {
	<-lm.lock(key)
}

func (lm *lockMgrImpl) ReleaseLock(key string) {
	lm.lock(key) <- struct{}{}
}

func (lm *lockMgrImpl) WithLock(key string, fn func() error) error {
	lm.AcquireLock(key)
	defer lm.ReleaseLock(key)
	return fn()
}
