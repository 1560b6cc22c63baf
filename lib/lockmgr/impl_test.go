package lockmgr

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestAcquireRelease(t *testing.T) {
	lm := NewLockManager()

	lm.AcquireLock("key")
	lm.ReleaseLock("key")

	// can be re-acquired after release
	lm.AcquireLock("key")
	lm.ReleaseLock("key")
}

func TestMutualExclusion(t *testing.T) {
	lm := NewLockManager()

	const workers = 16
	const iterations = 500

	// a plain int incremented only under the lock; the race detector and the
	// final count both catch violations
	counter := 0

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < iterations; i++ {
				if err := lm.WithLock("counter", func() error {
					counter++
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if counter != workers*iterations {
		t.Errorf("lost increments: expected %d, got %d", workers*iterations, counter)
	}
}

func TestIndependentKeys(t *testing.T) {
	lm := NewLockManager()

	// holding one key must not block another
	lm.AcquireLock("a")
	defer lm.ReleaseLock("a")

	done := make(chan struct{})
	go func() {
		lm.AcquireLock("b")
		lm.ReleaseLock("b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on key 'b' blocked while 'a' was held")
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	lm := NewLockManager()

	wantErr := errors.New("body failed")
	if err := lm.WithLock("key", func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("expected body error to pass through, got %v", err)
	}

	// the lock must be free again
	acquired := make(chan struct{})
	go func() {
		lm.AcquireLock("key")
		lm.ReleaseLock("key")
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("lock not released after body error")
	}
}

func TestWithLockReleasesOnPanic(t *testing.T) {
	lm := NewLockManager()

	func() {
		defer func() { _ = recover() }()
		_ = lm.WithLock("key", func() error { panic("boom") })
	}()

	acquired := make(chan struct{})
	go func() {
		lm.AcquireLock("key")
		lm.ReleaseLock("key")
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("lock not released after panic")
	}
}

func TestConcurrentFirstAcquire(t *testing.T) {
	lm := NewLockManager()

	// many goroutines race on the lazy creation of the same lock; exactly one
	// may hold it at any time
	var holders atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lm.WithLock("fresh", func() error {
				if n := holders.Add(1); n != 1 {
					t.Errorf("%d concurrent holders", n)
				}
				holders.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
}

func TestIndependentManagers(t *testing.T) {
	lm1 := NewLockManager()
	lm2 := NewLockManager()

	// the same key on a different manager is a different lock
	lm1.AcquireLock("shared")
	defer lm1.ReleaseLock("shared")

	done := make(chan struct{})
	go func() {
		lm2.AcquireLock("shared")
		lm2.ReleaseLock("shared")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("managers share lock state")
	}
}
