package testing

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/store"
	"golang.org/x/sync/errgroup"
)

// StoreFactory is a function that creates a new instance of an IStore
// implementation
type StoreFactory func() store.IStore

// RunStoreTests runs a comprehensive test suite for an IStore
// implementation. Implementations that report RetCUnsupportedOperation for
// Update (remote stores cannot ship transform closures) skip the
// update-specific tests.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Exists&Get&Assoc", func(t *testing.T) {
			testExistsGetAssoc(t, factory())
		})

		t.Run("Update", func(t *testing.T) {
			testUpdate(t, factory())
		})

		t.Run("NestedPaths", func(t *testing.T) {
			testNestedPaths(t, factory())
		})

		t.Run("SerializedUpdates", func(t *testing.T) {
			testSerializedUpdates(t, factory())
		})

		t.Run("KeyIndependence", func(t *testing.T) {
			testKeyIndependence(t, factory())
		})

		t.Run("Journal", func(t *testing.T) {
			testJournal(t, factory())
		})

		t.Run("JournalNotAJournal", func(t *testing.T) {
			testJournalNotAJournal(t, factory())
		})

		t.Run("JournalContentAddressing", func(t *testing.T) {
			testJournalContentAddressing(t, factory())
		})

		t.Run("JournalConcurrentAppend", func(t *testing.T) {
			testJournalConcurrentAppend(t, factory())
		})

		t.Run("BinaryPassthrough", func(t *testing.T) {
			testBinaryPassthrough(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// requireUpdate skips the test when the store cannot run transforms locally
func requireUpdate(t *testing.T, s store.IStore) {
	t.Helper()
	_, _, err := s.Update([]string{"__probe__"}, func(old backend.Value, _ bool) backend.Value {
		return old
	})
	if store.CodeOf(err) == store.RetCUnsupportedOperation {
		t.Skip("store does not support Update")
	}
}

func assertCode(t *testing.T, err error, want store.RetCode) {
	t.Helper()
	if got := store.CodeOf(err); got != want {
		t.Errorf("expected error code %v, got %v (err: %v)", want, got, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testExistsGetAssoc(t *testing.T, s store.IStore) {
	// missing key
	loaded, err := s.Exists([]string{"missing"})
	if err != nil || loaded {
		t.Errorf("expected Exists(missing) = (false, nil), got (%v, %v)", loaded, err)
	}
	_, loaded, err = s.Get([]string{"missing"})
	if err != nil || loaded {
		t.Errorf("expected Get(missing) = (_, false, nil), got (_, %v, %v)", loaded, err)
	}

	// assoc then get; a fresh key reports a nil pre-write value
	oldVal, newVal, err := s.Assoc([]string{"greeting"}, "hello")
	if err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}
	if oldVal != nil || newVal != "hello" {
		t.Errorf("expected Assoc pair (nil, hello), got (%v, %v)", oldVal, newVal)
	}
	v, loaded, err := s.Get([]string{"greeting"})
	if err != nil || !loaded || v != "hello" {
		t.Errorf("expected (hello, true, nil), got (%v, %v, %v)", v, loaded, err)
	}
	loaded, err = s.Exists([]string{"greeting"})
	if err != nil || !loaded {
		t.Errorf("expected Exists(greeting) = (true, nil), got (%v, %v)", loaded, err)
	}

	// overwrite reports the replaced value alongside the new one
	oldVal, newVal, err = s.Assoc([]string{"greeting"}, "goodbye")
	if err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}
	if oldVal != "hello" || newVal != "goodbye" {
		t.Errorf("expected Assoc pair (hello, goodbye), got (%v, %v)", oldVal, newVal)
	}
	v, _, _ = s.Get([]string{"greeting"})
	if v != "goodbye" {
		t.Errorf("expected overwrite to goodbye, got %v", v)
	}
}

func testUpdate(t *testing.T, s store.IStore) {
	requireUpdate(t, s)

	// counter from scratch: transform sees absent, old result is nil
	oldVal, newVal, err := s.Update([]string{"counter"}, func(old backend.Value, loaded bool) backend.Value {
		if loaded {
			t.Errorf("expected absent value, got %v", old)
		}
		return int64(1)
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if oldVal != nil || newVal != int64(1) {
		t.Errorf("expected (nil, 1), got (%v, %v)", oldVal, newVal)
	}

	// and once more
	oldVal, newVal, err = s.Update([]string{"counter"}, func(old backend.Value, _ bool) backend.Value {
		return old.(int64) + 1
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if oldVal != int64(1) || newVal != int64(2) {
		t.Errorf("expected (1, 2), got (%v, %v)", oldVal, newVal)
	}
}

func testNestedPaths(t *testing.T, s store.IStore) {
	if _, _, err := s.Assoc([]string{"config", "limits", "max"}, int64(100)); err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}

	v, loaded, err := s.Get([]string{"config", "limits", "max"})
	if err != nil || !loaded || v != int64(100) {
		t.Errorf("expected (100, true, nil), got (%v, %v, %v)", v, loaded, err)
	}

	loaded, err = s.Exists([]string{"config", "limits"})
	if err != nil || !loaded {
		t.Errorf("expected intermediate container to exist, got (%v, %v)", loaded, err)
	}

	loaded, _ = s.Exists([]string{"config", "other"})
	if loaded {
		t.Error("expected missing nested path to not exist")
	}
}

func testSerializedUpdates(t *testing.T, s store.IStore) {
	requireUpdate(t, s)

	const workers = 8
	const increments = 200

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < increments; i++ {
				_, _, err := s.Update([]string{"hits"}, func(old backend.Value, loaded bool) backend.Value {
					if !loaded {
						return int64(1)
					}
					return old.(int64) + 1
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	v, _, _ := s.Get([]string{"hits"})
	if v != int64(workers*increments) {
		t.Errorf("lost updates: expected %d, got %v", workers*increments, v)
	}
}

func testKeyIndependence(t *testing.T, s store.IStore) {
	requireUpdate(t, s)

	// an update holding the lock on one key must not delay another key
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _, _ = s.Update([]string{"slow"}, func(_ backend.Value, _ bool) backend.Value {
			close(started)
			<-release
			return "done"
		})
	}()
	<-started
	defer close(release)

	done := make(chan struct{})
	go func() {
		_, _, _ = s.Assoc([]string{"fast"}, "value")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("operation on independent key blocked")
	}
}

func testJournal(t *testing.T, s store.IStore) {
	// reading a journal that was never created yields no elements
	elements, err := s.ReadLog("events")
	if err != nil {
		t.Fatalf("ReadLog on missing journal failed: %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("expected empty journal, got %v", elements)
	}

	// append a session trace and read it back in order
	trace := []backend.Value{
		"login",
		map[string]backend.Value{"action": "purchase", "amount": int64(42)},
		"logout",
	}
	ids := make([]string, 0, len(trace))
	for _, e := range trace {
		id, err := s.Append("events", e)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if len(id) != 64 {
			t.Errorf("expected 64-char hex entry ID, got %q", id)
		}
		ids = append(ids, id)
	}

	// all IDs distinct
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				t.Errorf("duplicate entry IDs at %d and %d", i, j)
			}
		}
	}

	elements, err = s.ReadLog("events")
	if err != nil {
		t.Fatalf("ReadLog failed: %v", err)
	}
	if !reflect.DeepEqual(elements, trace) {
		t.Errorf("expected %v, got %v", trace, elements)
	}
}

func testJournalNotAJournal(t *testing.T, s store.IStore) {
	if _, _, err := s.Assoc([]string{"plain"}, "just a string"); err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}

	_, err := s.Append("plain", "element")
	assertCode(t, err, store.RetCNotAJournal)

	_, err = s.ReadLog("plain")
	assertCode(t, err, store.RetCNotAJournal)

	// the plain value is untouched
	v, _, _ := s.Get([]string{"plain"})
	if v != "just a string" {
		t.Errorf("journal op modified plain value: %v", v)
	}
}

func testJournalContentAddressing(t *testing.T, s store.IStore) {
	// the first entry of two journals with the same element has the same
	// content, so it gets the same ID
	id1, err := s.Append("journal-a", "boot")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.Append("journal-b", "boot")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("identical first entries got different IDs: %s vs %s", id1, id2)
	}

	// both journals read correctly despite sharing the entry
	for _, key := range []string{"journal-a", "journal-b"} {
		elements, err := s.ReadLog(key)
		if err != nil || !reflect.DeepEqual(elements, []backend.Value{"boot"}) {
			t.Errorf("journal %s: expected [boot], got (%v, %v)", key, elements, err)
		}
	}

	// a different element yields a different ID
	id3, err := s.Append("journal-a", "shutdown")
	if err != nil {
		t.Fatal(err)
	}
	if id3 == id1 {
		t.Error("different entries got the same ID")
	}
}

func testJournalConcurrentAppend(t *testing.T, s store.IStore) {
	const workers = 8
	const appends = 50

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < appends; i++ {
				if _, err := s.Append("audit", fmt.Sprintf("worker-%d-event-%d", w, i)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	// no element lost, per-worker order preserved
	elements, err := s.ReadLog("audit")
	if err != nil {
		t.Fatalf("ReadLog failed: %v", err)
	}
	if len(elements) != workers*appends {
		t.Fatalf("expected %d elements, got %d", workers*appends, len(elements))
	}

	next := make([]int, workers)
	for _, e := range elements {
		var w, i int
		if _, err := fmt.Sscanf(e.(string), "worker-%d-event-%d", &w, &i); err != nil {
			t.Fatalf("unexpected element %v", e)
		}
		if i != next[w] {
			t.Fatalf("worker %d events out of order: expected %d, got %d", w, next[w], i)
		}
		next[w]++
	}
}

func testBinaryPassthrough(t *testing.T, s store.IStore) {
	payload := bytes.Repeat([]byte("akv"), 1024)

	if err := s.BAssoc("asset", bytes.NewReader(payload)); err != nil {
		t.Fatalf("BAssoc failed: %v", err)
	}

	var got []byte
	err := s.BGet("asset", func(r io.Reader) error {
		var err error
		got, err = io.ReadAll(r)
		return err
	})
	if err != nil {
		t.Fatalf("BGet failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("binary payload mismatch")
	}

	// missing payload is an error
	if err := s.BGet("no-asset", func(io.Reader) error { return nil }); err == nil {
		t.Error("expected BGet on missing payload to fail")
	}
}

func testEdgeCases(t *testing.T, s store.IStore) {
	// empty path is invalid everywhere
	_, err := s.Exists(nil)
	assertCode(t, err, store.RetCInvalidOperation)
	_, _, err = s.Get([]string{})
	assertCode(t, err, store.RetCInvalidOperation)
	_, _, err = s.Assoc(nil, "v")
	assertCode(t, err, store.RetCInvalidOperation)

	// nil is a storable value
	if _, _, err := s.Assoc([]string{"nothing"}, nil); err != nil {
		t.Fatalf("Assoc(nil) failed: %v", err)
	}
	v, loaded, err := s.Get([]string{"nothing"})
	if err != nil || !loaded || v != nil {
		t.Errorf("expected (nil, true, nil), got (%v, %v, %v)", v, loaded, err)
	}

	// backend info is available
	if _, err := s.GetBackendInfo(); err != nil {
		t.Errorf("GetBackendInfo failed: %v", err)
	}
}
