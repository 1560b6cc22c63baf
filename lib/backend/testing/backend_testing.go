package testing

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/ValentinKolb/aKV/lib/backend"
	"golang.org/x/sync/errgroup"
)

// BackendFactory is a function that creates a new instance of a KVBackend
// implementation
type BackendFactory func() backend.KVBackend

// RunBackendTests runs a comprehensive test suite for a KVBackend
// implementation.
func RunBackendTests(t *testing.T, name string, factory BackendFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("UpdateIn&GetPath", func(t *testing.T) {
			testUpdateInGetPath(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("NestedPaths", func(t *testing.T) {
			testNestedPaths(t, factory())
		})

		t.Run("BinaryPayloads", func(t *testing.T) {
			testBinaryPayloads(t, factory())
		})

		t.Run("Copies", func(t *testing.T) {
			testCopies(t, factory())
		})

		t.Run("ConcurrentUpdateIn", func(t *testing.T) {
			testConcurrentUpdateIn(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the backend supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, b backend.KVBackend, feature backend.Feature) {
	if !b.SupportsFeature(feature) {
		t.Skip()
	}
}

// set stores a value at a path via UpdateIn (helper for read-focused tests)
func set(t testing.TB, b backend.KVBackend, path []string, v backend.Value) {
	t.Helper()
	if _, _, err := b.UpdateIn(path, func(_ backend.Value, _ bool) backend.Value {
		return v
	}); err != nil {
		t.Fatalf("UpdateIn(%v) failed: %v", path, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testUpdateInGetPath(t *testing.T, b backend.KVBackend) {
	defer b.Close()

	requireFeature(t, b, backend.FeatureUpdateIn)
	requireFeature(t, b, backend.FeatureGetPath)

	// fresh key: transform must see absent
	old, newVal, err := b.UpdateIn([]string{"counter"}, func(old backend.Value, loaded bool) backend.Value {
		if loaded {
			t.Errorf("expected absent value for fresh key, got %v", old)
		}
		return int64(1)
	})
	if err != nil {
		t.Fatalf("UpdateIn failed: %v", err)
	}
	if old != nil {
		t.Errorf("expected nil old value, got %v", old)
	}
	if newVal != int64(1) {
		t.Errorf("expected new value 1, got %v", newVal)
	}

	// second update must see the previous value
	old, newVal, err = b.UpdateIn([]string{"counter"}, func(old backend.Value, loaded bool) backend.Value {
		if !loaded {
			t.Error("expected value to be present on second update")
		}
		return old.(int64) + 1
	})
	if err != nil {
		t.Fatalf("UpdateIn failed: %v", err)
	}
	if old != int64(1) || newVal != int64(2) {
		t.Errorf("expected (1, 2), got (%v, %v)", old, newVal)
	}

	// GetPath observes the result
	v, loaded, err := b.GetPath([]string{"counter"})
	if err != nil {
		t.Fatalf("GetPath failed: %v", err)
	}
	if !loaded || v != int64(2) {
		t.Errorf("expected (2, true), got (%v, %v)", v, loaded)
	}

	// missing key
	_, loaded, err = b.GetPath([]string{"nonexistent"})
	if err != nil {
		t.Fatalf("GetPath failed: %v", err)
	}
	if loaded {
		t.Error("expected nonexistent key to return loaded=false")
	}
}

func testHas(t *testing.T, b backend.KVBackend) {
	defer b.Close()

	requireFeature(t, b, backend.FeatureHas)
	requireFeature(t, b, backend.FeatureUpdateIn)

	if ok, err := b.Has("missing"); err != nil || ok {
		t.Errorf("expected Has(missing) = (false, nil), got (%v, %v)", ok, err)
	}

	set(t, b, []string{"present"}, "value")

	if ok, err := b.Has("present"); err != nil || !ok {
		t.Errorf("expected Has(present) = (true, nil), got (%v, %v)", ok, err)
	}
}

func testNestedPaths(t *testing.T, b backend.KVBackend) {
	defer b.Close()

	requireFeature(t, b, backend.FeatureUpdateIn)
	requireFeature(t, b, backend.FeatureGetPath)

	// writing to a deep path creates the intermediate containers
	set(t, b, []string{"users", "alice", "age"}, int64(30))

	v, loaded, err := b.GetPath([]string{"users", "alice", "age"})
	if err != nil || !loaded || v != int64(30) {
		t.Errorf("expected (30, true, nil), got (%v, %v, %v)", v, loaded, err)
	}

	// the root now holds the full nested document
	v, loaded, err = b.GetPath([]string{"users"})
	if err != nil || !loaded {
		t.Fatalf("expected root document, got (%v, %v, %v)", v, loaded, err)
	}
	want := map[string]backend.Value{"alice": map[string]backend.Value{"age": int64(30)}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("expected %v, got %v", want, v)
	}

	// a sibling write leaves the first one alone
	set(t, b, []string{"users", "alice", "city"}, "Berlin")

	v, _, _ = b.GetPath([]string{"users", "alice", "age"})
	if v != int64(30) {
		t.Errorf("sibling write clobbered value: got %v", v)
	}

	// navigating through a scalar finds nothing
	_, loaded, err = b.GetPath([]string{"users", "alice", "age", "deeper"})
	if err != nil {
		t.Fatalf("GetPath failed: %v", err)
	}
	if loaded {
		t.Error("expected path through a scalar to return loaded=false")
	}
}

func testBinaryPayloads(t *testing.T, b backend.KVBackend) {
	defer b.Close()

	requireFeature(t, b, backend.FeatureBGet)
	requireFeature(t, b, backend.FeatureBAssoc)

	payload := []byte("large binary payload")

	if err := b.BAssoc("blob", bytes.NewReader(payload)); err != nil {
		t.Fatalf("BAssoc failed: %v", err)
	}

	var got []byte
	err := b.BGet("blob", func(r io.Reader) error {
		var err error
		got, err = io.ReadAll(r)
		return err
	})
	if err != nil {
		t.Fatalf("BGet failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected payload %q, got %q", payload, got)
	}

	// BGet on a key without a payload fails
	if err := b.BGet("no-blob", func(io.Reader) error { return nil }); err == nil {
		t.Error("expected BGet on missing payload to fail")
	}

	// a binary payload makes the key visible to Has
	if b.SupportsFeature(backend.FeatureHas) {
		if ok, _ := b.Has("blob"); !ok {
			t.Error("expected Has to see the binary payload")
		}
	}
}

func testCopies(t *testing.T, b backend.KVBackend) {
	defer b.Close()

	requireFeature(t, b, backend.FeatureUpdateIn)
	requireFeature(t, b, backend.FeatureGetPath)

	doc := map[string]backend.Value{"list": []backend.Value{int64(1), int64(2)}}
	set(t, b, []string{"doc"}, doc)

	// mutating the value we stored must not affect the backend
	doc["list"] = nil

	v, _, _ := b.GetPath([]string{"doc", "list"})
	if !reflect.DeepEqual(v, []backend.Value{int64(1), int64(2)}) {
		t.Errorf("stored document aliased caller data: got %v", v)
	}

	// mutating the value we read must not affect the backend either
	got, _, _ := b.GetPath([]string{"doc"})
	got.(map[string]backend.Value)["list"] = "clobbered"

	v, _, _ = b.GetPath([]string{"doc", "list"})
	if !reflect.DeepEqual(v, []backend.Value{int64(1), int64(2)}) {
		t.Errorf("GetPath returned a reference, not a copy: got %v", v)
	}

	// a transform that mutates its argument in place (the usual way to edit a
	// map value) must not corrupt the reported pre-transform value
	set(t, b, []string{"counter-doc"}, map[string]backend.Value{"n": int64(1)})

	old, newVal, err := b.UpdateIn([]string{"counter-doc"}, func(old backend.Value, _ bool) backend.Value {
		m := old.(map[string]backend.Value)
		m["n"] = int64(2)
		return m
	})
	if err != nil {
		t.Fatalf("UpdateIn failed: %v", err)
	}
	if !reflect.DeepEqual(old, map[string]backend.Value{"n": int64(1)}) {
		t.Errorf("old value aliased the transform argument: got %v", old)
	}
	if !reflect.DeepEqual(newVal, map[string]backend.Value{"n": int64(2)}) {
		t.Errorf("expected new value {n: 2}, got %v", newVal)
	}
}

func testConcurrentUpdateIn(t *testing.T, b backend.KVBackend) {
	defer b.Close()

	requireFeature(t, b, backend.FeatureUpdateIn)
	requireFeature(t, b, backend.FeatureGetPath)

	const (
		workers    = 8
		increments = 200
	)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < increments; i++ {
				_, _, err := b.UpdateIn([]string{"contended"}, func(old backend.Value, loaded bool) backend.Value {
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
		t.Fatalf("concurrent UpdateIn failed: %v", err)
	}

	v, _, _ := b.GetPath([]string{"contended"})
	if v != int64(workers*increments) {
		t.Errorf("lost updates: expected %d, got %v", workers*increments, v)
	}
}

func testSaveLoad(t *testing.T, factory BackendFactory) {
	src := factory()
	defer src.Close()

	requireFeature(t, src, backend.FeatureSave)
	requireFeature(t, src, backend.FeatureLoad)
	requireFeature(t, src, backend.FeatureUpdateIn)

	// populate
	for i := 0; i < 50; i++ {
		set(t, src, []string{fmt.Sprintf("key-%d", i)}, fmt.Sprintf("value-%d", i))
	}
	set(t, src, []string{"nested", "a", "b"}, int64(42))
	if err := src.BAssoc("blob", bytes.NewReader([]byte("binary"))); err != nil {
		t.Fatalf("BAssoc failed: %v", err)
	}

	// save
	var buf bytes.Buffer
	if err := src.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// load into the same instance (keys are persisted in hashed form, so the
	// snapshot carries the hash seed and must be restored where it was taken)
	if err := src.Load(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		v, loaded, err := src.GetPath([]string{fmt.Sprintf("key-%d", i)})
		if err != nil || !loaded || v != fmt.Sprintf("value-%d", i) {
			t.Errorf("key-%d not restored: (%v, %v, %v)", i, v, loaded, err)
		}
	}

	v, loaded, _ := src.GetPath([]string{"nested", "a", "b"})
	if !loaded || v != int64(42) {
		t.Errorf("nested value not restored: (%v, %v)", v, loaded)
	}

	var blob []byte
	if err := src.BGet("blob", func(r io.Reader) error {
		var err error
		blob, err = io.ReadAll(r)
		return err
	}); err != nil {
		t.Fatalf("BGet after load failed: %v", err)
	}
	if !bytes.Equal(blob, []byte("binary")) {
		t.Errorf("binary payload not restored: %q", blob)
	}
}

func testEdgeCases(t *testing.T, b backend.KVBackend) {
	defer b.Close()

	requireFeature(t, b, backend.FeatureUpdateIn)
	requireFeature(t, b, backend.FeatureGetPath)

	// empty key paths are rejected
	if _, _, err := b.GetPath(nil); err == nil {
		t.Error("expected GetPath(nil) to fail")
	}
	if _, _, err := b.UpdateIn(nil, func(_ backend.Value, _ bool) backend.Value { return nil }); err == nil {
		t.Error("expected UpdateIn(nil) to fail")
	}

	// nil is a valid stored value
	set(t, b, []string{"nil-key"}, nil)
	v, loaded, err := b.GetPath([]string{"nil-key"})
	if err != nil || !loaded || v != nil {
		t.Errorf("expected (nil, true, nil), got (%v, %v, %v)", v, loaded, err)
	}

	// empty string key works
	set(t, b, []string{""}, "empty")
	v, loaded, _ = b.GetPath([]string{""})
	if !loaded || v != "empty" {
		t.Errorf("expected empty key to round trip, got (%v, %v)", v, loaded)
	}
}
