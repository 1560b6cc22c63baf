package cstore

import (
	"testing"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/backend/engines/aspen"
	"github.com/ValentinKolb/aKV/lib/store"
	storetesting "github.com/ValentinKolb/aKV/lib/store/testing"
)

func newTestStore() store.IStore {
	return NewConsistentStore(func() backend.KVBackend {
		return aspen.NewAspenBackend(nil)
	})
}

func TestConsistentStoreInterface(t *testing.T) {
	storetesting.RunStoreTests(t, "ConsistentStore", func() store.IStore {
		return newTestStore()
	})
}

// The head cell of a journal is visible to plain reads as tagged data. This
// pins the on-disk shape so it stays stable across releases.
func TestJournalHeadShape(t *testing.T) {
	s := newTestStore()

	id, err := s.Append("log", "first")
	if err != nil {
		t.Fatal(err)
	}

	head, loaded, err := s.Get([]string{"log"})
	if err != nil || !loaded {
		t.Fatalf("expected head cell, got (%v, %v, %v)", head, loaded, err)
	}

	cell, ok := head.([]backend.Value)
	if !ok || len(cell) != 2 {
		t.Fatalf("expected two-element head cell, got %#v", head)
	}
	if cell[0] != TagJournal {
		t.Errorf("expected tag %q, got %v", TagJournal, cell[0])
	}
	if cell[1] != id {
		t.Errorf("expected head to point at %s, got %v", id, cell[1])
	}

	// the entry itself is a {previous, element} document under its ID
	entry, loaded, err := s.Get([]string{id})
	if err != nil || !loaded {
		t.Fatalf("expected entry document, got (%v, %v, %v)", entry, loaded, err)
	}
	doc := entry.(map[string]backend.Value)
	if doc["previous"] != nil {
		t.Errorf("expected first entry to have nil previous, got %v", doc["previous"])
	}
	if doc["element"] != "first" {
		t.Errorf("expected element 'first', got %v", doc["element"])
	}
}

// Appending an element that the codec cannot encode must leave the journal
// untouched.
func TestAppendUnencodableElement(t *testing.T) {
	s := newTestStore()

	if _, err := s.Append("log", "ok"); err != nil {
		t.Fatal(err)
	}

	_, err := s.Append("log", struct{}{})
	if store.CodeOf(err) != store.RetCInvalidOperation {
		t.Errorf("expected RetCInvalidOperation, got %v", err)
	}

	elements, err := s.ReadLog("log")
	if err != nil || len(elements) != 1 || elements[0] != "ok" {
		t.Errorf("journal modified by failed append: (%v, %v)", elements, err)
	}
}
