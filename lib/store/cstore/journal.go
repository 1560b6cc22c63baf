package cstore

import (
	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/codec"
	"github.com/ValentinKolb/aKV/lib/store"
)

const (
	// TagJournal marks a head cell as belonging to a journal. Any value under
	// a journal key that does not carry this tag is ordinary data and must
	// not be touched by journal operations.
	TagJournal = "akv.journal"

	// field names of a journal entry document
	fieldPrevious = "previous"
	fieldElement  = "element"
)

// headEntryID extracts the latest entry ID from a head cell. It returns an
// error when the value is not a journal head and an empty ID when the
// journal exists but has no entries yet.
func headEntryID(key string, head backend.Value) (string, error) {
	cell, ok := head.([]backend.Value)
	if !ok || len(cell) == 0 || cell[0] != TagJournal {
		Logger.Debugf("rejected journal op on key %q: value is not a journal head", key)
		return "", store.NewErrorf(store.RetCNotAJournal, "key %q does not hold a journal", key)
	}
	if len(cell) == 1 {
		return "", nil
	}
	id, ok := cell[1].(string)
	if !ok {
		return "", store.NewErrorf(store.RetCBackendFailure, "journal %q has a malformed head cell", key)
	}
	return id, nil
}

func (s *storeImpl) Append(key string, element backend.Value) (string, error) {
	var entryID string

	err := s.locks.WithLock(key, func() error {
		// read the current head (may be absent for a fresh journal)
		head, loaded, err := s.backend.GetPath([]string{key})
		if err != nil {
			return wrapBackendErr(err)
		}

		var previous backend.Value // nil = first entry
		if loaded {
			prevID, err := headEntryID(key, head)
			if err != nil {
				return err
			}
			if prevID != "" {
				previous = prevID
			}
		}

		// the entry's ID is derived from its content, so appending the same
		// element after the same predecessor is idempotent
		entry := map[string]backend.Value{
			fieldPrevious: previous,
			fieldElement:  element,
		}
		if entryID, err = codec.ContentID(entry); err != nil {
			return store.NewErrorf(store.RetCInvalidOperation, "element not encodable: %v", err)
		}

		// write order matters: the entry must be durable before the head
		// points at it, otherwise a reader could follow a dangling ID
		if _, _, err := s.backend.UpdateIn([]string{entryID}, func(_ backend.Value, _ bool) backend.Value {
			return entry
		}); err != nil {
			return wrapBackendErr(err)
		}

		_, _, err = s.backend.UpdateIn([]string{key}, func(_ backend.Value, _ bool) backend.Value {
			return []backend.Value{TagJournal, entryID}
		})
		return wrapBackendErr(err)
	})
	if err != nil {
		return "", err
	}
	return entryID, nil
}

func (s *storeImpl) ReadLog(key string) ([]backend.Value, error) {
	// only the head read needs the lock; entries are immutable once written,
	// so the chain walk below runs without blocking concurrent appends
	var latestID string
	err := s.locks.WithLock(key, func() error {
		head, loaded, err := s.backend.GetPath([]string{key})
		if err != nil {
			return wrapBackendErr(err)
		}
		if !loaded {
			return nil
		}
		latestID, err = headEntryID(key, head)
		return err
	})
	if err != nil {
		return nil, err
	}

	// walk the chain newest to oldest, then reverse
	elements := []backend.Value{}
	for id := latestID; id != ""; {
		entry, loaded, err := s.backend.GetPath([]string{id})
		if err != nil {
			return nil, wrapBackendErr(err)
		}
		if !loaded {
			return nil, store.NewErrorf(store.RetCBackendFailure, "journal %q chain broken at entry %s", key, id)
		}
		doc, ok := entry.(map[string]backend.Value)
		if !ok {
			return nil, store.NewErrorf(store.RetCBackendFailure, "journal %q entry %s is malformed", key, id)
		}
		elements = append(elements, doc[fieldElement])

		id = ""
		if prev, ok := doc[fieldPrevious].(string); ok {
			id = prev
		}
	}

	// reverse to append order
	for i, j := 0, len(elements)-1; i < j; i, j = i+1, j-1 {
		elements[i], elements[j] = elements[j], elements[i]
	}
	return elements, nil
}
