package cstore

import (
	"io"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/lockmgr"
	"github.com/ValentinKolb/aKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

type storeImpl struct {
	backend backend.KVBackend
	locks   lockmgr.ILockManager
}

// NewConsistentStore creates a new consistency-aware store instance over the
// given backend. The store owns a private lock table, so two stores created
// over the same backend do not serialize against each other.
func NewConsistentStore(factory backend.BackendFactory) store.IStore {
	return &storeImpl{
		backend: factory(),
		locks:   lockmgr.NewLockManager(),
	}
}

// rootKey validates a key path and returns its first element, which is the
// lock granularity for every operation on that path.
func rootKey(path []string) (string, error) {
	if len(path) == 0 {
		return "", store.NewError(store.RetCInvalidOperation, "empty key path")
	}
	return path[0], nil
}

// wrapBackendErr converts a backend error into a store error. Store errors
// pass through unchanged so semantic codes survive nesting.
func wrapBackendErr(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*store.Error); ok {
		return se
	}
	return store.NewErrorf(store.RetCBackendFailure, "backend: %v", err)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Exists(path []string) (bool, error) {
	key, err := rootKey(path)
	if err != nil {
		return false, err
	}

	var loaded bool
	err = s.locks.WithLock(key, func() error {
		// a single-element path only needs the cheaper key lookup
		if len(path) == 1 {
			var err error
			loaded, err = s.backend.Has(key)
			return err
		}
		var err error
		_, loaded, err = s.backend.GetPath(path)
		return err
	})
	return loaded, wrapBackendErr(err)
}

func (s *storeImpl) Get(path []string) (backend.Value, bool, error) {
	key, err := rootKey(path)
	if err != nil {
		return nil, false, err
	}

	var (
		value  backend.Value
		loaded bool
	)
	err = s.locks.WithLock(key, func() error {
		var err error
		value, loaded, err = s.backend.GetPath(path)
		return err
	})
	return value, loaded, wrapBackendErr(err)
}

func (s *storeImpl) Update(path []string, fn store.TransformFunc) (backend.Value, backend.Value, error) {
	key, err := rootKey(path)
	if err != nil {
		return nil, nil, err
	}
	if fn == nil {
		return nil, nil, store.NewError(store.RetCInvalidOperation, "nil transform function")
	}

	var oldVal, newVal backend.Value
	err = s.locks.WithLock(key, func() error {
		var err error
		oldVal, newVal, err = s.backend.UpdateIn(path, fn)
		return err
	})
	return oldVal, newVal, wrapBackendErr(err)
}

func (s *storeImpl) Assoc(path []string, value backend.Value) (backend.Value, backend.Value, error) {
	return s.Update(path, func(_ backend.Value, _ bool) backend.Value {
		return value
	})
}

func (s *storeImpl) BGet(key string, fn func(r io.Reader) error) error {
	if fn == nil {
		return store.NewError(store.RetCInvalidOperation, "nil reader function")
	}
	return wrapBackendErr(s.locks.WithLock(key, func() error {
		return s.backend.BGet(key, fn)
	}))
}

func (s *storeImpl) BAssoc(key string, r io.Reader) error {
	if r == nil {
		return store.NewError(store.RetCInvalidOperation, "nil reader")
	}
	return wrapBackendErr(s.locks.WithLock(key, func() error {
		return s.backend.BAssoc(key, r)
	}))
}

func (s *storeImpl) GetBackendInfo() (backend.BackendInfo, error) {
	return s.backend.GetInfo(), nil
}
