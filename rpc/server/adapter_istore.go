package server

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/codec"
	"github.com/ValentinKolb/aKV/lib/store"
	"github.com/ValentinKolb/aKV/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{journal: NewJournalServerAdapter()}
}

// iStoreServerAdapterImpl serves the full store surface. Journal messages are
// delegated to the journal adapter, so a kv shard is a superset of a journal
// shard.
type iStoreServerAdapterImpl struct {
	journal IRPCServerAdapter
}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, s store.IStore) *common.Message {
	// Check for nil store
	if s == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTKVExists:
		ok, err := s.Exists(req.Path)
		return common.NewExistsResponse(ok, err)

	case common.MsgTKVGet:
		val, ok, err := s.Get(req.Path)
		if err != nil || !ok {
			return common.NewGetResponse(nil, ok, err)
		}
		encoded, err := codec.Marshal(val)
		if err != nil {
			return common.NewGetResponse(nil, false, store.NewErrorf(store.RetCBackendFailure, "failed to encode value: %v", err))
		}
		return common.NewGetResponse(encoded, true, nil)

	case common.MsgTKVAssoc:
		val, err := codec.Unmarshal(req.Value)
		if err != nil {
			return common.NewAssocResponse(nil, store.NewErrorf(store.RetCInvalidOperation, "failed to decode value: %v", err))
		}
		oldVal, newVal, err := s.Assoc(req.Path, val)
		if err != nil {
			return common.NewAssocResponse(nil, err)
		}
		encoded, err := codec.Marshal([]backend.Value{oldVal, newVal})
		if err != nil {
			return common.NewAssocResponse(nil, store.NewErrorf(store.RetCBackendFailure, "failed to encode values: %v", err))
		}
		return common.NewAssocResponse(encoded, nil)

	case common.MsgTBinGet:
		var payload []byte
		err := s.BGet(req.Key, func(r io.Reader) error {
			var err error
			payload, err = io.ReadAll(r)
			return err
		})
		return common.NewBGetResponse(payload, err)

	case common.MsgTBinAssoc:
		return common.NewBAssocResponse(s.BAssoc(req.Key, bytes.NewReader(req.Value)))

	case common.MsgTLogAppend, common.MsgTLogRead:
		return adapter.journal.Handle(req, s)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
