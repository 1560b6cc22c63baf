package server

import (
	"fmt"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/codec"
	"github.com/ValentinKolb/aKV/lib/store"
	"github.com/ValentinKolb/aKV/rpc/common"
)

func NewJournalServerAdapter() IRPCServerAdapter {
	return &journalServerAdapterImpl{}
}

type journalServerAdapterImpl struct{}

func (adapter *journalServerAdapterImpl) Handle(req *common.Message, s store.IStore) *common.Message {
	// Check for nil store
	if s == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTLogAppend:
		element, err := codec.Unmarshal(req.Value)
		if err != nil {
			return common.NewAppendResponse("", store.NewErrorf(store.RetCInvalidOperation, "failed to decode element: %v", err))
		}
		entryID, err := s.Append(req.Key, element)
		return common.NewAppendResponse(entryID, err)

	case common.MsgTLogRead:
		elements, err := s.ReadLog(req.Key)
		if err != nil {
			return common.NewReadLogResponse(nil, err)
		}
		// ship the whole journal as one encoded list, preserving order
		encoded, err := codec.Marshal([]backend.Value(elements))
		if err != nil {
			return common.NewReadLogResponse(nil, store.NewErrorf(store.RetCBackendFailure, "failed to encode elements: %v", err))
		}
		return common.NewReadLogResponse(encoded, nil)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC JournalAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
