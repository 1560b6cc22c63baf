package client

import (
	"bytes"
	"io"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/codec"
	"github.com/ValentinKolb/aKV/lib/store"
	"github.com/ValentinKolb/aKV/rpc/common"
	"github.com/ValentinKolb/aKV/rpc/serializer"
	"github.com/ValentinKolb/aKV/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a store.IStore and an error
//
// The returned store supports every operation except Update: a transform is
// an arbitrary function and cannot be shipped to the server, so Update
// reports store.RetCUnsupportedOperation.
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC store
	s := rpcStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC store
	return &s, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Exists(path []string) (loaded bool, err error) {
	req := common.NewExistsRequest(path)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcStore) Get(path []string) (value backend.Value, loaded bool, err error) {
	req := common.NewGetRequest(path)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	if !resp.Ok {
		return nil, false, nil
	}
	value, err = codec.Unmarshal(resp.Value)
	if err != nil {
		return nil, false, store.NewErrorf(store.RetCBackendFailure, "failed to decode value: %v", err)
	}
	return value, true, nil
}

// Update is not implemented for rpc: the transform closure runs in the
// caller's process and cannot be serialized
func (i *rpcStore) Update(path []string, fn store.TransformFunc) (oldVal, newVal backend.Value, err error) {
	return nil, nil, store.NewError(store.RetCUnsupportedOperation, "the Update() method is not implemented in the rpc client adapter")
}

func (i *rpcStore) Assoc(path []string, value backend.Value) (oldVal, newVal backend.Value, err error) {
	encoded, err := codec.Marshal(value)
	if err != nil {
		return nil, nil, store.NewErrorf(store.RetCInvalidOperation, "value not encodable: %v", err)
	}
	req := common.NewAssocRequest(path, encoded)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, nil, err
	}

	// the response carries the pre- and post-write values as one encoded pair
	decoded, err := codec.Unmarshal(resp.Value)
	if err != nil {
		return nil, nil, store.NewErrorf(store.RetCBackendFailure, "failed to decode values: %v", err)
	}
	pair, ok := decoded.([]backend.Value)
	if !ok || len(pair) != 2 {
		return nil, nil, store.NewErrorf(store.RetCBackendFailure, "unexpected value pair %T", decoded)
	}
	return pair[0], pair[1], nil
}

func (i *rpcStore) Append(key string, element backend.Value) (entryID string, err error) {
	encoded, err := codec.Marshal(element)
	if err != nil {
		return "", store.NewErrorf(store.RetCInvalidOperation, "element not encodable: %v", err)
	}
	req := common.NewAppendRequest(key, encoded)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (i *rpcStore) ReadLog(key string) (elements []backend.Value, err error) {
	req := common.NewReadLogRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	decoded, err := codec.Unmarshal(resp.Value)
	if err != nil {
		return nil, store.NewErrorf(store.RetCBackendFailure, "failed to decode elements: %v", err)
	}
	list, ok := decoded.([]backend.Value)
	if !ok {
		return nil, store.NewErrorf(store.RetCBackendFailure, "unexpected element list type %T", decoded)
	}
	return list, nil
}

func (i *rpcStore) BGet(key string, fn func(r io.Reader) error) (err error) {
	req := common.NewBGetRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return err
	}
	return fn(bytes.NewReader(resp.Value))
}

func (i *rpcStore) BAssoc(key string, r io.Reader) (err error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return store.NewErrorf(store.RetCInvalidOperation, "failed to read payload: %v", err)
	}
	req := common.NewBAssocRequest(key, payload)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

// GetBackendInfo is not implemented for rpc
func (i *rpcStore) GetBackendInfo() (info backend.BackendInfo, err error) {
	return backend.BackendInfo{}, store.NewError(store.RetCUnsupportedOperation, "the GetBackendInfo() method is not implemented in the rpc client adapter")
}
