package server

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/aKV/lib/backend"
	"github.com/ValentinKolb/aKV/lib/backend/engines/aspen"
	"github.com/ValentinKolb/aKV/lib/codec"
	"github.com/ValentinKolb/aKV/lib/store"
	"github.com/ValentinKolb/aKV/lib/store/cstore"
	"github.com/ValentinKolb/aKV/rpc/common"
)

func newTestStore() store.IStore {
	return cstore.NewConsistentStore(func() backend.KVBackend {
		return aspen.NewAspenBackend(nil)
	})
}

func mustEncode(t *testing.T, v backend.Value) []byte {
	t.Helper()
	data, err := codec.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestIStoreAdapterDocumentOps(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	s := newTestStore()

	// assoc: the response carries the (old, new) pair as a two-element list
	doc := map[string]backend.Value{"age": int64(30)}
	resp := adapter.Handle(common.NewAssocRequest([]string{"users", "alice"}, mustEncode(t, doc)), s)
	if resp.Err != "" {
		t.Fatalf("Assoc failed: %s", resp.Err)
	}
	decoded, err := codec.Unmarshal(resp.Value)
	if err != nil {
		t.Fatal(err)
	}
	if want := []backend.Value{nil, doc}; !reflect.DeepEqual(decoded, want) {
		t.Errorf("expected Assoc pair %v, got %v", want, decoded)
	}

	// exists
	resp = adapter.Handle(common.NewExistsRequest([]string{"users", "alice", "age"}), s)
	if resp.Err != "" || !resp.Ok {
		t.Errorf("expected Exists ok, got %+v", resp)
	}
	resp = adapter.Handle(common.NewExistsRequest([]string{"users", "bob"}), s)
	if resp.Err != "" || resp.Ok {
		t.Errorf("expected Exists false, got %+v", resp)
	}

	// get
	resp = adapter.Handle(common.NewGetRequest([]string{"users", "alice", "age"}), s)
	if resp.Err != "" || !resp.Ok {
		t.Fatalf("Get failed: %+v", resp)
	}
	v, err := codec.Unmarshal(resp.Value)
	if err != nil || v != int64(30) {
		t.Errorf("expected 30, got (%v, %v)", v, err)
	}

	// get missing: no value in the response
	resp = adapter.Handle(common.NewGetRequest([]string{"nope"}), s)
	if resp.Err != "" || resp.Ok || resp.Value != nil {
		t.Errorf("expected empty Get response, got %+v", resp)
	}
}

func TestIStoreAdapterBinaryOps(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	s := newTestStore()

	payload := []byte("binary payload")
	resp := adapter.Handle(common.NewBAssocRequest("asset", payload), s)
	if resp.Err != "" {
		t.Fatalf("BAssoc failed: %s", resp.Err)
	}

	resp = adapter.Handle(common.NewBGetRequest("asset"), s)
	if resp.Err != "" || !reflect.DeepEqual(resp.Value, payload) {
		t.Errorf("expected payload back, got %+v", resp)
	}

	// missing payload yields an error response
	resp = adapter.Handle(common.NewBGetRequest("nope"), s)
	if resp.Err == "" {
		t.Error("expected error for missing payload")
	}
}

func TestJournalAdapter(t *testing.T) {
	adapter := NewJournalServerAdapter()
	s := newTestStore()

	// append two elements
	resp := adapter.Handle(common.NewAppendRequest("events", mustEncode(t, "login")), s)
	if resp.Err != "" || len(resp.ID) != 64 {
		t.Fatalf("Append failed: %+v", resp)
	}
	resp = adapter.Handle(common.NewAppendRequest("events", mustEncode(t, "logout")), s)
	if resp.Err != "" {
		t.Fatalf("Append failed: %s", resp.Err)
	}

	// read them back in order
	resp = adapter.Handle(common.NewReadLogRequest("events"), s)
	if resp.Err != "" {
		t.Fatalf("ReadLog failed: %s", resp.Err)
	}
	decoded, err := codec.Unmarshal(resp.Value)
	if err != nil {
		t.Fatal(err)
	}
	if want := []backend.Value{"login", "logout"}; !reflect.DeepEqual(decoded, want) {
		t.Errorf("expected %v, got %v", want, decoded)
	}

	// document ops are refused on a journal shard
	resp = adapter.Handle(common.NewGetRequest([]string{"events"}), s)
	if resp.MsgType != common.MsgTError {
		t.Errorf("expected error response for document op, got %+v", resp)
	}
}

func TestJournalAdapterNotAJournal(t *testing.T) {
	istore := NewIStoreServerAdapter()
	s := newTestStore()

	// write plain data, then try journal ops against it
	resp := istore.Handle(common.NewAssocRequest([]string{"plain"}, mustEncode(t, "data")), s)
	if resp.Err != "" {
		t.Fatal(resp.Err)
	}

	resp = istore.Handle(common.NewAppendRequest("plain", mustEncode(t, "x")), s)
	if resp.Err == "" || store.RetCode(resp.Code) != store.RetCNotAJournal {
		t.Errorf("expected NotAJournal error code, got %+v", resp)
	}

	resp = istore.Handle(common.NewReadLogRequest("plain"), s)
	if resp.Err == "" || store.RetCode(resp.Code) != store.RetCNotAJournal {
		t.Errorf("expected NotAJournal error code, got %+v", resp)
	}
}
