package common

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/aKV/lib/store"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string   `json:"key,omitempty"`   // Used for: Append, ReadLog, BGet, BAssoc
	Path  []string `json:"path,omitempty"`  // Used for: Exists, Get, Assoc
	Value []byte   `json:"value,omitempty"` // Codec-encoded value or raw binary payload
	ID    string   `json:"id,omitempty"`    // Used for: Append responses (journal entry ID)

	// Response only fields
	Ok   bool   `json:"ok,omitempty"`   // Used for: Exists, Get responses (value found)
	Err  string `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message
	Code uint64 `json:"code,omitempty"` // store.RetCode of the error, zero on success

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// setErr fills the error fields of a response from an error value.
func (m *Message) setErr(err error) *Message {
	if err != nil {
		m.Err = err.Error()
		m.Code = uint64(store.CodeOf(err))
	}
	return m
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewExistsRequest creates a new Exists request
func NewExistsRequest(path []string) *Message {
	return &Message{
		MsgType: MsgTKVExists,
		Path:    path,
	}
}

// NewExistsResponse creates a new Exists response
func NewExistsResponse(ok bool, err error) *Message {
	return (&Message{
		MsgType: MsgTKVExists,
		Ok:      ok,
	}).setErr(err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(path []string) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Path:    path,
	}
}

// NewGetResponse creates a new Get response. The value is codec-encoded.
func NewGetResponse(value []byte, ok bool, err error) *Message {
	return (&Message{
		MsgType: MsgTKVGet,
		Ok:      ok,
		Value:   value,
	}).setErr(err)
}

// NewAssocRequest creates a new Assoc request. The value is codec-encoded.
func NewAssocRequest(path []string, value []byte) *Message {
	return &Message{
		MsgType: MsgTKVAssoc,
		Path:    path,
		Value:   value,
	}
}

// NewAssocResponse creates a new Assoc response. The pre- and post-write
// values travel as one codec-encoded two-element list.
func NewAssocResponse(values []byte, err error) *Message {
	return (&Message{
		MsgType: MsgTKVAssoc,
		Value:   values,
	}).setErr(err)
}

// NewAppendRequest creates a new journal Append request. The element is
// codec-encoded.
func NewAppendRequest(key string, element []byte) *Message {
	return &Message{
		MsgType: MsgTLogAppend,
		Key:     key,
		Value:   element,
	}
}

// NewAppendResponse creates a new journal Append response carrying the
// content-derived ID of the new entry.
func NewAppendResponse(entryID string, err error) *Message {
	return (&Message{
		MsgType: MsgTLogAppend,
		ID:      entryID,
	}).setErr(err)
}

// NewReadLogRequest creates a new journal ReadLog request
func NewReadLogRequest(key string) *Message {
	return &Message{
		MsgType: MsgTLogRead,
		Key:     key,
	}
}

// NewReadLogResponse creates a new journal ReadLog response. The elements
// travel as one codec-encoded list in append order.
func NewReadLogResponse(elements []byte, err error) *Message {
	return (&Message{
		MsgType: MsgTLogRead,
		Value:   elements,
	}).setErr(err)
}

// NewBGetRequest creates a new binary Get request
func NewBGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTBinGet,
		Key:     key,
	}
}

// NewBGetResponse creates a new binary Get response carrying the raw payload
func NewBGetResponse(payload []byte, err error) *Message {
	return (&Message{
		MsgType: MsgTBinGet,
		Value:   payload,
	}).setErr(err)
}

// NewBAssocRequest creates a new binary Assoc request carrying the raw payload
func NewBAssocRequest(key string, payload []byte) *Message {
	return &Message{
		MsgType: MsgTBinAssoc,
		Key:     key,
		Value:   payload,
	}
}

// NewBAssocResponse creates a new binary Assoc response
func NewBAssocResponse(err error) *Message {
	return (&Message{
		MsgType: MsgTBinAssoc,
	}).setErr(err)
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	return (&Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}).setErr(err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTKVExists:
		return "exists"
	case MsgTKVGet:
		return "get"
	case MsgTKVAssoc:
		return "assoc"
	case MsgTLogAppend:
		return "append"
	case MsgTLogRead:
		return "readLog"
	case MsgTBinGet:
		return "bget"
	case MsgTBinAssoc:
		return "bassoc"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "exists":
		*t = MsgTKVExists
	case "get":
		*t = MsgTKVGet
	case "assoc":
		*t = MsgTKVAssoc
	case "append":
		*t = MsgTLogAppend
	case "readLog":
		*t = MsgTLogRead
	case "bget":
		*t = MsgTBinGet
	case "bassoc":
		*t = MsgTBinAssoc
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Document operations

	MsgTKVExists // Check whether a key path holds a value
	MsgTKVGet    // Get the value at a key path
	MsgTKVAssoc  // Set the value at a key path

	// Journal operations

	MsgTLogAppend // Append an element to a journal
	MsgTLogRead   // Read all elements of a journal

	// Binary operations

	MsgTBinGet   // Get a binary payload
	MsgTBinAssoc // Store a binary payload

	// Custom operations

	MsgTCustom // Custom operation type
)
