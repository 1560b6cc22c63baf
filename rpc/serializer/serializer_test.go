package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/aKV/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Assoc request with a nested path
		{
			MsgType: common.MsgTKVAssoc,
			Path:    []string{"users", "alice", "age"},
			Value:   []byte("encoded-value"),
		},

		// Get response
		{
			MsgType: common.MsgTKVGet,
			Value:   []byte("encoded-value"),
			Ok:      true,
		},

		// Append response carrying an entry ID
		{
			MsgType: common.MsgTLogAppend,
			ID:      "a3f5c9e1d7b2a3f5c9e1d7b2a3f5c9e1d7b2a3f5c9e1d7b2a3f5c9e1d7b2a3f5",
		},

		// Error response with a code
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
			Code:    2,
		},

		// Message with all fields filled
		{
			MsgType: common.MsgTBinAssoc,
			Key:     "test-key",
			Path:    []string{"a", "b"},
			Value:   []byte("test-payload"),
			ID:      "entry-id",
			Ok:      true,
			Err:     "err",
			Code:    1,
			Meta:    []byte("test-meta-data"),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			// Test each message type (don't test for MsgTUnknown since this should raise an error)
			for msgType := common.MsgTSuccess; msgType <= common.MsgTCustom; msgType++ {
				msg := common.Message{MsgType: msgType}

				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Check type
				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestBinarySerializerSpecific tests specific edge cases for the binary serializer
func TestBinarySerializerSpecific(t *testing.T) {
	serializer := NewBinarySerializer()

	// Test cases for empty or zero values
	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Message with empty strings and zero values",
			msg: common.Message{
				MsgType: common.MsgTKVAssoc,
				Key:     "",
				Value:   []byte{},
				Ok:      false,
				Err:     "",
				Meta:    []byte{},
			},
		},
		{
			name: "Message with empty strings but Ok=true",
			msg: common.Message{
				MsgType: common.MsgTKVGet,
				Key:     "",
				Ok:      true,
				Value:   nil,
			},
		},
		{
			name: "Message with empty path elements",
			msg: common.Message{
				MsgType: common.MsgTKVGet,
				Path:    []string{"", "a", ""},
			},
		},
		{
			name: "Message with empty but non-nil path",
			msg: common.Message{
				MsgType: common.MsgTKVExists,
				Path:    []string{},
			},
		},
		{
			name: "Message with empty value slice but not nil",
			msg: common.Message{
				MsgType: common.MsgTBinAssoc,
				Key:     "test",
				Value:   []byte{},
			},
		},
		{
			name: "Message with empty meta slice but not nil",
			msg: common.Message{
				MsgType: common.MsgTCustom,
				Meta:    []byte{},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Serialize
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			// Deserialize
			var result common.Message
			err = serializer.Deserialize(data, &result)
			if err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			// Scalar fields must match exactly
			if tc.msg.Key != result.Key {
				t.Errorf("Key mismatch: expected '%s', got '%s'", tc.msg.Key, result.Key)
			}
			if tc.msg.ID != result.ID {
				t.Errorf("ID mismatch: expected '%s', got '%s'", tc.msg.ID, result.ID)
			}
			if tc.msg.Ok != result.Ok {
				t.Errorf("Ok mismatch: expected %v, got %v", tc.msg.Ok, result.Ok)
			}
			if tc.msg.Err != result.Err {
				t.Errorf("Err mismatch: expected '%s', got '%s'", tc.msg.Err, result.Err)
			}
			if tc.msg.Code != result.Code {
				t.Errorf("Code mismatch: expected %d, got %d", tc.msg.Code, result.Code)
			}
			if tc.msg.MsgType != result.MsgType {
				t.Errorf("MsgType mismatch: expected %v, got %v", tc.msg.MsgType, result.MsgType)
			}

			// Special handling for slices that may be nil or empty
			checkBytes(t, "Value", tc.msg.Value, result.Value)
			checkBytes(t, "Meta", tc.msg.Meta, result.Meta)

			if (tc.msg.Path == nil) != (result.Path == nil) {
				t.Errorf("Path nil/non-nil mismatch: expected %v, got %v", tc.msg.Path, result.Path)
			} else if tc.msg.Path != nil && !reflect.DeepEqual(tc.msg.Path, result.Path) {
				t.Errorf("Path mismatch: expected %v, got %v", tc.msg.Path, result.Path)
			}
		})
	}
}

func checkBytes(t *testing.T, field string, want, got []byte) {
	t.Helper()
	if (want == nil) != (got == nil) {
		t.Errorf("%s nil/non-nil mismatch: expected %v, got %v", field, want, got)
		return
	}
	if len(want) != len(got) {
		t.Errorf("%s length mismatch: expected %d, got %d", field, len(want), len(got))
		return
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("%s content mismatch at index %d", field, i)
			return
		}
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for key",
			data:        []byte{1, 1, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims key length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Invalid length for value",
			data:        []byte{1, 4, 0, 0, 0, 10}, // Claims value length 10 but no bytes provided
			expectError: true,
		},
		{
			name:        "Truncated path element",
			data:        []byte{1, 2, 0, 0, 0, 2, 0, 0, 0, 1, 'a'}, // Claims 2 path elements but only 1 provided
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
