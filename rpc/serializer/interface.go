package serializer

import "github.com/ValentinKolb/aKV/rpc/common"

// IRPCSerializer converts a common.Message, the single envelope every
// akv request and response travels in, to and from its wire bytes.
// Implementations must round-trip all envelope fields including the
// semantic result code and the binary Value payload.
type IRPCSerializer interface {
	// Serialize encodes the message into a byte slice ready for framing
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes a framed byte slice into the given message
	Deserialize(b []byte, msg *common.Message) error
}
