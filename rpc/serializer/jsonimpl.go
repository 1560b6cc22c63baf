package serializer

import (
	"encoding/json"
	"github.com/ValentinKolb/aKV/rpc/common"
)

// NewJSONSerializer creates a serializer that encodes the message envelope
// as JSON. Byte payloads (codec-encoded values, binary blobs) come out
// base64 encoded, which makes this the most debuggable but also the most
// verbose of the three formats.
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	return json.Unmarshal(b, msg)
}
