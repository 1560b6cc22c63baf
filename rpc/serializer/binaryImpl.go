package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/aKV/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey   byte = 1 << 0
	hasPath  byte = 1 << 1
	hasValue byte = 1 << 2
	hasID    byte = 1 << 3
	hasOk    byte = 1 << 4
	hasErr   byte = 1 << 5
	hasCode  byte = 1 << 6
	hasMeta  byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Key
	if msg.Key != "" {
		flags |= hasKey
		keyBytes := []byte(msg.Key)
		keyLen := len(keyBytes)

		// Write key length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(keyLen))
		pos += 4

		// Write key data
		copy(result[pos:pos+keyLen], keyBytes)
		pos += keyLen
	}

	// Handle Path (element count, then length-prefixed elements)
	if msg.Path != nil {
		flags |= hasPath
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Path)))
		pos += 4

		for _, elem := range msg.Path {
			elemBytes := []byte(elem)
			elemLen := len(elemBytes)

			binary.BigEndian.PutUint32(result[pos:pos+4], uint32(elemLen))
			pos += 4

			copy(result[pos:pos+elemLen], elemBytes)
			pos += elemLen
		}
	}

	// Handle Value
	if msg.Value != nil {
		flags |= hasValue
		valueLen := len(msg.Value)

		// Write value length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(valueLen))
		pos += 4

		// Write value data
		if valueLen > 0 {
			copy(result[pos:pos+valueLen], msg.Value)
			pos += valueLen
		}
	}

	// Handle ID
	if msg.ID != "" {
		flags |= hasID
		idBytes := []byte(msg.ID)
		idLen := len(idBytes)

		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(idLen))
		pos += 4

		copy(result[pos:pos+idLen], idBytes)
		pos += idLen
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errBytes := []byte(msg.Err)
		errLen := len(errBytes)

		// Write error length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		// Write error data
		copy(result[pos:pos+errLen], errBytes)
		pos += errLen
	}

	// Handle Code
	if msg.Code > 0 {
		flags |= hasCode
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Code)
		pos += 8
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		metaLen := len(msg.Meta)

		// Write meta length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(metaLen))
		pos += 4

		// Write meta data
		if metaLen > 0 {
			copy(result[pos:pos+metaLen], msg.Meta)
			pos += metaLen
		}
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	// Initialize read position
	pos := 2

	// Read Key if present
	if flags&hasKey != 0 {
		keyBytes, newPos, err := readChunk(data, pos, "key")
		if err != nil {
			return err
		}
		msg.Key = string(keyBytes)
		pos = newPos
	} else {
		msg.Key = ""
	}

	// Read Path if present
	if flags&hasPath != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for path count")
		}
		count := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		msg.Path = make([]string, 0, count)
		for i := uint32(0); i < count; i++ {
			elemBytes, newPos, err := readChunk(data, pos, "path element")
			if err != nil {
				return err
			}
			msg.Path = append(msg.Path, string(elemBytes))
			pos = newPos
		}
	} else {
		msg.Path = nil
	}

	// Read Value if present
	if flags&hasValue != 0 {
		valueBytes, newPos, err := readChunk(data, pos, "value")
		if err != nil {
			return err
		}

		// Reuse the target buffer if it is large enough
		if msg.Value == nil || cap(msg.Value) < len(valueBytes) {
			msg.Value = make([]byte, len(valueBytes))
		} else {
			msg.Value = msg.Value[:len(valueBytes)]
		}
		copy(msg.Value, valueBytes)
		pos = newPos
	} else {
		msg.Value = nil
	}

	// Read ID if present
	if flags&hasID != 0 {
		idBytes, newPos, err := readChunk(data, pos, "id")
		if err != nil {
			return err
		}
		msg.ID = string(idBytes)
		pos = newPos
	} else {
		msg.ID = ""
	}

	// Read Ok if present
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}

		msg.Ok = data[pos] != 0
		pos += 1
	} else {
		msg.Ok = false
	}

	// Read Err if present
	if flags&hasErr != 0 {
		errBytes, newPos, err := readChunk(data, pos, "error")
		if err != nil {
			return err
		}
		msg.Err = string(errBytes)
		pos = newPos
	} else {
		msg.Err = ""
	}

	// Read Code if present
	if flags&hasCode != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for code")
		}

		msg.Code = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.Code = 0
	}

	// Read Meta if present
	if flags&hasMeta != 0 {
		metaBytes, newPos, err := readChunk(data, pos, "meta")
		if err != nil {
			return err
		}

		// Reuse the target buffer if it is large enough
		if msg.Meta == nil || cap(msg.Meta) < len(metaBytes) {
			msg.Meta = make([]byte, len(metaBytes))
		} else {
			msg.Meta = msg.Meta[:len(metaBytes)]
		}
		copy(msg.Meta, metaBytes)
		pos = newPos
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readChunk reads a 4-byte length followed by that many bytes. It returns
// the chunk (a view into data, not a copy) and the new read position.
func readChunk(data []byte, pos int, what string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, 0, fmt.Errorf("data too short for %s length", what)
	}
	chunkLen := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4

	if pos+int(chunkLen) > len(data) {
		return nil, 0, fmt.Errorf("data too short for %s data", what)
	}
	return data[pos : pos+int(chunkLen)], pos + int(chunkLen), nil
}

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	// Add sizes for fields that require length encoding
	if msg.Key != "" {
		size += 4 + len(msg.Key) // 4 bytes for length + key string
	}
	if msg.Path != nil {
		size += 4 // 4 bytes for element count
		for _, elem := range msg.Path {
			size += 4 + len(elem) // 4 bytes for length + element string
		}
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value) // 4 bytes for length + value bytes
	}
	if msg.ID != "" {
		size += 4 + len(msg.ID) // 4 bytes for length + id string
	}
	if msg.Ok {
		size += 1 // 1 byte for boolean
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) // 4 bytes for length + error string
	}
	if msg.Code > 0 {
		size += 8 // uint64
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta) // 4 bytes for length + meta bytes
	}

	return size
}
