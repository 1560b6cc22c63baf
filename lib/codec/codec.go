package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/ValentinKolb/aKV/lib/backend"
)

// --------------------------------------------------------------------------
// Wire tags
// --------------------------------------------------------------------------

const (
	tagNil    = 0x00
	tagFalse  = 0x01
	tagTrue   = 0x02
	tagInt    = 0x03
	tagFloat  = 0x04
	tagString = 0x05
	tagBytes  = 0x06
	tagList   = 0x07
	tagMap    = 0x08
)

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Marshal encodes a value into its canonical binary form. The encoding is
// deterministic: map entries are written in ascending key order, so two
// structurally equal values always produce identical bytes regardless of
// construction order.
//
// Supported value types are nil, bool, int64, float64, string, []byte,
// []backend.Value and map[string]backend.Value. Any other type is an error.
func Marshal(v backend.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v backend.Value) error {
	switch val := v.(type) {
	case nil:
		buf.WriteByte(tagNil)
	case bool:
		if val {
			buf.WriteByte(tagTrue)
		} else {
			buf.WriteByte(tagFalse)
		}
	case int64:
		buf.WriteByte(tagInt)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(val))
		buf.Write(b[:])
	case float64:
		buf.WriteByte(tagFloat)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(val))
		buf.Write(b[:])
	case string:
		buf.WriteByte(tagString)
		writeLen(buf, len(val))
		buf.WriteString(val)
	case []byte:
		buf.WriteByte(tagBytes)
		writeLen(buf, len(val))
		buf.Write(val)
	case []backend.Value:
		buf.WriteByte(tagList)
		writeLen(buf, len(val))
		for _, elem := range val {
			if err := encode(buf, elem); err != nil {
				return err
			}
		}
	case map[string]backend.Value:
		buf.WriteByte(tagMap)
		writeLen(buf, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeLen(buf, len(k))
			buf.WriteString(k)
			if err := encode(buf, val[k]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("codec: unsupported value type %T", v)
	}
	return nil
}

func writeLen(buf *bytes.Buffer, n int) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	buf.Write(b[:])
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// Unmarshal decodes a value from its canonical binary form. It is the exact
// inverse of Marshal.
func Unmarshal(data []byte) (backend.Value, error) {
	r := bytes.NewReader(data)
	v, err := decode(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("codec: %d trailing bytes after value", r.Len())
	}
	return v, nil
}

func decode(r *bytes.Reader) (backend.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("codec: truncated value: %w", err)
	}

	switch tag {
	case tagNil:
		return nil, nil
	case tagFalse:
		return false, nil
	case tagTrue:
		return true, nil
	case tagInt:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("codec: truncated int: %w", err)
		}
		return int64(binary.LittleEndian.Uint64(b[:])), nil
	case tagFloat:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("codec: truncated float: %w", err)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
	case tagString:
		b, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case tagBytes:
		b, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		return b, nil
	case tagList:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		list := make([]backend.Value, n)
		for i := 0; i < n; i++ {
			if list[i], err = decode(r); err != nil {
				return nil, err
			}
		}
		return list, nil
	case tagMap:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		m := make(map[string]backend.Value, n)
		for i := 0; i < n; i++ {
			key, err := readLenPrefixed(r)
			if err != nil {
				return nil, err
			}
			if m[string(key)], err = decode(r); err != nil {
				return nil, err
			}
		}
		return m, nil
	default:
		return nil, fmt.Errorf("codec: unknown type tag 0x%02x", tag)
	}
}

func readLen(r *bytes.Reader) (int, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("codec: truncated length: %w", err)
	}
	n := binary.LittleEndian.Uint32(b[:])
	if int(n) > r.Len() {
		return 0, fmt.Errorf("codec: length %d exceeds remaining data", n)
	}
	return int(n), nil
}

func readLenPrefixed(r *bytes.Reader) ([]byte, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("codec: truncated payload: %w", err)
	}
	return b, nil
}

// --------------------------------------------------------------------------
// Content addressing
// --------------------------------------------------------------------------

// ContentID returns the hex-encoded SHA-256 hash over the canonical encoding
// of a value. Structurally equal values yield the same ID, and the ID is
// stable across processes and restarts.
func ContentID(v backend.Value) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
