package util

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/aKV/lib/backend"
)

// ParseValue converts a command line argument into a store value. Scalars are
// recognized directly (null, true, false, integers, floats), anything starting
// with '[' or '{' is parsed as JSON, everything else is taken as a plain
// string.
func ParseValue(arg string) (backend.Value, error) {
	switch arg {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	if i, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		return f, nil
	}

	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		decoder := json.NewDecoder(strings.NewReader(trimmed))
		decoder.UseNumber()
		var raw interface{}
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON value: %v", err)
		}
		return fromJSON(raw)
	}

	return arg, nil
}

// fromJSON converts a decoded JSON document into a store value. Numbers
// without a fractional part become integers.
func fromJSON(raw interface{}) (backend.Value, error) {
	switch v := raw.(type) {
	case nil, bool, string:
		return v, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.Float64()
	case []interface{}:
		list := make([]backend.Value, len(v))
		for i, elem := range v {
			converted, err := fromJSON(elem)
			if err != nil {
				return nil, err
			}
			list[i] = converted
		}
		return list, nil
	case map[string]interface{}:
		m := make(map[string]backend.Value, len(v))
		for key, elem := range v {
			converted, err := fromJSON(elem)
			if err != nil {
				return nil, err
			}
			m[key] = converted
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value: %T", raw)
	}
}

// FormatValue renders a store value for terminal output. Composite values are
// rendered as JSON, binary payloads as base64.
func FormatValue(value backend.Value) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case bool, int64, float64:
		return fmt.Sprintf("%v", v)
	default:
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(toJSON(value)); err != nil {
			return fmt.Sprintf("%v", value)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}

// toJSON converts a store value into a JSON-encodable form.
func toJSON(value backend.Value) interface{} {
	switch v := value.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case []backend.Value:
		list := make([]interface{}, len(v))
		for i, elem := range v {
			list[i] = toJSON(elem)
		}
		return list
	case map[string]backend.Value:
		m := make(map[string]interface{}, len(v))
		for key, elem := range v {
			m[key] = toJSON(elem)
		}
		return m
	default:
		return v
	}
}
