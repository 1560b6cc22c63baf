package util

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/aKV/lib/backend"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		arg  string
		want backend.Value
	}{
		{"null", nil},
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"hello world", "hello world"},
		{"123abc", "123abc"},
		{`["a", 1, true]`, []backend.Value{"a", int64(1), true}},
		{`{"name": "alice", "age": 30}`, map[string]backend.Value{"name": "alice", "age": int64(30)}},
		{`{"nested": {"pi": 3.5}}`, map[string]backend.Value{"nested": map[string]backend.Value{"pi": 3.5}}},
	}

	for _, test := range tests {
		got, err := ParseValue(test.arg)
		if err != nil {
			t.Errorf("ParseValue(%q) failed: %v", test.arg, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("ParseValue(%q) = %#v, want %#v", test.arg, got, test.want)
		}
	}
}

func TestParseValueInvalidJSON(t *testing.T) {
	if _, err := ParseValue(`{"broken":`); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value backend.Value
		want  string
	}{
		{nil, "null"},
		{true, "true"},
		{int64(42), "42"},
		{"hello", "hello"},
		{[]byte{0x01, 0x02}, "AQI="},
		{[]backend.Value{int64(1), "a"}, `[1,"a"]`},
		{map[string]backend.Value{"k": int64(1)}, `{"k":1}`},
	}

	for _, test := range tests {
		if got := FormatValue(test.value); got != test.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", test.value, got, test.want)
		}
	}
}
