package codec

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ValentinKolb/aKV/lib/backend"
)

func TestRoundTrip(t *testing.T) {
	values := []backend.Value{
		nil,
		true,
		false,
		int64(0),
		int64(-42),
		int64(1 << 60),
		float64(3.14159),
		"",
		"hello world",
		[]byte{},
		[]byte{0x00, 0xff, 0x7f},
		[]backend.Value{int64(1), "two", nil},
		map[string]backend.Value{
			"name": "alice",
			"age":  int64(30),
			"tags": []backend.Value{"a", "b"},
			"meta": map[string]backend.Value{"active": true},
		},
	}

	for _, v := range values {
		data, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%v) failed: %v", v, err)
		}
		got, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal of %v failed: %v", v, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Errorf("round trip mismatch: want %#v, got %#v", v, got)
		}
	}
}

func TestDeterministicMapOrder(t *testing.T) {
	// build the same map twice with different insertion order
	a := map[string]backend.Value{}
	for _, k := range []string{"alpha", "beta", "gamma", "delta"} {
		a[k] = int64(len(k))
	}
	b := map[string]backend.Value{}
	for _, k := range []string{"delta", "gamma", "beta", "alpha"} {
		b[k] = int64(len(k))
	}

	encA, err := Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	encB, err := Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(encA, encB) {
		t.Error("encodings of structurally equal maps differ")
	}
}

func TestContentID(t *testing.T) {
	v1 := map[string]backend.Value{"previous": nil, "element": "login"}
	v2 := map[string]backend.Value{"element": "login", "previous": nil}

	id1, err := ContentID(v1)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := ContentID(v2)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("equal values produced different IDs: %s vs %s", id1, id2)
	}
	if len(id1) != 64 {
		t.Errorf("expected 64-char hex ID, got %d chars", len(id1))
	}

	id3, err := ContentID(map[string]backend.Value{"previous": nil, "element": "logout"})
	if err != nil {
		t.Fatal(err)
	}
	if id3 == id1 {
		t.Error("different values produced the same ID")
	}
}

func TestTypeDistinction(t *testing.T) {
	// int64 and float64 with equal numeric value must not collide
	encInt, _ := Marshal(int64(1))
	encFloat, _ := Marshal(float64(1))
	if bytes.Equal(encInt, encFloat) {
		t.Error("int64 and float64 encodings collide")
	}

	// string and []byte with equal content must not collide
	encStr, _ := Marshal("abc")
	encBytes, _ := Marshal([]byte("abc"))
	if bytes.Equal(encStr, encBytes) {
		t.Error("string and []byte encodings collide")
	}
}

func TestUnsupportedType(t *testing.T) {
	if _, err := Marshal(int(1)); err == nil {
		t.Error("expected error for plain int")
	}
	if _, err := Marshal(struct{}{}); err == nil {
		t.Error("expected error for struct")
	}
}

func TestUnmarshalMalformed(t *testing.T) {
	cases := [][]byte{
		{},                       // empty
		{0xff},                   // unknown tag
		{0x03, 0x01},             // truncated int
		{0x05, 0xff, 0xff, 0xff}, // truncated length
		append(mustMarshal(t, int64(1)), 0x00), // trailing bytes
	}
	for _, data := range cases {
		if _, err := Unmarshal(data); err == nil {
			t.Errorf("expected error for %v", data)
		}
	}
}

func mustMarshal(t *testing.T, v backend.Value) []byte {
	t.Helper()
	data, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
