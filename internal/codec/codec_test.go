package codec

import (
	"errors"
	"reflect"
	"testing"
)

type point struct {
	X, Y int
}

type shape struct {
	Name   string
	Points []point
	Center *point
	Meta   map[string]any
}

type unregistered struct {
	Field string
}

func init() {
	Register(shape{}, &shape{})
}

func TestRoundTrip_Map(t *testing.T) {
	in := map[string]any{"a": 1}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(in, out) {
		t.Errorf("expected %v, got %v", in, out)
	}
}

func TestRoundTrip_Primitives(t *testing.T) {
	values := []any{42, "hello", 3.5, true, []string{"x", "y"}}

	for _, in := range values {
		data, err := Encode(in)
		if err != nil {
			t.Fatalf("encode %T: %v", in, err)
		}
		out, err := Decode(data)
		if err != nil {
			t.Fatalf("decode %T: %v", in, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("expected %v (%T), got %v (%T)", in, in, out, out)
		}
	}
}

func TestRoundTrip_NestedCustomTypes(t *testing.T) {
	in := shape{
		Name:   "triangle",
		Points: []point{{0, 0}, {1, 0}, {0, 1}},
		Center: &point{X: 1, Y: 1},
		Meta:   map[string]any{"color": "red", "nested": map[string]any{"depth": 2}},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := DecodeAs[shape](data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(in, out) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestRoundTrip_Pointer(t *testing.T) {
	in := &shape{Name: "dot", Points: []point{{5, 5}}}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := DecodeAs[*shape](data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(in, out) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestEncode_Nil(t *testing.T) {
	_, err := Encode(nil)
	if !errors.Is(err, ErrEncode) {
		t.Errorf("expected ErrEncode, got %v", err)
	}
}

func TestEncode_UnregisteredType(t *testing.T) {
	_, err := Encode(unregistered{Field: "x"})
	if !errors.Is(err, ErrEncode) {
		t.Errorf("expected ErrEncode, got %v", err)
	}
	if !errors.Is(err, ErrUnregisteredType) {
		t.Errorf("expected ErrUnregisteredType, got %v", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("definitely not gob"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(nil)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecodeAs_WrongType(t *testing.T) {
	data, err := Encode("text")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, err = DecodeAs[int](data)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestRegister_NestedInterfaceValues(t *testing.T) {
	type counters map[string]int

	obj := map[string]any{"counts": counters{"a": 1}}
	if _, err := Encode(obj); !errors.Is(err, ErrUnregisteredType) {
		t.Fatalf("value in an interface slot should need registration, got %v", err)
	}

	Register(counters{})

	data, err := Encode(obj)
	if err != nil {
		t.Fatalf("encode after Register: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, obj) {
		t.Errorf("round trip mismatch: %#v != %#v", got, obj)
	}
}
