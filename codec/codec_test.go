package codec

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type contact struct {
	ID      int       `json:"id" msgpack:"id" cbor:"id"`
	Name    string    `json:"name" msgpack:"name" cbor:"name"`
	Created time.Time `json:"created" msgpack:"created" cbor:"created"`
}

func roundTrip[V any](t *testing.T, c Codec[V], v V) V {
	t.Helper()
	b, err := c.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return out
}

func TestStructCodecs(t *testing.T) {
	in := contact{ID: 7, Name: "Ada", Created: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	codecs := map[string]Codec[contact]{
		"json":         JSON[contact]{},
		"msgpack":      Msgpack[contact]{},
		"msgpack-json": Msgpack[contact]{Tag: "json"},
		"cbor":         MustCBOR[contact](CBOROptions{}),
		"cbor-det":     MustCBOR[contact](CBOROptions{Deterministic: true}),
	}
	for name, c := range codecs {
		out := roundTrip(t, c, in)
		if out.ID != in.ID || out.Name != in.Name || !out.Created.Equal(in.Created) {
			t.Fatalf("%s: got %+v want %+v", name, out, in)
		}
	}
}

func TestDeterministicCBOR(t *testing.T) {
	c := MustCBOR[map[string]int](CBOROptions{Deterministic: true})
	a, err := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		b, _ := c.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
		if string(a) != string(b) {
			t.Fatalf("deterministic encoding changed between calls")
		}
	}
}

func TestCBORDecodeLimits(t *testing.T) {
	c := MustCBOR[[]int](CBOROptions{MaxArrayElements: 16})
	b, err := c.Encode(make([]int, 17))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := c.Decode(b); err == nil {
		t.Fatalf("expected array limit error")
	}
	if _, err := NewCBOR[int](CBOROptions{MaxNestedLevels: 1}); err == nil {
		t.Fatalf("expected invalid nesting limit to be rejected")
	}
}

func TestMsgpackJSONTags(t *testing.T) {
	type tagged struct {
		ID int `json:"identifier"`
	}
	b, err := (Msgpack[tagged]{Tag: "json"}).Encode(tagged{ID: 3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	m, err := (Msgpack[map[string]int]{}).Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m["identifier"] != 3 {
		t.Fatalf("json tag not used: %v", m)
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	out := roundTrip[*wrapperspb.StringValue](t, c, wrapperspb.String("hello"))
	if !proto.Equal(out, wrapperspb.String("hello")) {
		t.Fatalf("got %v", out)
	}

	var unset Protobuf[*wrapperspb.StringValue]
	if _, err := unset.Decode(nil); err == nil {
		t.Fatalf("codec without constructor must fail to decode")
	}
}

func TestLimitCodec(t *testing.T) {
	c := LimitCodec[string]{Inner: String{}, MaxDecode: 4}
	if v, err := c.Decode([]byte("abcd")); err != nil || v != "abcd" {
		t.Fatalf("at limit: v=%q err=%v", v, err)
	}
	if _, err := c.Decode([]byte("abcde")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	unlimited := LimitCodec[string]{Inner: String{}}
	if _, err := unlimited.Decode(make([]byte, 1<<16)); err != nil {
		t.Fatalf("MaxDecode 0 must not limit: %v", err)
	}
	b, _ := c.Encode("much longer than four")
	if len(b) != len("much longer than four") {
		t.Fatalf("Encode must not be limited")
	}
}

func TestRawCodecs(t *testing.T) {
	if got := roundTrip[[]byte](t, Bytes{}, []byte{0, 1, 2}); len(got) != 3 || got[2] != 2 {
		t.Fatalf("Bytes: %v", got)
	}
	if got := roundTrip[string](t, String{}, "héllo"); got != "héllo" {
		t.Fatalf("String: %q", got)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := (JSON[contact]{}).Decode([]byte("{")); err == nil {
		t.Fatalf("json: expected error")
	}
	if _, err := (Msgpack[contact]{}).Decode([]byte{0xc1}); err == nil {
		t.Fatalf("msgpack: expected error")
	}
	if _, err := MustCBOR[contact](CBOROptions{}).Decode([]byte{0xff}); err == nil {
		t.Fatalf("cbor: expected error")
	}
}
