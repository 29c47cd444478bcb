package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack serializes values with vmihailenco/msgpack/v5. The zero value uses
// `msgpack` struct tags; set Tag to "json" to reuse existing JSON tags.
// Integers are written in their smallest form.
type Msgpack[V any] struct {
	Tag string
}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (c Msgpack[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(&buf)
	enc.UseCompactInts(true)
	if c.Tag != "" {
		enc.SetCustomStructTag(c.Tag)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(bytes.NewReader(b))
	if c.Tag != "" {
		dec.SetCustomStructTag(c.Tag)
	}
	err := dec.Decode(&v)
	return v, err
}
