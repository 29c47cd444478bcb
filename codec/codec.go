// Package codec turns cached values into bytes and back. gencache frames the
// bytes itself (see internal/wire); a Codec only handles one value.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
