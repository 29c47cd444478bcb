package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	version    byte = 1
	kindSingle byte = 1
	kindList   byte = 2
	kindScalar byte = 3

	header = 4 + 1 + 1
)

var (
	ErrCorrupt = errors.New("gencache: corrupt entry")
	magic4     = [...]byte{'G', 'E', 'N', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

func writeHeader(buf *bytes.Buffer, kind byte) {
	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)
}

func checkHeader(b []byte, kind byte, min int) bool {
	return len(b) >= min && hasMagic(b) && b[4] == version && b[5] == kind
}

// Single: magic(4) | ver(1) | kind(1=single) | vlen(u32 be) | payload(vlen)
func EncodeSingle(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(header + 4 + len(payload))
	writeHeader(&buf, kindSingle)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)
	return buf.Bytes()
}

func DecodeSingle(b []byte) ([]byte, error) {
	if !checkHeader(b, kindSingle, header+4) {
		return nil, ErrCorrupt
	}
	off := header
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off { // strict: no trailing bytes
		return nil, ErrCorrupt
	}
	return b[off:], nil
}

// List:
//
//	magic(4) | ver(1) | kind(2=list) | n(u32 be)
//	vlen(u32 be) | payload(vlen) * n
func EncodeList(payloads [][]byte) ([]byte, error) {
	total := header + 4
	for _, p := range payloads {
		if uint64(len(p)) > 0xFFFFFFFF {
			return nil, fmt.Errorf("gencache: list item too large: %d bytes", len(p))
		}
		total += 4 + len(p)
	}

	var buf bytes.Buffer
	buf.Grow(total)
	writeHeader(&buf, kindList)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payloads)))
	buf.Write(u4[:])

	for _, p := range payloads {
		binary.BigEndian.PutUint32(u4[:], uint32(len(p)))
		buf.Write(u4[:])
		buf.Write(p)
	}
	return buf.Bytes(), nil
}

func DecodeList(b []byte) ([][]byte, error) {
	if !checkHeader(b, kindList, header+4) {
		return nil, ErrCorrupt
	}
	off := header
	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// every item needs at least its 4-byte length; don't trust n for capacity
	if n > (len(b)-off)/4 {
		return nil, ErrCorrupt
	}

	items := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if off+4 > len(b) {
			return nil, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off { // overflow-safe bound check
			return nil, ErrCorrupt
		}
		items = append(items, b[off:off+vlen])
		off += vlen
	}
	if off != len(b) {
		return nil, ErrCorrupt
	}
	return items, nil
}

// Scalar: magic(4) | ver(1) | kind(3=scalar) | value(u64 be)
func EncodeScalar(v uint64) []byte {
	var buf bytes.Buffer
	buf.Grow(header + 8)
	writeHeader(&buf, kindScalar)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], v)
	buf.Write(u8[:])
	return buf.Bytes()
}

func DecodeScalar(b []byte) (uint64, error) {
	if len(b) != header+8 || !checkHeader(b, kindScalar, header+8) {
		return 0, ErrCorrupt
	}
	return binary.BigEndian.Uint64(b[header:]), nil
}
