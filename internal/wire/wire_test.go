package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func mustDecodeList(t *testing.T, b []byte) [][]byte {
	t.Helper()
	items, err := DecodeList(b)
	if err != nil {
		t.Fatalf("DecodeList error: %v", err)
	}
	return items
}

func TestSingleRoundTrip(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte("hello"), {0, 1, 2, 3}} {
		got, err := DecodeSingle(EncodeSingle(payload))
		if err != nil {
			t.Fatalf("DecodeSingle: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("payload mismatch: got %x want %x", got, payload)
		}
	}
}

func TestSingleRejectsTrailingBytes(t *testing.T) {
	enc := EncodeSingle([]byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, err := DecodeSingle(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestSingleCorruptHeaders(t *testing.T) {
	enc := EncodeSingle([]byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := DecodeSingle(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := DecodeSingle(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	badKind := append([]byte(nil), enc...)
	badKind[5] = kindList
	if _, err := DecodeSingle(badKind); err == nil {
		t.Fatalf("expected error on bad kind")
	}

	if _, err := DecodeSingle(enc[:len(enc)-1]); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
	if _, err := DecodeSingle([]byte("not-wire-format")); err == nil {
		t.Fatalf("expected error on foreign bytes")
	}
}

func TestListRoundTrip(t *testing.T) {
	cases := [][][]byte{
		nil, // n=0
		{[]byte("x")},
		{[]byte("a"), nil, []byte{9, 8, 7}},
	}
	for _, items := range cases {
		enc, err := EncodeList(items)
		if err != nil {
			t.Fatalf("EncodeList: %v", err)
		}
		got := mustDecodeList(t, enc)
		if len(got) != len(items) {
			t.Fatalf("len mismatch: got %d want %d", len(got), len(items))
		}
		for i := range items {
			if !bytes.Equal(got[i], items[i]) {
				t.Fatalf("item %d mismatch: got=%x want=%x", i, got[i], items[i])
			}
		}
	}
}

func TestListRejectsTrailingBytes(t *testing.T) {
	enc, err := EncodeList([][]byte{[]byte("v")})
	if err != nil {
		t.Fatalf("EncodeList: %v", err)
	}
	enc = append(enc, 0xBE, 0xEF)
	if _, err := DecodeList(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestListBogusCount(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, kindList)
	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], ^uint32(0)) // n = 0xFFFFFFFF
	buf.Write(u4[:])
	if _, err := DecodeList(buf.Bytes()); err == nil {
		t.Fatalf("expected error on bogus n with insufficient bytes")
	}

	// n=1 but the item announces more bytes than exist
	buf.Reset()
	writeHeader(&buf, kindList)
	binary.BigEndian.PutUint32(u4[:], 1)
	buf.Write(u4[:])
	binary.BigEndian.PutUint32(u4[:], 10)
	buf.Write(u4[:])
	buf.WriteString("abc")
	if _, err := DecodeList(buf.Bytes()); err == nil {
		t.Fatalf("expected error on item length beyond buffer")
	}
}

func TestScalarRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 7, math.MaxUint64, math.Float64bits(2.5)} {
		got, err := DecodeScalar(EncodeScalar(v))
		if err != nil {
			t.Fatalf("DecodeScalar: %v", err)
		}
		if got != v {
			t.Fatalf("got %d want %d", got, v)
		}
	}
	enc := EncodeScalar(1)
	if _, err := DecodeScalar(append(enc, 0)); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
	if _, err := DecodeScalar(EncodeSingle([]byte("12345678"))); err == nil {
		t.Fatalf("expected error on wrong kind")
	}
}
