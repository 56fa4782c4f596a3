package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializedSize(t *testing.T) {
	tests := []struct {
		name     string
		op       OpCode
		keyLen   int
		valueLen int
		want     int
	}{
		{name: "get", op: OpGet, keyLen: 3, valueLen: 0, want: 27},
		{name: "get ignores value", op: OpGet, keyLen: 10, valueLen: 99, want: 34},
		{name: "add", op: OpAdd, keyLen: 3, valueLen: 5, want: 40},
		{name: "add empty value", op: OpAdd, keyLen: 8, valueLen: 0, want: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SerializedSize(tt.op, tt.keyLen, tt.valueLen))
		})
	}
}

func TestAppendRequestGet(t *testing.T) {
	got := AppendRequest(nil, OpGet, []byte("foo"), 0, 0)

	want := []byte{
		0x80, 0x00, // magic, opcode
		0x00, 0x03, // key length
		0x00, 0x00, // extra length, data type
		0x00, 0x00, // vbucket
		0x00, 0x00, 0x00, 0x03, // total body = key
		0x00, 0x00, 0x00, 0x00, // opaque
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // cas
		'f', 'o', 'o',
	}
	require.Equal(t, want, got)
}

func TestAppendRequestAdd(t *testing.T) {
	got := AppendRequest(nil, OpAdd, []byte("foo"), 3, 60)

	want := []byte{
		0x80, 0x02, // magic, opcode
		0x00, 0x03, // key length
		0x08, 0x00, // extra length, data type
		0x00, 0x00, // vbucket
		0x00, 0x00, 0x00, 0x0e, // total body = extra + key + value
		0x00, 0x00, 0x00, 0x00, // opaque
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // cas
		0x00, 0x00, 0x00, 0x00, // extra: flags
		0x00, 0x00, 0x00, 0x3c, // extra: expiry
		'f', 'o', 'o',
	}
	require.Equal(t, want, got)

	// Value bytes are not part of the scratch; only the declared total
	// body accounts for them.
	assert.Len(t, got, HeaderSize+AddExtraSize+3)
}

func TestAppendRequestExtendsDst(t *testing.T) {
	dst := []byte{0xaa, 0xbb}
	got := AppendRequest(dst, OpGet, []byte("k"), 0, 0)

	require.Len(t, got, 2+HeaderSize+1)
	assert.Equal(t, []byte{0xaa, 0xbb}, got[:2])
	assert.Equal(t, byte(ReqMagic), got[2])
}

func TestParseHeader(t *testing.T) {
	raw := []byte{
		0x81, 0x00, // magic, opcode
		0x00, 0x00, // key length
		0x04, 0x00, // extra length, data type
		0x00, 0x01, // status
		0x00, 0x00, 0x00, 0x09, // total body
		0xde, 0xad, 0xbe, 0xef, // opaque (ignored)
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x2a, // cas
	}

	h := parseHeader(raw)
	assert.Equal(t, uint8(ResMagic), h.magic)
	assert.Equal(t, OpGet, h.op)
	assert.Equal(t, uint16(0), h.keyLen)
	assert.Equal(t, uint8(4), h.extraLen)
	assert.Equal(t, StatusKeyNotFound, h.status)
	assert.Equal(t, uint32(9), h.totalBody)
	assert.Equal(t, uint64(42), h.cas)
}
