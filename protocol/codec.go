package protocol

import "encoding/binary"

// SerializedSize returns the number of bytes a request occupies on the
// wire: header, extra region (Add only), key and value.
func SerializedSize(op OpCode, keyLen, valueLen int) int {
	switch op {
	case OpGet:
		return HeaderSize + keyLen
	default:
		return HeaderSize + AddExtraSize + keyLen + valueLen
	}
}

// AppendRequest appends the serialized header, extra region and key for
// a request to dst and returns the extended slice. The value bytes are
// deliberately not copied; the caller writes them from the request's
// own buffer so large values never pass through an intermediate copy.
//
// Get layout:  header(24) + key, no extra.
// Add layout:  header(24) + extra(8, expiry in the last 4 bytes) + key;
// the declared total body additionally counts the value bytes.
func AppendRequest(dst []byte, op OpCode, key []byte, valueLen int, expiry uint32) []byte {
	start := len(dst)

	switch op {
	case OpGet:
		dst = append(dst, make([]byte, HeaderSize)...)
		h := dst[start:]
		h[0] = ReqMagic
		h[1] = byte(op)
		binary.BigEndian.PutUint16(h[2:], uint16(len(key)))
		binary.BigEndian.PutUint32(h[8:], uint32(len(key)))
	default:
		dst = append(dst, make([]byte, HeaderSize+AddExtraSize)...)
		h := dst[start:]
		h[0] = ReqMagic
		h[1] = byte(op)
		binary.BigEndian.PutUint16(h[2:], uint16(len(key)))
		h[4] = AddExtraSize
		binary.BigEndian.PutUint32(h[8:], uint32(AddExtraSize+len(key)+valueLen))
		// extra = flags(4, zero) + expiry(4)
		binary.BigEndian.PutUint32(h[HeaderSize+4:], expiry)
	}

	return append(dst, key...)
}

// header is a decoded response header.
type header struct {
	magic     uint8
	op        OpCode
	keyLen    uint16
	extraLen  uint8
	status    StatusCode
	totalBody uint32
	cas       uint64
}

// parseHeader decodes a response header from b, which must hold at
// least HeaderSize bytes. The data type and opaque fields are skipped.
func parseHeader(b []byte) header {
	return header{
		magic:     b[0],
		op:        OpCode(b[1]),
		keyLen:    binary.BigEndian.Uint16(b[2:]),
		extraLen:  b[4],
		status:    StatusCode(binary.BigEndian.Uint16(b[6:])),
		totalBody: binary.BigEndian.Uint32(b[8:]),
		cas:       binary.BigEndian.Uint64(b[16:]),
	}
}
