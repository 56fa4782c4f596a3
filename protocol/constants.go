package protocol

// Magic bytes for the memcached binary protocol
const (
	ReqMagic = 0x80 // Client request
	ResMagic = 0x81 // Server response
)

// OpCode identifies a binary protocol operation
type OpCode uint8

// Supported opcodes
const (
	OpGet OpCode = 0x00 // Get - read a value by key
	OpAdd OpCode = 0x02 // Add - store a value only if the key is vacant
)

func (op OpCode) String() string {
	switch op {
	case OpGet:
		return "GET"
	case OpAdd:
		return "ADD"
	default:
		return "UNKNOWN"
	}
}

// StatusCode is the response status reported by the server
type StatusCode uint16

// Response status codes
const (
	StatusNoError        StatusCode = 0x0000 // Success
	StatusKeyNotFound    StatusCode = 0x0001 // Key not found (miss)
	StatusKeyExists      StatusCode = 0x0002 // Key exists (add refused)
	StatusValueTooLarge  StatusCode = 0x0003 // Value too large
	StatusInvalidArgs    StatusCode = 0x0004 // Invalid arguments
	StatusItemNotStored  StatusCode = 0x0005 // Item not stored
	StatusUnknownCommand StatusCode = 0x0081 // Unknown command
	StatusOutOfMemory    StatusCode = 0x0082 // Server out of memory

	// StatusNetworkError is a client-side sentinel delivered to callbacks
	// when the connection fails before a real response arrives. It lives
	// outside the status space the server can produce.
	StatusNetworkError StatusCode = 0xFFFF
)

// Wire layout constants
const (
	// HeaderSize is the fixed size of a request or response header:
	// magic(1) + opcode(1) + key length(2) + extra length(1) +
	// data type(1) + status/vbucket(2) + total body length(4) +
	// opaque(4) + CAS(8), all multi-byte fields big-endian.
	HeaderSize = 24

	// AddExtraSize is the extra region carried by Add requests:
	// flags(4) + expiry(4).
	AddExtraSize = 8

	// MaxBodySize caps the total body length a response header may
	// declare. Larger bodies are rejected before any allocation to
	// bound memory use against a buggy or malicious peer.
	MaxBodySize = 16 * 1024
)
