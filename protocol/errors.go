package protocol

import "fmt"

// Error represents a protocol violation detected while parsing a
// response stream. Once one occurs the stream position can no longer
// be trusted, so the connection must be torn down.
//
// Common causes:
//   - Bad response magic
//   - Response opcode does not match the oldest in-flight request
//   - Non-zero key length (this client never expects keyed responses)
//   - Declared body larger than MaxBodySize
//   - Successful GET response without extra data
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "memcbin protocol: " + e.Reason
}

func errorf(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}
