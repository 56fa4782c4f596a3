package memcbin

import "github.com/arpel/memcbin/protocol"

// Result is delivered to a request's callback: the server status with
// the value and CAS token, or protocol.StatusNetworkError when the
// connection failed before a response arrived.
type Result struct {
	Status protocol.StatusCode
	Value  []byte
	CAS    uint64
}

// Hit reports whether the result carries a successfully fetched value.
func (r Result) Hit() bool {
	return r.Status == protocol.StatusNoError
}

// Callback receives the outcome of a request. It is invoked exactly
// once, from the loop goroutine, unless the request was canceled first.
type Callback func(req *Request, res Result)

// Request is a single pipelined operation. The caller owns it until
// Enqueue; afterwards it belongs to the connection's queues until the
// callback fires or the request is dropped as canceled.
type Request struct {
	Op     protocol.OpCode
	Key    []byte
	Value  []byte
	Expiry uint32

	Callback Callback

	canceled bool
	onCancel func()
}

// NewGetRequest builds a GET for key.
func NewGetRequest(key []byte, cb Callback) *Request {
	return &Request{Op: protocol.OpGet, Key: key, Callback: cb}
}

// NewAddRequest builds an ADD storing value under key with an expiry in
// seconds (0 means no expiry).
func NewAddRequest(key, value []byte, expiry uint32, cb Callback) *Request {
	return &Request{Op: protocol.OpAdd, Key: key, Value: value, Expiry: expiry, Callback: cb}
}

// Cancel marks the request canceled. Cancellation is one-way: the
// request stops consuming socket bytes if not yet sent, keeps its queue
// slot until the scheduler or parser reaches it, and never receives a
// callback. Must be called from the loop goroutine.
func (r *Request) Cancel() {
	if r.canceled {
		return
	}
	r.canceled = true
	if r.onCancel != nil {
		r.onCancel()
	}
}

// Canceled reports whether Cancel was called.
func (r *Request) Canceled() bool {
	return r.canceled
}

func (r *Request) serializedSize() int {
	return protocol.SerializedSize(r.Op, len(r.Key), len(r.Value))
}
