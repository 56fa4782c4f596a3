// Package protocol implements the wire format of the memcached binary
// protocol for the two operations the connection pipelines: GET and ADD.
//
// The package is pure: it performs no I/O. Serialization produces the
// 24-byte header, optional extra region and key for a request
// (AppendRequest), leaving value bytes to be gathered from the caller's
// buffer. Parsing is incremental: a Decoder can be fed a byte stream in
// arbitrary fragments and checkpoints its position between calls, so a
// partially received frame survives across socket read events.
//
// # Frame decoding
//
//	var dec protocol.Decoder
//	for {
//	    frame, n, err := dec.Next(buffered, expectOldestOp)
//	    buffered = buffered[n:]
//	    if err != nil {
//	        // protocol violation: the stream can no longer be trusted,
//	        // tear the connection down
//	    }
//	    if frame == nil {
//	        break // need more bytes
//	    }
//	    // dispatch frame.Status / frame.Value / frame.CAS
//	}
//
// Responses are correlated to requests strictly by arrival order; the
// decoder validates each header against the opcode of the oldest
// in-flight request supplied by the ExpectFunc.
//
// # Error semantics
//
// Any *Error returned by the Decoder means the connection's stream
// position is unrecoverable and the connection must be closed. There is
// no per-frame recovery.
package protocol
