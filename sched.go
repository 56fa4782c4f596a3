package memcbin

import "github.com/arpel/memcbin/protocol"

// maxIOV bounds the gather vector length passed to one writev call.
const maxIOV = 1024 // IOV_MAX on Linux

// pendingSend tracks flush progress for one request staged in the
// current write batch: the serialized header+extra+key scratch and the
// count of value bytes still unsent. Value bytes are gathered straight
// from the request's own buffer, never copied.
type pendingSend struct {
	req       *Request
	head      []byte
	headSent  int
	valueLeft int
}

func newPendingSend(req *Request) *pendingSend {
	scratch := make([]byte, 0, protocol.HeaderSize+protocol.AddExtraSize+len(req.Key))
	return &pendingSend{
		req:       req,
		head:      protocol.AppendRequest(scratch, req.Op, req.Key, len(req.Value), req.Expiry),
		valueLeft: len(req.Value),
	}
}

func (p *pendingSend) left() int {
	return len(p.head) - p.headSent + p.valueLeft
}

func (p *pendingSend) done() bool {
	return p.headSent == len(p.head) && p.valueLeft == 0
}

// flushBatch stages a write batch if none is pending and pushes it to
// the socket. Staging walks the send queue from the front, skipping
// canceled requests, and stops at the first request that would push the
// batch past the byte cap. The batch goes out as one scatter-gather
// write bounded by maxIOV; entries past that limit carry over to the
// next writable event. Fully flushed requests move from the send queue
// to the receive queue in order.
//
// Returns blocked=true when the socket accepted nothing; the caller
// retries on the next writable event.
func (c *Conn) flushBatch() (blocked bool, err error) {
	if c.sendSum == 0 {
		c.sendq.Range(func(i int, req *Request) bool {
			if req.canceled {
				return true
			}
			if c.sendSum+req.serializedSize() > c.opts.BatchBytes && c.sendSum > 0 {
				return false
			}
			ps := newPendingSend(req)
			c.sendbufs.PushBack(ps)
			c.sendSum += ps.left()
			return c.sendSum < c.opts.BatchBytes
		})

		if c.sendSum == 0 {
			// Only canceled requests were queued; drop them all
			// without attempting a write.
			for c.sendq.Len() > 0 {
				c.sendq.PopFront()
			}
			return false, nil
		}
	}

	bufs := make([][]byte, 0, 2*c.sendbufs.Len())
	c.sendbufs.Range(func(i int, ps *pendingSend) bool {
		if len(bufs)+2 > maxIOV {
			return false
		}
		if ps.headSent < len(ps.head) {
			bufs = append(bufs, ps.head[ps.headSent:])
		}
		if ps.valueLeft > 0 {
			v := ps.req.Value
			bufs = append(bufs, v[len(v)-ps.valueLeft:])
		}
		return true
	})

	n, err := c.sock.Writev(bufs)
	if err != nil {
		return false, &TransportError{Op: "write", Err: err}
	}
	if n == 0 {
		return true, nil
	}

	c.sendSum -= n
	c.stats.recordBytesSent(n)

	for n > 0 && c.sendq.Len() > 0 {
		req, _ := c.sendq.Front()
		ps, ok := c.sendbufs.Front()
		if !ok {
			break
		}

		if ps.req != req {
			// Canceled before staging: drop from the send queue
			// without granting a receive slot.
			c.sendq.PopFront()
			continue
		}

		h := min(n, len(ps.head)-ps.headSent)
		ps.headSent += h
		n -= h

		v := min(n, ps.valueLeft)
		ps.valueLeft -= v
		n -= v

		if !ps.done() {
			break
		}

		c.sendbufs.PopFront()
		c.sendq.PopFront()
		c.recvq.PushBack(req)
	}

	return false, nil
}
