package memcbin

import (
	"io"

	"github.com/edwingeng/deque/v2"
	"go.uber.org/zap"

	"github.com/arpel/memcbin/evloop"
	"github.com/arpel/memcbin/protocol"
)

// readChunkSize is how much socket data one read call may append to the
// receive buffer.
const readChunkSize = 4096

// Conn owns one pipelined, non-blocking connection to a single cache
// backend: lazy connect, request batching, response framing and the
// teardown that fails all outstanding requests on any error.
//
// All methods must be called from the loop goroutine. A request
// appears in exactly one of the send and receive queues at a time and
// is removed before its callback fires; every enqueued request receives
// exactly one callback unless canceled, even across disconnect.
type Conn struct {
	opts Options
	log  *zap.Logger

	reactor evloop.Reactor
	sock    evloop.Socket
	reg     evloop.Registration

	connected bool

	// sendq holds requests not yet fully written; recvq holds requests
	// written and awaiting their response, in flush order. Correlation
	// is strictly FIFO: the oldest recvq entry matches the next frame.
	sendq *deque.Deque[*Request]
	recvq *deque.Deque[*Request]

	// current write batch
	sendbufs *deque.Deque[*pendingSend]
	sendSum  int

	recvbuf recvBuffer
	dec     protocol.Decoder

	stats *connStatsCollector
}

// NewConn creates an idle connection; no socket is opened until the
// first request is enqueued.
func NewConn(reactor evloop.Reactor, opts Options) *Conn {
	opts = opts.withDefaults()
	return &Conn{
		opts:     opts,
		log:      opts.Logger,
		reactor:  reactor,
		sendq:    deque.NewDeque[*Request](),
		recvq:    deque.NewDeque[*Request](),
		sendbufs: deque.NewDeque[*pendingSend](),
		stats:    newConnStatsCollector(),
	}
}

// Stats returns a snapshot of the connection's counters. Safe to call
// from any goroutine.
func (c *Conn) Stats() ConnStats {
	return c.stats.snapshot()
}

// Connected reports whether the backend handshake has completed.
func (c *Conn) Connected() bool {
	return c.connected
}

// InFlight returns the number of requests queued to send or awaiting a
// response.
func (c *Conn) InFlight() int {
	return c.sendq.Len() + c.recvq.Len()
}

// Enqueue appends req to the send queue and never blocks. If the
// connection is established it signals write readiness; otherwise it
// lazily initiates a connection attempt. When the attempt fails
// immediately, every queued request (req included) receives a
// StatusNetworkError callback and the connect error is returned.
func (c *Conn) Enqueue(req *Request) error {
	c.sendq.PushBack(req)
	c.stats.recordEnqueue()

	if c.connected {
		c.signalWrite()
		return nil
	}

	if c.sock == nil {
		return c.initiateConnection()
	}

	return nil
}

func (c *Conn) signalWrite() {
	if c.reg != nil {
		c.reg.EnableWrite(true)
	}
}

func (c *Conn) initiateConnection() error {
	if c.opts.Addr == "" {
		c.Disconnect()
		return ErrNoAddr
	}

	c.log.Info("connecting to cache backend", zap.String("addr", c.opts.Addr))

	sock := c.opts.NewSocket()
	if err := sock.Connect(c.opts.Addr); err != nil {
		c.log.Warn("connect failed", zap.String("addr", c.opts.Addr), zap.Error(err))
		c.Disconnect()
		return &ConnectError{Addr: c.opts.Addr, Err: err}
	}

	reg, err := c.reactor.Register(sock, c)
	if err != nil {
		sock.Close()
		c.Disconnect()
		return &ConnectError{Addr: c.opts.Addr, Err: err}
	}

	c.sock = sock
	c.reg = reg

	// Wait for connect completion via write readiness; the same timer
	// doubles as the connect timeout.
	reg.EnableWrite(true)
	reg.RearmTimer(c.opts.Timeout)

	return nil
}

// onConnectReady verifies the connect attempt actually succeeded; a
// writable event does not by itself imply success.
func (c *Conn) onConnectReady() error {
	if err := c.sock.ConnectCheck(); err != nil {
		return &ConnectError{Addr: c.opts.Addr, Err: err}
	}

	c.log.Info("connected to cache backend", zap.String("addr", c.opts.Addr))

	c.connected = true
	c.reg.EnableRead(true)
	return nil
}

// OnWritable completes an in-progress connect, then flushes batches
// until the send queue drains or the socket blocks.
func (c *Conn) OnWritable() {
	if c.sock == nil {
		return
	}

	if !c.connected {
		if err := c.onConnectReady(); err != nil {
			c.log.Warn("cache backend connect failed", zap.Error(err))
			c.Disconnect()
			return
		}
	}

	c.reg.RearmTimer(c.opts.Timeout)

	if c.sendq.Len() == 0 {
		c.reg.EnableWrite(false)
		return
	}

	for c.sendq.Len() > 0 {
		blocked, err := c.flushBatch()
		if err != nil {
			c.log.Warn("write to cache backend failed", zap.Error(err))
			c.Disconnect()
			return
		}
		if blocked {
			return
		}
	}

	c.reg.EnableWrite(false)
}

// OnReadable drains the socket into the receive buffer and advances the
// frame decoder until the read would block. EOF and read errors force a
// disconnect, as does any protocol violation.
func (c *Conn) OnReadable() {
	if !c.connected {
		return
	}

	c.reg.RearmTimer(c.opts.Timeout)

	for {
		p := c.recvbuf.writableTail(readChunkSize)

		n, err := c.sock.Read(p)
		if err != nil {
			if err == io.EOF {
				c.log.Info("cache backend closed connection")
			} else {
				c.log.Warn("read from cache backend failed", zap.Error(err))
			}
			c.Disconnect()
			return
		}
		if n == 0 {
			return
		}
		c.recvbuf.commit(n)
		c.stats.recordBytesReceived(n)

		if err := c.parse(); err != nil {
			c.log.Warn("tearing down cache backend connection", zap.Error(err))
			c.Disconnect()
			return
		}
		if !c.connected {
			// A response callback tore the connection down.
			return
		}
	}
}

// parse feeds buffered bytes through the decoder, dispatching zero or
// more completed frames to the oldest receive-queue entries in order.
func (c *Conn) parse() error {
	for {
		frame, n, err := c.dec.Next(c.recvbuf.bytes(), c.expectOp)
		c.recvbuf.discard(n)
		if err != nil {
			return err
		}
		if frame == nil {
			c.recvbuf.compact()
			return nil
		}

		req := c.recvq.PopFront()
		c.stats.recordResponse(frame.Status == protocol.StatusNoError)

		if frame.Status != protocol.StatusNoError {
			c.log.Debug("response returned error status",
				zap.Uint16("status", uint16(frame.Status)),
				zap.String("op", frame.Op.String()))
		}

		if !req.canceled && req.Callback != nil {
			req.Callback(req, Result{Status: frame.Status, Value: frame.Value, CAS: frame.CAS})
		}
	}
}

func (c *Conn) expectOp() (protocol.OpCode, bool) {
	req, ok := c.recvq.Front()
	if !ok {
		return 0, false
	}
	return req.Op, true
}

// OnTimeout covers both the connect timeout and the read-idle timeout;
// either forces a full disconnect regardless of in-flight progress.
func (c *Conn) OnTimeout() {
	c.log.Info("cache backend connection timed out", zap.String("addr", c.opts.Addr))
	c.stats.recordTimeout()
	c.Disconnect()
}

// Disconnect is the single teardown path. Every request still queued
// receives a StatusNetworkError callback (canceled requests are removed
// without one), all buffer and parse state resets, and the socket and
// its registrations are torn down. Idempotent and safe in any state,
// including never having connected. Callbacks run only after the queues
// are drained, so they cannot re-enter the live queues mid-iteration.
func (c *Conn) Disconnect() {
	failed := make([]*Request, 0, c.recvq.Len()+c.sendq.Len())
	for c.recvq.Len() > 0 {
		failed = append(failed, c.recvq.PopFront())
	}
	for c.sendq.Len() > 0 {
		failed = append(failed, c.sendq.PopFront())
	}

	for c.sendbufs.Len() > 0 {
		c.sendbufs.PopFront()
	}
	c.sendSum = 0
	c.dec.Reset()
	c.recvbuf.reset()
	c.connected = false

	if c.reg != nil {
		c.reg.Deregister()
		c.reg = nil
	}
	if c.sock != nil {
		c.sock.Close()
		c.sock = nil
		c.stats.recordDisconnect()
	}

	for _, req := range failed {
		if req.canceled {
			continue
		}
		c.stats.recordFailed(1)
		if req.Callback != nil {
			req.Callback(req, Result{Status: protocol.StatusNetworkError})
		}
	}
}
