package evloop

import "time"

// Handler receives readiness and timer callbacks for one registered
// socket. All methods are invoked from the loop goroutine; each call
// runs to completion before the next event is dispatched.
type Handler interface {
	OnReadable()
	OnWritable()
	OnTimeout()
}

// Registration controls readiness interest and the idle timer for one
// registered socket. Methods must be called from the loop goroutine.
type Registration interface {
	EnableRead(on bool)
	EnableWrite(on bool)

	// RearmTimer restarts the registration's single timer. When it
	// fires, the handler's OnTimeout runs and the timer stays stopped
	// until rearmed.
	RearmTimer(d time.Duration)
	StopTimer()

	// Deregister removes the socket from the loop and stops the timer.
	// Safe to call more than once.
	Deregister()
}

// Reactor registers sockets with a single-threaded event loop.
type Reactor interface {
	Register(s Socket, h Handler) (Registration, error)
}

// Socket is a non-blocking stream socket.
type Socket interface {
	// Fd returns the underlying descriptor, or -1 when not open.
	Fd() int

	// Connect opens the socket and starts a non-blocking connect to
	// addr. A nil return means the attempt is in progress (or already
	// complete); the outcome is reported by ConnectCheck once the
	// socket becomes writable.
	Connect(addr string) error

	// ConnectCheck reports whether an in-progress connect succeeded.
	// A writable event alone does not imply success.
	ConnectCheck() error

	// Read reads into p. n == 0 with a nil error means the read would
	// block; a closed peer is reported as io.EOF.
	Read(p []byte) (n int, err error)

	// Writev writes the gather list in a single call, bounded by the
	// platform vector limit. n == 0 with a nil error means the write
	// would block.
	Writev(bufs [][]byte) (n int, err error)

	Close() error
}
