package memcbin

import "github.com/arpel/memcbin/evloop"

// Client is a convenience wrapper that runs a Conn on its own event
// loop goroutine and accepts requests from any goroutine. The embedding
// proxy that already owns a loop should use NewConn directly and drive
// it from that loop instead.
type Client struct {
	loop *evloop.Loop
	conn *Conn
	done chan struct{}
}

// NewClient starts the event loop and returns a client bound to the
// backend in opts. The connection itself is established lazily on the
// first request.
func NewClient(opts Options) (*Client, error) {
	loop, err := evloop.NewLoop()
	if err != nil {
		return nil, err
	}

	c := &Client{
		loop: loop,
		conn: NewConn(loop, opts),
		done: make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		loop.Run()
	}()

	return c, nil
}

// Get fetches key and delivers the outcome to cb on the loop goroutine.
func (c *Client) Get(key string, cb Callback) {
	c.submit(NewGetRequest([]byte(key), cb))
}

// Add stores value under key only if the key is vacant, with an expiry
// in seconds (0 means no expiry).
func (c *Client) Add(key string, value []byte, expiry uint32, cb Callback) {
	c.submit(NewAddRequest([]byte(key), value, expiry, cb))
}

func (c *Client) submit(req *Request) {
	c.loop.Submit(func() {
		// Enqueue failures run the disconnect path, which already
		// reported the outcome through the request's callback.
		_ = c.conn.Enqueue(req)
	})
}

// Close fails all outstanding requests, stops the event loop and
// releases its descriptors.
func (c *Client) Close() error {
	c.loop.Submit(func() { c.conn.Disconnect() })
	c.loop.Stop()
	<-c.done
	return c.loop.Close()
}
