// Package memcbin is a non-blocking, pipelining client for the
// memcached binary protocol, built to be embedded in an event-driven
// proxy process. It owns one TCP connection to a single backend:
// lazy connection setup, request batching under a byte cap, incremental
// response framing, and a timeout-driven teardown that fails every
// outstanding request exactly once.
//
// # Model
//
// All connection state is owned by a single event-loop goroutine; there
// are no locks and no blocking calls. Requests are enqueued with
// callbacks and correlated to responses strictly by FIFO order, the way
// the binary protocol pipelines on one socket. Any connect, transport,
// protocol or timeout error tears the whole connection down; the caller
// owns retry policy, connection pooling and failover.
//
// # Usage
//
// A proxy that already runs an evloop.Loop drives a Conn directly:
//
//	conn := memcbin.NewConn(loop, memcbin.Options{Addr: "127.0.0.1:11211"})
//	// from the loop goroutine:
//	conn.Enqueue(memcbin.NewGetRequest([]byte("session/abc"), func(req *memcbin.Request, res memcbin.Result) {
//	    if res.Hit() {
//	        // use res.Value, res.CAS
//	    }
//	}))
//
// Client wraps a Conn with its own loop for callers without one:
//
//	client, err := memcbin.NewClient(memcbin.Options{Addr: "127.0.0.1:11211"})
//	client.Get("session/abc", onResult)
//	client.Add("session/abc", ticket, 3600, onStored)
//
// Requests may be canceled any time before their callback fires;
// canceled requests consume no socket bytes and never receive a
// callback.
package memcbin
