// Package evloop provides the single-threaded epoll reactor the
// connection runs on: readiness registration with per-socket handler
// objects, a rearmable idle timer per registration, and a non-blocking
// TCP socket with scatter-gather writes.
//
// The loop owns all registered state. Handlers and Registration methods
// execute only on the goroutine running Loop.Run; work originating on
// other goroutines enters through Loop.Submit, which queues a task and
// wakes the loop via an eventfd.
//
// Linux only.
package evloop
