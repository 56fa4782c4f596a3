package memcbin

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/arpel/memcbin/protocol"
)

// NewBreaker returns a circuit breaker sized for a single backend. It
// opens once at least three requests have been observed in the rolling
// interval and 60% of them failed.
func NewBreaker(name string, maxRequests uint32, interval, timeout time.Duration) *gobreaker.TwoStepCircuitBreaker[bool] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
	return gobreaker.NewTwoStepCircuitBreaker[bool](settings)
}

// enqueuer is the slice of Conn that BreakerConn guards.
type enqueuer interface {
	Enqueue(req *Request) error
}

// BreakerConn guards a connection's enqueue path with a circuit
// breaker: after repeated connection-error results the breaker opens
// and further requests are refused immediately with
// gobreaker.ErrOpenState, sparing the backend a connect storm. It does
// not retry and does not pool; the caller still owns those policies.
//
// A request canceled before completion counts as a success: its
// callback never fires, and leaving it unreported would pin one of the
// breaker's half-open slots forever.
type BreakerConn struct {
	conn    enqueuer
	breaker *gobreaker.TwoStepCircuitBreaker[bool]
}

func NewBreakerConn(conn *Conn, breaker *gobreaker.TwoStepCircuitBreaker[bool]) *BreakerConn {
	return &BreakerConn{conn: conn, breaker: breaker}
}

// Enqueue forwards to the underlying connection when the breaker allows
// it, recording the eventual result as success or failure.
func (b *BreakerConn) Enqueue(req *Request) error {
	done, err := b.breaker.Allow()
	if err != nil {
		return err
	}

	// Exactly one report per request, whichever of the callback and
	// Cancel happens first.
	reported := false
	report := func(ok bool) {
		if reported {
			return
		}
		reported = true
		done(ok)
	}

	userCb := req.Callback
	req.Callback = func(r *Request, res Result) {
		report(res.Status != protocol.StatusNetworkError)
		if userCb != nil {
			userCb(r, res)
		}
	}
	req.onCancel = func() { report(true) }

	if err := b.conn.Enqueue(req); err != nil {
		return err
	}
	return nil
}
