package memcbin

import "sync/atomic"

// ConnStats contains counters for one connection. The connection
// mutates them only from the loop goroutine, but they are written with
// atomics so a monitoring goroutine can snapshot them at any time.
//
// For Prometheus integration, expose these as:
//   - Counters: Enqueued, Responses, Hits, Failed, Disconnects, Timeouts
//   - Counters: BytesSent, BytesReceived
type ConnStats struct {
	Enqueued      uint64 // Requests accepted into the send queue
	Responses     uint64 // Frames dispatched to callbacks
	Hits          uint64 // Responses with a success status
	Failed        uint64 // Requests failed with StatusNetworkError
	Disconnects   uint64 // Teardown invocations that closed a socket
	Timeouts      uint64 // Disconnects triggered by the idle timer
	BytesSent     uint64 // Payload bytes accepted by the socket
	BytesReceived uint64 // Payload bytes read from the socket
}

type connStatsCollector struct {
	stats *ConnStats
}

func newConnStatsCollector() *connStatsCollector {
	return &connStatsCollector{stats: &ConnStats{}}
}

func (c *connStatsCollector) recordEnqueue() {
	atomic.AddUint64(&c.stats.Enqueued, 1)
}

func (c *connStatsCollector) recordResponse(hit bool) {
	atomic.AddUint64(&c.stats.Responses, 1)
	if hit {
		atomic.AddUint64(&c.stats.Hits, 1)
	}
}

func (c *connStatsCollector) recordFailed(n int) {
	atomic.AddUint64(&c.stats.Failed, uint64(n))
}

func (c *connStatsCollector) recordDisconnect() {
	atomic.AddUint64(&c.stats.Disconnects, 1)
}

func (c *connStatsCollector) recordTimeout() {
	atomic.AddUint64(&c.stats.Timeouts, 1)
}

func (c *connStatsCollector) recordBytesSent(n int) {
	atomic.AddUint64(&c.stats.BytesSent, uint64(n))
}

func (c *connStatsCollector) recordBytesReceived(n int) {
	atomic.AddUint64(&c.stats.BytesReceived, uint64(n))
}

func (c *connStatsCollector) snapshot() ConnStats {
	return ConnStats{
		Enqueued:      atomic.LoadUint64(&c.stats.Enqueued),
		Responses:     atomic.LoadUint64(&c.stats.Responses),
		Hits:          atomic.LoadUint64(&c.stats.Hits),
		Failed:        atomic.LoadUint64(&c.stats.Failed),
		Disconnects:   atomic.LoadUint64(&c.stats.Disconnects),
		Timeouts:      atomic.LoadUint64(&c.stats.Timeouts),
		BytesSent:     atomic.LoadUint64(&c.stats.BytesSent),
		BytesReceived: atomic.LoadUint64(&c.stats.BytesReceived),
	}
}
