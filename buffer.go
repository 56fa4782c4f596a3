package memcbin

// recvBuffer accumulates bytes read from the socket until the decoder
// consumes them. Unconsumed bytes from a partial frame are rewound to
// the front so the buffer can keep accumulating without growing
// unboundedly.
type recvBuffer struct {
	buf   []byte
	start int
	end   int
}

func (b *recvBuffer) len() int { return b.end - b.start }

// bytes returns the pending, not yet consumed region.
func (b *recvBuffer) bytes() []byte { return b.buf[b.start:b.end] }

// writableTail returns a scratch slice of n bytes past the pending
// region for the caller to read into; commit publishes what was read.
func (b *recvBuffer) writableTail(n int) []byte {
	b.compact()
	if len(b.buf)-b.end < n {
		b.grow(n)
	}
	return b.buf[b.end : b.end+n]
}

func (b *recvBuffer) commit(n int) { b.end += n }

// discard drops n consumed bytes from the head.
func (b *recvBuffer) discard(n int) {
	b.start += n
	if b.start == b.end {
		b.start, b.end = 0, 0
	}
}

// compact rewinds pending bytes to the front of the buffer.
func (b *recvBuffer) compact() {
	if b.start == 0 {
		return
	}
	copy(b.buf, b.buf[b.start:b.end])
	b.end -= b.start
	b.start = 0
}

func (b *recvBuffer) grow(n int) {
	size := 2 * len(b.buf)
	if size < b.end+n {
		size = b.end + n
	}
	if size < 512 {
		size = 512
	}
	nb := make([]byte, size)
	copy(nb, b.buf[:b.end])
	b.buf = nb
}

// reset drops all buffered bytes but keeps the allocation.
func (b *recvBuffer) reset() {
	b.start, b.end = 0, 0
}
