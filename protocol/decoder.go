package protocol

// parsePhase tracks progress through a single response frame.
type parsePhase uint8

const (
	phaseIdle   parsePhase = iota // no frame in progress
	phaseHeader                   // waiting for the 24-byte header
	phaseExtra                    // skipping the extra region
	phaseValue                    // accumulating value bytes
)

// Frame is one complete decoded response.
type Frame struct {
	Op     OpCode
	Status StatusCode
	Value  []byte
	CAS    uint64
}

// ExpectFunc supplies the opcode of the oldest in-flight request. It is
// consulted once per frame, when the header completes. The second
// return is false when no request is in flight, which makes any
// received response a protocol error.
type ExpectFunc func() (OpCode, bool)

// Decoder incrementally parses response frames from a byte stream. It
// never assumes a complete frame is available: Next can be called with
// whatever bytes have arrived so far and checkpoints its position
// between calls. The zero value is ready to use; at most one frame is
// decoded at a time, matching the strict FIFO response ordering of the
// pipelined connection.
type Decoder struct {
	phase     parsePhase
	op        OpCode
	status    StatusCode
	keyLen    uint16
	extraLen  uint8
	totalBody uint32
	readLeft  int
	cas       uint64
	value     []byte
}

// Reset forcibly returns the decoder to its idle state, dropping any
// partially received frame. Called on disconnect.
func (d *Decoder) Reset() {
	*d = Decoder{}
}

// Next consumes bytes from in, advancing the current frame. It returns
// the completed frame (nil if more bytes are needed), the number of
// bytes consumed, and any protocol error. On a nil frame the caller
// must retain the unconsumed tail of in and present it again, extended,
// once more bytes arrive. Ownership of the returned frame's value
// buffer transfers to the caller; the decoder is idle again afterwards.
func (d *Decoder) Next(in []byte, expect ExpectFunc) (*Frame, int, error) {
	consumed := 0

	for {
		switch d.phase {
		case phaseIdle:
			if consumed == len(in) {
				return nil, consumed, nil
			}
			d.phase = phaseHeader

		case phaseHeader:
			if len(in)-consumed < HeaderSize {
				return nil, consumed, nil
			}

			h := parseHeader(in[consumed:])

			want, ok := expect()
			if !ok {
				return nil, consumed, errorf("response received with no in-flight request")
			}
			if h.magic != ResMagic {
				return nil, consumed, errorf("bad response magic: %#02x", h.magic)
			}
			if h.op != want {
				return nil, consumed, errorf("response opcode does not match request: want %#02x, got %#02x", uint8(want), uint8(h.op))
			}
			if h.keyLen != 0 {
				return nil, consumed, errorf("expected zero key length, got %d", h.keyLen)
			}
			if h.totalBody > MaxBodySize {
				return nil, consumed, errorf("total body too large: %d", h.totalBody)
			}
			if h.op == OpGet && h.status == StatusNoError && h.extraLen == 0 {
				return nil, consumed, errorf("GET response missing extra data")
			}
			if h.totalBody < uint32(h.keyLen)+uint32(h.extraLen) {
				return nil, consumed, errorf("total body too short: %d, want at least %d", h.totalBody, uint32(h.keyLen)+uint32(h.extraLen))
			}
			consumed += HeaderSize

			d.op = h.op
			d.status = h.status
			d.keyLen = h.keyLen
			d.extraLen = h.extraLen
			d.totalBody = h.totalBody
			d.cas = h.cas

			if d.extraLen > 0 {
				d.phase = phaseExtra
				d.readLeft = int(d.extraLen)
			} else {
				d.enterValue()
			}

		case phaseExtra:
			// The extra region carries item flags this client does not
			// use. Consume and discard.
			n := min(len(in)-consumed, d.readLeft)
			consumed += n
			d.readLeft -= n
			if d.readLeft > 0 {
				return nil, consumed, nil
			}
			d.enterValue()

		case phaseValue:
			n := min(len(in)-consumed, d.readLeft)
			d.value = append(d.value, in[consumed:consumed+n]...)
			consumed += n
			d.readLeft -= n
			if d.readLeft > 0 {
				return nil, consumed, nil
			}

			frame := &Frame{
				Op:     d.op,
				Status: d.status,
				Value:  d.value,
				CAS:    d.cas,
			}
			d.Reset()
			return frame, consumed, nil
		}
	}
}

// enterValue transitions to the value phase and sizes the value buffer
// up front. The header validation already capped totalBody, so this
// never allocates more than MaxBodySize.
func (d *Decoder) enterValue() {
	d.phase = phaseValue
	d.readLeft = int(d.totalBody) - int(d.keyLen) - int(d.extraLen)
	if d.readLeft > 0 {
		d.value = make([]byte, 0, d.readLeft)
	}
}
