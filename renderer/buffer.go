package renderer

import "errors"

// ErrOutputTooLarge is returned when rendered output would exceed the
// configured maximum size.
var ErrOutputTooLarge = errors.New("rendered output exceeds maximum size")

// outputBuffer accumulates the chunks of one render call. Capacity doubles
// as needed and never shrinks. A non-zero limit caps the total length.
type outputBuffer struct {
	data  []byte
	limit int
}

func newOutputBuffer(initial, limit int) *outputBuffer {
	if limit > 0 && initial > limit {
		initial = limit
	}
	return &outputBuffer{data: make([]byte, 0, initial), limit: limit}
}

func (b *outputBuffer) append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	need := len(b.data) + len(p)
	if b.limit > 0 && need > b.limit {
		return ErrOutputTooLarge
	}
	if need > cap(b.data) {
		b.grow(need)
	}
	b.data = append(b.data, p...)
	return nil
}

func (b *outputBuffer) grow(need int) {
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = 1
	}
	for newCap < need {
		newCap *= 2
	}
	if b.limit > 0 && newCap > b.limit {
		newCap = b.limit
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
}

// bytes hands over the accumulated output. The buffer must not be used
// afterwards.
func (b *outputBuffer) bytes() []byte {
	out := b.data
	b.data = nil
	return out
}
