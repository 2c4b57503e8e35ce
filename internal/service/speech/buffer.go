package speech

// DefaultChunkBytes is roughly one second of 8 kHz 16-bit mono PCM.
const DefaultChunkBytes = 16000

// ChunkBuffer accumulates streamed audio and releases it in fixed-size units.
// It is not safe for concurrent use; each call stream owns one.
type ChunkBuffer struct {
	size int
	buf  []byte
}

func NewChunkBuffer(size int) *ChunkBuffer {
	if size <= 0 {
		size = DefaultChunkBytes
	}
	return &ChunkBuffer{size: size}
}

// Write appends audio and returns every complete unit now available.
func (b *ChunkBuffer) Write(p []byte) [][]byte {
	b.buf = append(b.buf, p...)

	var units [][]byte
	for len(b.buf) >= b.size {
		unit := make([]byte, b.size)
		copy(unit, b.buf[:b.size])
		units = append(units, unit)
		b.buf = b.buf[b.size:]
	}
	if len(b.buf) == 0 {
		b.buf = nil
	}
	return units
}

// Flush returns whatever partial unit remains, or nil.
func (b *ChunkBuffer) Flush() []byte {
	if len(b.buf) == 0 {
		return nil
	}
	rest := b.buf
	b.buf = nil
	return rest
}

// Len reports buffered bytes not yet released.
func (b *ChunkBuffer) Len() int {
	return len(b.buf)
}
