package token

// Buffer owns the raw source bytes a Ribbon of tokens was lexed from. The
// parser stores the Buffer on the graph it produces so that token byte
// ranges stay valid for as long as the graph references them.
type Buffer struct {
	name  string
	bytes []byte
}

// NewBuffer wraps src, which must not be mutated afterwards.
func NewBuffer(name string, src []byte) *Buffer {
	return &Buffer{name: name, bytes: src}
}

// Name returns the buffer's source name (e.g. a filename), which may be empty.
func (b *Buffer) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.bytes)
}

// Slice returns the bytes in [start, end). It panics if the range is
// negative-length or out of bounds.
func (b *Buffer) Slice(start, end int) []byte {
	if end < start {
		panic("token: negative-length byte range")
	}
	if start < 0 || end > len(b.bytes) {
		panic("token: byte range out of bounds")
	}
	return b.bytes[start:end]
}

// Bytes returns the buffer's full contents. Callers must not mutate it.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.bytes
}
