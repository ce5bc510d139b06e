package gameserver

import "sync"

// BytePool recycles frame buffers between the read loop, Send and writePump.
type BytePool struct {
	pool sync.Pool
}

// NewBytePool creates a pool whose fresh buffers have capacity defaultCap.
func NewBytePool(defaultCap int) *BytePool {
	p := &BytePool{}
	p.pool.New = func() any {
		return make([]byte, 0, defaultCap)
	}
	return p
}

// Get returns a buffer of length size. Contents are not zeroed: callers
// either fill it from the network or truncate it and append.
func (p *BytePool) Get(size int) []byte {
	b := p.pool.Get().([]byte)
	if cap(b) < size {
		p.pool.Put(b)
		return make([]byte, size)
	}
	return b[:size]
}

// Put returns b to the pool. b must not be used afterwards.
func (p *BytePool) Put(b []byte) {
	if b == nil {
		return
	}
	p.pool.Put(b[:0])
}
