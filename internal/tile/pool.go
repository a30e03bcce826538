package tile

import "sync"

// bufferPool recycles tile-sized interleaved buffers. All tiles are the
// same fixed size, so unlike a size-keyed pool (keyed by width x height,
// for code that handles many different output sizes), a single
// sync.Pool suffices here.
var bufferPool = sync.Pool{
	New: func() any {
		return make([]byte, bufferSize)
	},
}

// newTileBuffer returns a zeroed tile-sized buffer from the pool, or
// allocates a new one.
func newTileBuffer() []byte {
	buf := bufferPool.Get().([]byte)
	clear(buf)
	return buf
}

// putTileBuffer returns a tile buffer to the pool for reuse. Buffers of the
// wrong length are dropped rather than pooled, so a future Get never hands
// out a short buffer.
func putTileBuffer(buf []byte) {
	if len(buf) != bufferSize {
		return
	}
	bufferPool.Put(buf)
}
