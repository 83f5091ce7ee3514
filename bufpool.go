package rzcobs

import (
	"bytes"
	"sync"
)

// framePool reuses buffers for assembling frames that span several bufio
// reads and for marshaling values before encoding.
var framePool = sync.Pool{
	New: func() any {
		// 4KB covers common packet sizes without regrowth.
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// maxPooled keeps a single huge frame from pinning its buffer in the pool.
const maxPooled = 64 * 1024

func getBuffer() *bytes.Buffer {
	buf := framePool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooled {
		return
	}
	framePool.Put(buf)
}
