package transfer

import (
	"io"
	"sync/atomic"
)

// countingReader сообщает, сколько байт прочитано из источника
type countingReader struct {
	r    io.Reader
	n    atomic.Int64
	sent func(int64)
}

func newCountingReader(r io.Reader, sent func(int64)) *countingReader {
	if sent == nil {
		sent = func(int64) {}
	}
	return &countingReader{r: r, sent: sent}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent(c.n.Add(int64(n)))
	}
	return n, err
}
