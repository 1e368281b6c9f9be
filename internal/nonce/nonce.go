// Package nonce generates the strictly increasing nonces signing requires.
package nonce

import (
	"strconv"
	"sync"
	"time"
)

// Counter issues strictly increasing nonces. It is seeded from the wall
// clock so values keep increasing across process restarts, then increments
// monotonically so concurrent callers never collide.
type Counter struct {
	mu   sync.Mutex
	last int64
}

// NewCounter creates a Counter seeded from the current time.
func NewCounter() *Counter {
	return &Counter{last: time.Now().UnixNano()}
}

// Next returns the next nonce as a decimal string.
func (c *Counter) Next() string {
	c.mu.Lock()
	c.last++
	n := c.last
	c.mu.Unlock()
	return strconv.FormatInt(n, 10)
}
