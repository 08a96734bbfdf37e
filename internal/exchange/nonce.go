package exchange

import (
	"sync"
	"time"
)

// Nonce issues monotonically non-decreasing millisecond nonces. Exchanges
// reject a nonce lower than or equal to the previous one, and wall clocks
// can step backwards after NTP correction, so the last issued value is the
// floor for the next.
type Nonce struct {
	mu   sync.Mutex
	last int64
}

// Next returns the next nonce, strictly greater than any previous value.
func (n *Nonce) Next() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= n.last {
		n.last++
	} else {
		n.last = now
	}
	return n.last
}
