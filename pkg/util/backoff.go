package util

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter spreads retries over [d, 1.5d]
const DefaultJitter = 0.5

var (
	jitterRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	jitterMu   sync.Mutex
)

// Jitter returns d plus a random fraction of d, at most factor*d.
func Jitter(d time.Duration, factor float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}
	jitterMu.Lock()
	extra := jitterRand.Float64() * factor * float64(d)
	jitterMu.Unlock()
	return d + time.Duration(extra)
}

// ExponentialBackoff doubles base for every prior attempt (zero-based),
// capped at max, then applies jitter.
func ExponentialBackoff(base, max time.Duration, attempt int, factor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= max {
			backoff = max
			break
		}
	}
	return Jitter(backoff, factor)
}
