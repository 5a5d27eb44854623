package boundedquery

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultMaxRetries = 3
	DefaultTimeout    = 8 * time.Second
	DefaultBaseDelay  = time.Second
)

const maxDuration = time.Duration(math.MaxInt64)

// Policy controls how many times a query is attempted, how long a single
// attempt may run and how long to wait between attempts.
type Policy struct {
	MaxRetries int
	Timeout    time.Duration
	// BaseDelay scales the backoff: the wait after attempt n is 2^n * BaseDelay.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff wait. Zero means uncapped.
	MaxDelay time.Duration
}

// DefaultPolicy returns 3 attempts, 8s per attempt and a 1s backoff base.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Timeout:    DefaultTimeout,
		BaseDelay:  DefaultBaseDelay,
	}
}

// Normalize replaces non-positive fields with their defaults.
func (p Policy) Normalize() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay < 0 {
		p.MaxDelay = 0
	}
	return p
}

// Backoff returns the wait that follows the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.Normalize()
	b := p.newBackOff()
	var d time.Duration
	for i := 0; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

// WorstCase is the longest a permanently failing query can take under this
// policy: every attempt times out and every backoff wait is taken. The result
// saturates at the largest time.Duration instead of overflowing.
func (p Policy) WorstCase() time.Duration {
	p = p.Normalize()
	if p.Timeout > maxDuration/time.Duration(p.MaxRetries) {
		return maxDuration
	}
	total := time.Duration(p.MaxRetries) * p.Timeout
	b := p.newBackOff()
	for i := 1; i < p.MaxRetries && total < maxDuration; i++ {
		total = addSaturating(total, b.NextBackOff())
	}
	return total
}

func addSaturating(a, b time.Duration) time.Duration {
	if b > maxDuration-a {
		return maxDuration
	}
	return a + b
}

func (p Policy) newBackOff() *backoff.ExponentialBackOff {
	initial := 2 * p.BaseDelay
	maxInterval := p.MaxDelay
	if maxInterval == 0 {
		maxInterval = maxDuration
	}
	if initial > maxInterval {
		initial = maxInterval
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     initial,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         maxInterval,
	}
	b.Reset()
	return b
}
