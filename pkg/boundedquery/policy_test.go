package boundedquery

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Backoff(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
	assert.Equal(t, 8*time.Second, p.Backoff(3))
	assert.Equal(t, 16*time.Second, p.Backoff(4))
}

func TestPolicy_BackoffCapped(t *testing.T) {
	p := Policy{MaxRetries: 5, Timeout: time.Second, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
	assert.Equal(t, 5*time.Second, p.Backoff(3))
	assert.Equal(t, 5*time.Second, p.Backoff(4))
}

func TestPolicy_WorstCase(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   time.Duration
	}{
		{
			name:   "defaults",
			policy: DefaultPolicy(),
			want:   3*8*time.Second + 2*time.Second + 4*time.Second,
		},
		{
			name:   "100ms timeout",
			policy: Policy{MaxRetries: 3, Timeout: 100 * time.Millisecond},
			want:   6300 * time.Millisecond,
		},
		{
			name:   "single attempt has no backoff",
			policy: Policy{MaxRetries: 1, Timeout: time.Second},
			want:   time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.WorstCase())
		})
	}
}

func TestPolicy_WorstCaseSaturates(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{name: "backoff sum overflows", policy: Policy{MaxRetries: 70, Timeout: 8 * time.Second, BaseDelay: time.Second}},
		{name: "attempt timeouts overflow", policy: Policy{MaxRetries: math.MaxInt32, Timeout: 24 * time.Hour}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, time.Duration(math.MaxInt64), tt.policy.WorstCase())
		})
	}
}

func TestPolicy_Normalize(t *testing.T) {
	p := Policy{MaxRetries: -1, Timeout: 0, BaseDelay: 0, MaxDelay: -time.Second}.Normalize()

	assert.Equal(t, DefaultPolicy(), p)
}
