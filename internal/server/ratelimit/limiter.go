// Package ratelimit limits API requests per client with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// Rule names the rule that applied; empty for exempt requests and disabled limiting.
	Rule       string
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// Limited reports whether the decision came from an actual limit, so headers should be sent.
func (d Decision) Limited() bool {
	return d.Limit > 0
}

type bucketKey struct {
	client string
	rule   string
}

// Limiter tracks one bucket per client and rule. Idle buckets are swept periodically.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[bucketKey]*bucket

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig.
func NewLimiter(cfg *Config) *Limiter {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	l := &Limiter{
		cfg:     c,
		now:     time.Now,
		buckets: make(map[bucketKey]*bucket),
	}
	if c.Enabled && c.SweepInterval > 0 {
		l.stop = make(chan struct{})
		l.done = make(chan struct{})
		go l.sweepLoop()
	}
	return l
}

// Allow consumes a token for the client's request if one is available.
func (l *Limiter) Allow(clientID, method, path string) Decision {
	if !l.cfg.Enabled || l.cfg.Allow[clientID] || exempt(method, path) {
		return Decision{Allowed: true}
	}
	if l.cfg.Deny[clientID] {
		return Decision{Rule: "deny"}
	}

	rule, ok := match(l.cfg.Rules, method, path)
	if !ok {
		rule = l.cfg.Default
		rule.Name = "default"
	}
	if rule.Unlimited() {
		return Decision{Allowed: true, Rule: rule.Name}
	}

	now := l.now()
	key := bucketKey{client: clientID, rule: rule.Name}

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(rule, now)
		l.buckets[key] = b
	}
	return b.take(rule, now)
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops buckets not used since before cutoff.
func (l *Limiter) sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) sweepLoop() {
	defer close(l.done)
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(l.now().Add(-l.cfg.IdleTTL))
		case <-l.stop:
			return
		}
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() {
		if l.stop != nil {
			close(l.stop)
			<-l.done
		}
	})
}
