package ratelimit

import (
	"math"
	"time"
)

// bucket is a token bucket. It is not safe for concurrent use; the Limiter serializes access.
type bucket struct {
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

func newBucket(r Rule, now time.Time) *bucket {
	return &bucket{tokens: r.capacity(), last: now, lastSeen: now}
}

// refill adds the tokens earned since the last call, capped at the rule's capacity.
func (b *bucket) refill(r Rule, now time.Time) {
	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens = math.Min(r.capacity(), b.tokens+elapsed.Seconds()*r.refillPerSecond())
	}
	b.last = now
}

// take consumes one token if available and reports the bucket's state afterwards.
func (b *bucket) take(r Rule, now time.Time) Decision {
	b.refill(r, now)
	b.lastSeen = now

	d := Decision{Rule: r.Name, Limit: r.Limit}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
	} else {
		d.RetryAfter = secondsFor(1-b.tokens, r)
	}
	d.Remaining = int(b.tokens)
	d.Reset = now.Add(secondsFor(r.capacity()-b.tokens, r))
	return d
}

// secondsFor is how long the rule needs to earn n tokens.
func secondsFor(n float64, r Rule) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n / r.refillPerSecond() * float64(time.Second))
}
