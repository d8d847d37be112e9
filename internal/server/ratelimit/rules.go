package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Rule limits one group of requests. Every request matching the rule draws from the same bucket
// per client, so /resumes/a/export and /resumes/b/export share tokens.
type Rule struct {
	Name string
	// Method is matched exactly; empty matches any method.
	Method string
	// Pattern is matched segment by segment, "*" standing for one non-empty segment.
	// A pattern ending in "/" also matches every path below it.
	Pattern string
	Limit   int
	Window  time.Duration
	// Burst is the bucket capacity. Zero means Limit.
	Burst int
}

// Unlimited reports whether the rule lets everything through.
func (r Rule) Unlimited() bool {
	return r.Limit <= 0 || r.Window <= 0
}

func (r Rule) capacity() float64 {
	if r.Burst > 0 {
		return float64(r.Burst)
	}
	return float64(r.Limit)
}

// refillPerSecond is the steady token rate, Limit per Window.
func (r Rule) refillPerSecond() float64 {
	return float64(r.Limit) / r.Window.Seconds()
}

// Matches reports whether a request falls under the rule.
func (r Rule) Matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if r.Pattern == path {
		return true
	}
	if strings.HasSuffix(r.Pattern, "/") && !strings.Contains(r.Pattern, "*") {
		return strings.HasPrefix(path, r.Pattern)
	}
	return matchSegments(r.Pattern, path)
}

// matchSegments compares pattern and path segment by segment. A trailing "/" on the pattern
// accepts any deeper path once the pattern's own segments matched.
func matchSegments(pattern, path string) bool {
	open := strings.HasSuffix(pattern, "/")
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(got) < len(want) || (!open && len(got) != len(want)) {
		return false
	}
	for i, w := range want {
		if w == "*" {
			if got[i] == "" {
				return false
			}
			continue
		}
		if w != got[i] {
			return false
		}
	}
	return true
}

// exempt requests are never limited: health checks and long-lived pagination streams.
func exempt(method, path string) bool {
	return method == http.MethodGet && (path == "/health" || strings.HasSuffix(path, "/pagination/stream"))
}

// DefaultRules returns the per-route limits of the resume API. Earlier rules win.
func DefaultRules() []Rule {
	return []Rule{
		// Exports drive headless Chrome.
		{Name: "export", Method: http.MethodPost, Pattern: "/resumes/*/export", Limit: 30, Window: time.Hour, Burst: 3},
		{Name: "create", Method: http.MethodPost, Pattern: "/resumes", Limit: 100, Window: time.Minute, Burst: 10},
		// Edits come in bursts while a user types.
		{Name: "edit", Method: http.MethodPut, Pattern: "/resumes/", Limit: 300, Window: time.Minute, Burst: 30},
		{Name: "delete", Method: http.MethodDelete, Pattern: "/resumes/", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// match returns the first rule matching the request.
func match(rules []Rule, method, path string) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(method, path) {
			return r, true
		}
	}
	return Rule{}, false
}
