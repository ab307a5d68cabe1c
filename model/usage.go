package model

import "sync"

// Usage counts tokens spent on model calls.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	Requests         int
}

// Add adds other to u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.Requests += other.Requests
}

// TotalTokens returns prompt plus completion tokens.
func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// UsageTracker accumulates usage per model spec. Safe for concurrent use.
type UsageTracker struct {
	mu     sync.RWMutex
	totals map[string]Usage
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		totals: make(map[string]Usage),
	}
}

// Record adds one request's usage for spec.
func (t *UsageTracker) Record(spec Spec, usage Usage) {
	if usage.Requests == 0 {
		usage.Requests = 1
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	u := t.totals[spec.String()]
	u.Add(usage)
	t.totals[spec.String()] = u
}

// Usage returns the usage recorded for spec.
func (t *UsageTracker) Usage(spec Spec) Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totals[spec.String()]
}

// Summary returns a copy of all totals keyed by spec string.
func (t *UsageTracker) Summary() map[string]Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]Usage, len(t.totals))
	for k, v := range t.totals {
		result[k] = v
	}
	return result
}

// Total returns usage summed over all models.
func (t *UsageTracker) Total() Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total Usage
	for _, u := range t.totals {
		total.Add(u)
	}
	return total
}
