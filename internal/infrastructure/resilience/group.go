package resilience

import (
	"sort"
	"sync"
)

// Group keeps one breaker per upstream, created on first use with shared
// settings. Breakers are named prefix/key.
type Group struct {
	prefix   string
	settings Settings

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewGroup creates an empty group
func NewGroup(prefix string, settings Settings) *Group {
	return &Group{
		prefix:   prefix,
		settings: settings,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for key, creating it if needed
func (g *Group) Get(key string) *Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.breakers[key]
	if !ok {
		name := g.prefix
		if key != "" {
			name += "/" + key
		}
		b = New(name, g.settings)
		g.breakers[key] = b
	}
	return b
}

// Keys lists the upstreams seen so far, sorted
func (g *Group) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := make([]string, 0, len(g.breakers))
	for k := range g.breakers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (g *Group) snapshot() []*Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Breaker, 0, len(g.breakers))
	for _, b := range g.breakers {
		out = append(out, b)
	}
	return out
}

// State returns the worst state in the group: open over half-open over
// closed. An empty group is closed.
func (g *Group) State() State {
	worst := StateClosed
	for _, b := range g.snapshot() {
		if s := b.State(); s > worst {
			worst = s
		}
	}
	return worst
}

// Counts sums the current counts of every breaker
func (g *Group) Counts() Counts {
	var total Counts
	for _, b := range g.snapshot() {
		c := b.Counts()
		total.Requests += c.Requests
		total.TotalSuccesses += c.TotalSuccesses
		total.TotalFailures += c.TotalFailures
		total.ConsecutiveSuccesses += c.ConsecutiveSuccesses
		total.ConsecutiveFailures += c.ConsecutiveFailures
	}
	return total
}
