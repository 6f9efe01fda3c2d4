package testfixtures

import (
	"strconv"
	"strings"
	"sync"
)

// IDGenerator produces deterministic identifiers. With an empty prefix it
// yields bare numbers, the shape the booking API uses for record ids.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator for prefix.
func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	n := strconv.FormatUint(g.counter, 10)
	if g.prefix == "" {
		return n
	}
	return g.prefix + "-" + n
}

// NextFunc exposes Next for injection, e.g. as a request id source.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetCounter overrides the internal counter, enabling deterministic resets.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}

// Observe moves the counter past id when id was produced with this
// generator's prefix, so seeded records never collide with generated ones.
func (g *IDGenerator) Observe(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	digits := id
	if g.prefix != "" {
		var ok bool
		if digits, ok = strings.CutPrefix(id, g.prefix+"-"); !ok {
			return
		}
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err == nil && n > g.counter {
		g.counter = n
	}
}
