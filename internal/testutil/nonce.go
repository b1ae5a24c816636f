package testutil

import (
	"fmt"
	"sync"
)

// SequenceNonces generates donation nonces "<prefix>-1", "<prefix>-2", ...
//
// Real callers use random UUIDv7 nonces; tests use this generator so
// donation addresses and golden output are reproducible.
//
// Thread-safety: Generate is safe for concurrent use.
type SequenceNonces struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceNonces creates a generator. An empty prefix becomes "nonce".
func NewSequenceNonces(prefix string) *SequenceNonces {
	if prefix == "" {
		prefix = "nonce"
	}
	return &SequenceNonces{prefix: prefix}
}

// Generate returns the next nonce.
func (g *SequenceNonces) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
