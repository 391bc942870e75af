package memory

import (
	"context"
	"sync"

	"github.com/fstgc/vms-portal/internal/ports"
)

// GenerationStore is a mutex-guarded map of render generations.
type GenerationStore struct {
	mu     sync.Mutex
	scopes map[string]map[string]int64
}

// NewGenerationStore creates an empty GenerationStore.
func NewGenerationStore() *GenerationStore {
	return &GenerationStore{scopes: make(map[string]map[string]int64)}
}

var _ ports.GenerationStore = (*GenerationStore)(nil)

func (g *GenerationStore) Next(_ context.Context, scope, container string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.scopes[scope]
	if !ok {
		m = make(map[string]int64)
		g.scopes[scope] = m
	}
	m[container]++
	return m[container], nil
}

func (g *GenerationStore) Current(_ context.Context, scope, container string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scopes[scope][container], nil
}

func (g *GenerationStore) Forget(_ context.Context, scope string) error {
	g.mu.Lock()
	delete(g.scopes, scope)
	g.mu.Unlock()
	return nil
}

// Scopes returns how many scopes hold counters.
func (g *GenerationStore) Scopes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.scopes)
}
