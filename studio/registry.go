package studio

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Desarso/agentstudio/chat"
)

// Registry holds the named chat clients the studio can inspect and run.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]chat.Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]chat.Client)}
}

func (r *Registry) Register(name string, client chat.Client) error {
	if name == "" {
		return fmt.Errorf("chat client name must not be empty")
	}
	if client == nil {
		return fmt.Errorf("chat client %s is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[name]; exists {
		return fmt.Errorf("chat client %s already registered", name)
	}
	r.clients[name] = client
	return nil
}

func (r *Registry) Get(name string) (chat.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, name)
	}
	return client, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
