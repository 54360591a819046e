package tool

import (
	"sort"
	"sync"

	"agentgate/internal/domain"
)

// Registry holds named tool descriptors. Registration happens during
// startup; lookups after that are read-only and safe for any number of
// concurrent callers.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*domain.ToolDescriptor
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*domain.ToolDescriptor)}
}

// Register adds a descriptor. Returns ErrDuplicate if the name is taken.
func (r *Registry) Register(d domain.ToolDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[d.Name]; exists {
		return domain.NewDomainError("Registry.Register", domain.ErrDuplicate, "tool "+d.Name)
	}
	r.tools[d.Name] = &d
	return nil
}

// Get retrieves a descriptor by name.
func (r *Registry) Get(name string) (*domain.ToolDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.tools[name]
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrToolNotFound, name)
	}
	return d, nil
}

// All returns every registered descriptor, sorted by name for stable route
// tables.
func (r *Registry) All() []domain.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ToolDescriptor, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
