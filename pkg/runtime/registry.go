package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a runtime from shared dependencies.
type Factory func(Deps) (Runtime, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a runtime factory for a function kind.
// Called by runtime implementations in their init() functions.
func Register(kind string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// Get retrieves a runtime factory by function kind.
func Get(kind string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	return f, ok
}

// New creates the runtime registered for kind.
func New(kind string, deps Deps) (Runtime, error) {
	if kind == "" {
		return nil, fmt.Errorf("function kind not specified")
	}
	factory, ok := Get(kind)
	if !ok {
		return nil, &UnknownRuntimeError{Kind: kind, Available: List()}
	}
	return factory(deps)
}

// List returns all registered function kinds (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a function kind has a runtime.
func IsRegistered(kind string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[kind]
	return ok
}

// UnknownRuntimeError is returned when no runtime is registered for a kind.
type UnknownRuntimeError struct {
	Kind      string
	Available []string
}

func (e *UnknownRuntimeError) Error() string {
	return fmt.Sprintf("unknown function kind %q\nAvailable runtimes: %v\nHint: Check the function kind in your run file", e.Kind, e.Available)
}
