package host

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a Host from its configuration.
// Each protocol registers its own factory function.
type Factory func(cfg Config) (Host, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a protocol factory to the registry.
// Panics if the protocol is already registered.
func Register(protocol string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[protocol]; exists {
		panic(fmt.Sprintf("host protocol %q already registered", protocol))
	}
	registry[protocol] = factory
}

// New creates the host called name. The protocol comes from cfg.Protocol,
// or from name when cfg leaves it empty, so a bare "ollama" works without
// any configuration.
//
// Returns ErrUnknownHost if the protocol is not registered.
func New(name string, cfg Config) (Host, error) {
	if cfg.Name == "" {
		cfg.Name = name
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	protocol := cfg.ProtocolName()
	registryMu.RLock()
	factory, ok := registry[protocol]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHost, protocol)
	}
	return factory(cfg)
}

// Available returns the registered protocol names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a protocol is registered.
func IsRegistered(protocol string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[protocol]
	return ok
}

// Unregister removes a protocol from the registry.
// This is primarily useful for testing.
func Unregister(protocol string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(registry, protocol)
}
