package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory creates a new Client from the given configuration.
type Factory func(cfg Config) (Client, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a provider factory to the registry.
// Providers call this from init. Panics on a duplicate name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("provider %q already registered", name))
	}
	registry[name] = factory
}

// Open creates a Client for cfg.Provider.
//
// An empty Provider selects the only registered provider, so a binary that
// links a single backend (the usual case: one local server) works without
// naming it. With none or several registered, the name is required.
func Open(cfg Config) (Client, error) {
	name, factory, err := lookup(cfg.Provider)
	if err != nil {
		return nil, err
	}
	cfg.Provider = name
	return factory(cfg)
}

// OpenFromEnv is Open(FromEnv()).
func OpenFromEnv() (Client, error) {
	return Open(FromEnv())
}

// New creates a Client using the named provider. name overrides cfg.Provider.
func New(name string, cfg Config) (Client, error) {
	return Open(cfg.WithProvider(name))
}

func lookup(name string) (string, Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if name == "" {
		if len(registry) != 1 {
			return "", nil, fmt.Errorf("%w: provider not set (registered: %s)",
				ErrInvalidRequest, registeredNames())
		}
		for n, f := range registry {
			return n, f, nil
		}
	}
	factory, ok := registry[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownProvider, name, registeredNames())
	}
	return name, factory, nil
}

// registeredNames lists providers for error messages. Callers hold registryMu.
func registeredNames() string {
	if len(registry) == 0 {
		return "none"
	}
	return strings.Join(sortedNames(), ", ")
}

func sortedNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available returns the names of all registered providers, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedNames()
}

// IsRegistered checks if a provider is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[name]
	return ok
}

// Unregister removes a provider from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(registry, name)
}
