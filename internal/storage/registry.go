package storage

import (
	"fmt"
	"sort"
)

// Factory creates a backend instance from opaque config (backend-specific).
type Factory func(any) (Backend, error)

// registry is only written from init functions.
var registry = map[string]Factory{}

// Register binds a backend name to its factory.
func Register(name string, f Factory) {
	registry[name] = f
}

// New returns a backend instance by name.
func New(name string, cfg any) (Backend, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("storage backend not found: %s", name)
	}
	return f(cfg)
}

// Registered reports whether a backend with this name exists.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns the registered backend names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
