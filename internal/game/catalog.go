package game

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a game's adapter. Factories run lazily on first
// Lookup so importing a game package stays cheap.
type Factory func() (*Adapter, error)

// catalog is the process-wide set of known games. Game packages
// register themselves from init(); after program start the catalog is
// effectively read-only.
var catalog = struct {
	mu        sync.Mutex
	factories map[string]Factory
	adapters  map[string]*Adapter
}{
	factories: make(map[string]Factory),
	adapters:  make(map[string]*Adapter),
}

// Register adds a game factory under its name. Called from game
// package init functions. Panics on a duplicate name: the process
// cannot proceed with an ambiguous catalog.
func Register(name string, factory Factory) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	if name == "" {
		panic("game.Register: name must be non-empty")
	}
	if factory == nil {
		panic(fmt.Sprintf("game.Register(%q): nil factory", name))
	}
	if _, exists := catalog.factories[name]; exists {
		panic(fmt.Sprintf("game.Register(%q): duplicate game name", name))
	}
	catalog.factories[name] = factory
}

// Lookup returns the adapter for a registered game, constructing it on
// first use. A factory error is a load-time configuration defect and
// is returned verbatim.
func Lookup(name string) (*Adapter, error) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	if adapter, ok := catalog.adapters[name]; ok {
		return adapter, nil
	}
	factory, ok := catalog.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown game %q (registered: %v)", name, namesLocked())
	}
	adapter, err := factory()
	if err != nil {
		return nil, fmt.Errorf("game %q: %w", name, err)
	}
	catalog.adapters[name] = adapter
	return adapter, nil
}

// Names returns all registered game names in sorted order.
func Names() []string {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(catalog.factories))
	for name := range catalog.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
