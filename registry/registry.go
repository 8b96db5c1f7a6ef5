// Package registry maps scraper names to root-unit factories so CLI
// commands can address page definitions by name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wenzapen/trowel/page"
)

type Factory func() *page.Unit

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a unit factory addressable by name. It panics on a
// duplicate name, which is a programmer error in an init block.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic("registry: duplicate scraper name " + name)
	}
	factories[name] = f
}

// Lookup builds the named root unit.
func Lookup(name string) (*page.Unit, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown scraper %q (known: %v)", name, Names())
	}
	return f(), nil
}

// Names lists registered scrapers in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
