package tabula

import (
	"reflect"
	"sync"
)

// registryKey combines type and tag name for cache lookup.
type registryKey struct {
	typ     reflect.Type
	tagName string
}

var (
	registry   = make(map[registryKey]*shape)
	registryMu sync.RWMutex
)

// shapeFor returns a cached decode plan or compiles a new one.
// Plans are cached by type and the tag name used for field names.
func shapeFor(t reflect.Type, tagName string) *shape {
	key := registryKey{typ: t, tagName: tagName}

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[key]; ok {
		registryMu.RUnlock()
		return cached
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[key]; ok {
		return cached
	}

	sh := compileShape(t, tagName)
	registry[key] = sh
	return sh
}

// Reset clears the decode plan registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[registryKey]*shape)
}
