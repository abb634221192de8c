package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/proparse/abl/scope"
)

// ErrAlreadyRegistered is returned by Register for a key that already has
// an entry.
var ErrAlreadyRegistered = errors.New("class already resolved in this session")

// Entry is the resolution of one class or interface.
type Entry struct {
	Key   string
	Scope *scope.Scope
	// Generation orders registrations within a session, starting at 1.
	Generation uint64
}

// Cache holds the resolved classes of a session. Entries are only ever
// added: there is no way to replace or remove one.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]Entry
	generation uint64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Register adds the resolution of the class named key. The existence check
// and the insert happen under one lock, so of two concurrent registrations
// of a key exactly one succeeds.
func (c *Cache) Register(key string, s *scope.Scope) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := strings.ToUpper(key)
	if existing, ok := c.entries[k]; ok {
		return existing, fmt.Errorf("register %s (generation %d): %w", key, existing.Generation, ErrAlreadyRegistered)
	}
	c.generation++
	e := Entry{Key: key, Scope: s, Generation: c.generation}
	c.entries[k] = e
	return e, nil
}

func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[strings.ToUpper(key)]
	return e, ok
}

// Keys returns the registered class names, sorted.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	return keys
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
