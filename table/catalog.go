package table

import (
	"sort"
	"sync"
)

// Catalog is the session's name-to-table registry.
//
// Tables are immutable, so readers never lock a table mid-read; the single
// mutex here only guards the name-to-table swap. Writers (CREATE TABLE,
// COPY ... FROM, loads) take the write lock for the duration of the swap,
// concurrent queries share the read lock.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

// Create registers a new table. Fails with DuplicateTableError if the name
// is taken.
func (c *Catalog) Create(name string, t *Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		return &DuplicateTableError{Name: name}
	}
	c.tables[name] = t
	return nil
}

// Get returns the named table. Fails with TableNotFoundError if absent.
func (c *Catalog) Get(name string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, exists := c.tables[name]
	if !exists {
		return nil, &TableNotFoundError{Name: name}
	}
	return t, nil
}

// Replace atomically installs a table under name, creating the entry if it
// does not exist. Load operations use this to swap in freshly ingested data.
func (c *Catalog) Replace(name string, t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[name] = t
}

// Drop removes the named table. Fails with TableNotFoundError if absent.
func (c *Catalog) Drop(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; !exists {
		return &TableNotFoundError{Name: name}
	}
	delete(c.tables, name)
	return nil
}

// Names returns all registered table names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
