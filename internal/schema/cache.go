package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownObject is returned for an object API name outside the catalog.
	ErrUnknownObject = errors.New("unknown object")
	// ErrUnknownField is returned for a filter or order field that the object
	// does not expose.
	ErrUnknownField = errors.New("unknown field")
	// ErrTypeMismatch is returned when an operator or operand does not fit
	// the field type.
	ErrTypeMismatch = errors.New("type mismatch")
)

type Cache struct {
	mu      sync.RWMutex
	objects map[string]*ObjectDef
}

// NewCache returns a cache holding objs, or the default catalog when none
// are given.
func NewCache(objs ...*ObjectDef) *Cache {
	c := &Cache{objects: make(map[string]*ObjectDef)}
	if len(objs) == 0 {
		objs = DefaultObjects()
	}
	c.Store(objs...)
	return c
}

// Store indexes objs and replaces the cached catalog with them.
func (c *Cache) Store(objs ...*ObjectDef) {
	objects := make(map[string]*ObjectDef, len(objs))
	for _, obj := range objs {
		obj.index()
		objects[obj.APIName] = obj
	}

	c.mu.Lock()
	c.objects = objects
	c.mu.Unlock()
}

func (c *Cache) Get(apiName string) *ObjectDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.objects[apiName]
}

// Lookup is Get with an error naming the missing object.
func (c *Cache) Lookup(apiName string) (*ObjectDef, error) {
	if obj := c.Get(apiName); obj != nil {
		return obj, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownObject, apiName)
}

// Objects returns every cached object ordered by API name.
func (c *Cache) Objects() []*ObjectDef {
	c.mu.RLock()
	out := make([]*ObjectDef, 0, len(c.objects))
	for _, obj := range c.objects {
		out = append(out, obj)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].APIName < out[j].APIName })
	return out
}

// ObjectCount returns the number of loaded objects.
func (c *Cache) ObjectCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}
