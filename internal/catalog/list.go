package catalog

import (
	"slices"
	"sync"
)

// NamedList is an ordered keyed store. Iteration follows first-seen order;
// lookups work by composite key, full name or simple name.
type NamedList[T Named] struct {
	mu     sync.RWMutex
	items  []T
	byKey  map[Key]T
	byFull map[string]T
	byName map[string]T
}

func (l *NamedList[T]) init() {
	if l.byKey == nil {
		l.byKey = make(map[Key]T)
		l.byFull = make(map[string]T)
		l.byName = make(map[string]T)
	}
}

// Resolve returns the object stored under key, calling create to make and
// store it on first reference. The second result is true when the object was
// created by this call.
func (l *NamedList[T]) Resolve(key Key, create func() T) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.init()
	if v, ok := l.byKey[key]; ok {
		return v, false
	}
	v := create()
	l.items = append(l.items, v)
	l.byKey[key] = v
	if _, ok := l.byFull[v.FullName()]; !ok {
		l.byFull[v.FullName()] = v
	}
	names := []string{key.Name}
	if key.Name == "" {
		// Schemas go by their schema part; "" keeps finding the first one.
		names = append(names, key.Schema)
	}
	for _, n := range names {
		if _, ok := l.byName[n]; !ok {
			l.byName[n] = v
		}
	}
	return v, true
}

// resolveIn is Resolve for a list owned by c. A frozen catalog only hands
// out objects it already holds; it never creates one.
func resolveIn[T Named](c *Catalog, l *NamedList[T], key Key, create func() T) (T, bool) {
	if c.frozen() {
		v, _ := l.Lookup(key)
		return v, false
	}
	return l.Resolve(key, create)
}

// Lookup finds an object by composite key.
func (l *NamedList[T]) Lookup(key Key) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.byKey[key]
	return v, ok
}

// LookupName finds an object by full name, falling back to the first object
// seen with that simple name.
func (l *NamedList[T]) LookupName(name string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if v, ok := l.byFull[name]; ok {
		return v, true
	}
	v, ok := l.byName[name]
	return v, ok
}

// All returns the objects in first-seen order.
func (l *NamedList[T]) All() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Sorted returns the objects ordered by key.
func (l *NamedList[T]) Sorted() []T {
	out := l.All()
	slices.SortStableFunc(out, func(a, b T) int {
		return a.Key().Compare(b.Key())
	})
	return out
}

// Len returns the number of stored objects.
func (l *NamedList[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
