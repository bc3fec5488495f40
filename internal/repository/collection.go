package repository

import (
	"context"
	"errors"
	"sync"
)

var ErrRecordNotFound = errors.New("record not found")

// Collection holds records of one kind partitioned by company. Records keep
// their insertion order so listings are stable.
type Collection[T any] struct {
	mu      sync.RWMutex
	tenants map[string]*partition[T]
}

type partition[T any] struct {
	order []string
	items map[string]T
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{tenants: make(map[string]*partition[T])}
}

func (c *Collection[T]) List(ctx context.Context, companyID string) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.tenants[companyID]
	if !ok {
		return []T{}
	}
	out := make([]T, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.items[id])
	}
	return out
}

func (c *Collection[T]) Get(ctx context.Context, companyID, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	p, ok := c.tenants[companyID]
	if !ok {
		return zero, ErrRecordNotFound
	}
	v, ok := p.items[id]
	if !ok {
		return zero, ErrRecordNotFound
	}
	return v, nil
}

// Insert stores a new record or replaces an existing one in place.
func (c *Collection[T]) Insert(ctx context.Context, companyID, id string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.tenants[companyID]
	if !ok {
		p = &partition[T]{items: make(map[string]T)}
		c.tenants[companyID] = p
	}
	if _, exists := p.items[id]; !exists {
		p.order = append(p.order, id)
	}
	p.items[id] = v
}

// Replace overwrites an existing record and fails when it is absent.
func (c *Collection[T]) Replace(ctx context.Context, companyID, id string, v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.tenants[companyID]
	if !ok {
		return ErrRecordNotFound
	}
	if _, exists := p.items[id]; !exists {
		return ErrRecordNotFound
	}
	p.items[id] = v
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, companyID, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.tenants[companyID]
	if !ok {
		return ErrRecordNotFound
	}
	if _, exists := p.items[id]; !exists {
		return ErrRecordNotFound
	}
	delete(p.items, id)
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}
