package memory

import (
	"container/list"
	"context"
	"sync"

	"image-stylizer/internal/cache"
)

// Provider implements an in-memory cache holding at most maxEntries renditions, evicting the
// least recently used. A maxEntries of 0 means unbounded.
type Provider struct {
	maxEntries int

	mutex sync.Mutex
	order *list.List
	items map[string]*list.Element
}

type entry struct {
	key  string
	data []byte
}

// New returns a new Provider instance
func New(maxEntries int) *Provider {
	return &Provider{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get returns an object from the cache if it exists
func (p *Provider) Get(ctx context.Context, key string) (data []byte, err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	element, exists := p.items[key]
	if !exists {
		return nil, cache.ErrNotFound
	}

	p.order.MoveToFront(element)
	return element.Value.(*entry).data, nil
}

// Set adds an object to the cache
func (p *Provider) Set(ctx context.Context, key string, data []byte) (err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if element, exists := p.items[key]; exists {
		element.Value.(*entry).data = data
		p.order.MoveToFront(element)
		return nil
	}

	p.items[key] = p.order.PushFront(&entry{key: key, data: data})

	if p.maxEntries > 0 && p.order.Len() > p.maxEntries {
		oldest := p.order.Back()
		p.order.Remove(oldest)
		delete(p.items, oldest.Value.(*entry).key)
	}

	return nil
}

// Len returns the number of cached objects
func (p *Provider) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.order.Len()
}

// Shutdown shuts down the cache
func (p *Provider) Shutdown() {}
