package mock

import (
	"context"
	"fmt"
	"sync"

	"image-stylizer/internal/storage"
)

// Provider implements an in-memory image storage. Objects not in Images are missing,
// and the id "error" fails.
type Provider struct {
	mu     sync.RWMutex
	Images map[string][]byte
}

// Put stores data under id
func (p *Provider) Put(id string, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Images == nil {
		p.Images = make(map[string][]byte)
	}
	p.Images[id] = data
}

// Get returns the image data for an image id
func (p *Provider) Get(ctx context.Context, id string) ([]byte, error) {
	if id == "error" {
		return nil, fmt.Errorf("error")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	data, ok := p.Images[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}
