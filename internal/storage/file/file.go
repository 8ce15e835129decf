package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"image-stylizer/internal/storage"
)

// Provider implements a file-based image storage
type Provider struct {
	path string
}

// New returns a new Provider instance
func New(path string) (*Provider, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	return &Provider{
		path,
	}, nil
}

// Get returns the image data for an image id
func (p *Provider) Get(ctx context.Context, id string) ([]byte, error) {
	if !storage.ValidID(id) {
		return nil, storage.ErrInvalidID
	}

	for _, ext := range storage.Extensions {
		imageData, err := os.ReadFile(filepath.Join(p.path, id+ext))
		if err == nil {
			return imageData, nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return nil, storage.ErrNotFound
}
