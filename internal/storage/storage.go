package storage

import (
	"context"
	"errors"
	"regexp"
)

// Provider is an interface for retrieving source images
type Provider interface {
	Get(ctx context.Context, id string) ([]byte, error)
}

// Extensions are tried in order when resolving an id to a stored object
var Extensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif", ".gif", ".webp"}

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidID reports whether id is safe to use as a file or object name
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// Errors
var (
	ErrNotFound  = errors.New("Image does not exist")
	ErrInvalidID = errors.New("Invalid image id")
)
