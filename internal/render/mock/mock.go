package mock

import (
	"context"
	"fmt"

	"image-stylizer/internal/render"
)

// Processor is a mock render processor that always fails
type Processor struct{}

// Render returns an error
func (p *Processor) Render(ctx context.Context, task *render.Task) ([]byte, error) {
	return nil, fmt.Errorf("processing error")
}
