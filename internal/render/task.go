package render

import (
	"fmt"
	"strings"

	"github.com/twmb/murmur3"

	"image-stylizer/internal/imageio"
	"image-stylizer/internal/pipeline"
	"image-stylizer/internal/storage"
)

// Task is a render task
type Task struct {
	// SourceID names a stored source image
	SourceID string
	// Source holds an uploaded source image, used when SourceID is empty
	Source    []byte
	Style     pipeline.Style
	Params    pipeline.Params
	Extension string
}

// NewTask creates a new render task for a stored source image
func NewTask(sourceID string, style pipeline.Style, params pipeline.Params, extension string) *Task {
	return &Task{
		SourceID:  sourceID,
		Style:     style,
		Params:    params.Clamped(),
		Extension: strings.ToLower(extension),
	}
}

// NewUploadTask creates a new render task for an uploaded source image
func NewUploadTask(source []byte, style pipeline.Style, params pipeline.Params, extension string) *Task {
	return &Task{
		Source:    source,
		Style:     style,
		Params:    params.Clamped(),
		Extension: strings.ToLower(extension),
	}
}

// Validate checks that the task can be rendered
func (t *Task) Validate() error {
	if t.SourceID == "" && len(t.Source) == 0 {
		return fmt.Errorf("%w: missing source image", pipeline.ErrInvalidInput)
	}
	if t.SourceID != "" && !storage.ValidID(t.SourceID) {
		return fmt.Errorf("%w: %v", pipeline.ErrInvalidInput, storage.ErrInvalidID)
	}
	if _, err := t.Style.MarshalText(); err != nil {
		return err
	}
	if !imageio.IsSupported(t.Extension) {
		return fmt.Errorf("%w: %v %q", pipeline.ErrInvalidInput, imageio.ErrUnsupportedFormat, t.Extension)
	}
	return nil
}

// Key identifies the rendered output. Tasks that differ only in out-of-range params share a key.
func (t *Task) Key() string {
	source := "id:" + t.SourceID
	if t.SourceID == "" {
		h := murmur3.New128()
		h.Write(t.Source)
		hi, lo := h.Sum128()
		source = fmt.Sprintf("upload:%016x%016x", hi, lo)
	}

	p := t.Params.Clamped()
	seed := fmt.Sprintf("%s/%s/%d/%d/%d/%d/%d/%s",
		source, t.Style, p.SmoothSharp, p.LightDark, p.ThickThin, p.DenseSparse, p.EtchingThreshold, strings.ToLower(t.Extension))

	return fmt.Sprintf("render-%016x", murmur3.StringSum64(seed))
}
