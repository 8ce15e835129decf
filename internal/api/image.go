package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"image-stylizer/internal/handler"
	"image-stylizer/internal/imageio"
	"image-stylizer/internal/params"
	"image-stylizer/internal/pipeline"
	"image-stylizer/internal/render"
	"image-stylizer/internal/storage"
)

func (a *API) imageHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	// Get the path and query parameters
	p, err := params.GetParams(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	imageID := mux.Vars(r)["id"]
	if !storage.ValidID(imageID) {
		return handler.BadRequest(storage.ErrInvalidID.Error())
	}

	task := render.NewTask(imageID, p.Style, p.Params, p.Extension)
	image, handlerErr := a.render(r, task)
	if handlerErr != nil {
		return handlerErr
	}

	// Stored images are immutable, so the rendering can be cached downstream
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", buildFilename(imageID, p)))
	w.Header().Set("Cache-Control", "public, max-age=2592000") // Cache for a month
	writeImage(w, p, image)

	return nil
}

func (a *API) renderHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	p, err := params.GetParams(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	maxSize := a.MaxUploadSize
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}

	source, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &handler.Error{Message: "Image too large", Code: http.StatusRequestEntityTooLarge}
		}
		return handler.BadRequest("Invalid request body")
	}
	if len(source) == 0 {
		return handler.BadRequest("Missing source image")
	}

	task := render.NewUploadTask(source, p.Style, p.Params, p.Extension)
	image, handlerErr := a.render(r, task)
	if handlerErr != nil {
		return handlerErr
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", buildFilename("upload", p)))
	w.Header().Set("Cache-Control", "private, no-cache, no-store, must-revalidate")
	writeImage(w, p, image)

	return nil
}

func (a *API) render(r *http.Request, task *render.Task) ([]byte, *handler.Error) {
	image, err := a.Processor.Render(r.Context(), task)
	if err == nil {
		return image, nil
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, handler.NotFound(storage.ErrNotFound.Error())
	case errors.Is(err, pipeline.ErrInvalidInput):
		return nil, handler.BadRequest("Invalid image")
	case errors.Is(err, context.Canceled):
		return nil, &handler.Error{Message: "Request canceled", Code: 499}
	default:
		a.logError(r, "error processing image", err)
		return nil, handler.InternalServerError()
	}
}

func writeImage(w http.ResponseWriter, p *params.Params, image []byte) {
	w.Header().Set("Content-Type", imageio.ContentType(p.Extension))
	w.Header().Set("Stylize-Style", p.Style.String())
	w.Write(image)
}

func buildFilename(name string, p *params.Params) string {
	return fmt.Sprintf("%s-%s%s", name, p.Style, p.Extension)
}
