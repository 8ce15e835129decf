package api

import (
	"encoding/json"
	"net/http"

	"image-stylizer/internal/handler"
	"image-stylizer/internal/pipeline"
)

// Style describes a style and the controls it starts from
type Style struct {
	Name     pipeline.Style  `json:"name"`
	Defaults pipeline.Params `json:"defaults"`
}

func (a *API) stylesHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	styles := pipeline.Styles()
	list := make([]Style, len(styles))
	for i, style := range styles {
		list[i] = Style{Name: style, Defaults: pipeline.DefaultParams(style)}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		a.logError(r, "error encoding style list", err)
		return handler.InternalServerError()
	}

	return nil
}
