package params

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"image-stylizer/internal/imageio"
	"image-stylizer/internal/pipeline"
)

// Errors
var (
	ErrInvalidStyle         = errors.New("Invalid style")
	ErrInvalidFileExtension = errors.New("Invalid file extension")
	ErrInvalidParameter     = errors.New("Invalid parameter")
)

const defaultExtension = ".png"

// Query parameter names, one per user control
const (
	SmoothSharp      = "smooth_sharp"
	LightDark        = "light_dark"
	ThickThin        = "thick_thin"
	DenseSparse      = "dense_sparse"
	EtchingThreshold = "etching_threshold"
)

// Params contains all the parameters for a request
type Params struct {
	Style     pipeline.Style
	Params    pipeline.Params
	Extension string
}

// GetParams parses and returns all the path and query parameters.
// Controls missing from the query keep the defaults of the requested style.
func GetParams(r *http.Request) (*Params, error) {
	style, err := getStyle(r)
	if err != nil {
		return nil, err
	}

	extension, err := getFileExtension(r)
	if err != nil {
		return nil, err
	}

	controls, err := getQueryParams(r, pipeline.DefaultParams(style))
	if err != nil {
		return nil, err
	}

	return &Params{
		Style:     style,
		Params:    controls,
		Extension: extension,
	}, nil
}

func getStyle(r *http.Request) (pipeline.Style, error) {
	style, err := pipeline.ParseStyle(mux.Vars(r)["style"])
	if err != nil {
		return pipeline.StyleNone, ErrInvalidStyle
	}
	return style, nil
}

// getFileExtension gets the file extension (if present) from the path params, and validates it
func getFileExtension(r *http.Request) (string, error) {
	// Having no extension is normalized since it's an optional path param
	val := strings.ToLower(mux.Vars(r)["extension"])
	if val == "" {
		val = defaultExtension
	}

	if !imageio.IsSupported(val) {
		return "", ErrInvalidFileExtension
	}

	return val, nil
}

func getQueryParams(r *http.Request, p pipeline.Params) (pipeline.Params, error) {
	query := r.URL.Query()

	fields := []struct {
		name  string
		field *int
	}{
		{SmoothSharp, &p.SmoothSharp},
		{LightDark, &p.LightDark},
		{ThickThin, &p.ThickThin},
		{DenseSparse, &p.DenseSparse},
		{EtchingThreshold, &p.EtchingThreshold},
	}

	for _, f := range fields {
		if _, ok := query[f.name]; !ok {
			continue
		}

		v, err := strconv.ParseFloat(query.Get(f.name), 64)
		if err != nil {
			return p, fmt.Errorf("%w: %s", ErrInvalidParameter, f.name)
		}

		*f.field, err = pipeline.ParamFromFloat(f.name, v)
		if err != nil {
			return p, fmt.Errorf("%w: %s", ErrInvalidParameter, f.name)
		}
	}

	return p.Clamped(), nil
}

// BuildQuery builds the query string for a set of controls
func BuildQuery(p pipeline.Params) string {
	return fmt.Sprintf("?%s=%d&%s=%d&%s=%d&%s=%d&%s=%d",
		SmoothSharp, p.SmoothSharp,
		LightDark, p.LightDark,
		ThickThin, p.ThickThin,
		DenseSparse, p.DenseSparse,
		EtchingThreshold, p.EtchingThreshold,
	)
}
