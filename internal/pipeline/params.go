package pipeline

import (
	"fmt"
	"math"
)

// Parameter ranges
const (
	ParamMin = 0
	ParamMax = 100

	EtchingThresholdMin     = -50
	EtchingThresholdMax     = 100
	DefaultEtchingThreshold = 25
)

// Params holds the user controls. Every field is read as value/100 before use.
type Params struct {
	// SmoothSharp: 0 is maximally smooth, 100 maximally sharp, 50 is the branch boundary
	SmoothSharp int `json:"smooth_sharp"`
	// LightDark: 0 is lightest, 100 darkest
	LightDark int `json:"light_dark"`
	// ThickThin: 0 is thinnest, 100 thickest
	ThickThin int `json:"thick_thin"`
	// DenseSparse controls the edge detector thresholds
	DenseSparse int `json:"dense_sparse"`
	// EtchingThreshold plays the DenseSparse role for the etching style and may be negative
	EtchingThreshold int `json:"etching_threshold"`
}

var (
	stampDefaults = Params{SmoothSharp: 39, LightDark: 50, ThickThin: 61, DenseSparse: 50, EtchingThreshold: DefaultEtchingThreshold}
	comicDefaults = Params{SmoothSharp: 39, LightDark: 21, ThickThin: 21, DenseSparse: 61, EtchingThreshold: DefaultEtchingThreshold}
)

// DefaultParams returns the bundle activated when a style is selected
func DefaultParams(style Style) Params {
	if style == StyleComic {
		return comicDefaults
	}
	return stampDefaults
}

// Clamped returns a copy with every field forced into its declared range
func (p Params) Clamped() Params {
	return Params{
		SmoothSharp:      clampInt(p.SmoothSharp, ParamMin, ParamMax),
		LightDark:        clampInt(p.LightDark, ParamMin, ParamMax),
		ThickThin:        clampInt(p.ThickThin, ParamMin, ParamMax),
		DenseSparse:      clampInt(p.DenseSparse, ParamMin, ParamMax),
		EtchingThreshold: clampInt(p.EtchingThreshold, EtchingThresholdMin, EtchingThresholdMax),
	}
}

// controlLimit bounds converted control values well inside the int range and well outside every
// declared parameter range, so Clamped still sees the sign and direction of huge inputs
const controlLimit = 1e6

// ParamFromFloat converts a control value from an outer surface, rejecting non-finite values
func ParamFromFloat(name string, v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, name)
	}
	return int(math.Round(math.Max(math.Min(v, controlLimit), -controlLimit))), nil
}

func fraction(v int) float64 {
	return float64(v) / 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
