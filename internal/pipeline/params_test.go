package pipeline_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"image-stylizer/internal/pipeline"
)

func TestDefaultParams(t *testing.T) {
	tests := []struct {
		style    pipeline.Style
		expected pipeline.Params
	}{
		{pipeline.StyleStamp, pipeline.Params{SmoothSharp: 39, LightDark: 50, ThickThin: 61, DenseSparse: 50, EtchingThreshold: 25}},
		{pipeline.StyleComic, pipeline.Params{SmoothSharp: 39, LightDark: 21, ThickThin: 21, DenseSparse: 61, EtchingThreshold: 25}},
		{pipeline.StyleEtching, pipeline.Params{SmoothSharp: 39, LightDark: 50, ThickThin: 61, DenseSparse: 50, EtchingThreshold: 25}},
	}

	for _, test := range tests {
		if params := pipeline.DefaultParams(test.style); params != test.expected {
			t.Errorf("%s: expected %+v, got %+v", test.style, test.expected, params)
		}
	}
}

func TestClamped(t *testing.T) {
	params := pipeline.Params{SmoothSharp: -1, LightDark: 101, ThickThin: 50, DenseSparse: 1000, EtchingThreshold: -80}
	expected := pipeline.Params{SmoothSharp: 0, LightDark: 100, ThickThin: 50, DenseSparse: 100, EtchingThreshold: -50}

	if clamped := params.Clamped(); clamped != expected {
		t.Fatalf("expected %+v, got %+v", expected, clamped)
	}

	negative := pipeline.Params{EtchingThreshold: -30}
	if clamped := negative.Clamped(); clamped.EtchingThreshold != -30 {
		t.Fatalf("negative etching threshold was changed to %d", clamped.EtchingThreshold)
	}
}

func TestParamFromFloat(t *testing.T) {
	tests := []struct {
		value    float64
		expected int
		valid    bool
	}{
		{42.4, 42, true},
		{42.5, 43, true},
		{-12.6, -13, true},
		{1e19, 1e6, true},
		{-1e19, -1e6, true},
		{1e300, 1e6, true},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{math.Inf(-1), 0, false},
	}

	for _, test := range tests {
		v, err := pipeline.ParamFromFloat("light_dark", test.value)
		if !test.valid {
			if !errors.Is(err, pipeline.ErrInvalidInput) {
				t.Errorf("%v: expected invalid input, got %v", test.value, err)
			}
			continue
		}
		if err != nil || v != test.expected {
			t.Errorf("%v: expected %d, got %d (%v)", test.value, test.expected, v, err)
		}
	}
}

func TestParamFromFloatHugeValuesClamp(t *testing.T) {
	tests := []struct {
		value    float64
		expected pipeline.Params
	}{
		{1e19, pipeline.Params{LightDark: pipeline.ParamMax, EtchingThreshold: pipeline.EtchingThresholdMax}},
		{1e300, pipeline.Params{LightDark: pipeline.ParamMax, EtchingThreshold: pipeline.EtchingThresholdMax}},
		{-1e19, pipeline.Params{LightDark: pipeline.ParamMin, EtchingThreshold: pipeline.EtchingThresholdMin}},
	}

	for _, test := range tests {
		lightDark, err := pipeline.ParamFromFloat("light_dark", test.value)
		if err != nil {
			t.Fatal(err)
		}
		threshold, err := pipeline.ParamFromFloat("etching_threshold", test.value)
		if err != nil {
			t.Fatal(err)
		}

		clamped := pipeline.Params{LightDark: lightDark, EtchingThreshold: threshold}.Clamped()
		if clamped != test.expected {
			t.Errorf("%v: expected %+v, got %+v", test.value, test.expected, clamped)
		}
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name     string
		expected pipeline.Style
		valid    bool
	}{
		{"none", pipeline.StyleNone, true},
		{"original", pipeline.StyleNone, true},
		{"Grayscale", pipeline.StyleGrayscale, true},
		{" ETCHING ", pipeline.StyleEtching, true},
		{"stamp", pipeline.StyleStamp, true},
		{"comic", pipeline.StyleComic, true},
		{"sepia", pipeline.StyleNone, false},
	}

	for _, test := range tests {
		style, err := pipeline.ParseStyle(test.name)
		if !test.valid {
			if !errors.Is(err, pipeline.ErrInvalidInput) {
				t.Errorf("%q: expected invalid input, got %v", test.name, err)
			}
			continue
		}
		if err != nil || style != test.expected {
			t.Errorf("%q: expected %s, got %s (%v)", test.name, test.expected, style, err)
		}
	}
}

func TestStyleJSON(t *testing.T) {
	var request struct {
		Style  pipeline.Style  `json:"style"`
		Params pipeline.Params `json:"params"`
	}

	if err := json.Unmarshal([]byte(`{"style":"comic","params":{"thick_thin":80}}`), &request); err != nil {
		t.Fatal(err)
	}
	if request.Style != pipeline.StyleComic || request.Params.ThickThin != 80 {
		t.Fatalf("wrong request: %+v", request)
	}

	if err := json.Unmarshal([]byte(`{"style":"sepia"}`), &request); err == nil {
		t.Fatal("expected error")
	}

	data, err := json.Marshal(pipeline.StyleEtching)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"etching"` {
		t.Fatalf("wrong encoding: %s", data)
	}
}
