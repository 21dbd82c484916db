package http

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/pipeline"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pipeline.Params
	}{
		{"empty", "", pipeline.Params{}},
		{"all set", "region=Goa&horizon=7&category=Murder&category_forecast=1",
			pipeline.Params{Region: "Goa", HorizonYears: 7, Category: "Murder", RunCategoryForecast: true}},
		{"checkbox on", "category_forecast=on", pipeline.Params{RunCategoryForecast: true}},
		{"trigger off", "category=Rape&category_forecast=0", pipeline.Params{Category: "Rape"}},
		{"escaped region", "region=Andaman+%26+Nicobar+Islands", pipeline.Params{Region: "Andaman & Nicobar Islands"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := parseParams(q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseParams_InvalidHorizon(t *testing.T) {
	_, err := parseParams(url.Values{"horizon": {"five"}})
	assert.ErrorIs(t, err, pipeline.ErrInvalidHorizon)
}

func TestEncodeParams_RoundTrip(t *testing.T) {
	in := pipeline.Params{Region: "Jammu & Kashmir", HorizonYears: 4, Category: "Murder", RunCategoryForecast: true}

	q, err := url.ParseQuery(encodeParams(in))
	require.NoError(t, err)
	got, err := parseParams(q)
	require.NoError(t, err)

	assert.Equal(t, in, got)
}

func TestHorizonOptions(t *testing.T) {
	opts := horizonOptions()
	assert.Len(t, opts, 10)
	assert.Equal(t, 1, opts[0])
	assert.Equal(t, 10, opts[9])
}
