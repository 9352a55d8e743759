package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBand(t *testing.T) {
	tests := []struct {
		raw  string
		want Band
	}{
		{"2.4 GHz", Band24GHz},
		{"2.4GHz", Band24GHz},
		{" 2.4 ghz ", Band24GHz},
		{"2.4", Band24GHz},
		{"5 GHz", Band5GHz},
		{"5ghz", Band5GHz},
		{"6 GHz", Band6GHz},
		{"6", Band6GHz},
		{"Unknown", BandUnknown},
		{"60 GHz", BandUnknown},
		{"", BandUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseBand(tt.raw), "%q", tt.raw)
	}
}

func TestBandFromFrequency(t *testing.T) {
	assert.Equal(t, Band24GHz, BandFromFrequency(2437))
	assert.Equal(t, Band5GHz, BandFromFrequency(5180))
	assert.Equal(t, Band6GHz, BandFromFrequency(5975))
	assert.Equal(t, BandUnknown, BandFromFrequency(0))
}
