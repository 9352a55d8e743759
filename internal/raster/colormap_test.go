package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalColor_Anchors(t *testing.T) {
	tests := []struct {
		dbm  float64
		want color.NRGBA
	}{
		{dbm: -20, want: color.NRGBA{R: 0, G: 255, B: 0, A: 255}},
		{dbm: -45, want: color.NRGBA{R: 255, G: 255, B: 0, A: 255}},
		{dbm: -60, want: color.NRGBA{R: 255, G: 165, B: 0, A: 255}},
		{dbm: -75, want: color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
		{dbm: -90, want: color.NRGBA{R: 0, G: 0, B: 255, A: 255}},
		{dbm: -52.5, want: color.NRGBA{R: 255, G: 210, B: 0, A: 255}},
		{dbm: -5, want: color.NRGBA{R: 0, G: 255, B: 0, A: 255}},
		{dbm: -110, want: color.NRGBA{R: 0, G: 0, B: 255, A: 255}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SignalColor(tt.dbm), "%.1f dBm", tt.dbm)
	}
}

func TestSignalColor_Monotonic(t *testing.T) {
	prev := GradientPosition(-120)
	for dbm := -119.5; dbm <= 0; dbm += 0.5 {
		pos := GradientPosition(dbm)
		assert.LessOrEqual(t, pos, prev, "%.1f dBm looks weaker than %.1f dBm", dbm, dbm-0.5)
		prev = pos
	}
	assert.Equal(t, 0.0, GradientPosition(-20))
	assert.Equal(t, 4.0, GradientPosition(-90))
}

func TestSignalBandFor_Monotonic(t *testing.T) {
	rank := map[string]int{}
	for i, b := range SignalBands() {
		rank[b.Label] = i
	}

	prev := rank[SignalBandFor(-130).Label]
	for dbm := -129.5; dbm <= 0; dbm += 0.5 {
		r := rank[SignalBandFor(dbm).Label]
		assert.LessOrEqual(t, r, prev, "%.1f dBm falls in a weaker band than %.1f dBm", dbm, dbm-0.5)
		prev = r
	}
	assert.Equal(t, SignalBandColor(-30), SignalBandColor(-5))
}

func TestSignalAnchors_ReturnsCopy(t *testing.T) {
	anchors := SignalAnchors()
	anchors[0].Color = color.NRGBA{}
	assert.Equal(t, color.NRGBA{R: 0, G: 255, B: 0, A: 255}, SignalColor(-20))

	bands := SignalBands()
	bands[0].Label = "changed"
	assert.Equal(t, "Excellent", SignalBandFor(-30).Label)
}

func TestSignalBandFor(t *testing.T) {
	tests := []struct {
		dbm   float64
		label string
	}{
		{-30, "Excellent"},
		{-45, "Excellent"},
		{-50, "Good"},
		{-70, "Fair"},
		{-80, "Poor"},
		{-100, "Very Poor"},
		{-130, "Very Poor"},
		{-19, "Excellent"},
		{-10, "Excellent"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, SignalBandFor(tt.dbm).Label, "%.0f dBm", tt.dbm)
	}
	assert.Equal(t, uint8(SignalBandAlpha), SignalBandColor(-50).A)
	assert.Equal(t, "-60 to -75", SignalBandFor(-70).String())
}

func TestInterferenceColor(t *testing.T) {
	tests := []struct {
		level float64
		want  color.NRGBA
	}{
		{0, color.NRGBA{R: 173, G: 216, B: 230, A: 15}},
		{10, color.NRGBA{R: 173, G: 216, B: 230, A: 15}},
		{15, color.NRGBA{R: 135, G: 206, B: 250, A: 25}},
		{30, color.NRGBA{R: 255, G: 255, B: 224, A: 35}},
		{52.5, color.NRGBA{R: 255, G: 218, B: 185, A: 50}},
		{75, color.NRGBA{R: 255, G: 182, B: 193, A: 70}},
		{95, color.NRGBA{R: 255, G: 99, B: 71, A: 90}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterferenceColor(tt.level), "level %.1f", tt.level)
	}

	var prev uint8
	for level := 0.0; level <= 100; level++ {
		a := InterferenceColor(level).A
		assert.GreaterOrEqual(t, a, prev)
		prev = a
	}
}
