package raster

import (
	"fmt"
	"image/color"
)

const (
	signalClampMin = -95.0
	signalClampMax = -15.0

	// SignalOverlayAlpha is the opacity of gradient cells on the coverage raster
	SignalOverlayAlpha = 150
	// SignalBandAlpha is the opacity of the discrete signal bands
	SignalBandAlpha = 180
)

// Anchor is one stop of the signal gradient
type Anchor struct {
	DBm   float64
	Color color.NRGBA
}

// Strongest first. Arrays are copied on access so callers cannot mutate them.
var signalAnchors = [...]Anchor{
	{DBm: -20, Color: color.NRGBA{R: 0, G: 255, B: 0, A: 255}},
	{DBm: -45, Color: color.NRGBA{R: 255, G: 255, B: 0, A: 255}},
	{DBm: -60, Color: color.NRGBA{R: 255, G: 165, B: 0, A: 255}},
	{DBm: -75, Color: color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
	{DBm: -90, Color: color.NRGBA{R: 0, G: 0, B: 255, A: 255}},
}

// SignalBand is a discrete signal range with its legend label
type SignalBand struct {
	Label string
	Upper float64
	Lower float64
	Color color.NRGBA
}

// String renders the band range the way the legend prints it
func (b SignalBand) String() string {
	return fmt.Sprintf("%.0f to %.0f", b.Upper, b.Lower)
}

var signalBands = [...]SignalBand{
	{Label: "Excellent", Upper: -20, Lower: -45, Color: color.NRGBA{R: 0, G: 255, B: 0, A: SignalBandAlpha}},
	{Label: "Good", Upper: -45, Lower: -60, Color: color.NRGBA{R: 255, G: 255, B: 0, A: SignalBandAlpha}},
	{Label: "Fair", Upper: -60, Lower: -75, Color: color.NRGBA{R: 255, G: 165, B: 0, A: SignalBandAlpha}},
	{Label: "Poor", Upper: -75, Lower: -90, Color: color.NRGBA{R: 255, G: 0, B: 0, A: SignalBandAlpha}},
	{Label: "Very Poor", Upper: -90, Lower: -120, Color: color.NRGBA{R: 0, G: 0, B: 255, A: SignalBandAlpha}},
}

type interferenceStep struct {
	upTo  float64
	color color.NRGBA
}

var interferenceSteps = [...]interferenceStep{
	{upTo: 10, color: color.NRGBA{R: 173, G: 216, B: 230, A: 15}},
	{upTo: 20, color: color.NRGBA{R: 135, G: 206, B: 250, A: 25}},
	{upTo: 40, color: color.NRGBA{R: 255, G: 255, B: 224, A: 35}},
	{upTo: 60, color: color.NRGBA{R: 255, G: 218, B: 185, A: 50}},
	{upTo: 80, color: color.NRGBA{R: 255, G: 182, B: 193, A: 70}},
}

var interferenceMax = color.NRGBA{R: 255, G: 99, B: 71, A: 90}

// SignalAnchors returns a copy of the gradient stops, strongest first
func SignalAnchors() []Anchor {
	out := signalAnchors
	return out[:]
}

// SignalBands returns a copy of the discrete bands, strongest first
func SignalBands() []SignalBand {
	out := signalBands
	return out[:]
}

// GradientPosition locates dbm on the gradient: 0 at the strongest anchor
// and len(anchors)-1 at the weakest. Input is clamped like SignalColor.
func GradientPosition(dbm float64) float64 {
	dbm = clampSignal(dbm)
	for i := 0; i < len(signalAnchors)-1; i++ {
		hi, lo := signalAnchors[i].DBm, signalAnchors[i+1].DBm
		if dbm <= hi && dbm >= lo {
			return float64(i) + (hi-dbm)/(hi-lo)
		}
	}
	if dbm > signalAnchors[0].DBm {
		return 0
	}
	return float64(len(signalAnchors) - 1)
}

// SignalColor interpolates the gradient between the two anchors bracketing
// dbm. Values beyond the weakest anchor map to its colour.
func SignalColor(dbm float64) color.NRGBA {
	dbm = clampSignal(dbm)
	for i := 0; i < len(signalAnchors)-1; i++ {
		strong, weak := signalAnchors[i], signalAnchors[i+1]
		if dbm <= strong.DBm && dbm >= weak.DBm {
			factor := (dbm - weak.DBm) / (strong.DBm - weak.DBm)
			return color.NRGBA{
				R: lerp(weak.Color.R, strong.Color.R, factor),
				G: lerp(weak.Color.G, strong.Color.G, factor),
				B: lerp(weak.Color.B, strong.Color.B, factor),
				A: 255,
			}
		}
	}
	if dbm > signalAnchors[0].DBm {
		return signalAnchors[0].Color
	}
	return signalAnchors[len(signalAnchors)-1].Color
}

// SignalBandColor returns the discrete band colour. Signals stronger than
// every band fall into the strongest one, weaker ones into the weakest.
func SignalBandColor(dbm float64) color.NRGBA {
	return SignalBandFor(dbm).Color
}

// SignalBandFor returns the band containing dbm
func SignalBandFor(dbm float64) SignalBand {
	if dbm > signalBands[0].Upper {
		return signalBands[0]
	}
	for _, b := range signalBands {
		if dbm <= b.Upper && dbm >= b.Lower {
			return b
		}
	}
	return signalBands[len(signalBands)-1]
}

// InterferenceColor maps an interference level in percent to an overlay colour
func InterferenceColor(level float64) color.NRGBA {
	for _, s := range interferenceSteps {
		if level <= s.upTo {
			return s.color
		}
	}
	return interferenceMax
}

func clampSignal(dbm float64) float64 {
	return max(signalClampMin, min(signalClampMax, dbm))
}

// lerp truncates toward zero like an integer conversion
func lerp(from, to uint8, factor float64) uint8 {
	return uint8(float64(from) + factor*(float64(to)-float64(from)))
}
