// Package pathloss implements the indoor attenuation law used to predict
// received power at a distance from an emitter on a floor plan.
package pathloss

import (
	"errors"
	"fmt"

	"github.com/RMahshie/wlansurvey/pkg/models"
)

// ErrInvalidFloorWidth is returned when the floor width cannot calibrate pixel distances
var ErrInvalidFloorWidth = errors.New("floor width must be positive")

// Settings holds the calibration of the linear path-loss law
type Settings struct {
	// FloorSpanFeet is the nominal physical width the floor raster represents.
	FloorSpanFeet float64
	// LossPerFoot24 is the attenuation in dB per foot on 2.4 GHz.
	LossPerFoot24 float64
	// LossPerFoot5 is the attenuation in dB per foot on 5 GHz and above.
	LossPerFoot5 float64
	// MinDBm and MaxDBm bound every prediction.
	MinDBm float64
	MaxDBm float64
}

// DefaultSettings returns the empirically chosen indoor calibration
func DefaultSettings() Settings {
	return Settings{
		FloorSpanFeet: 164.0,
		LossPerFoot24: 0.5,
		LossPerFoot5:  0.6,
		MinDBm:        -95,
		MaxDBm:        -20,
	}
}

// Model predicts received power for one floor raster
type Model struct {
	settings     Settings
	feetPerPixel float64
}

// NewModel calibrates settings against a floor raster of the given width
func NewModel(settings Settings, floorWidth int) (Model, error) {
	if floorWidth <= 0 {
		return Model{}, fmt.Errorf("%w: got %d", ErrInvalidFloorWidth, floorWidth)
	}
	if settings.MinDBm > settings.MaxDBm {
		return Model{}, fmt.Errorf("invalid signal bounds: min %.1f dBm above max %.1f dBm", settings.MinDBm, settings.MaxDBm)
	}
	return Model{
		settings:     settings,
		feetPerPixel: settings.FloorSpanFeet / float64(floorWidth),
	}, nil
}

// Settings returns the calibration the model was built with
func (m Model) Settings() Settings {
	return m.settings
}

// Feet converts a floor plan distance in pixels to feet
func (m Model) Feet(distancePx float64) float64 {
	return distancePx * m.feetPerPixel
}

// LossPerFoot returns the attenuation rate for a band
func (m Model) LossPerFoot(band models.Band) float64 {
	if band == models.Band24GHz {
		return m.settings.LossPerFoot24
	}
	return m.settings.LossPerFoot5
}

// LossInDb returns the attenuation over distancePx on the given band
func (m Model) LossInDb(distancePx float64, band models.Band) float64 {
	if distancePx <= 0 {
		return 0
	}
	return m.Feet(distancePx) * m.LossPerFoot(band)
}

// Predict returns the received power at distancePx from an emitter whose
// power at the origin is basePower. A zero distance returns basePower as is.
func (m Model) Predict(distancePx float64, band models.Band, basePower float64) float64 {
	if distancePx <= 0 {
		return basePower
	}
	predicted := basePower - m.LossInDb(distancePx, band)
	if predicted < m.settings.MinDBm {
		return m.settings.MinDBm
	}
	if predicted > m.settings.MaxDBm {
		return m.settings.MaxDBm
	}
	return predicted
}

// TxPower inverts the law: the power at the origin that yields rssi at distancePx
func (m Model) TxPower(rssi float64, distancePx float64, band models.Band) float64 {
	return rssi + m.LossInDb(distancePx, band)
}
