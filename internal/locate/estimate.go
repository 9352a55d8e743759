// Package locate infers emitter positions from located signal measurements.
//
// Two estimators are provided. EstimateInBounds is used when the survey walked
// around the emitter and its position lies among the measurements. The
// Triangulator handles emitters outside the surveyed footprint, typically a
// neighbour's access point heard through walls.
package locate

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/RMahshie/wlansurvey/internal/grouping"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

// MinInBoundsObservations is the evidence required before an in-bounds estimate is attempted
const MinInBoundsObservations = 2

// EstimateInBounds returns the linear-power weighted centroid of the
// observations. Each observation is weighted by 10^(rssi/10) so the strongest
// readings dominate. The result always lies within the convex hull of the
// inputs. ok is false when there is not enough evidence.
func EstimateInBounds(deviceID string, observations []models.Observation) (models.EstimatedEmitterLocation, bool) {
	if len(observations) < MinInBoundsObservations {
		return models.EstimatedEmitterLocation{}, false
	}

	xs := make([]float64, len(observations))
	ys := make([]float64, len(observations))
	weights := make([]float64, len(observations))
	strongest := observations[0]
	for i, o := range observations {
		xs[i] = o.X
		ys[i] = o.Y
		weights[i] = math.Pow(10, float64(o.Measurement.SignalStrength)/10)
		if o.Measurement.SignalStrength > strongest.Measurement.SignalStrength {
			strongest = o
		}
	}

	centre := orb.Point{stat.Mean(xs, weights), stat.Mean(ys, weights)}
	if math.IsNaN(centre.X()) || math.IsNaN(centre.Y()) {
		return models.EstimatedEmitterLocation{}, false
	}

	return models.EstimatedEmitterLocation{
		DeviceID:            deviceID,
		BSSID:               strongest.Measurement.BSSID,
		X:                   centre.X(),
		Y:                   centre.Y(),
		RepresentativePower: float64(strongest.Measurement.SignalStrength),
		Band:                BandOf(strongest.Measurement),
		Channel:             strongest.Measurement.Channel,
		SSID:                strongest.Measurement.SSID,
	}, true
}

// EstimateAll runs EstimateInBounds over every device, in device order.
// Devices with insufficient evidence are skipped.
func EstimateAll(groups map[string][]models.Observation) []models.EstimatedEmitterLocation {
	estimates := make([]models.EstimatedEmitterLocation, 0, len(groups))
	for _, id := range grouping.SortedIDs(groups) {
		est, ok := EstimateInBounds(id, groups[id])
		if !ok {
			log.Debug().Str("deviceID", id).Int("observations", len(groups[id])).Msg("Skipping device with insufficient evidence")
			continue
		}
		estimates = append(estimates, est)
	}
	return estimates
}

// FromPlaced turns user-placed emitters into estimates at their asserted
// location. Emitters without associated measurements carry no power and are skipped.
func FromPlaced(placed []models.PlacedEmitter) []models.EstimatedEmitterLocation {
	var out []models.EstimatedEmitterLocation
	for _, p := range placed {
		if len(p.ScanData) == 0 {
			continue
		}
		strongest := p.ScanData[0]
		for _, m := range p.ScanData[1:] {
			if m.SignalStrength > strongest.SignalStrength {
				strongest = m
			}
		}
		out = append(out, models.EstimatedEmitterLocation{
			DeviceID:            grouping.DeviceID(strongest.BSSID),
			BSSID:               strongest.BSSID,
			X:                   p.X,
			Y:                   p.Y,
			RepresentativePower: float64(strongest.SignalStrength),
			Band:                BandOf(strongest),
			Channel:             strongest.Channel,
			SSID:                strongest.SSID,
			Placed:              true,
		})
	}
	return out
}

// BandOf returns the recorded band, falling back to the frequency
func BandOf(m models.Measurement) models.Band {
	if m.Band != "" && m.Band != models.BandUnknown {
		return m.Band
	}
	if b := models.BandFromFrequency(m.FrequencyMHz); b != models.BandUnknown {
		return b
	}
	if m.Channel > 0 && m.Channel <= 14 {
		return models.Band24GHz
	}
	return models.BandUnknown
}
