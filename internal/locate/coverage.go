package locate

import (
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/wlansurvey/internal/grouping"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

// CoverageFor derives the rendering footprint of an external emitter.
// Louder sources reach further into the floor and fade more steeply per ring.
func CoverageFor(est models.ExternalEstimate) models.InterferenceSource {
	radius, falloff := 100.0, 0.9
	switch {
	case est.MaxRSSI > -45 || est.TxPowerEstimate > 25:
		radius, falloff = 200, 0.7
	case est.MaxRSSI > -55 || est.TxPowerEstimate > 20:
		radius, falloff = 150, 0.8
	}

	return models.InterferenceSource{
		DeviceID:    est.DeviceID,
		X:           est.X,
		Y:           est.Y,
		MaxRadius:   radius,
		FalloffRate: falloff,
		TxPower:     est.TxPowerEstimate,
		MaxRSSI:     est.MaxRSSI,
		SSID:        est.SSID,
	}
}

// TriangulateAll locates every device with enough evidence and returns the
// matching interference sources in device order.
func (t *Triangulator) TriangulateAll(groups map[string][]models.Observation) []models.InterferenceSource {
	var sources []models.InterferenceSource
	for _, id := range grouping.SortedIDs(groups) {
		est, ok := t.Locate(id, groups[id])
		if !ok {
			log.Debug().Str("deviceID", id).Int("observations", len(groups[id])).Msg("Skipping external device with insufficient evidence")
			continue
		}
		sources = append(sources, CoverageFor(est))
	}
	return sources
}
