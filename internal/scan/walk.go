package scan

import (
	"math"
	"time"

	"github.com/RMahshie/wlansurvey/internal/pathloss"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

const (
	// audibleDBm is the weakest reading a walk reports
	audibleDBm = -92
	walkJitter = 3
	walkStep   = 30 * time.Second
)

// SimulatedAP is an access point the walk simulator places on or near a floor
type SimulatedAP struct {
	X, Y float64
	// Power is the received power next to the radio in dBm
	Power float64
	Radio models.Measurement
}

// PlaceAPs places count access points. About one in three sits outside the
// floor, the way a neighbour's radio would.
func (s *Simulator) PlaceAPs(floor models.FloorSpec, count int) []SimulatedAP {
	w, h := float64(floor.Width), float64(floor.Height)
	aps := make([]SimulatedAP, 0, count)
	for i := 0; i < count; i++ {
		x, y := s.rng.Float64()*w, s.rng.Float64()*h
		if s.rng.IntN(3) == 0 {
			// push it past one edge by up to half the floor
			if s.rng.IntN(2) == 0 {
				x = -x / 2
				if s.rng.IntN(2) == 0 {
					x = w - x
				}
			} else {
				y = -y / 2
				if s.rng.IntN(2) == 0 {
					y = h - y
				}
			}
		}

		plan, band := channels5, models.Band5GHz
		if s.rng.IntN(2) == 0 {
			plan, band = channels24, models.Band24GHz
		}
		ch := plan[s.rng.IntN(len(plan))]

		aps = append(aps, SimulatedAP{
			X:     x,
			Y:     y,
			Power: float64(s.between(-40, -25)),
			Radio: models.Measurement{
				SSID:         SampleSSIDs[s.rng.IntN(len(SampleSSIDs))],
				BSSID:        s.mac(),
				Channel:      ch.channel,
				FrequencyMHz: ch.frequency,
				Band:         band,
			},
		})
	}
	return aps
}

// Walk simulates a survey of count points laid out on a regular grid over the
// floor. Each point hears the access points as predicted by model plus a few
// dB of jitter; readings below -92 dBm are not reported.
func (s *Simulator) Walk(floor models.FloorSpec, aps []SimulatedAP, model pathloss.Model, count int, start time.Time) []models.SurveyPoint {
	if count <= 0 || floor.Width <= 0 || floor.Height <= 0 {
		return nil
	}

	w, h := float64(floor.Width), float64(floor.Height)
	cols := max(1, int(math.Ceil(math.Sqrt(float64(count)*w/h))))
	rows := (count + cols - 1) / cols

	points := make([]models.SurveyPoint, 0, count)
	for i := 0; i < count; i++ {
		col, row := i%cols, i/cols
		x := (float64(col) + 0.5) * w / float64(cols)
		y := (float64(row) + 0.5) * h / float64(rows)

		var heard []models.Measurement
		for _, ap := range aps {
			d := math.Hypot(ap.X-x, ap.Y-y)
			rssi := int(math.Round(model.Predict(d, ap.Radio.Band, ap.Power))) + s.between(-walkJitter, walkJitter)
			if rssi < audibleDBm {
				continue
			}
			m := ap.Radio
			m.SignalStrength = min(rssi, 0)
			m.Quality = s.quality(m.SignalStrength)
			heard = append(heard, m)
		}

		points = append(points, models.SurveyPoint{
			X:            x,
			Y:            y,
			CapturedAt:   start.Add(time.Duration(i) * walkStep),
			Measurements: heard,
		})
	}
	return points
}
