package locate

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/stat"

	"github.com/RMahshie/wlansurvey/internal/pathloss"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

const (
	// MinExternalObservations is the evidence required to place an external source.
	// With fewer points there is no directional information and no estimate is made.
	MinExternalObservations = 3

	minNLOSSample     = 5
	minGradientSample = 4

	nlosMarginDB      = 15.0
	nlosToleranceDB   = 10.0
	nlosNearbyMinPx   = 50.0
	nlosNearbyMaxPx   = 200.0
	gradientMarginDB  = 5.0
	missingSideRSSI   = -100.0
	topMeasurements   = 3
	defaultMaxTxPower = 30.0
)

// direction is a unit step along the axes, pointing toward the source
type direction struct {
	dx, dy int
}

// Triangulator places emitters that lie outside the surveyed footprint
type Triangulator struct {
	model      pathloss.Model
	maxTxPower float64
}

// NewTriangulator creates a triangulator. Transmit power estimates are
// derived from model and capped at maxTxPower (30 dBm when zero).
func NewTriangulator(model pathloss.Model, maxTxPower float64) *Triangulator {
	if maxTxPower == 0 {
		maxTxPower = defaultMaxTxPower
	}
	return &Triangulator{model: model, maxTxPower: maxTxPower}
}

// Locate estimates the position of an external emitter from at least three
// observations. The result lies strictly outside the bounding box of the
// observations. ok is false when there is not enough evidence.
func (t *Triangulator) Locate(deviceID string, observations []models.Observation) (models.ExternalEstimate, bool) {
	if len(observations) < MinExternalObservations {
		return models.ExternalEstimate{}, false
	}

	strongest := observations[0]
	for _, o := range observations[1:] {
		if o.Measurement.SignalStrength > strongest.Measurement.SignalStrength {
			strongest = o
		}
	}

	valid := filterNLOS(observations)
	dir, hasDir := signalGradient(valid)
	pos := externalPosition(observations, valid, dir, hasDir)

	distance := planar.Distance(pos, orb.Point{strongest.X, strongest.Y})
	band := BandOf(strongest.Measurement)
	tx := t.model.TxPower(float64(strongest.Measurement.SignalStrength), distance, band)
	if tx > t.maxTxPower {
		tx = t.maxTxPower
	}

	return models.ExternalEstimate{
		DeviceID:         deviceID,
		X:                pos.X(),
		Y:                pos.Y(),
		TxPowerEstimate:  tx,
		SSID:             strongest.Measurement.SSID,
		MeasurementCount: len(observations),
		MaxRSSI:          strongest.Measurement.SignalStrength,
		Band:             band,
	}, true
}

// filterNLOS drops readings that are implausibly strong for their position,
// which usually come from reflections. The unfiltered set is returned when
// too few readings would remain.
func filterNLOS(observations []models.Observation) []models.Observation {
	if len(observations) < minNLOSSample {
		return observations
	}

	median := medianRSSI(observations)
	filtered := make([]models.Observation, 0, len(observations))
	for _, o := range observations {
		if float64(o.Measurement.SignalStrength) <= median+nlosMarginDB || fitsPropagation(o, observations) {
			filtered = append(filtered, o)
		}
	}

	if len(filtered) < MinExternalObservations {
		return observations
	}
	return filtered
}

// fitsPropagation checks a reading against its 50-200 px neighbours: it must
// not exceed a neighbour by more than the expected distance loss plus tolerance.
func fitsPropagation(test models.Observation, all []models.Observation) bool {
	p := orb.Point{test.X, test.Y}
	rssi := float64(test.Measurement.SignalStrength)
	for _, o := range all {
		d := planar.Distance(p, orb.Point{o.X, o.Y})
		if d < nlosNearbyMinPx || d > nlosNearbyMaxPx {
			continue
		}
		expectedLoss := 20 * math.Log10(d/nlosNearbyMinPx)
		if rssi > float64(o.Measurement.SignalStrength)+expectedLoss+nlosToleranceDB {
			return false
		}
	}
	return true
}

func medianRSSI(observations []models.Observation) float64 {
	signals := make([]float64, len(observations))
	for i, o := range observations {
		signals[i] = float64(o.Measurement.SignalStrength)
	}
	sort.Float64s(signals)
	n := len(signals)
	if n%2 == 1 {
		return signals[n/2]
	}
	return stat.Mean(signals[n/2-1:n/2+1], nil)
}

// signalGradient compares mean signal on either side of the centroid on each
// axis. A difference above 5 dB points toward the stronger side.
func signalGradient(observations []models.Observation) (direction, bool) {
	if len(observations) < minGradientSample {
		return direction{}, false
	}

	xs := make([]float64, len(observations))
	ys := make([]float64, len(observations))
	for i, o := range observations {
		xs[i] = o.X
		ys[i] = o.Y
	}
	cx, cy := stat.Mean(xs, nil), stat.Mean(ys, nil)

	var north, south, east, west []float64
	for _, o := range observations {
		rssi := float64(o.Measurement.SignalStrength)
		switch {
		case o.Y < cy:
			north = append(north, rssi)
		case o.Y > cy:
			south = append(south, rssi)
		}
		switch {
		case o.X > cx:
			east = append(east, rssi)
		case o.X < cx:
			west = append(west, rssi)
		}
	}

	var dir direction
	avgNorth, avgSouth := sideMean(north), sideMean(south)
	if math.Abs(avgNorth-avgSouth) > gradientMarginDB {
		if avgNorth > avgSouth {
			dir.dy = -1
		} else {
			dir.dy = 1
		}
	}
	avgEast, avgWest := sideMean(east), sideMean(west)
	if math.Abs(avgEast-avgWest) > gradientMarginDB {
		if avgEast > avgWest {
			dir.dx = 1
		} else {
			dir.dx = -1
		}
	}

	return dir, dir.dx != 0 || dir.dy != 0
}

func sideMean(signals []float64) float64 {
	if len(signals) == 0 {
		return missingSideRSSI
	}
	return stat.Mean(signals, nil)
}

// externalPosition pushes the weighted centroid of the strongest valid readings
// out past the edge of the bounding box of all readings, filtered or not.
func externalPosition(all, valid []models.Observation, dir direction, hasDir bool) orb.Point {
	points := make(orb.MultiPoint, len(all))
	for i, o := range all {
		points[i] = orb.Point{o.X, o.Y}
	}
	bound := points.Bound()

	sorted := make([]models.Observation, len(valid))
	copy(sorted, valid)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Measurement.SignalStrength > sorted[j].Measurement.SignalStrength
	})
	top := sorted
	if len(top) > topMeasurements {
		top = top[:topMeasurements]
	}

	xs := make([]float64, len(top))
	ys := make([]float64, len(top))
	weights := make([]float64, len(top))
	for i, o := range top {
		xs[i] = o.X
		ys[i] = o.Y
		weights[i] = math.Pow(10, (float64(o.Measurement.SignalStrength)+100)/20)
	}
	centroid := orb.Point{stat.Mean(xs, weights), stat.Mean(ys, weights)}

	if !hasDir {
		dir = nearestEdge(bound, orb.Point{top[0].X, top[0].Y})
	}
	offset := offsetForRSSI(top[0].Measurement.SignalStrength)

	switch {
	case dir.dx < 0:
		return orb.Point{bound.Min.X() - offset, centroid.Y()}
	case dir.dx > 0:
		return orb.Point{bound.Max.X() + offset, centroid.Y()}
	case dir.dy < 0:
		return orb.Point{centroid.X(), bound.Min.Y() - offset}
	default:
		return orb.Point{centroid.X(), bound.Max.Y() + offset}
	}
}

// nearestEdge picks the bounding box side closest to p. Ties resolve in the
// order west, east, north, south.
func nearestEdge(bound orb.Bound, p orb.Point) direction {
	toLeft := p.X() - bound.Min.X()
	toRight := bound.Max.X() - p.X()
	toTop := p.Y() - bound.Min.Y()
	toBottom := bound.Max.Y() - p.Y()

	closest := math.Min(math.Min(toLeft, toRight), math.Min(toTop, toBottom))
	switch closest {
	case toLeft:
		return direction{dx: -1}
	case toRight:
		return direction{dx: 1}
	case toTop:
		return direction{dy: -1}
	default:
		return direction{dy: 1}
	}
}

// offsetForRSSI maps the strongest reading to a distance beyond the footprint.
// Stronger signals mean the source sits just past the boundary.
func offsetForRSSI(rssi int) float64 {
	switch {
	case rssi > -40:
		return 80
	case rssi > -50:
		return 150
	case rssi > -60:
		return 250
	default:
		return 400
	}
}
