// Package interference finds channel contention between distinct radios.
//
// Measurements are grouped by physical device first so that the SSIDs a single
// multi-radio access point broadcasts are never reported as interfering with
// each other.
package interference

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/RMahshie/wlansurvey/internal/grouping"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

const (
	autoDetectMinCount     = 10
	autoDetectMinSignal    = -30
	problemTargetMinSignal = -60
	problemMinInterferers  = 2
	problemMaxInterferers  = 5
	maxOverlapChannel      = 14
	overlapChannelSpacing  = 5
	connectedMinCoverage   = 0.3
)

// Settings holds the signal thresholds of the analysis
type Settings struct {
	// InterferenceThresholdDBm is the level above which a foreign network interferes.
	InterferenceThresholdDBm int
	// OverlapThresholdDBm is the level above which overlapping channels are considered.
	OverlapThresholdDBm int
}

// DefaultSettings returns the thresholds used by the analyzer unless configured
func DefaultSettings() Settings {
	return Settings{InterferenceThresholdDBm: -70, OverlapThresholdDBm: -70}
}

// Analyzer builds interference reports from survey points
type Analyzer struct {
	settings Settings
}

// NewAnalyzer creates an analyzer with the given thresholds
func NewAnalyzer(settings Settings) *Analyzer {
	return &Analyzer{settings: settings}
}

// Settings returns the thresholds the analyzer was built with
func (a *Analyzer) Settings() Settings {
	return a.settings
}

// Analyze builds the report for a floor. When prefixes is empty the target
// network is auto-detected from the measurements.
func (a *Analyzer) Analyze(points []models.SurveyPoint, prefixes []string) *models.InterferenceReport {
	report := models.NewInterferenceReport()
	all := models.AllMeasurements(points)
	report.TotalDetections = len(all)

	if len(prefixes) == 0 {
		prefixes = AutoDetectTarget(all)
	}
	report.TargetPrefixes = append(report.TargetPrefixes, prefixes...)

	channels := map[int]bool{}
	for _, m := range all {
		report.ChannelUsage[m.Channel]++
		if IsTarget(m.SSID, prefixes) {
			channels[m.Channel] = true
		}
	}
	for ch := range channels {
		report.TargetChannels = append(report.TargetChannels, ch)
	}
	slices.Sort(report.TargetChannels)

	report.StrongInterferers = a.strongInterferers(all, prefixes)
	report.OverlapInterference = a.overlapInterference(all)
	report.ProblemAreas = a.problemAreas(points, prefixes)

	log.Debug().
		Int("detections", report.TotalDetections).
		Strs("targetPrefixes", report.TargetPrefixes).
		Int("problemAreas", len(report.ProblemAreas)).
		Msg("Interference analysis complete")

	return report
}

// IsTarget reports whether ssid belongs to the target network
func IsTarget(ssid string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(ssid, p) {
			return true
		}
	}
	return false
}

// ChannelsOverlap reports whether two channels share spectrum. Only 2.4 GHz
// channels closer than five apart overlap; 5 and 6 GHz channels never do.
func ChannelsOverlap(ch1, ch2 int) bool {
	if ch1 > maxOverlapChannel || ch2 > maxOverlapChannel {
		return false
	}
	d := ch1 - ch2
	if d < 0 {
		d = -d
	}
	return d < overlapChannelSpacing
}

// AutoDetectTarget picks the network that is both frequently seen and strong
// and returns the first word of its SSID as the target prefix.
func AutoDetectTarget(measurements []models.Measurement) []string {
	type ssidStats struct {
		ssid  string
		count int
		max   int
	}
	stats := map[string]*ssidStats{}
	for _, m := range measurements {
		if m.SSID == "" || m.IsHidden() {
			continue
		}
		s, ok := stats[m.SSID]
		if !ok {
			s = &ssidStats{ssid: m.SSID, max: -100}
			stats[m.SSID] = s
		}
		s.count++
		s.max = max(s.max, m.SignalStrength)
	}

	var best *ssidStats
	bestScore := 0
	for _, s := range stats {
		if s.count < autoDetectMinCount || s.max <= autoDetectMinSignal {
			continue
		}
		score := s.count * (100 + s.max)
		if best == nil || score > bestScore || (score == bestScore && s.ssid < best.ssid) {
			best, bestScore = s, score
		}
	}
	if best == nil {
		return []string{}
	}

	parts := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(best.ssid))
	if len(parts) == 0 {
		return []string{}
	}
	return []string{parts[0]}
}

func targetDevices(groups map[string][]models.Measurement, prefixes []string) map[string]bool {
	targets := map[string]bool{}
	for id, ms := range groups {
		for _, m := range ms {
			if IsTarget(m.SSID, prefixes) {
				targets[id] = true
				break
			}
		}
	}
	return targets
}

func (a *Analyzer) strongInterferers(all []models.Measurement, prefixes []string) map[int][]models.Interferer {
	groups := grouping.ByDevice(all)
	targets := targetDevices(groups, prefixes)

	strongest := map[int]map[string]int{}
	for id, ms := range groups {
		if targets[id] {
			continue
		}
		for _, m := range ms {
			if m.IsHidden() || m.SignalStrength <= a.settings.InterferenceThresholdDBm {
				continue
			}
			bySSID, ok := strongest[m.Channel]
			if !ok {
				bySSID = map[string]int{}
				strongest[m.Channel] = bySSID
			}
			if cur, seen := bySSID[m.SSID]; !seen || m.SignalStrength > cur {
				bySSID[m.SSID] = m.SignalStrength
			}
		}
	}

	out := make(map[int][]models.Interferer, len(strongest))
	for ch, bySSID := range strongest {
		list := make([]models.Interferer, 0, len(bySSID))
		for ssid, rssi := range bySSID {
			list = append(list, models.Interferer{SSID: ssid, RSSI: rssi})
		}
		slices.SortFunc(list, func(x, y models.Interferer) int {
			return cmp.Or(cmp.Compare(y.RSSI, x.RSSI), cmp.Compare(x.SSID, y.SSID))
		})
		out[ch] = list
	}
	return out
}

func (a *Analyzer) overlapInterference(all []models.Measurement) map[int][]models.OverlapEntry {
	type signal struct {
		ssid string
		rssi int
	}

	// device -> channel -> strong 2.4 GHz signals
	strong := map[string]map[int][]signal{}
	for id, ms := range grouping.ByDevice(all) {
		for _, m := range ms {
			if m.Channel > maxOverlapChannel || m.IsHidden() || m.SignalStrength <= a.settings.OverlapThresholdDBm {
				continue
			}
			if strong[id] == nil {
				strong[id] = map[int][]signal{}
			}
			strong[id][m.Channel] = append(strong[id][m.Channel], signal{ssid: m.SSID, rssi: m.SignalStrength})
		}
	}

	entries := map[int]map[models.OverlapEntry]bool{}
	record := func(victim int, e models.OverlapEntry) {
		if entries[victim] == nil {
			entries[victim] = map[models.OverlapEntry]bool{}
		}
		entries[victim][e] = true
	}

	ids := slices.Sorted(maps.Keys(strong))
	for i, id1 := range ids {
		for _, id2 := range ids[i+1:] {
			for ch1, sigs1 := range strong[id1] {
				for ch2, sigs2 := range strong[id2] {
					if ch1 == ch2 || !ChannelsOverlap(ch1, ch2) {
						continue
					}
					for _, s := range sigs2 {
						record(ch1, models.OverlapEntry{Channel: ch2, SSID: s.ssid, RSSI: s.rssi})
					}
					for _, s := range sigs1 {
						record(ch2, models.OverlapEntry{Channel: ch1, SSID: s.ssid, RSSI: s.rssi})
					}
				}
			}
		}
	}

	out := make(map[int][]models.OverlapEntry, len(entries))
	for ch, set := range entries {
		list := make([]models.OverlapEntry, 0, len(set))
		for e := range set {
			list = append(list, e)
		}
		slices.SortFunc(list, func(x, y models.OverlapEntry) int {
			return cmp.Or(cmp.Compare(y.RSSI, x.RSSI), cmp.Compare(x.Channel, y.Channel), cmp.Compare(x.SSID, y.SSID))
		})
		out[ch] = list
	}
	return out
}

func (a *Analyzer) problemAreas(points []models.SurveyPoint, prefixes []string) []models.ProblemArea {
	areas := []models.ProblemArea{}
	for _, p := range points {
		target, hasTarget := 0, false
		for _, m := range p.Measurements {
			if IsTarget(m.SSID, prefixes) && (!hasTarget || m.SignalStrength > target) {
				target, hasTarget = m.SignalStrength, true
			}
		}
		if !hasTarget || target <= problemTargetMinSignal {
			continue
		}

		interferers := a.strongestPerDevice(p.Measurements, prefixes)
		if len(interferers) < problemMinInterferers {
			continue
		}

		list := make([]models.AreaInterferer, 0, len(interferers))
		for _, m := range interferers {
			list = append(list, models.AreaInterferer{SSID: m.SSID, Channel: m.Channel, RSSI: m.SignalStrength})
		}
		slices.SortStableFunc(list, func(x, y models.AreaInterferer) int {
			return cmp.Compare(y.RSSI, x.RSSI)
		})

		areas = append(areas, models.ProblemArea{
			X:               int(p.X),
			Y:               int(p.Y),
			TargetRSSI:      target,
			InterfererCount: len(list),
			Interferers:     list[:min(len(list), problemMaxInterferers)],
		})
	}
	return areas
}

// strongestPerDevice returns, for each non-target device heard in
// measurements, its strongest visible signal above the interference threshold.
// Devices are returned in device order.
func (a *Analyzer) strongestPerDevice(measurements []models.Measurement, prefixes []string) []models.Measurement {
	groups := grouping.ByDevice(measurements)
	targets := targetDevices(groups, prefixes)

	var out []models.Measurement
	for _, id := range grouping.SortedIDs(groups) {
		if targets[id] {
			continue
		}
		var best *models.Measurement
		for i, m := range groups[id] {
			if m.IsHidden() || m.SignalStrength <= a.settings.InterferenceThresholdDBm {
				continue
			}
			if best == nil || m.SignalStrength > best.SignalStrength {
				best = &groups[id][i]
			}
		}
		if best != nil {
			out = append(out, *best)
		}
	}
	return out
}

// InterfererObservations collects, per non-target device, the strongest
// interfering signal heard at each survey point. A device is a target device
// when any of its SSIDs matches prefixes anywhere on the floor.
func (a *Analyzer) InterfererObservations(points []models.SurveyPoint, prefixes []string) map[string][]models.Observation {
	targets := map[string]bool{}
	if len(prefixes) > 0 {
		for _, p := range points {
			for id := range targetDevices(grouping.ByDevice(p.Measurements), prefixes) {
				targets[id] = true
			}
		}
	}

	out := map[string][]models.Observation{}
	for _, p := range points {
		for _, m := range a.strongestPerDevice(p.Measurements, nil) {
			id := grouping.DeviceID(m.BSSID)
			if targets[id] {
				continue
			}
			out[id] = append(out[id], models.Observation{X: p.X, Y: p.Y, Measurement: m})
		}
	}
	return out
}

// ConnectedNetworks ranks SSIDs by how consistently and strongly they were
// heard and returns those present at 30% of the points or more, best first.
func ConnectedNetworks(points []models.SurveyPoint) []string {
	if len(points) == 0 {
		return []string{}
	}

	signals := map[string][]float64{}
	for _, m := range models.AllMeasurements(points) {
		signals[m.SSID] = append(signals[m.SSID], float64(m.SignalStrength))
	}

	type ranked struct {
		ssid     string
		score    float64
		coverage float64
	}
	total := float64(len(points))
	var ranking []ranked
	for ssid, s := range signals {
		coverage := float64(len(s)) / total
		score := coverage*0.5 + (stat.Mean(s, nil)+100)/100*0.3 + (slices.Max(s)+100)/100*0.2
		ranking = append(ranking, ranked{ssid: ssid, score: score, coverage: coverage})
	}
	slices.SortFunc(ranking, func(x, y ranked) int {
		return cmp.Or(cmp.Compare(y.score, x.score), cmp.Compare(x.ssid, y.ssid))
	})

	out := []string{}
	for _, r := range ranking {
		if r.coverage >= connectedMinCoverage {
			out = append(out, r.ssid)
		}
	}
	return out
}
