package scan

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/RMahshie/wlansurvey/pkg/models"
)

// SampleSSIDs are network names typical of an office floor and its neighbours
var SampleSSIDs = []string{
	"LITS", "LITS-IOT", "LITS-Guest", models.HiddenSSID,
	"SpectrumSetup-78", "SpectrumSetup-15D7", "SpectrumSetup-57", "SpectrumSetup-41", "SpectrumSetup-93",
	"Spectrum Mobile", "DIRECT-AA-HP DeskJet 4200 series", "HomeBase", "Littles", "ATTDsy66pi",
	"CorporateNet", "Guest_Network", "Office_Main", "Conference_Room_AP", "Building_WiFi", "Public_Access",
}

type channelPlan struct {
	channel   int
	frequency int
}

var (
	channels24 = []channelPlan{{1, 2412}, {6, 2437}, {8, 2447}, {11, 2462}}
	channels5  = []channelPlan{{36, 5180}, {44, 5220}, {100, 5500}, {149, 5745}}
)

// qualityRanges map an RSSI floor to an inclusive quality range
var qualityRanges = []struct {
	minRSSI   int
	low, high int
}{
	{-30, 95, 99},
	{-40, 85, 95},
	{-50, 70, 87},
	{-60, 60, 81},
	{-70, 50, 70},
	{-80, 25, 50},
}

// Simulator generates scanner output. All randomness comes from the injected
// source so a seeded source reproduces the same scans.
type Simulator struct {
	rng *rand.Rand
}

// NewSimulator creates a simulator drawing from rng
func NewSimulator(rng *rand.Rand) *Simulator {
	return &Simulator{rng: rng}
}

// NewSeededSimulator creates a simulator with a deterministic source
func NewSeededSimulator(seed uint64) *Simulator {
	return NewSimulator(rand.New(rand.NewPCG(seed, seed)))
}

// Entries returns count simulated access points sorted strongest first.
// A non-positive count picks between 8 and 20.
func (s *Simulator) Entries(count int) []Entry {
	if count <= 0 {
		count = s.between(8, 20)
	}

	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		ssid := SampleSSIDs[s.rng.IntN(len(SampleSSIDs))]
		bssid := s.mac()

		plan, band := channels5, models.Band5GHz
		if s.rng.IntN(2) == 0 {
			plan, band = channels24, models.Band24GHz
		}
		ch := plan[s.rng.IntN(len(plan))]

		rssi := s.between(-92, -23)
		entries = append(entries, Entry{
			SSID:      ssid,
			BSSID:     bssid,
			RSSI:      rssi,
			Quality:   strconv.Itoa(s.quality(rssi)),
			Frequency: ch.frequency,
			Channel:   ch.channel,
			Band:      string(band),
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.RSSI, a.RSSI)
	})
	return entries
}

// JSON returns a simulated scan in the scanner output format
func (s *Simulator) JSON(count int) ([]byte, error) {
	data, err := json.MarshalIndent(s.Entries(count), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode simulated scan: %w", err)
	}
	return data, nil
}

// Measurements returns a simulated scan as measurements
func (s *Simulator) Measurements(count int) []models.Measurement {
	entries := s.Entries(count)
	out := make([]models.Measurement, len(entries))
	for i, e := range entries {
		quality, _ := strconv.Atoi(e.Quality)
		out[i] = models.Measurement{
			SSID:           e.SSID,
			BSSID:          e.BSSID,
			Channel:        e.Channel,
			SignalStrength: e.RSSI,
			FrequencyMHz:   e.Frequency,
			Quality:        quality,
			Band:           models.Band(e.Band),
		}
	}
	return out
}

// Point simulates one survey action at a floor position
func (s *Simulator) Point(x, y float64, at time.Time, count int) models.SurveyPoint {
	return models.SurveyPoint{X: x, Y: y, CapturedAt: at, Measurements: s.Measurements(count)}
}

func (s *Simulator) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Simulator) quality(rssi int) int {
	for _, r := range qualityRanges {
		if rssi >= r.minRSSI {
			return s.between(r.low, r.high)
		}
	}
	return s.between(10, 30)
}

// mac returns a dash delimited upper-case MAC like the scanner reports
func (s *Simulator) mac() string {
	octets := make([]string, 6)
	for i := range octets {
		octets[i] = fmt.Sprintf("%02X", s.rng.IntN(256))
	}
	return strings.Join(octets, "-")
}
