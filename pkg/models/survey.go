package models

import (
	"strings"
	"time"
)

// HiddenSSID is the placeholder scanners report for networks that do not broadcast a name
const HiddenSSID = "{Hidden}"

// Band identifies the wireless band a measurement was captured on
type Band string

const (
	Band24GHz   Band = "2.4 GHz"
	Band5GHz    Band = "5 GHz"
	Band6GHz    Band = "6 GHz"
	BandUnknown Band = "Unknown"
)

// BandFromFrequency derives the band from a centre frequency in MHz
func BandFromFrequency(frequencyMHz int) Band {
	switch {
	case frequencyMHz >= 2400 && frequencyMHz <= 2500:
		return Band24GHz
	case frequencyMHz >= 5000 && frequencyMHz <= 5900:
		return Band5GHz
	case frequencyMHz >= 5955 && frequencyMHz <= 7125:
		return Band6GHz
	default:
		return BandUnknown
	}
}

// ParseBand reads a band name as scanners and clients write it ("2.4 GHz",
// "2.4GHz", "5ghz", "6"). Anything else is BandUnknown.
func ParseBand(raw string) Band {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	normalized = strings.TrimSuffix(normalized, "ghz")
	switch normalized {
	case "2.4":
		return Band24GHz
	case "5":
		return Band5GHz
	case "6":
		return Band6GHz
	default:
		return BandUnknown
	}
}

// Measurement is a single access point detection captured during a scan
type Measurement struct {
	SSID           string `json:"ssid" doc:"Network name"`
	BSSID          string `json:"bssid" doc:"Radio MAC address (colon or dash delimited)"`
	Channel        int    `json:"channel" minimum:"0" doc:"Channel number"`
	SignalStrength int    `json:"signal_strength" minimum:"-120" maximum:"0" doc:"RSSI in dBm"`
	FrequencyMHz   int    `json:"frequency_mhz,omitempty" doc:"Centre frequency in MHz"`
	Quality        int    `json:"quality,omitempty" minimum:"0" maximum:"100" doc:"Link quality percentage"`
	Band           Band   `json:"band,omitempty" enum:"2.4 GHz,5 GHz,6 GHz,Unknown" doc:"Band (2.4 GHz, 5 GHz, 6 GHz)"`
}

// IsHidden reports whether the measurement belongs to a network without a broadcast name
func (m Measurement) IsHidden() bool {
	return m.SSID == HiddenSSID
}

// SurveyPoint is a location on the floor plan where one scan was performed.
// A rescan at the same location replaces the point, it is never edited in place.
type SurveyPoint struct {
	X            float64       `json:"x" doc:"Floor plan X coordinate in pixels"`
	Y            float64       `json:"y" doc:"Floor plan Y coordinate in pixels"`
	CapturedAt   time.Time     `json:"captured_at" doc:"When the scan was taken"`
	Measurements []Measurement `json:"measurements" doc:"Access points detected at this point"`
}

// PlacedEmitter is an access point location asserted by the user rather than inferred
type PlacedEmitter struct {
	Name         string        `json:"name" doc:"Display name"`
	Manufacturer string        `json:"manufacturer,omitempty" doc:"Manufacturer"`
	Model        string        `json:"model,omitempty" doc:"Model"`
	IPAddress    string        `json:"ip_address,omitempty" doc:"Management IP address"`
	EthernetMAC  string        `json:"ethernet_mac,omitempty" doc:"Wired MAC address"`
	X            float64       `json:"x" doc:"Floor plan X coordinate in pixels"`
	Y            float64       `json:"y" doc:"Floor plan Y coordinate in pixels"`
	ScanData     []Measurement `json:"scan_data,omitempty" doc:"Measurements associated with this emitter"`
	LastScanAt   *time.Time    `json:"last_scan_at,omitempty" doc:"Time of the last associated scan"`
}

// Observation is a measurement tied to the survey location it was captured at
type Observation struct {
	X           float64
	Y           float64
	Measurement Measurement
}

// Observations flattens survey points into located measurements, keeping only
// those accepted by keep. A nil keep accepts every measurement.
func Observations(points []SurveyPoint, keep func(Measurement) bool) []Observation {
	var out []Observation
	for _, p := range points {
		for _, m := range p.Measurements {
			if keep != nil && !keep(m) {
				continue
			}
			out = append(out, Observation{X: p.X, Y: p.Y, Measurement: m})
		}
	}
	return out
}

// AllMeasurements returns every measurement of every point in survey order
func AllMeasurements(points []SurveyPoint) []Measurement {
	var out []Measurement
	for _, p := range points {
		out = append(out, p.Measurements...)
	}
	return out
}

// FloorSpec describes the floor raster the engine renders onto
type FloorSpec struct {
	Width  int `json:"width" minimum:"1" doc:"Floor plan width in pixels"`
	Height int `json:"height" minimum:"1" doc:"Floor plan height in pixels"`
}
