// Package scan reads the JSON produced by platform scan scripts and can
// simulate such scans for demos and tests.
package scan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/wlansurvey/pkg/models"
)

// ErrEmptyScan is returned when the scanner produced no output
var ErrEmptyScan = errors.New("scan output is empty")

const (
	unknownValue = "Unknown"
	missingRSSI  = -100
)

// Entry is one access point in the scanner output format
type Entry struct {
	SSID      string `json:"SSID"`
	BSSID     string `json:"BSSID"`
	RSSI      int    `json:"RSSI"`
	Quality   string `json:"Quality"`
	Frequency int    `json:"Frequency"`
	Channel   int    `json:"Channel"`
	Band      string `json:"Band"`
}

// Parse converts scanner JSON into measurements. Field names are accepted in
// either case and quality may be a string or a number. Entries that cannot be
// read are skipped.
func Parse(data []byte) ([]models.Measurement, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyScan
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse scan output as JSON: %w", err)
	}

	measurements := make([]models.Measurement, 0, len(entries))
	for i, entry := range entries {
		m, err := parseEntry(entry)
		if err != nil {
			log.Warn().Err(err).Int("entry", i).Msg("Skipping unreadable scan entry")
			continue
		}
		measurements = append(measurements, m)
	}
	return measurements, nil
}

func parseEntry(entry map[string]json.RawMessage) (models.Measurement, error) {
	ssid, err := stringField(entry, unknownValue, "SSID", "ssid")
	if err != nil {
		return models.Measurement{}, err
	}
	bssid, err := stringField(entry, unknownValue, "BSSID", "bssid")
	if err != nil {
		return models.Measurement{}, err
	}
	rssi, ok, err := intField(entry, "RSSI", "rssi")
	if err != nil {
		return models.Measurement{}, err
	}
	if !ok {
		rssi = missingRSSI
	}
	frequency, _, err := intField(entry, "Frequency", "frequency")
	if err != nil {
		return models.Measurement{}, err
	}
	channel, _, err := intField(entry, "Channel", "channel")
	if err != nil {
		return models.Measurement{}, err
	}

	quality, ok, err := intField(entry, "Quality", "quality")
	if err != nil || !ok {
		quality = EstimateQuality(rssi)
	}

	// a readable band name wins over the frequency, an unreadable one is ignored
	band := models.BandFromFrequency(frequency)
	if raw, err := stringField(entry, "", "Band", "band"); err == nil && raw != "" {
		if parsed := models.ParseBand(raw); parsed != models.BandUnknown {
			band = parsed
		}
	}

	return models.Measurement{
		SSID:           ssid,
		BSSID:          bssid,
		Channel:        channel,
		SignalStrength: rssi,
		FrequencyMHz:   frequency,
		Quality:        quality,
		Band:           band,
	}, nil
}

func lookup(entry map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if raw, ok := entry[k]; ok && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

func stringField(entry map[string]json.RawMessage, fallback string, keys ...string) (string, error) {
	raw, ok := lookup(entry, keys...)
	if !ok {
		return fallback, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %s: %w", keys[0], err)
	}
	return s, nil
}

// intField accepts numbers and numeric strings
func intField(entry map[string]json.RawMessage, keys ...string) (int, bool, error) {
	raw, ok := lookup(entry, keys...)
	if !ok {
		return 0, false, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return int(v), true, nil
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true, nil
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false, fmt.Errorf("field %s: not a number", keys[0])
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("field %s: %w", keys[0], err)
	}
	return v, true, nil
}

// EstimateQuality approximates link quality in percent from RSSI
func EstimateQuality(rssi int) int {
	switch {
	case rssi >= -30:
		return 95
	case rssi >= -40:
		return 90
	case rssi >= -50:
		return 80
	case rssi >= -60:
		return 70
	case rssi >= -70:
		return 60
	case rssi >= -80:
		return 40
	default:
		return 20
	}
}
