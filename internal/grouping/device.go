// Package grouping clusters measurements by the physical radio that emitted them.
//
// Vendors typically vary one octet of the BSSID per SSID or band on a
// multi-radio access point. The device identifier is built from the four
// octets that stay fixed (positions 1-4 of 6) so that all SSIDs broadcast by
// one radio collapse onto the same device.
package grouping

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/RMahshie/wlansurvey/pkg/models"
)

// DeviceID derives the physical device key from a BSSID. Malformed BSSIDs
// (anything that is not six octets) return an empty key.
func DeviceID(bssid string) string {
	bssid = strings.TrimSpace(bssid)
	if bssid == "" {
		return ""
	}
	mac, err := net.ParseMAC(strings.ReplaceAll(bssid, "-", ":"))
	if err != nil || len(mac) != 6 {
		return ""
	}
	octets := make([]string, 0, 4)
	for _, b := range mac[1:5] {
		octets = append(octets, fmt.Sprintf("%02X", b))
	}
	return strings.Join(octets, ":")
}

// Group buckets items by the device key of their BSSID. Items whose BSSID is
// malformed are dropped rather than merged into another device.
func Group[T any](items []T, bssid func(T) string) map[string][]T {
	groups := make(map[string][]T)
	for _, item := range items {
		id := DeviceID(bssid(item))
		if id == "" {
			continue
		}
		groups[id] = append(groups[id], item)
	}
	return groups
}

// ByDevice groups raw measurements by physical device
func ByDevice(measurements []models.Measurement) map[string][]models.Measurement {
	return Group(measurements, func(m models.Measurement) string { return m.BSSID })
}

// ObservationsByDevice groups located measurements by physical device
func ObservationsByDevice(observations []models.Observation) map[string][]models.Observation {
	return Group(observations, func(o models.Observation) string { return o.Measurement.BSSID })
}

// SortedIDs returns the keys of a device grouping in ascending order
func SortedIDs[T any](groups map[string][]T) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
