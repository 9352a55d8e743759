package interference

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/RMahshie/wlansurvey/internal/grouping"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

const (
	summaryTopInterferers = 3
	summaryTopOverlaps    = 3
	summaryAreaDetail     = 2
)

// Summary renders a report as plain text. When measurements are supplied a
// per-device breakdown is included. The output is deterministic for a given
// report. A nil report renders as an empty one.
func Summary(report *models.InterferenceReport, measurements []models.Measurement) string {
	if report == nil {
		report = models.NewInterferenceReport()
	}
	lines := []string{
		"=== INTERFERENCE ANALYSIS SUMMARY ===",
		fmt.Sprintf("Total network detections: %d", report.TotalDetections),
		fmt.Sprintf("Target network channels: %s", intList(report.TargetChannels)),
	}

	if len(measurements) > 0 {
		groups := grouping.ByDevice(measurements)
		lines = append(lines,
			fmt.Sprintf("Unique physical devices detected: %d", len(groups)),
			"",
			"Device Groups (by BSSID bytes 1-4):",
		)
		for _, id := range grouping.SortedIDs(groups) {
			lines = append(lines, deviceLines(id, groups[id])...)
		}
	}
	lines = append(lines, "")

	if len(report.ChannelUsage) > 0 {
		lines = append(lines, "Channel Usage:")
		for _, ch := range sortedKeys(report.ChannelUsage) {
			band := "2.4GHz"
			if ch > maxOverlapChannel {
				band = "5GHz"
			}
			lines = append(lines, fmt.Sprintf("  CH%d (%s): %d detections", ch, band, report.ChannelUsage[ch]))
		}
	}
	lines = append(lines, "")

	if len(report.StrongInterferers) > 0 {
		lines = append(lines, "Strong Interfering Networks:")
		for _, ch := range sortedKeys(report.StrongInterferers) {
			if slices.Contains(report.TargetChannels, ch) {
				lines = append(lines, fmt.Sprintf("  Channel %d (TARGET CHANNEL):", ch))
			} else {
				lines = append(lines, fmt.Sprintf("  Channel %d:", ch))
			}
			list := report.StrongInterferers[ch]
			for _, i := range list[:min(len(list), summaryTopInterferers)] {
				lines = append(lines, fmt.Sprintf("    %s: %ddBm", i.SSID, i.RSSI))
			}
		}
	}
	lines = append(lines, "")

	if len(report.OverlapInterference) > 0 {
		lines = append(lines, "Channel Overlap Interference (2.4GHz):")
		for _, ch := range sortedKeys(report.OverlapInterference) {
			lines = append(lines, fmt.Sprintf("  Channel %d:", ch))
			list := report.OverlapInterference[ch]
			for _, e := range list[:min(len(list), summaryTopOverlaps)] {
				lines = append(lines, fmt.Sprintf("    CH%d: %s (%ddBm)", e.Channel, e.SSID, e.RSSI))
			}
		}
	}
	lines = append(lines, "")

	if len(report.ProblemAreas) > 0 {
		lines = append(lines, "Problem Areas (Good signal + High interference):")
		for _, area := range report.ProblemAreas {
			lines = append(lines, fmt.Sprintf("  Location (%d, %d): Target %ddBm, %d interferers",
				area.X, area.Y, area.TargetRSSI, area.InterfererCount))
			for _, i := range area.Interferers[:min(len(area.Interferers), summaryAreaDetail)] {
				lines = append(lines, fmt.Sprintf("    %s (CH%d): %ddBm", i.SSID, i.Channel, i.RSSI))
			}
		}
	} else {
		lines = append(lines, "No significant interference issues detected.")
	}

	return strings.Join(lines, "\n")
}

func deviceLines(id string, ms []models.Measurement) []string {
	ssidSet := map[string]bool{}
	chanSet := map[int]bool{}
	bssids := make([]string, 0, len(ms))
	for _, m := range ms {
		if !m.IsHidden() {
			ssidSet[m.SSID] = true
		}
		chanSet[m.Channel] = true
		bssids = append(bssids, m.BSSID)
	}
	slices.Sort(bssids)

	ssids := "Hidden only"
	if len(ssidSet) > 0 {
		ssids = strings.Join(sortedKeys(ssidSet), ", ")
	}
	return []string{
		fmt.Sprintf("  Device %s:", id),
		fmt.Sprintf("    SSIDs: %s", ssids),
		fmt.Sprintf("    BSSIDs: %s", strings.Join(bssids, ", ")),
		fmt.Sprintf("    Channels: %s", intList(sortedKeys(chanSet))),
	}
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// intList formats channels as a bracketed, comma separated list
func intList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
