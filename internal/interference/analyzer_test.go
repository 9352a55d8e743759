package interference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/wlansurvey/pkg/models"
)

func m(ssid, bssid string, channel, rssi int) models.Measurement {
	return models.Measurement{SSID: ssid, BSSID: bssid, Channel: channel, SignalStrength: rssi}
}

func point(x, y float64, ms ...models.Measurement) models.SurveyPoint {
	return models.SurveyPoint{X: x, Y: y, Measurements: ms}
}

func TestChannelsOverlap(t *testing.T) {
	tests := []struct {
		ch1, ch2 int
		want     bool
	}{
		{1, 3, true},
		{1, 5, true},
		{1, 6, false},
		{6, 11, false},
		{11, 13, true},
		{36, 40, false},
		{14, 36, false},
		{6, 6, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChannelsOverlap(tt.ch1, tt.ch2), "ch%d/ch%d", tt.ch1, tt.ch2)
	}
}

func TestAnalyze_OverlapBetweenDistinctDevices(t *testing.T) {
	points := []models.SurveyPoint{
		point(100, 100,
			m("NetA", "00:11:11:11:11:01", 1, -50),
			m("NetB", "00:22:22:22:22:01", 3, -55),
		),
	}

	report := NewAnalyzer(DefaultSettings()).Analyze(points, []string{"Other"})

	assert.Equal(t, map[int][]models.OverlapEntry{
		1: {{Channel: 3, SSID: "NetB", RSSI: -55}},
		3: {{Channel: 1, SSID: "NetA", RSSI: -50}},
	}, report.OverlapInterference)
}

func TestAnalyze_FiveGHzNeverOverlaps(t *testing.T) {
	points := []models.SurveyPoint{
		point(100, 100,
			m("NetA", "00:11:11:11:11:01", 36, -45),
			m("NetB", "00:22:22:22:22:01", 40, -48),
		),
	}

	report := NewAnalyzer(DefaultSettings()).Analyze(points, []string{"Other"})

	assert.Empty(t, report.OverlapInterference)
}

func TestAnalyze_NoSelfInterference(t *testing.T) {
	points := []models.SurveyPoint{
		point(100, 100,
			m("Corp", "00:11:11:11:11:01", 1, -45),
			m("Corp-Guest", "00:11:11:11:11:02", 3, -46),
		),
	}

	report := NewAnalyzer(DefaultSettings()).Analyze(points, []string{"Other"})

	assert.Empty(t, report.OverlapInterference)
}

func TestAnalyze_OverlapIgnoresWeakAndHidden(t *testing.T) {
	points := []models.SurveyPoint{
		point(0, 0,
			m("NetA", "00:11:11:11:11:01", 1, -50),
			m("NetB", "00:22:22:22:22:01", 3, -75),
			m(models.HiddenSSID, "00:33:33:33:33:01", 2, -40),
		),
	}

	report := NewAnalyzer(DefaultSettings()).Analyze(points, []string{"Other"})

	assert.Empty(t, report.OverlapInterference)
}

func TestAnalyze_StrongInterferers(t *testing.T) {
	points := []models.SurveyPoint{
		point(0, 0,
			m("Corp", "00:aa:aa:aa:aa:01", 6, -40),
			// same radio as Corp, excluded with it
			m("Lobby-TV", "00:aa:aa:aa:aa:02", 6, -42),
			m("Neighbor", "00:11:11:11:11:01", 6, -65),
			m("Cafe", "00:22:22:22:22:01", 6, -55),
			m("Weak", "00:44:44:44:44:01", 6, -80),
			m(models.HiddenSSID, "00:55:55:55:55:01", 6, -30),
		),
		point(50, 0,
			m("Neighbor", "00:11:11:11:11:01", 6, -58),
			m("Cafe", "00:22:22:22:22:01", 11, -60),
		),
	}

	report := NewAnalyzer(DefaultSettings()).Analyze(points, []string{"Corp"})

	assert.Equal(t, map[int][]models.Interferer{
		6:  {{SSID: "Cafe", RSSI: -55}, {SSID: "Neighbor", RSSI: -58}},
		11: {{SSID: "Cafe", RSSI: -60}},
	}, report.StrongInterferers)
	assert.Equal(t, []int{6}, report.TargetChannels)
	assert.Equal(t, map[int]int{6: 7, 11: 1}, report.ChannelUsage)
	assert.Equal(t, 8, report.TotalDetections)
}

func TestAnalyze_ProblemAreas(t *testing.T) {
	points := []models.SurveyPoint{
		point(120.7, 80.2,
			m("Corp", "00:aa:aa:aa:aa:01", 36, -50),
			m("NetA", "00:11:11:11:11:01", 1, -60),
			m("NetA-5G", "00:11:11:11:11:02", 36, -66),
			m("NetB", "00:22:22:22:22:01", 6, -65),
			m(models.HiddenSSID, "00:33:33:33:33:01", 11, -40),
			m("Far", "00:44:44:44:44:01", 11, -75),
		),
		// weak target, not a problem area
		point(300, 80,
			m("Corp", "00:aa:aa:aa:aa:01", 36, -65),
			m("NetA", "00:11:11:11:11:01", 1, -50),
			m("NetB", "00:22:22:22:22:01", 6, -50),
		),
		// strong target, single interferer
		point(500, 80,
			m("Corp", "00:aa:aa:aa:aa:01", 36, -45),
			m("NetA", "00:11:11:11:11:01", 1, -50),
		),
	}

	report := NewAnalyzer(DefaultSettings()).Analyze(points, []string{"Corp"})

	require.Len(t, report.ProblemAreas, 1)
	assert.Equal(t, models.ProblemArea{
		X:               120,
		Y:               80,
		TargetRSSI:      -50,
		InterfererCount: 2,
		Interferers: []models.AreaInterferer{
			{SSID: "NetA", Channel: 1, RSSI: -60},
			{SSID: "NetB", Channel: 6, RSSI: -65},
		},
	}, report.ProblemAreas[0])
}

func TestAnalyze_ProblemAreaKeepsTopFive(t *testing.T) {
	ms := []models.Measurement{m("Corp", "00:aa:aa:aa:aa:01", 36, -40)}
	bssids := []string{"00:01:01:01:01:01", "00:02:02:02:02:01", "00:03:03:03:03:01", "00:04:04:04:04:01", "00:05:05:05:05:01", "00:06:06:06:06:01", "00:07:07:07:07:01"}
	for i, b := range bssids {
		ms = append(ms, m("N"+b[3:5], b, 6, -50-i))
	}

	report := NewAnalyzer(DefaultSettings()).Analyze([]models.SurveyPoint{point(0, 0, ms...)}, []string{"Corp"})

	require.Len(t, report.ProblemAreas, 1)
	area := report.ProblemAreas[0]
	assert.Equal(t, 7, area.InterfererCount)
	require.Len(t, area.Interferers, 5)
	assert.Equal(t, -50, area.Interferers[0].RSSI)
	assert.Equal(t, -54, area.Interferers[4].RSSI)
}

func TestAnalyze_Empty(t *testing.T) {
	report := NewAnalyzer(DefaultSettings()).Analyze(nil, nil)

	assert.Zero(t, report.TotalDetections)
	assert.Empty(t, report.TargetPrefixes)
	assert.Empty(t, report.TargetChannels)
	assert.Empty(t, report.ChannelUsage)
	assert.Empty(t, report.StrongInterferers)
	assert.Empty(t, report.OverlapInterference)
	assert.Empty(t, report.ProblemAreas)
}

func TestAnalyze_AutoDetectsTarget(t *testing.T) {
	var points []models.SurveyPoint
	for i := 0; i < 10; i++ {
		points = append(points, point(float64(i*10), 0,
			m("Corp_Main", "00:aa:aa:aa:aa:01", 11, -28-i),
			m("Neighbor", "00:11:11:11:11:01", 6, -65),
		))
	}

	report := NewAnalyzer(DefaultSettings()).Analyze(points, nil)

	assert.Equal(t, []string{"Corp"}, report.TargetPrefixes)
	assert.Equal(t, []int{11}, report.TargetChannels)
	assert.Equal(t, []models.Interferer{{SSID: "Neighbor", RSSI: -65}}, report.StrongInterferers[6])
}

func TestAutoDetectTarget(t *testing.T) {
	repeat := func(n int, ms ...models.Measurement) []models.Measurement {
		var out []models.Measurement
		for i := 0; i < n; i++ {
			out = append(out, ms...)
		}
		return out
	}

	tests := []struct {
		name         string
		measurements []models.Measurement
		want         []string
	}{
		{
			name:         "frequent and strong",
			measurements: repeat(10, m("Corp-Guest", "00:aa:aa:aa:aa:01", 1, -25)),
			want:         []string{"Corp"},
		},
		{
			name:         "too few detections",
			measurements: repeat(9, m("Corp-Guest", "00:aa:aa:aa:aa:01", 1, -25)),
			want:         []string{},
		},
		{
			name:         "never strong enough",
			measurements: repeat(20, m("Corp-Guest", "00:aa:aa:aa:aa:01", 1, -30)),
			want:         []string{},
		},
		{
			name:         "hidden networks ignored",
			measurements: repeat(20, m(models.HiddenSSID, "00:aa:aa:aa:aa:01", 1, -20)),
			want:         []string{},
		},
		{
			name: "highest score wins",
			measurements: append(
				repeat(10, m("Corp-Guest", "00:aa:aa:aa:aa:01", 1, -25)),
				repeat(20, m("Home_Net", "00:bb:bb:bb:bb:01", 6, -28))...,
			),
			want: []string{"Home"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AutoDetectTarget(tt.measurements))
		})
	}
}

func TestInterfererObservations(t *testing.T) {
	points := []models.SurveyPoint{
		point(0, 0,
			m("Corp", "00:aa:aa:aa:aa:01", 36, -40),
			m("Neighbor", "00:11:11:11:11:01", 6, -60),
			m("Neighbor-5G", "00:11:11:11:11:02", 149, -55),
		),
		point(100, 0,
			m("Neighbor", "00:11:11:11:11:01", 6, -65),
		),
		point(200, 0,
			m("Printer", "00:aa:aa:aa:aa:07", 1, -50),
			m("Neighbor", "00:11:11:11:11:01", 6, -80),
		),
	}

	obs := NewAnalyzer(DefaultSettings()).InterfererObservations(points, []string{"Corp"})

	require.Len(t, obs, 1)
	require.Len(t, obs["11:11:11:11"], 2)
	assert.Equal(t, -55, obs["11:11:11:11"][0].Measurement.SignalStrength)
	assert.Equal(t, 100.0, obs["11:11:11:11"][1].X)
}

func TestConnectedNetworks(t *testing.T) {
	points := []models.SurveyPoint{
		point(0, 0, m("Corp", "00:aa:aa:aa:aa:01", 1, -50), m("Guest", "00:bb:bb:bb:bb:01", 6, -30)),
		point(1, 0, m("Corp", "00:aa:aa:aa:aa:01", 1, -50), m("Lab", "00:cc:cc:cc:cc:01", 11, -70)),
		point(2, 0, m("Corp", "00:aa:aa:aa:aa:01", 1, -50), m("Lab", "00:cc:cc:cc:cc:01", 11, -70)),
		point(3, 0, m("Corp", "00:aa:aa:aa:aa:01", 1, -50)),
	}

	assert.Equal(t, []string{"Corp", "Lab"}, ConnectedNetworks(points))
	assert.Equal(t, []string{}, ConnectedNetworks(nil))
}
