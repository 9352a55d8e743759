package models

// EstimatedEmitterLocation is an emitter position inferred from measurements
// surrounding it. It is recomputed on every analysis run.
type EstimatedEmitterLocation struct {
	DeviceID            string  `json:"device_id" doc:"Physical radio identifier"`
	BSSID               string  `json:"bssid" doc:"BSSID of the strongest contributing measurement"`
	X                   float64 `json:"x" doc:"Estimated X coordinate in pixels"`
	Y                   float64 `json:"y" doc:"Estimated Y coordinate in pixels"`
	RepresentativePower float64 `json:"representative_power" doc:"Strongest observed signal in dBm"`
	Band                Band    `json:"band" doc:"Band of the strongest measurement"`
	Channel             int     `json:"channel" doc:"Channel of the strongest measurement"`
	SSID                string  `json:"ssid" doc:"SSID of the strongest measurement"`
	Placed              bool    `json:"placed" doc:"True when the location was asserted by the user"`
}

// ExternalEstimate is the triangulated position of an emitter outside the surveyed footprint
type ExternalEstimate struct {
	DeviceID         string  `json:"device_id" doc:"Physical radio identifier"`
	X                float64 `json:"x" doc:"Estimated X coordinate in pixels, may lie off the floor"`
	Y                float64 `json:"y" doc:"Estimated Y coordinate in pixels, may lie off the floor"`
	TxPowerEstimate  float64 `json:"tx_power_estimate" doc:"Estimated transmit power in dBm"`
	SSID             string  `json:"ssid" doc:"Network name"`
	MeasurementCount int     `json:"measurement_count" doc:"Number of contributing measurements"`
	MaxRSSI          int     `json:"max_rssi" doc:"Strongest contributing signal in dBm"`
	Band             Band    `json:"band" doc:"Band of the strongest measurement"`
}

// InterferenceSource is an external emitter with the parameters used to render its footprint
type InterferenceSource struct {
	DeviceID    string  `json:"device_id" doc:"Physical radio identifier"`
	X           float64 `json:"x" doc:"Source X coordinate in pixels, may lie off the floor"`
	Y           float64 `json:"y" doc:"Source Y coordinate in pixels, may lie off the floor"`
	MaxRadius   float64 `json:"max_radius" doc:"Outer radius of the interference footprint in pixels"`
	FalloffRate float64 `json:"falloff_rate" doc:"Per-ring attenuation factor"`
	TxPower     float64 `json:"tx_power" doc:"Estimated transmit power in dBm"`
	MaxRSSI     int     `json:"max_rssi" doc:"Strongest contributing signal in dBm"`
	SSID        string  `json:"ssid" doc:"Network name"`
}

// Interferer is a non-target network heard above the interference threshold
type Interferer struct {
	SSID string `json:"ssid"`
	RSSI int    `json:"rssi"`
}

// OverlapEntry records a network on an overlapping channel
type OverlapEntry struct {
	Channel int    `json:"channel" doc:"Channel of the interfering network"`
	SSID    string `json:"ssid"`
	RSSI    int    `json:"rssi"`
}

// AreaInterferer is the strongest signal of one interfering device at a survey point
type AreaInterferer struct {
	SSID    string `json:"ssid"`
	Channel int    `json:"channel"`
	RSSI    int    `json:"rssi"`
}

// ProblemArea is a survey point with good target coverage and heavy interference
type ProblemArea struct {
	X               int              `json:"x"`
	Y               int              `json:"y"`
	TargetRSSI      int              `json:"target_rssi"`
	InterfererCount int              `json:"interferer_count"`
	Interferers     []AreaInterferer `json:"interferers" doc:"Up to five strongest interferers"`
}

// InterferenceReport is the read-only result of a channel and overlap analysis
type InterferenceReport struct {
	TotalDetections     int                    `json:"total_detections"`
	TargetPrefixes      []string               `json:"target_prefixes"`
	TargetChannels      []int                  `json:"target_channels"`
	ChannelUsage        map[int]int            `json:"channel_usage"`
	StrongInterferers   map[int][]Interferer   `json:"strong_interferers"`
	OverlapInterference map[int][]OverlapEntry `json:"overlap_interference"`
	ProblemAreas        []ProblemArea          `json:"problem_areas"`
}

// NewInterferenceReport returns an empty report with initialised collections
func NewInterferenceReport() *InterferenceReport {
	return &InterferenceReport{
		TargetPrefixes:      []string{},
		TargetChannels:      []int{},
		ChannelUsage:        map[int]int{},
		StrongInterferers:   map[int][]Interferer{},
		OverlapInterference: map[int][]OverlapEntry{},
		ProblemAreas:        []ProblemArea{},
	}
}
