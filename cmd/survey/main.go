// Command survey runs the WLAN survey engine against survey files on disk.
// It simulates surveys, renders coverage and interference overlays and prints
// the interference report.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RMahshie/wlansurvey/internal/config"
	"github.com/RMahshie/wlansurvey/internal/processing"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

var (
	settings = viper.New()
	verbose  bool
)

// engineFlags maps command line flags onto engine configuration keys
var engineFlags = map[string]string{
	"cell-size":          config.KeyCellSize,
	"floor-span":         config.KeyFloorSpanFeet,
	"min-signal":         config.KeyMinSignalDBm,
	"max-signal":         config.KeyMaxSignalDBm,
	"loss-24":            config.KeyLossPerFoot24,
	"loss-5":             config.KeyLossPerFoot5,
	"interference-floor": config.KeyInterferenceThresholdDBm,
	"overlap-floor":      config.KeyOverlapThresholdDBm,
	"max-tx-power":       config.KeyMaxTxPowerDBm,
}

var rootCmd = &cobra.Command{
	Use:   "survey",
	Short: "Analyse WLAN site surveys",
	Long: `Survey estimates access point locations from site survey scans, renders
predicted coverage and interference over the floor plan, and reports channel
congestion.

Engine calibration comes from ENGINE_* environment variables, the .env.<env>
file, or the flags below, in increasing order of precedence.

Examples:
  survey simulate --width 800 --height 600 --points 25 -o survey.json
  survey render survey.json --coverage coverage.png --interference interference.png
  survey report survey.json --json`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.Int("cell-size", 4, "signal grid cell size in pixels")
	pf.Float64("floor-span", 164, "real width of the floor plan in feet")
	pf.Float64("min-signal", -95, "weakest predicted signal in dBm")
	pf.Float64("max-signal", -20, "strongest predicted signal in dBm")
	pf.Float64("loss-24", 0.5, "2.4 GHz attenuation in dB per foot")
	pf.Float64("loss-5", 0.6, "5 GHz attenuation in dB per foot")
	pf.Int("interference-floor", -70, "weakest foreign signal counted as an interferer in dBm")
	pf.Int("overlap-floor", -70, "weakest signal counted towards channel overlap in dBm")
	pf.Float64("max-tx-power", 30, "upper bound for triangulated transmit power in dBm")

	for flag, key := range engineFlags {
		_ = settings.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(simulateCmd, renderCmd, reportCmd, addPointCmd)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEngine builds an engine from flags, environment and .env file
func newEngine() (*processing.Engine, error) {
	cfg, err := config.LoadFrom(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return processing.NewEngine(processing.SettingsFrom(cfg.Engine)), nil
}

func readSurvey(path string) (*models.Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read survey: %w", err)
	}
	var survey models.Survey
	if err := json.Unmarshal(data, &survey); err != nil {
		return nil, fmt.Errorf("failed to parse survey %s: %w", path, err)
	}
	if survey.Floor.Width <= 0 || survey.Floor.Height <= 0 {
		return nil, fmt.Errorf("survey %s has no floor dimensions", path)
	}
	return &survey, nil
}

// writeJSON writes v indented to path, or to stdout when path is empty
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
