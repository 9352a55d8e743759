package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RMahshie/wlansurvey/internal/processing"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

var (
	reportJSON     bool
	reportOutput   string
	reportPrefixes []string
)

var reportCmd = &cobra.Command{
	Use:   "report [survey.json]",
	Short: "Print the interference report of a survey",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runReport(context.Background(), args[0]))
	},
}

func init() {
	f := reportCmd.Flags()
	f.BoolVar(&reportJSON, "json", false, "print the structured report and located sources as JSON")
	f.StringVarP(&reportOutput, "output", "o", "", "output file for --json (default: stdout)")
	f.StringSliceVar(&reportPrefixes, "prefix", nil, "SSID prefixes of the surveyed network (overrides the survey)")
}

// reportDocument is the JSON form of a report
type reportDocument struct {
	Report  *models.InterferenceReport  `json:"report"`
	Sources []models.InterferenceSource `json:"sources"`
}

func runReport(ctx context.Context, path string) error {
	survey, err := readSurvey(path)
	if err != nil {
		return err
	}
	applyOverrides(survey, "", reportPrefixes)

	engine, err := newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Interference(ctx, processing.InterferenceRequest{
		Floor:          survey.Floor,
		Points:         survey.Points,
		TargetPrefixes: survey.TargetPrefixes,
	}, nil)
	if err != nil {
		return err
	}

	if reportJSON {
		return writeJSON(reportOutput, reportDocument{Report: result.Report, Sources: result.Sources})
	}

	fmt.Print(engine.Summary(result.Report, survey.Points))
	for _, src := range result.Sources {
		fmt.Printf("Source %s (%s): (%.0f, %.0f) est. %.1f dBm, strongest reading %d dBm\n",
			src.DeviceID, src.SSID, src.X, src.Y, src.TxPower, src.MaxRSSI)
	}
	return nil
}
