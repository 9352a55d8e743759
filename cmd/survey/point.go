package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/wlansurvey/internal/scan"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

var (
	pointX    float64
	pointY    float64
	pointScan string
)

var addPointCmd = &cobra.Command{
	Use:   "add-point [survey.json]",
	Short: "Record a scanner output as a survey point",
	Long: `Add-point parses the JSON printed by a platform scan script and stores it as
the survey point at --x, --y. A point already recorded at that position is
replaced. Use --scan - to read the scan from stdin.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runAddPoint(args[0]))
	},
}

func init() {
	f := addPointCmd.Flags()
	f.Float64Var(&pointX, "x", 0, "floor plan X coordinate in pixels")
	f.Float64Var(&pointY, "y", 0, "floor plan Y coordinate in pixels")
	f.StringVar(&pointScan, "scan", "-", "scanner output file")
	_ = addPointCmd.MarkFlagRequired("x")
	_ = addPointCmd.MarkFlagRequired("y")
}

func runAddPoint(path string) error {
	survey, err := readSurvey(path)
	if err != nil {
		return err
	}

	var data []byte
	if pointScan == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(pointScan)
	}
	if err != nil {
		return fmt.Errorf("failed to read scan: %w", err)
	}

	measurements, err := scan.Parse(data)
	if err != nil {
		return err
	}

	p := models.SurveyPoint{X: pointX, Y: pointY, CapturedAt: time.Now().UTC(), Measurements: measurements}
	replaced := recordPoint(survey, p)

	log.Info().
		Float64("x", pointX).
		Float64("y", pointY).
		Int("measurementCount", len(measurements)).
		Bool("replaced", replaced).
		Msg("Recorded survey point")

	return writeJSON(path, survey)
}

// recordPoint stores p in the survey, replacing a point at the same position.
// It reports whether a point was replaced.
func recordPoint(survey *models.Survey, p models.SurveyPoint) bool {
	for i, existing := range survey.Points {
		if existing.X == p.X && existing.Y == p.Y {
			survey.Points[i] = p
			return true
		}
	}
	survey.Points = append(survey.Points, p)
	return false
}
