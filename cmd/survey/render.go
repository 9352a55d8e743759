package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/wlansurvey/internal/processing"
	"github.com/RMahshie/wlansurvey/internal/raster"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

var (
	coverageOut     string
	interferenceOut string
	legendOut       string
	renderTarget    string
	renderPrefixes  []string
)

var renderCmd = &cobra.Command{
	Use:   "render [survey.json]",
	Short: "Render coverage and interference overlays as PNG",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		exitOnError(runRender(ctx, args[0]))
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&coverageOut, "coverage", "coverage.png", "coverage overlay output, empty to skip")
	f.StringVar(&interferenceOut, "interference", "interference.png", "interference overlay output, empty to skip")
	f.StringVar(&legendOut, "legend", "", "signal legend output")
	f.StringVar(&renderTarget, "target", "", "network to render coverage for (overrides the survey)")
	f.StringSliceVar(&renderPrefixes, "prefix", nil, "SSID prefixes of the surveyed network (overrides the survey)")
}

func runRender(ctx context.Context, path string) error {
	survey, err := readSurvey(path)
	if err != nil {
		return err
	}
	applyOverrides(survey, renderTarget, renderPrefixes)

	engine, err := newEngine()
	if err != nil {
		return err
	}

	if coverageOut != "" {
		target := processing.CoverageTarget(*survey)
		result, err := engine.Coverage(ctx, processing.CoverageRequest{
			Floor:      survey.Floor,
			Points:     survey.Points,
			TargetSSID: target,
			Placed:     survey.PlacedEmitters,
		}, logProgress("coverage"))
		if err != nil {
			return err
		}
		if err := writePNG(coverageOut, result.Image); err != nil {
			return err
		}
		log.Info().
			Str("file", coverageOut).
			Str("target", target).
			Int("emitterCount", len(result.Emitters)).
			Msg("Wrote coverage overlay")
	}

	if interferenceOut != "" {
		result, err := engine.Interference(ctx, processing.InterferenceRequest{
			Floor:          survey.Floor,
			Points:         survey.Points,
			TargetPrefixes: survey.TargetPrefixes,
		}, logProgress("interference"))
		if err != nil {
			return err
		}
		if err := writePNG(interferenceOut, result.Image); err != nil {
			return err
		}
		log.Info().
			Str("file", interferenceOut).
			Strs("targetPrefixes", result.Report.TargetPrefixes).
			Int("sourceCount", len(result.Sources)).
			Msg("Wrote interference overlay")
	}

	if legendOut != "" {
		legend, err := raster.Legend(150, 200)
		if err != nil {
			return err
		}
		if err := writePNG(legendOut, legend); err != nil {
			return err
		}
	}
	return nil
}

func applyOverrides(survey *models.Survey, target string, prefixes []string) {
	if target != "" {
		survey.TargetSSID = target
	}
	if len(prefixes) > 0 {
		survey.TargetPrefixes = prefixes
	}
}

func logProgress(stage string) processing.ProgressFunc {
	return processing.Throttle(func(percent int) {
		log.Debug().Str("stage", stage).Int("progress", percent).Msg("Rendering")
	})
}

func writePNG(path string, img image.Image) error {
	data, err := raster.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
