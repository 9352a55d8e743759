package processing

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/wlansurvey/internal/grouping"
	"github.com/RMahshie/wlansurvey/internal/interference"
	"github.com/RMahshie/wlansurvey/internal/locate"
	"github.com/RMahshie/wlansurvey/internal/pathloss"
	"github.com/RMahshie/wlansurvey/internal/raster"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

// Progress checkpoints of a coverage run
const (
	coverageStarted   = 10
	coverageGridStart = 20
	progressDone      = 100
)

// ProgressFunc receives a completion percentage between 0 and 100
type ProgressFunc func(percent int)

// Settings calibrates the engine
type Settings struct {
	PathLoss      pathloss.Settings
	Interference  interference.Settings
	CellSize      int
	MaxTxPowerDBm float64
}

// DefaultSettings returns the engine defaults
func DefaultSettings() Settings {
	return Settings{
		PathLoss:      pathloss.DefaultSettings(),
		Interference:  interference.DefaultSettings(),
		CellSize:      4,
		MaxTxPowerDBm: 30,
	}
}

// Engine runs the coverage and interference pipelines over a survey. It holds
// no per-run state and may be shared between goroutines.
type Engine struct {
	settings Settings
	analyzer *interference.Analyzer
}

// NewEngine creates an engine with the given calibration
func NewEngine(settings Settings) *Engine {
	return &Engine{
		settings: settings,
		analyzer: interference.NewAnalyzer(settings.Interference),
	}
}

// Settings returns the engine calibration
func (e *Engine) Settings() Settings {
	return e.settings
}

// CoverageRequest describes one coverage rendering
type CoverageRequest struct {
	Floor  models.FloorSpec
	Points []models.SurveyPoint
	// TargetSSID restricts the estimate to one network name when set.
	TargetSSID string
	Placed     []models.PlacedEmitter
}

// CoverageResult is a completed coverage rendering
type CoverageResult struct {
	Image    *image.NRGBA
	Grid     *raster.Grid
	Emitters []models.EstimatedEmitterLocation
}

// Coverage estimates the emitters of the survey and renders their predicted
// signal strength. The image is only returned once fully rendered.
func (e *Engine) Coverage(ctx context.Context, req CoverageRequest, progress ProgressFunc) (*CoverageResult, error) {
	report := reporter(progress)
	report(coverageStarted)

	keep := func(m models.Measurement) bool { return true }
	if req.TargetSSID != "" {
		keep = func(m models.Measurement) bool { return m.SSID == req.TargetSSID }
	}

	groups := grouping.ObservationsByDevice(models.Observations(req.Points, keep))
	emitters := locate.EstimateAll(groups)
	emitters = append(emitters, locate.FromPlaced(placedFor(req.Placed, keep))...)

	log.Debug().
		Int("deviceCount", len(groups)).
		Int("emitterCount", len(emitters)).
		Str("targetSSID", req.TargetSSID).
		Msg("Estimated emitters for coverage")

	if len(emitters) == 0 {
		img, err := raster.Transparent(req.Floor)
		if err != nil {
			return nil, err
		}
		report(progressDone)
		return &CoverageResult{Image: img, Emitters: emitters}, nil
	}

	cellSize := raster.AlignedCellSize(req.Floor.Width, req.Floor.Height, e.settings.CellSize)
	builder := raster.NewBuilder(e.settings.PathLoss, cellSize)
	grid, err := builder.Build(ctx, req.Floor, raster.SourcesFrom(emitters), func(done, total int) {
		report(coverageGridStart + (progressDone-coverageGridStart)*done/total)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build signal grid: %w", err)
	}

	img := raster.RenderSignal(grid)
	report(progressDone)

	return &CoverageResult{Image: img, Grid: grid, Emitters: emitters}, nil
}

// InterferenceRequest describes one interference analysis
type InterferenceRequest struct {
	Floor  models.FloorSpec
	Points []models.SurveyPoint
	// TargetPrefixes name the surveyed network. Detected automatically when empty.
	TargetPrefixes []string
}

// InterferenceResult is a completed interference analysis
type InterferenceResult struct {
	Report  *models.InterferenceReport
	Sources []models.InterferenceSource
	Image   *image.RGBA
}

// Interference analyses channel usage, locates foreign emitters and renders
// their footprint on the floor.
func (e *Engine) Interference(ctx context.Context, req InterferenceRequest, progress ProgressFunc) (*InterferenceResult, error) {
	report := reporter(progress)

	model, err := pathloss.NewModel(e.settings.PathLoss, req.Floor.Width)
	if err != nil {
		return nil, fmt.Errorf("failed to calibrate path-loss model: %w", err)
	}

	analysis := e.analyzer.Analyze(req.Points, req.TargetPrefixes)
	groups := e.analyzer.InterfererObservations(req.Points, analysis.TargetPrefixes)
	sources := locate.NewTriangulator(model, e.settings.MaxTxPowerDBm).TriangulateAll(groups)

	log.Debug().
		Int("deviceCount", len(groups)).
		Int("sourceCount", len(sources)).
		Strs("targetPrefixes", analysis.TargetPrefixes).
		Msg("Triangulated interference sources")

	img, err := raster.RenderInterference(ctx, req.Floor, sources, func(done, total int) {
		report(progressDone * done / total)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render interference: %w", err)
	}
	report(progressDone)

	return &InterferenceResult{Report: analysis, Sources: sources, Image: img}, nil
}

// Summary renders the text summary of an interference report
func (e *Engine) Summary(report *models.InterferenceReport, points []models.SurveyPoint) string {
	return interference.Summary(report, models.AllMeasurements(points))
}

// CoverageTarget returns the network a survey's coverage is rendered for:
// the requested SSID, or else the best connected network heard.
func CoverageTarget(survey models.Survey) string {
	if survey.TargetSSID != "" {
		return survey.TargetSSID
	}
	if networks := interference.ConnectedNetworks(survey.Points); len(networks) > 0 {
		return networks[0]
	}
	return ""
}

// placedFor keeps the associated measurements accepted by keep. Emitters left
// without measurements are dropped by locate.FromPlaced.
func placedFor(placed []models.PlacedEmitter, keep func(models.Measurement) bool) []models.PlacedEmitter {
	out := make([]models.PlacedEmitter, 0, len(placed))
	for _, p := range placed {
		filtered := p
		filtered.ScanData = nil
		for _, m := range p.ScanData {
			if keep(m) {
				filtered.ScanData = append(filtered.ScanData, m)
			}
		}
		out = append(out, filtered)
	}
	return out
}

func reporter(progress ProgressFunc) ProgressFunc {
	if progress == nil {
		return func(int) {}
	}
	return progress
}

// Throttle forwards a percentage only when it differs from the last one
// forwarded. It is not safe for concurrent use.
func Throttle(progress ProgressFunc) ProgressFunc {
	last := -1
	return func(percent int) {
		if percent == last {
			return
		}
		last = percent
		progress(percent)
	}
}

// Scale maps a 0-100 percentage of a sub-task onto the [from, to] range of
// the overall progress.
func Scale(progress ProgressFunc, from, to int) ProgressFunc {
	return func(percent int) {
		progress(from + (to-from)*percent/progressDone)
	}
}
