package processing

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/wlansurvey/internal/config"
	"github.com/RMahshie/wlansurvey/internal/interference"
	"github.com/RMahshie/wlansurvey/internal/observability"
	"github.com/RMahshie/wlansurvey/internal/pathloss"
	"github.com/RMahshie/wlansurvey/internal/raster"
	"github.com/RMahshie/wlansurvey/internal/repository"
	"github.com/RMahshie/wlansurvey/internal/storage"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

// Overall progress of a processing run
const (
	progressLoaded          = 5
	progressCoverageDone    = 55
	progressInterferenceEnd = 90
	progressUploaded        = 95
)

type ProcessingService interface {
	ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error
}

type processingService struct {
	engine     *Engine
	s3         storage.S3Service
	repository repository.AnalysisRepository
	metrics    *observability.SurveyCollector
}

// NewProcessingService creates a service running the engine over stored
// surveys. metrics may be nil.
func NewProcessingService(engine *Engine, s3Service storage.S3Service, repo repository.AnalysisRepository, metrics *observability.SurveyCollector) ProcessingService {
	return &processingService{
		engine:     engine,
		s3:         s3Service,
		repository: repo,
		metrics:    metrics,
	}
}

// SettingsFrom converts the engine configuration section
func SettingsFrom(cfg config.EngineConfig) Settings {
	return Settings{
		PathLoss: pathloss.Settings{
			FloorSpanFeet: cfg.FloorSpanFeet,
			LossPerFoot24: cfg.LossPerFoot24,
			LossPerFoot5:  cfg.LossPerFoot5,
			MinDBm:        cfg.MinSignalDBm,
			MaxDBm:        cfg.MaxSignalDBm,
		},
		Interference: interference.Settings{
			InterferenceThresholdDBm: cfg.InterferenceThresholdDBm,
			OverlapThresholdDBm:      cfg.OverlapThresholdDBm,
		},
		CellSize:      cfg.CellSize,
		MaxTxPowerDBm: cfg.MaxTxPowerDBm,
	}
}

// ProcessAnalysis renders and stores the results of one survey. Problems with
// the survey itself mark the analysis failed and return nil; storage and
// database errors are returned.
func (s *processingService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	start := time.Now()
	logger := log.With().Str("analysisID", analysisID.String()).Logger()

	if err := s.repository.UpdateStatus(ctx, analysisID, repository.StatusProcessing, 0); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	analysis, err := s.repository.GetByID(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("failed to load analysis: %w", err)
	}

	progress := Throttle(func(percent int) {
		if err := s.repository.UpdateStatus(ctx, analysisID, repository.StatusProcessing, percent); err != nil {
			logger.Warn().Err(err).Int("progress", percent).Msg("Failed to persist progress")
		}
	})
	progress(progressLoaded)

	survey := analysis.Survey
	target := CoverageTarget(survey)

	stage := time.Now()
	coverage, err := s.engine.Coverage(ctx, CoverageRequest{
		Floor:      survey.Floor,
		Points:     survey.Points,
		TargetSSID: target,
		Placed:     survey.PlacedEmitters,
	}, Scale(progress, progressLoaded, progressCoverageDone))
	if err != nil {
		return s.fail(ctx, analysisID, fmt.Errorf("coverage rendering failed: %w", err))
	}
	s.metrics.ObserveStage("coverage", time.Since(stage))

	stage = time.Now()
	analyzed, err := s.engine.Interference(ctx, InterferenceRequest{
		Floor:          survey.Floor,
		Points:         survey.Points,
		TargetPrefixes: survey.TargetPrefixes,
	}, Scale(progress, progressCoverageDone, progressInterferenceEnd))
	if err != nil {
		return s.fail(ctx, analysisID, fmt.Errorf("interference analysis failed: %w", err))
	}
	s.metrics.ObserveStage("interference", time.Since(stage))

	stage = time.Now()
	coverageKey, err := s.upload(ctx, analysis.ID, "coverage", coverage.Image)
	if err != nil {
		return err
	}
	interferenceKey, err := s.upload(ctx, analysis.ID, "interference", analyzed.Image)
	if err != nil {
		return err
	}
	s.metrics.ObserveStage("upload", time.Since(stage))
	progress(progressUploaded)

	results := &models.AnalysisResults{
		ID:              uuid.New().String(),
		AnalysisID:      analysis.ID,
		CoverageTarget:  target,
		Report:          analyzed.Report,
		Summary:         s.engine.Summary(analyzed.Report, survey.Points),
		Emitters:        coverage.Emitters,
		Sources:         analyzed.Sources,
		CoverageKey:     coverageKey,
		InterferenceKey: interferenceKey,
		CreatedAt:       time.Now(),
	}
	if err := s.repository.StoreResults(ctx, results); err != nil {
		return fmt.Errorf("failed to store results: %w", err)
	}

	if err := s.repository.UpdateStatus(ctx, analysisID, repository.StatusCompleted, progressDone); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	s.recordEmitters(coverage.Emitters, analyzed.Sources)
	s.metrics.RecordOutcome(observability.OutcomeCompleted)
	s.metrics.ObserveStage("total", time.Since(start))

	logger.Info().
		Int("emitterCount", len(coverage.Emitters)).
		Int("sourceCount", len(analyzed.Sources)).
		Str("coverageTarget", target).
		Dur("duration", time.Since(start)).
		Msg("Survey processing completed")

	return nil
}

func (s *processingService) upload(ctx context.Context, analysisID, name string, img image.Image) (string, error) {
	data, err := raster.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s raster: %w", name, err)
	}

	key := storage.RasterKey(analysisID, name)
	if err := s.s3.UploadFile(ctx, key, storage.ContentTypePNG, data); err != nil {
		return "", fmt.Errorf("failed to upload %s raster: %w", name, err)
	}
	return key, nil
}

func (s *processingService) fail(ctx context.Context, analysisID uuid.UUID, cause error) error {
	log.Error().Err(cause).Str("analysisID", analysisID.String()).Msg("Survey processing failed")
	s.metrics.RecordOutcome(observability.OutcomeFailed)

	if err := s.repository.UpdateError(ctx, analysisID, cause.Error()); err != nil {
		return fmt.Errorf("failed to record processing error: %w", err)
	}
	return nil // status is updated to failed
}

func (s *processingService) recordEmitters(emitters []models.EstimatedEmitterLocation, sources []models.InterferenceSource) {
	placed := 0
	for _, e := range emitters {
		if e.Placed {
			placed++
		}
	}
	s.metrics.RecordEmitters(observability.EmitterInBounds, len(emitters)-placed)
	s.metrics.RecordEmitters(observability.EmitterPlaced, placed)
	s.metrics.RecordEmitters(observability.EmitterExternal, len(sources))
}
