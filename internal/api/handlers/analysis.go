package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/wlansurvey/internal/processing"
	"github.com/RMahshie/wlansurvey/internal/repository"
	"github.com/RMahshie/wlansurvey/internal/storage"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

// maxFloorSide bounds the rendered raster
const maxFloorSide = 10000

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	repo          repository.AnalysisRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(repo repository.AnalysisRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService) *AnalysisHandler {
	return &AnalysisHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
	}
}

// CreateAnalysis stores a survey as a pending analysis
func (h *AnalysisHandler) CreateAnalysis(ctx context.Context, req *models.CreateAnalysisRequest) (*models.CreateAnalysisResponse, error) {
	body := req.Body
	floor := body.Floor
	if floor.Width <= 0 || floor.Height <= 0 || floor.Width > maxFloorSide || floor.Height > maxFloorSide {
		return nil, huma.Error400BadRequest(fmt.Sprintf("Floor dimensions must be between 1 and %d pixels", maxFloorSide), nil)
	}
	if len(body.Points) == 0 {
		return nil, huma.Error400BadRequest("At least one survey point is required", nil)
	}

	measurements := len(models.AllMeasurements(body.Points))
	analysisID := uuid.New()
	log.Info().
		Str("analysisID", analysisID.String()).
		Int("pointCount", len(body.Points)).
		Int("measurementCount", measurements).
		Msg("Creating new analysis")

	now := time.Now()
	analysis := &models.Analysis{
		ID:        analysisID.String(),
		SessionID: body.SessionID,
		Status:    repository.StatusPending,
		Progress:  0,
		Survey: models.Survey{
			Floor:          floor,
			TargetSSID:     body.TargetSSID,
			TargetPrefixes: body.TargetPrefixes,
			Points:         body.Points,
			PlacedEmitters: body.PlacedEmitters,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Create(ctx, analysis); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create analysis", err)
	}
	log.Info().Str("analysisID", analysisID.String()).Str("sessionID", body.SessionID).Msg("Analysis record created successfully")

	return &models.CreateAnalysisResponse{
		Body: models.CreateAnalysisResponseBody{
			ID:               analysis.ID,
			PointCount:       len(body.Points),
			MeasurementCount: measurements,
		},
	}, nil
}

// GetAnalysisStatus returns the current status of an analysis
func (h *AnalysisHandler) GetAnalysisStatus(ctx context.Context, req *models.GetAnalysisStatusRequest) (*models.GetAnalysisStatusResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.lookup(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	var resultsID *string
	if analysis.Status == repository.StatusCompleted {
		results, err := h.repo.GetResults(ctx, analysisID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	message := h.generateStatusMessage(analysis.Status, analysis.Progress)
	if analysis.Status == repository.StatusFailed && analysis.ErrorMsg != nil {
		message = fmt.Sprintf("%s (%s)", message, *analysis.ErrorMsg)
	}

	log.Debug().Str("analysisID", analysis.ID).Str("status", analysis.Status).Int("progress", analysis.Progress).Msg("Returning analysis status")
	return &models.GetAnalysisStatusResponse{
		Body: models.GetAnalysisStatusResponseBody{
			ID:        analysis.ID,
			Status:    analysis.Status,
			Progress:  analysis.Progress,
			Message:   message,
			ResultsID: resultsID,
		},
	}, nil
}

// GetAnalysisResults returns the report and links to the rendered rasters
func (h *AnalysisHandler) GetAnalysisResults(ctx context.Context, req *models.GetAnalysisResultsRequest) (*models.GetAnalysisResultsResponse, error) {
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.lookup(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	if analysis.Status != repository.StatusCompleted {
		return nil, huma.Error409Conflict("Analysis not yet completed",
			fmt.Errorf("analysis status is %s", analysis.Status))
	}

	results, err := h.repo.GetResults(ctx, analysisID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	body := models.GetAnalysisResultsResponseBody{
		ID:             analysis.ID,
		CoverageTarget: results.CoverageTarget,
		Report:         results.Report,
		Summary:        results.Summary,
		Emitters:       results.Emitters,
		Sources:        results.Sources,
		CreatedAt:      results.CreatedAt,
	}

	if results.CoverageKey != "" {
		if body.CoverageURL, err = h.s3Service.GenerateDownloadURL(ctx, results.CoverageKey); err != nil {
			return nil, huma.Error500InternalServerError("Failed to link coverage raster", err)
		}
	}
	if results.InterferenceKey != "" {
		if body.InterferenceURL, err = h.s3Service.GenerateDownloadURL(ctx, results.InterferenceKey); err != nil {
			return nil, huma.Error500InternalServerError("Failed to link interference raster", err)
		}
	}

	return &models.GetAnalysisResultsResponse{Body: body}, nil
}

// StartProcessing starts processing a stored survey in the background
func (h *AnalysisHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	log.Info().Str("analysisID", req.ID).Msg("Processing start request received")
	analysisID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.lookup(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if analysis.Status == repository.StatusProcessing {
		return nil, huma.Error409Conflict("Analysis is already processing", nil)
	}

	// Start processing in background (don't wait for completion)
	log.Info().Str("analysisID", analysisID.String()).Msg("Starting background processing goroutine")
	go func() {
		err := h.processingSvc.ProcessAnalysis(context.Background(), analysisID)
		if err != nil {
			log.Error().Err(err).Str("analysisID", analysisID.String()).Msg("Background processing failed")
			h.repo.UpdateError(context.Background(), analysisID, fmt.Sprintf("Processing failed: %v", err))
		}
	}()

	resp := &models.StartProcessingResponse{}
	resp.Body.Message = "Processing started successfully"
	return resp, nil
}

func (h *AnalysisHandler) lookup(ctx context.Context, analysisID uuid.UUID) (*models.Analysis, error) {
	analysis, err := h.repo.GetByID(ctx, analysisID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, huma.Error404NotFound("Analysis not found", err)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load analysis", err)
	}
	return analysis, nil
}

// generateStatusMessage creates a human-readable status message
func (h *AnalysisHandler) generateStatusMessage(status string, progress int) string {
	switch status {
	case repository.StatusPending:
		return "Survey queued for processing..."
	case repository.StatusProcessing:
		if progress < 5 {
			return "Loading survey..."
		} else if progress < 55 {
			return "Rendering signal coverage..."
		} else if progress < 90 {
			return "Locating interference sources..."
		} else {
			return "Finalizing results..."
		}
	case repository.StatusCompleted:
		return "Analysis complete!"
	case repository.StatusFailed:
		return "Analysis failed. Please check the survey and try again."
	default:
		return "Unknown status"
	}
}
