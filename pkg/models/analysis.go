package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// Survey is everything captured on one floor plan
type Survey struct {
	Floor          FloorSpec       `json:"floor" doc:"Floor plan raster size"`
	TargetSSID     string          `json:"target_ssid,omitempty" doc:"Network to render coverage for, detected when empty"`
	TargetPrefixes []string        `json:"target_prefixes,omitempty" doc:"SSID prefixes of the surveyed network, detected when empty"`
	Points         []SurveyPoint   `json:"points" doc:"Survey points"`
	PlacedEmitters []PlacedEmitter `json:"placed_emitters,omitempty" doc:"Access points placed by the user"`
}

// CreateAnalysisRequest represents a request to create a new analysis
type CreateAnalysisRequest struct {
	Body struct {
		SessionID      string          `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
		Floor          FloorSpec       `json:"floor" required:"true" doc:"Floor plan raster size"`
		TargetSSID     string          `json:"target_ssid,omitempty" maxLength:"32" doc:"Network to render coverage for"`
		TargetPrefixes []string        `json:"target_prefixes,omitempty" doc:"SSID prefixes of the surveyed network"`
		Points         []SurveyPoint   `json:"points" minItems:"1" required:"true" doc:"Survey points"`
		PlacedEmitters []PlacedEmitter `json:"placed_emitters,omitempty" doc:"Access points placed by the user"`
	}
}

// CreateAnalysisResponse represents the response from creating an analysis
type CreateAnalysisResponse struct {
	Body CreateAnalysisResponseBody
}

// CreateAnalysisResponseBody is the body of the create analysis response
type CreateAnalysisResponseBody struct {
	ID               string `json:"id" doc:"Analysis unique identifier"`
	PointCount       int    `json:"point_count" doc:"Number of survey points stored"`
	MeasurementCount int    `json:"measurement_count" doc:"Number of measurements stored"`
}

// GetAnalysisStatusRequest represents a request to get analysis status
type GetAnalysisStatusRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// GetAnalysisStatusResponseBody is the body of the status response
type GetAnalysisStatusResponseBody struct {
	ID        string  `json:"id" doc:"Analysis ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Analysis status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Analysis progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when analysis completes"`
}

// GetAnalysisStatusResponse represents the current status of an analysis
type GetAnalysisStatusResponse struct {
	Body GetAnalysisStatusResponseBody
}

// GetAnalysisResultsRequest represents a request to get analysis results
type GetAnalysisResultsRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// GetAnalysisResultsResponseBody is the body of the results response
type GetAnalysisResultsResponseBody struct {
	ID              string                     `json:"id" doc:"Analysis ID"`
	CoverageTarget  string                     `json:"coverage_target,omitempty" doc:"Network the coverage raster was rendered for"`
	Report          *InterferenceReport        `json:"report" doc:"Channel and interference report"`
	Summary         string                     `json:"summary" doc:"Plain text interference summary"`
	Emitters        []EstimatedEmitterLocation `json:"emitters" doc:"Estimated emitter locations"`
	Sources         []InterferenceSource       `json:"sources" doc:"Triangulated interference sources"`
	CoverageURL     string                     `json:"coverage_url,omitempty" doc:"Pre-signed URL of the coverage PNG"`
	InterferenceURL string                     `json:"interference_url,omitempty" doc:"Pre-signed URL of the interference PNG"`
	CreatedAt       time.Time                  `json:"created_at" doc:"Results creation timestamp"`
}

// GetAnalysisResultsResponse represents the complete analysis results
type GetAnalysisResultsResponse struct {
	Body GetAnalysisResultsResponseBody
}

// StartProcessingRequest represents a request to start processing a survey
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// LegendRequest asks for the signal legend raster
type LegendRequest struct {
	Width  int `query:"width" default:"150" minimum:"60" maximum:"1000" doc:"Legend width in pixels"`
	Height int `query:"height" default:"200" minimum:"80" maximum:"1000" doc:"Legend height in pixels"`
}

// LegendResponse carries the encoded legend PNG
type LegendResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Analysis represents the core analysis entity (for internal use)
type Analysis struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Survey      Survey     `json:"survey"`
	ErrorMsg    *string    `json:"error_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AnalysisResults represents the stored analysis results
type AnalysisResults struct {
	ID              string                     `json:"id"`
	AnalysisID      string                     `json:"analysis_id"`
	CoverageTarget  string                     `json:"coverage_target,omitempty"`
	Report          *InterferenceReport        `json:"report"`
	Summary         string                     `json:"summary"`
	Emitters        []EstimatedEmitterLocation `json:"emitters"`
	Sources         []InterferenceSource       `json:"sources"`
	CoverageKey     string                     `json:"coverage_key,omitempty"`
	InterferenceKey string                     `json:"interference_key,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
}
