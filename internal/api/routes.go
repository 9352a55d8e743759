package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/wlansurvey/internal/api/handlers"
	"github.com/RMahshie/wlansurvey/internal/processing"
	"github.com/RMahshie/wlansurvey/internal/repository"
	"github.com/RMahshie/wlansurvey/internal/storage"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, s3Service storage.S3Service, analysisRepo repository.AnalysisRepository, processingSvc processing.ProcessingService) {
	analysisHandler := handlers.NewAnalysisHandler(analysisRepo, s3Service, processingSvc)

	huma.Register(api, huma.Operation{
		OperationID:   "createAnalysis",
		Method:        http.MethodPost,
		Path:          "/api/analyses",
		Summary:       "Create a new analysis",
		Description:   "Stores a floor survey as a pending analysis",
		Tags:          []string{"Analysis"},
		DefaultStatus: http.StatusCreated,
	}, analysisHandler.CreateAnalysis)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisStatus",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/status",
		Summary:     "Get analysis status",
		Description: "Returns the current status and progress of an analysis",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetAnalysisStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisResults",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/results",
		Summary:     "Get analysis results",
		Description: "Returns the interference report, estimated emitters and links to the rendered rasters",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetAnalysisResults)

	huma.Register(api, huma.Operation{
		OperationID:   "startProcessing",
		Method:        http.MethodPost,
		Path:          "/api/analyses/{id}/process",
		Summary:       "Start processing analysis",
		Description:   "Renders coverage and analyses interference for a stored survey",
		Tags:          []string{"Analysis"},
		DefaultStatus: http.StatusAccepted,
	}, analysisHandler.StartProcessing)

	huma.Register(api, huma.Operation{
		OperationID: "getLegend",
		Method:      http.MethodGet,
		Path:        "/api/legend",
		Summary:     "Signal strength legend",
		Description: "Returns the legend of the discrete signal bands as a PNG",
		Tags:        []string{"Rendering"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Legend image",
				Content:     map[string]*huma.MediaType{"image/png": {}},
			},
		},
	}, handlers.GetLegend)
}
