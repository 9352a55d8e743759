package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/wlansurvey/internal/repository"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

// MockAnalysisRepository implements repository.AnalysisRepository for testing
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	args := m.Called(ctx, id)
	analysis, _ := args.Get(0).(*models.Analysis)
	return analysis, args.Error(1)
}

func (m *MockAnalysisRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Analysis, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]*models.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockAnalysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockAnalysisRepository) StoreResults(ctx context.Context, results *models.AnalysisResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error) {
	args := m.Called(ctx, analysisID)
	results, _ := args.Get(0).(*models.AnalysisResults)
	return results, args.Error(1)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) UploadFile(ctx context.Context, key string, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockS3Service) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockProcessingService implements processing.ProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	args := m.Called(ctx, analysisID)
	return args.Error(0)
}

func createRequest(floor models.FloorSpec, points ...models.SurveyPoint) *models.CreateAnalysisRequest {
	req := &models.CreateAnalysisRequest{}
	req.Body.SessionID = "test-session-123"
	req.Body.Floor = floor
	req.Body.TargetSSID = "Corp"
	req.Body.Points = points
	return req
}

func surveyPoint(x, y float64) models.SurveyPoint {
	return models.SurveyPoint{X: x, Y: y, Measurements: []models.Measurement{
		{SSID: "Corp", BSSID: "00:aa:aa:aa:aa:01", Channel: 36, SignalStrength: -45},
		{SSID: "Neighbor", BSSID: "00:11:11:11:11:01", Channel: 6, SignalStrength: -67},
	}}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

func TestCreateAnalysis(t *testing.T) {
	tests := []struct {
		name      string
		input     *models.CreateAnalysisRequest
		mockSetup func(*MockAnalysisRepository)
		wantCode  int
	}{
		{
			name:  "valid survey",
			input: createRequest(models.FloorSpec{Width: 800, Height: 600}, surveyPoint(10, 10), surveyPoint(200, 150)),
			mockSetup: func(mockRepo *MockAnalysisRepository) {
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Analysis) bool {
					return a.Status == repository.StatusPending &&
						a.Survey.Floor.Width == 800 &&
						a.Survey.TargetSSID == "Corp" &&
						len(a.Survey.Points) == 2
				})).Return(nil)
			},
		},
		{
			name:      "zero floor",
			input:     createRequest(models.FloorSpec{Width: 0, Height: 600}, surveyPoint(10, 10)),
			mockSetup: func(mockRepo *MockAnalysisRepository) {},
			wantCode:  400,
		},
		{
			name:      "oversized floor",
			input:     createRequest(models.FloorSpec{Width: 20000, Height: 600}, surveyPoint(10, 10)),
			mockSetup: func(mockRepo *MockAnalysisRepository) {},
			wantCode:  400,
		},
		{
			name:      "no points",
			input:     createRequest(models.FloorSpec{Width: 800, Height: 600}),
			mockSetup: func(mockRepo *MockAnalysisRepository) {},
			wantCode:  400,
		},
		{
			name:  "database failure",
			input: createRequest(models.FloorSpec{Width: 800, Height: 600}, surveyPoint(10, 10)),
			mockSetup: func(mockRepo *MockAnalysisRepository) {
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
			},
			wantCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockAnalysisRepository{}
			mockS3 := &MockS3Service{}
			mockProc := &MockProcessingService{}
			tt.mockSetup(mockRepo)

			handler := NewAnalysisHandler(mockRepo, mockS3, mockProc)
			resp, err := handler.CreateAnalysis(context.Background(), tt.input)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, statusOf(t, err))
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, resp.Body.ID)
				assert.Equal(t, len(tt.input.Body.Points), resp.Body.PointCount)
				assert.Equal(t, 2*len(tt.input.Body.Points), resp.Body.MeasurementCount)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetAnalysisStatus(t *testing.T) {
	id := uuid.New()
	failure := "floor dimensions must be positive"

	tests := []struct {
		name        string
		id          string
		analysis    *models.Analysis
		repoErr     error
		results     *models.AnalysisResults
		wantCode    int
		wantMessage string
	}{
		{name: "invalid id", id: "not-a-uuid", wantCode: 400},
		{name: "not found", id: id.String(), repoErr: repository.ErrNotFound, wantCode: 404},
		{name: "database failure", id: id.String(), repoErr: errors.New("connection reset"), wantCode: 500},
		{
			name:        "processing",
			id:          id.String(),
			analysis:    &models.Analysis{ID: id.String(), Status: repository.StatusProcessing, Progress: 30},
			wantMessage: "Rendering signal coverage...",
		},
		{
			name:        "completed",
			id:          id.String(),
			analysis:    &models.Analysis{ID: id.String(), Status: repository.StatusCompleted, Progress: 100},
			results:     &models.AnalysisResults{ID: "results-1"},
			wantMessage: "Analysis complete!",
		},
		{
			name:        "failed",
			id:          id.String(),
			analysis:    &models.Analysis{ID: id.String(), Status: repository.StatusFailed, ErrorMsg: &failure},
			wantMessage: "Analysis failed. Please check the survey and try again. (floor dimensions must be positive)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockAnalysisRepository{}
			if tt.analysis != nil || tt.repoErr != nil {
				mockRepo.On("GetByID", mock.Anything, id).Return(tt.analysis, tt.repoErr)
			}
			if tt.results != nil {
				mockRepo.On("GetResults", mock.Anything, id).Return(tt.results, nil)
			}

			handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})
			resp, err := handler.GetAnalysisStatus(context.Background(), &models.GetAnalysisStatusRequest{ID: tt.id})

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, statusOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.analysis.Status, resp.Body.Status)
			assert.Equal(t, tt.wantMessage, resp.Body.Message)
			if tt.results != nil {
				require.NotNil(t, resp.Body.ResultsID)
				assert.Equal(t, "results-1", *resp.Body.ResultsID)
			} else {
				assert.Nil(t, resp.Body.ResultsID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetAnalysisResults(t *testing.T) {
	id := uuid.New()

	t.Run("not completed", func(t *testing.T) {
		mockRepo := &MockAnalysisRepository{}
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: repository.StatusProcessing}, nil)

		handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})
		_, err := handler.GetAnalysisResults(context.Background(), &models.GetAnalysisResultsRequest{ID: id.String()})
		assert.Equal(t, 409, statusOf(t, err))
	})

	t.Run("completed", func(t *testing.T) {
		mockRepo := &MockAnalysisRepository{}
		mockS3 := &MockS3Service{}
		report := models.NewInterferenceReport()
		report.TotalDetections = 4
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: repository.StatusCompleted}, nil)
		mockRepo.On("GetResults", mock.Anything, id).Return(&models.AnalysisResults{
			ID:              "results-1",
			AnalysisID:      id.String(),
			CoverageTarget:  "Corp",
			Report:          report,
			Summary:         "summary",
			Emitters:        []models.EstimatedEmitterLocation{{DeviceID: "aa:aa:aa:aa"}},
			Sources:         []models.InterferenceSource{{DeviceID: "11:11:11:11"}},
			CoverageKey:     "rasters/x/coverage.png",
			InterferenceKey: "rasters/x/interference.png",
		}, nil)
		mockS3.On("GenerateDownloadURL", mock.Anything, "rasters/x/coverage.png").Return("https://example.com/coverage", nil)
		mockS3.On("GenerateDownloadURL", mock.Anything, "rasters/x/interference.png").Return("https://example.com/interference", nil)

		handler := NewAnalysisHandler(mockRepo, mockS3, &MockProcessingService{})
		resp, err := handler.GetAnalysisResults(context.Background(), &models.GetAnalysisResultsRequest{ID: id.String()})
		require.NoError(t, err)

		assert.Equal(t, id.String(), resp.Body.ID)
		assert.Equal(t, "Corp", resp.Body.CoverageTarget)
		assert.Equal(t, 4, resp.Body.Report.TotalDetections)
		assert.Equal(t, "https://example.com/coverage", resp.Body.CoverageURL)
		assert.Equal(t, "https://example.com/interference", resp.Body.InterferenceURL)
		assert.Len(t, resp.Body.Sources, 1)
		mockS3.AssertExpectations(t)
	})

	t.Run("presign failure", func(t *testing.T) {
		mockRepo := &MockAnalysisRepository{}
		mockS3 := &MockS3Service{}
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: repository.StatusCompleted}, nil)
		mockRepo.On("GetResults", mock.Anything, id).Return(&models.AnalysisResults{CoverageKey: "k"}, nil)
		mockS3.On("GenerateDownloadURL", mock.Anything, "k").Return("", assert.AnError)

		handler := NewAnalysisHandler(mockRepo, mockS3, &MockProcessingService{})
		_, err := handler.GetAnalysisResults(context.Background(), &models.GetAnalysisResultsRequest{ID: id.String()})
		assert.Equal(t, 500, statusOf(t, err))
	})
}

func TestStartProcessing(t *testing.T) {
	id := uuid.New()

	t.Run("runs in background", func(t *testing.T) {
		mockRepo := &MockAnalysisRepository{}
		mockProc := &MockProcessingService{}
		done := make(chan struct{})
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: repository.StatusPending}, nil)
		mockProc.On("ProcessAnalysis", mock.Anything, id).Run(func(mock.Arguments) { close(done) }).Return(nil)

		handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, mockProc)
		resp, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
		require.NoError(t, err)
		assert.Equal(t, "Processing started successfully", resp.Body.Message)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("processing was not started")
		}
		mockProc.AssertExpectations(t)
	})

	t.Run("failure is recorded", func(t *testing.T) {
		mockRepo := &MockAnalysisRepository{}
		mockProc := &MockProcessingService{}
		recorded := make(chan struct{})
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: repository.StatusFailed}, nil)
		mockProc.On("ProcessAnalysis", mock.Anything, id).Return(errors.New("bucket unavailable"))
		mockRepo.On("UpdateError", mock.Anything, id, mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "bucket unavailable")
		})).Run(func(mock.Arguments) { close(recorded) }).Return(nil)

		handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, mockProc)
		_, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
		require.NoError(t, err)

		select {
		case <-recorded:
		case <-time.After(2 * time.Second):
			t.Fatal("processing failure was not recorded")
		}
	})

	t.Run("already processing", func(t *testing.T) {
		mockRepo := &MockAnalysisRepository{}
		mockProc := &MockProcessingService{}
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: repository.StatusProcessing}, nil)

		handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, mockProc)
		_, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
		assert.Equal(t, 409, statusOf(t, err))
		mockProc.AssertNotCalled(t, "ProcessAnalysis", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := &MockAnalysisRepository{}
		mockRepo.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

		handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})
		_, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
		assert.Equal(t, 404, statusOf(t, err))
	})
}

func TestGenerateStatusMessage(t *testing.T) {
	h := &AnalysisHandler{}
	tests := []struct {
		status   string
		progress int
		want     string
	}{
		{repository.StatusPending, 0, "Survey queued for processing..."},
		{repository.StatusProcessing, 0, "Loading survey..."},
		{repository.StatusProcessing, 54, "Rendering signal coverage..."},
		{repository.StatusProcessing, 70, "Locating interference sources..."},
		{repository.StatusProcessing, 95, "Finalizing results..."},
		{"archived", 0, "Unknown status"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.generateStatusMessage(tt.status, tt.progress))
	}
}

func TestGetLegend(t *testing.T) {
	resp, err := GetLegend(context.Background(), &models.LegendRequest{Width: 150, Height: 200})
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.True(t, strings.HasPrefix(string(resp.Body), "\x89PNG"))

	_, err = GetLegend(context.Background(), &models.LegendRequest{Width: 0, Height: 200})
	assert.Equal(t, 400, statusOf(t, err))
}
