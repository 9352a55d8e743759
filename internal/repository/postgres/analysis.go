package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/RMahshie/wlansurvey/internal/repository"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

// PostgresAnalysisRepository implements AnalysisRepository for PostgreSQL
type PostgresAnalysisRepository struct {
	db *sql.DB
}

// NewPostgresAnalysisRepository creates a new PostgreSQL analysis repository
func NewPostgresAnalysisRepository(db *sql.DB) repository.AnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

const analysisColumns = `id, session_id, status, progress, survey, error_message, created_at, updated_at, completed_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new analysis record
func (r *PostgresAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	survey, err := json.Marshal(analysis.Survey)
	if err != nil {
		return fmt.Errorf("failed to marshal survey: %w", err)
	}

	query := `
		INSERT INTO analyses (id, session_id, status, progress, floor_width, floor_height, survey, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.SessionID,
		analysis.Status,
		analysis.Progress,
		analysis.Survey.Floor.Width,
		analysis.Survey.Floor.Height,
		string(survey),
		analysis.CreatedAt,
		analysis.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// GetByID retrieves an analysis by ID
func (r *PostgresAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`

	analysis, err := scanAnalysis(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// GetBySessionID retrieves analyses by session ID, newest first
func (r *PostgresAnalysisRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE session_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var analysis models.Analysis
	var survey []byte
	var errorMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&analysis.ID,
		&analysis.SessionID,
		&analysis.Status,
		&analysis.Progress,
		&survey,
		&errorMsg,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
		&completedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(survey, &analysis.Survey); err != nil {
		return nil, fmt.Errorf("failed to unmarshal survey: %w", err)
	}
	if errorMsg.Valid {
		analysis.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		analysis.CompletedAt = &completedAt.Time
	}

	return &analysis, nil
}

// UpdateStatus updates the status and progress of an analysis
func (r *PostgresAnalysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE analyses
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks an analysis failed with a message
func (r *PostgresAnalysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE analyses
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreResults stores analysis results, replacing those of a previous run
func (r *PostgresAnalysisRepository) StoreResults(ctx context.Context, results *models.AnalysisResults) error {
	report, err := json.Marshal(results.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	emitters, err := json.Marshal(nonNil(results.Emitters))
	if err != nil {
		return fmt.Errorf("failed to marshal emitters: %w", err)
	}
	sources, err := json.Marshal(nonNil(results.Sources))
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	query := `
		INSERT INTO analysis_results (id, analysis_id, coverage_target, report, summary, emitters, sources, coverage_key, interference_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (analysis_id) DO UPDATE SET
			id = EXCLUDED.id,
			coverage_target = EXCLUDED.coverage_target,
			report = EXCLUDED.report,
			summary = EXCLUDED.summary,
			emitters = EXCLUDED.emitters,
			sources = EXCLUDED.sources,
			coverage_key = EXCLUDED.coverage_key,
			interference_key = EXCLUDED.interference_key,
			created_at = EXCLUDED.created_at`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.AnalysisID,
		results.CoverageTarget,
		string(report),
		results.Summary,
		string(emitters),
		string(sources),
		results.CoverageKey,
		results.InterferenceKey,
		results.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store results: %w", err)
	}
	return nil
}

// GetResults retrieves analysis results
func (r *PostgresAnalysisRepository) GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error) {
	query := `
		SELECT id, analysis_id, coverage_target, report, summary, emitters, sources, coverage_key, interference_key, created_at
		FROM analysis_results
		WHERE analysis_id = $1`

	var results models.AnalysisResults
	var coverageTarget, coverageKey, interferenceKey sql.NullString
	var report, emitters, sources []byte

	err := r.db.QueryRowContext(ctx, query, analysisID).Scan(
		&results.ID,
		&results.AnalysisID,
		&coverageTarget,
		&report,
		&results.Summary,
		&emitters,
		&sources,
		&coverageKey,
		&interferenceKey,
		&results.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("results for analysis %s: %w", analysisID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	results.CoverageTarget = coverageTarget.String
	results.CoverageKey = coverageKey.String
	results.InterferenceKey = interferenceKey.String

	if err := json.Unmarshal(report, &results.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	if err := json.Unmarshal(emitters, &results.Emitters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal emitters: %w", err)
	}
	if err := json.Unmarshal(sources, &results.Sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
	}

	return &results, nil
}

// nonNil keeps empty lists as JSON arrays rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
