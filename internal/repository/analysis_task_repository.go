package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/records-timeline/internal/models"
)

const taskColumns = `id, skill_name, user_id, status, progress_percent,
	COALESCE(params_json, ''), total_points, processed_points,
	COALESCE(result_summary, ''), COALESCE(error_message, ''),
	created_at, started_at, completed_at`

// AnalysisTaskRepository handles database operations for analysis tasks
type AnalysisTaskRepository struct {
	db *sql.DB
}

// NewAnalysisTaskRepository creates a new analysis task repository
func NewAnalysisTaskRepository(db *sql.DB) *AnalysisTaskRepository {
	return &AnalysisTaskRepository{db: db}
}

// Create creates a new analysis task
func (r *AnalysisTaskRepository) Create(ctx context.Context, task *models.AnalysisTask) error {
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_tasks (skill_name, user_id, status, progress_percent, params_json, total_points)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		task.SkillName,
		task.UserID,
		task.Status,
		task.ProgressPercent,
		task.ParamsJSON,
		task.TotalPoints,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	return nil
}

// GetByID retrieves an analysis task by ID
func (r *AnalysisTaskRepository) GetByID(ctx context.Context, id int64) (*models.AnalysisTask, error) {
	task := &models.AnalysisTask{}
	err := r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM analysis_tasks WHERE id = ?", id).Scan(
		&task.ID,
		&task.SkillName,
		&task.UserID,
		&task.Status,
		&task.ProgressPercent,
		&task.ParamsJSON,
		&task.TotalPoints,
		&task.ProcessedPoints,
		&task.ResultSummary,
		&task.ErrorMessage,
		&task.CreatedAt,
		&task.StartedAt,
		&task.CompletedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis task: %w", err)
	}

	return task, nil
}

// MarkRunning moves a task to running and records how much work it has
func (r *AnalysisTaskRepository) MarkRunning(ctx context.Context, id int64, totalPoints int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE analysis_tasks
		SET status = ?, total_points = ?, started_at = ?
		WHERE id = ?
	`, models.TaskStatusRunning, totalPoints, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark task running: %w", err)
	}
	return nil
}

// UpdateProgress updates task progress
func (r *AnalysisTaskRepository) UpdateProgress(ctx context.Context, id int64, processedPoints int, progressPercent float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE analysis_tasks
		SET processed_points = ?, progress_percent = ?
		WHERE id = ?
	`, processedPoints, progressPercent, id)
	if err != nil {
		return fmt.Errorf("failed to update task progress: %w", err)
	}
	return nil
}

// MarkCompleted finishes a task with its result summary
func (r *AnalysisTaskRepository) MarkCompleted(ctx context.Context, id int64, resultSummary string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE analysis_tasks
		SET status = ?, progress_percent = 100, result_summary = ?, completed_at = ?
		WHERE id = ?
	`, models.TaskStatusCompleted, resultSummary, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark task completed: %w", err)
	}
	return nil
}

// MarkFailed finishes a task with an error message
func (r *AnalysisTaskRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE analysis_tasks
		SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`, models.TaskStatusFailed, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark task failed: %w", err)
	}
	return nil
}
