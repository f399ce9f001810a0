package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/models"
)

// TaskStore tracks analysis task state
type TaskStore interface {
	Create(ctx context.Context, task *models.AnalysisTask) error
	GetByID(ctx context.Context, id int64) (*models.AnalysisTask, error)
	MarkRunning(ctx context.Context, id int64, totalPoints int) error
	UpdateProgress(ctx context.Context, id int64, processedPoints int, progressPercent float64) error
	MarkCompleted(ctx context.Context, id int64, resultSummary string) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
}

// Runner creates analysis tasks and executes them in the background
type Runner struct {
	tasks TaskStore
	deps  Dependencies
	wg    sync.WaitGroup
}

// NewRunner creates a new task runner
func NewRunner(tasks TaskStore, deps Dependencies) *Runner {
	return &Runner{
		tasks: tasks,
		deps:  deps,
	}
}

// Submit records a new task and starts it in its own goroutine
func (r *Runner) Submit(ctx context.Context, skillName string, userID uuid.UUID, params interface{}) (*models.AnalysisTask, error) {
	if !IsKnownSkill(skillName) {
		return nil, fmt.Errorf("invalid skill name: %s", skillName)
	}

	task := &models.AnalysisTask{
		SkillName: skillName,
		UserID:    userID.String(),
		Status:    models.TaskStatusPending,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize params: %w", err)
		}
		task.ParamsJSON = string(data)
	}

	if err := r.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.Execute(context.Background(), task); err != nil {
			log.Printf("[AnalysisRunner] Task %d (%s) failed: %v", task.ID, skillName, err)
		}
	}()

	return task, nil
}

// Execute runs a task to completion and records its outcome
func (r *Runner) Execute(ctx context.Context, task *models.AnalysisTask) error {
	analyzer := GetAnalyzer(task.SkillName, r.deps)
	if analyzer == nil {
		err := fmt.Errorf("unknown skill: %s", task.SkillName)
		r.markFailed(ctx, task.ID, err)
		return err
	}

	if err := r.tasks.MarkRunning(ctx, task.ID, task.TotalPoints); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	log.Printf("[AnalysisRunner] Starting task %d (%s) for user %s", task.ID, task.SkillName, task.UserID)
	start := time.Now()

	summary, err := analyzer.Analyze(ctx, task, r.progressFunc(ctx, task.ID))
	if err != nil {
		r.markFailed(ctx, task.ID, err)
		return err
	}

	data, err := json.Marshal(summary)
	if err != nil {
		r.markFailed(ctx, task.ID, err)
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	if err := r.tasks.MarkCompleted(ctx, task.ID, string(data)); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	log.Printf("[AnalysisRunner] Task %d (%s) completed in %v", task.ID, task.SkillName, time.Since(start))
	return nil
}

// Wait blocks until every submitted task has finished
func (r *Runner) Wait() {
	r.wg.Wait()
}

// GetTask retrieves a task by ID
func (r *Runner) GetTask(ctx context.Context, id int64) (*models.AnalysisTask, error) {
	return r.tasks.GetByID(ctx, id)
}

func (r *Runner) progressFunc(ctx context.Context, taskID int64) ProgressFunc {
	return func(processed, total int) {
		percent := 0.0
		if total > 0 {
			percent = float64(processed) / float64(total) * 100.0
		}
		if err := r.tasks.UpdateProgress(ctx, taskID, processed, percent); err != nil {
			log.Printf("[AnalysisRunner] Warning: failed to update progress of task %d: %v", taskID, err)
		}
	}
}

func (r *Runner) markFailed(ctx context.Context, taskID int64, cause error) {
	if err := r.tasks.MarkFailed(ctx, taskID, cause.Error()); err != nil {
		log.Printf("[AnalysisRunner] Warning: failed to mark task %d as failed: %v", taskID, err)
	}
}
