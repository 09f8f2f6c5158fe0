// Package leaderboard ranks evaluation runs, per task and across tasks.
package leaderboard

//go:generate go tool mockgen -source=sources.go -destination=sources_mock_test.go -package=leaderboard

import (
	"context"

	"github.com/spboyer/benchboard/internal/models"
)

// TaskCatalog supplies task definitions.
type TaskCatalog interface {
	// ListTasks returns every known task.
	ListTasks(ctx context.Context) ([]models.Task, error)
	// GetTask returns the task with the given id, or nil when there is none.
	GetTask(ctx context.Context, id string) (*models.Task, error)
}

// SubmissionStore supplies the evaluation runs submitted for a task.
type SubmissionStore interface {
	ListEvaluationRuns(ctx context.Context, taskID string) ([]models.EvaluationRun, error)
}
