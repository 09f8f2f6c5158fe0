package webapi

import (
	"github.com/spboyer/benchboard/internal/models"
	"github.com/spboyer/benchboard/internal/store"
)

// TaskLeaderboardResponse is the single-task leaderboard.
type TaskLeaderboardResponse struct {
	Task             models.Task          `json:"task"`
	Leaderboard      []models.RankedEntry `json:"leaderboard"`
	TotalSubmissions int                  `json:"total_submissions"`
}

// AggregateResponse is the cross-task leaderboard for a task selection.
type AggregateResponse struct {
	TaskIDs     []string                `json:"task_ids"`
	Leaderboard []models.AggregateEntry `json:"leaderboard"`
}

// TasksResponse lists tasks with their submission counts.
type TasksResponse []store.TaskSummary

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
