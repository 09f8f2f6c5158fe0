package models

// RankedEntry is a run placed on a single-task leaderboard.
type RankedEntry struct {
	EvaluationRun
	Rank int `json:"rank"`
}

// TaskContribution is one model's result on one task inside an
// aggregate leaderboard entry.
type TaskContribution struct {
	TaskID          string    `json:"task_id"`
	TaskName        string    `json:"task_name"`
	Metric          string    `json:"metric"`
	Direction       Direction `json:"direction"`
	Score           float64   `json:"score"`
	NormalizedScore float64   `json:"normalized_score"`
	Rank            int       `json:"rank"`
	Submitter       string    `json:"submitter,omitempty"`
	SubmissionID    string    `json:"submission_id,omitempty"`
}

// AggregateEntry is a model's row on a cross-task leaderboard.
type AggregateEntry struct {
	Model              string             `json:"model_name"`
	Submitter          string             `json:"submitter"`
	AvgRawMetric       float64            `json:"avg_raw_metric"`
	AvgNormalizedScore float64            `json:"avg_score"`
	Wins               int                `json:"wins"`
	AvgRank            float64            `json:"avg_rank"`
	NumTasks           int                `json:"task_count"`
	TotalTasks         int                `json:"total_tasks"`
	NumSubmissions     int                `json:"num_submissions"`
	Runs               []TaskContribution `json:"runs"`
	Rank               int                `json:"rank"`
}
