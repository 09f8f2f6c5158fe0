package models

import "time"

// UnknownModel is the model name used for runs that do not declare one.
const UnknownModel = "Unknown"

// EvaluationRun is a single submission of a model's results on one task.
// Several runs may share a model name on the same task (resubmissions).
type EvaluationRun struct {
	TaskID       string             `json:"task_id" yaml:"task_id" mapstructure:"task_id" validate:"required"`
	ModelName    string             `json:"model_name" yaml:"model_name" mapstructure:"model_name" validate:"required"`
	Submitter    string             `json:"submitter" yaml:"submitter" mapstructure:"submitter"`
	SubmissionID string             `json:"submission_id" yaml:"submission_id" mapstructure:"submission_id"`
	Metrics      map[string]float64 `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	SubmittedAt  *time.Time         `json:"submitted_at,omitempty" yaml:"submitted_at,omitempty" mapstructure:"submitted_at"`
	Notes        string             `json:"notes,omitempty" yaml:"notes,omitempty" mapstructure:"notes"`
}

// MetricValue returns the named metric, or 0 when the run does not report it.
func (r EvaluationRun) MetricValue(name string) float64 {
	return r.Metrics[name]
}

// Clone returns a copy of the run that does not share its metrics map.
func (r EvaluationRun) Clone() EvaluationRun {
	if r.Metrics != nil {
		m := make(map[string]float64, len(r.Metrics))
		for k, v := range r.Metrics {
			m[k] = v
		}
		r.Metrics = m
	}
	if r.SubmittedAt != nil {
		ts := *r.SubmittedAt
		r.SubmittedAt = &ts
	}
	return r
}
