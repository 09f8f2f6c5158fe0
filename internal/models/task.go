package models

// Direction says whether higher or lower metric values are better.
type Direction string

const (
	DirectionMaximize Direction = "maximize"
	DirectionMinimize Direction = "minimize"
)

// Better reports whether a ranks ahead of b under this direction.
// Equal values are never better than each other. Any direction other
// than maximize orders ascending.
func (d Direction) Better(a, b float64) bool {
	if d == DirectionMaximize {
		return a > b
	}
	return a < b
}

// Metric is a named measurement declared on a task.
type Metric struct {
	Name      string    `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Direction Direction `json:"direction" yaml:"direction" mapstructure:"direction" validate:"required,oneof=maximize minimize"`
}

// Task is a benchmark task definition loaded from the tasks directory.
// The first entry of Metrics is the primary metric used for ranking.
type Task struct {
	ID           string   `json:"task_id" yaml:"task_id" mapstructure:"task_id" validate:"required"`
	Name         string   `json:"name" yaml:"name" mapstructure:"name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Family       string   `json:"family,omitempty" yaml:"family,omitempty" mapstructure:"family"`
	DocumentType string   `json:"document_type,omitempty" yaml:"document_type,omitempty" mapstructure:"document_type"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty" mapstructure:"tags"`
	Metrics      []Metric `json:"metrics" yaml:"metrics" mapstructure:"metrics" validate:"dive"`
}

// PrimaryMetric returns the first declared metric. ok is false when the
// task declares no metrics and therefore cannot be ranked.
func (t *Task) PrimaryMetric() (m Metric, ok bool) {
	if t == nil || len(t.Metrics) == 0 {
		return Metric{}, false
	}
	return t.Metrics[0], true
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}
