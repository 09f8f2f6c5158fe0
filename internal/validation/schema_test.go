package validation

import (
	"strings"
	"testing"

	"github.com/spboyer/benchboard/internal/models"
	"github.com/stretchr/testify/require"
)

const validTaskJSON = `{
  "task_id": "contract_qa",
  "name": "Contract QA",
  "family": "qa",
  "tags": ["legal"],
  "metrics": [{"name": "accuracy", "direction": "maximize"}]
}`

const validTaskYAML = `task_id: invoice_latency
name: Invoice latency
metrics:
  - name: latency_ms
    direction: minimize
`

const invalidTaskYAML = `name: Missing id
metrics:
  - name: accuracy
    direction: sideways
`

const validRunJSON = `{
  "task_id": "contract_qa",
  "model_name": "gpt-x",
  "submitter": "lab",
  "submission_id": "sub-1",
  "metrics": {"accuracy": 0.91, "f1": "0.88"}
}`

const validRunYAML = `model_name: gpt-x
submitted_at: 2024-03-01T10:00:00Z
metrics:
  accuracy: 1
`

func TestValidateTaskBytes_Valid(t *testing.T) {
	require.Empty(t, ValidateTaskBytes([]byte(validTaskJSON)), "JSON task should have no errors")
	require.Empty(t, ValidateTaskBytes([]byte(validTaskYAML)), "YAML task should have no errors")
}

func TestValidateTaskBytes_Invalid(t *testing.T) {
	errs := ValidateTaskBytes([]byte(invalidTaskYAML))
	require.NotEmpty(t, errs, "invalid task should have errors")

	joined := joinErrs(errs)
	require.Contains(t, joined, "task_id")
	require.Contains(t, joined, "/metrics/0/direction")
}

func TestValidateTaskBytes_ParseError(t *testing.T) {
	errs := ValidateTaskBytes([]byte("{not json"))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "parse error")
}

func TestValidateTaskBytes_Empty(t *testing.T) {
	require.NotEmpty(t, ValidateTaskBytes(nil))
}

func TestValidateRunBytes_Valid(t *testing.T) {
	require.Empty(t, ValidateRunBytes([]byte(validRunJSON)))
	require.Empty(t, ValidateRunBytes([]byte(validRunYAML)))
}

func TestValidateRunBytes_Invalid(t *testing.T) {
	errs := ValidateRunBytes([]byte(`{"model_name": "gpt-x", "metrics": {"accuracy": true}}`))
	require.NotEmpty(t, errs)
	require.Contains(t, joinErrs(errs), "/metrics/accuracy")

	errs = ValidateRunBytes([]byte(`{"model_name": "gpt-x"}`))
	require.Contains(t, joinErrs(errs), "metrics")
}

func TestNewValidator_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Struct(models.Task{
		Metrics: []models.Metric{{Name: "accuracy", Direction: "up"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "task_id")
	require.Contains(t, err.Error(), "direction")

	require.NoError(t, v.Struct(models.Task{
		ID:      "t1",
		Metrics: []models.Metric{{Name: "accuracy", Direction: models.DirectionMinimize}},
	}))
}

func joinErrs(errs []string) string {
	return strings.Join(errs, "\n")
}
