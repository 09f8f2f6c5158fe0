package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spboyer/benchboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root     string
	tasksDir string
	runsDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:     root,
		tasksDir: filepath.Join(root, "tasks"),
		runsDir:  filepath.Join(root, "eval_runs"),
	}
	require.NoError(t, os.MkdirAll(f.tasksDir, 0o755))
	require.NoError(t, os.MkdirAll(f.runsDir, 0o755))
	return f
}

func (f *fixture) writeTask(t *testing.T, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.tasksDir, name), []byte(body), 0o644))
}

func (f *fixture) writeRun(t *testing.T, taskID, name string, body []byte) {
	t.Helper()
	dir := filepath.Join(f.runsDir, taskID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), body, 0o644))
}

func (f *fixture) store(strict bool) *FileStore {
	return New(Options{TasksDir: f.tasksDir, RunsDir: f.runsDir, Strict: strict})
}

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const qaTask = `{
  "task_id": "contract_qa",
  "name": "Contract QA",
  "family": "qa",
  "document_type": "contract",
  "tags": ["legal", "english"],
  "metrics": [{"name": "accuracy", "direction": "maximize"}]
}`

const latencyTask = `task_id: invoice_latency
name: Invoice Latency
family: extraction
document_type: invoice
tags: [finance]
metrics:
  - name: latency_ms
    direction: minimize
`

func seed(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.writeTask(t, "contract_qa.json", qaTask)
	f.writeTask(t, "invoice_latency.yaml", latencyTask)
	f.writeTask(t, "README.md", "not a task")

	f.writeRun(t, "contract_qa", "a.json", []byte(`{"model_name": "alpha", "submitter": "lab-a", "metrics": {"accuracy": 0.9}}`))
	f.writeRun(t, "contract_qa", "b.json.gz", gzipBytes(t, `{"model_name": "beta", "submission_id": "sub-b", "metrics": {"accuracy": "0.8"}}`))
	f.writeRun(t, "contract_qa", "c.json.zst", zstdBytes(t, `{"metrics": {"accuracy": 0.7}, "submitted_at": "2024-03-01T10:00:00Z"}`))
	f.writeRun(t, "invoice_latency", "a.json", []byte(`{"task_id": "invoice_latency", "model_name": "alpha", "metrics": {"latency_ms": 120}}`))
	return f
}

func TestFileStore_ListTasksSortedByName(t *testing.T) {
	s := seed(t).store(false)

	tasks, err := s.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Contract QA", tasks[0].Name)
	assert.Equal(t, "Invoice Latency", tasks[1].Name)
	assert.Equal(t, models.DirectionMinimize, tasks[1].Metrics[0].Direction)
	assert.Equal(t, []string{"finance"}, tasks[1].Tags)
}

func TestFileStore_GetTask(t *testing.T) {
	s := seed(t).store(false)
	ctx := context.Background()

	task, err := s.GetTask(ctx, "contract_qa")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "qa", task.Family)

	task, err = s.GetTask(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, task)

	_, err = s.Task(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestFileStore_ListEvaluationRuns(t *testing.T) {
	s := seed(t).store(false)

	runs, err := s.ListEvaluationRuns(context.Background(), "contract_qa")
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, "alpha", runs[0].ModelName)
	assert.Equal(t, "contract_qa", runs[0].TaskID)
	assert.Equal(t, "a", runs[0].SubmissionID)

	assert.Equal(t, "beta", runs[1].ModelName)
	assert.Equal(t, "sub-b", runs[1].SubmissionID)
	assert.InDelta(t, 0.8, runs[1].MetricValue("accuracy"), 1e-9)

	assert.Equal(t, models.UnknownModel, runs[2].ModelName)
	assert.Equal(t, "c", runs[2].SubmissionID)
	require.NotNil(t, runs[2].SubmittedAt)
	assert.Equal(t, 2024, runs[2].SubmittedAt.Year())
}

func TestFileStore_RunsAreCopies(t *testing.T) {
	s := seed(t).store(false)
	ctx := context.Background()

	runs, err := s.ListEvaluationRuns(ctx, "contract_qa")
	require.NoError(t, err)
	runs[0].Metrics["accuracy"] = -1

	again, err := s.ListEvaluationRuns(ctx, "contract_qa")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, again[0].MetricValue("accuracy"), 1e-9)
}

func TestFileStore_UnknownTaskHasNoRuns(t *testing.T) {
	s := seed(t).store(false)
	runs, err := s.ListEvaluationRuns(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFileStore_SkipsInvalidFiles(t *testing.T) {
	f := seed(t)
	f.writeTask(t, "broken.json", `{"task_id": `)
	f.writeTask(t, "nodirection.json", `{"task_id": "x", "name": "X", "metrics": [{"name": "m", "direction": "up"}]}`)
	f.writeRun(t, "contract_qa", "z.json", []byte(`not json`))

	s := f.store(false)
	ctx := context.Background()
	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	runs, err := s.ListEvaluationRuns(ctx, "contract_qa")
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestFileStore_StrictFailsOnInvalidFile(t *testing.T) {
	f := seed(t)
	f.writeRun(t, "contract_qa", "z.json", []byte(`not json`))

	_, err := f.store(true).ListTasks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "z.json")
}

func TestFileStore_DuplicateTaskIDSkipped(t *testing.T) {
	f := seed(t)
	f.writeTask(t, "zz_copy.json", qaTask)

	tasks, err := f.store(false).ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestFileStore_MissingDirectories(t *testing.T) {
	root := t.TempDir()
	s := New(Options{TasksDir: filepath.Join(root, "nope"), RunsDir: filepath.Join(root, "nada")})

	tasks, err := s.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFileStore_Reload(t *testing.T) {
	f := seed(t)
	s := f.store(false)
	ctx := context.Background()

	runs, err := s.ListEvaluationRuns(ctx, "invoice_latency")
	require.NoError(t, err)
	require.Len(t, runs, 1)

	f.writeRun(t, "invoice_latency", "b.json", []byte(`{"model_name": "beta", "metrics": {"latency_ms": 90}}`))

	runs, err = s.ListEvaluationRuns(ctx, "invoice_latency")
	require.NoError(t, err)
	assert.Len(t, runs, 1, "data is cached until Reload")

	require.NoError(t, s.Reload(ctx))
	runs, err = s.ListEvaluationRuns(ctx, "invoice_latency")
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestFileStore_FailedReloadKeepsData(t *testing.T) {
	f := seed(t)
	s := f.store(true)
	ctx := context.Background()
	require.NoError(t, s.Reload(ctx))

	f.writeTask(t, "broken.json", `{`)
	require.Error(t, s.Reload(ctx))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestFileStore_NonNumericMetricKeepsRun(t *testing.T) {
	f := seed(t)
	f.writeRun(t, "contract_qa", "d.json", []byte(`{"model_name": "delta", "metrics": {"accuracy": 0.95, "status": "n/a", "flags": [1, 2]}}`))

	for _, strict := range []bool{false, true} {
		runs, err := f.store(strict).ListEvaluationRuns(context.Background(), "contract_qa")
		require.NoError(t, err, "strict=%v", strict)
		require.Len(t, runs, 4, "strict=%v", strict)

		var delta *models.EvaluationRun
		for i := range runs {
			if runs[i].ModelName == "delta" {
				delta = &runs[i]
			}
		}
		require.NotNil(t, delta, "strict=%v", strict)
		assert.Equal(t, map[string]float64{"accuracy": 0.95}, delta.Metrics)
	}
}

func TestNumericMetrics(t *testing.T) {
	got, dropped := numericMetrics(map[string]any{
		"f1":      0.5,
		"count":   3,
		"text":    " 0.25 ",
		"status":  "n/a",
		"passed":  true,
		"missing": nil,
	})
	assert.Equal(t, map[string]float64{"f1": 0.5, "count": 3, "text": 0.25}, got)
	assert.Equal(t, []string{"missing", "passed", "status"}, dropped)
}

func TestFileStore_ViewIgnoresLaterReloads(t *testing.T) {
	f := seed(t)
	s := f.store(false)
	ctx := context.Background()

	view, err := s.View(ctx)
	require.NoError(t, err)

	f.writeRun(t, "contract_qa", "d.json", []byte(`{"model_name": "delta", "metrics": {"accuracy": 0.99}}`))
	require.NoError(t, os.Remove(filepath.Join(f.tasksDir, "invoice_latency.yaml")))
	require.NoError(t, s.Reload(ctx))

	runs, err := s.ListEvaluationRuns(ctx, "contract_qa")
	require.NoError(t, err)
	assert.Len(t, runs, 4)

	runs, err = view.ListEvaluationRuns(ctx, "contract_qa")
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	task, err := view.GetTask(ctx, "invoice_latency")
	require.NoError(t, err)
	require.NotNil(t, task)
	missing, err := s.GetTask(ctx, "invoice_latency")
	require.NoError(t, err)
	assert.Nil(t, missing)

	tasks, err := view.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
