package leaderboard

import (
	"testing"

	"github.com/spboyer/benchboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accuracyTask(dir models.Direction) *models.Task {
	return &models.Task{
		ID:   "contract_qa",
		Name: "Contract QA",
		Metrics: []models.Metric{
			{Name: "accuracy", Direction: dir},
			{Name: "f1", Direction: models.DirectionMaximize},
		},
	}
}

func run(model string, metrics map[string]float64) models.EvaluationRun {
	return models.EvaluationRun{
		TaskID:       "contract_qa",
		ModelName:    model,
		Submitter:    "lab-" + model,
		SubmissionID: "sub-" + model,
		Metrics:      metrics,
	}
}

func rankedModels(entries []models.RankedEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.ModelName
	}
	return names
}

func TestRankTask_EmptyInputs(t *testing.T) {
	runs := []models.EvaluationRun{run("a", map[string]float64{"accuracy": 1})}

	t.Run("no runs", func(t *testing.T) {
		got := RankTask(accuracyTask(models.DirectionMaximize), nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("task without metrics", func(t *testing.T) {
		got := RankTask(&models.Task{ID: "bare"}, runs)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("nil task", func(t *testing.T) {
		assert.Empty(t, RankTask(nil, runs))
	})
}

func TestRankTask_OrdersByDirection(t *testing.T) {
	runs := []models.EvaluationRun{
		run("b", map[string]float64{"accuracy": 0.7, "f1": 0.99}),
		run("a", map[string]float64{"accuracy": 0.9, "f1": 0.1}),
		run("c", map[string]float64{"accuracy": 0.4}),
	}

	maxed := RankTask(accuracyTask(models.DirectionMaximize), runs)
	assert.Equal(t, []string{"a", "b", "c"}, rankedModels(maxed))
	for i, e := range maxed {
		assert.Equal(t, i+1, e.Rank)
	}

	mined := RankTask(accuracyTask(models.DirectionMinimize), runs)
	assert.Equal(t, []string{"c", "b", "a"}, rankedModels(mined))
	for i, e := range mined {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRankTask_MissingMetricCountsAsZero(t *testing.T) {
	runs := []models.EvaluationRun{
		run("negative", map[string]float64{"accuracy": -0.5}),
		run("missing", map[string]float64{"f1": 0.8}),
		run("positive", map[string]float64{"accuracy": 0.5}),
	}

	got := RankTask(accuracyTask(models.DirectionMaximize), runs)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"positive", "missing", "negative"}, rankedModels(got))
	assert.Equal(t, 2, got[1].Rank)

	got = RankTask(accuracyTask(models.DirectionMinimize), runs)
	assert.Equal(t, []string{"negative", "missing", "positive"}, rankedModels(got))
}

func TestRankTask_TiesGetConsecutiveRanks(t *testing.T) {
	runs := []models.EvaluationRun{
		run("first", map[string]float64{"accuracy": 10}),
		run("second", map[string]float64{"accuracy": 10}),
		run("third", map[string]float64{"accuracy": 7}),
	}

	got := RankTask(accuracyTask(models.DirectionMaximize), runs)
	assert.Equal(t, []string{"first", "second", "third"}, rankedModels(got))
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, 3, got[2].Rank)
}

func TestRankTask_KeepsResubmissions(t *testing.T) {
	runs := []models.EvaluationRun{
		run("a", map[string]float64{"accuracy": 0.6}),
		run("a", map[string]float64{"accuracy": 0.8}),
	}
	runs[1].SubmissionID = "sub-a-2"

	got := RankTask(accuracyTask(models.DirectionMaximize), runs)
	require.Len(t, got, 2)
	assert.Equal(t, "sub-a-2", got[0].SubmissionID)
	assert.Equal(t, "sub-a", got[1].SubmissionID)
}

func TestRankTask_DoesNotMutateInput(t *testing.T) {
	runs := []models.EvaluationRun{
		run("low", map[string]float64{"accuracy": 0.1}),
		run("high", map[string]float64{"accuracy": 0.9}),
	}

	got := RankTask(accuracyTask(models.DirectionMaximize), runs)
	got[0].Metrics["accuracy"] = 42

	assert.Equal(t, "low", runs[0].ModelName)
	assert.Equal(t, "high", runs[1].ModelName)
	assert.Equal(t, 0.9, runs[1].Metrics["accuracy"])
}
