package leaderboard

import "github.com/spboyer/benchboard/internal/models"

// RankTask orders a task's runs by its primary metric and numbers them
// 1..n by position. Runs that tie on the metric still get consecutive
// ranks; tie collapsing only happens in Aggregate.
//
// A run that does not report the primary metric ranks as if it scored 0.
// The returned entries hold copies of the runs.
func RankTask(task *models.Task, runs []models.EvaluationRun) []models.RankedEntry {
	metric, ok := task.PrimaryMetric()
	if !ok || len(runs) == 0 {
		return []models.RankedEntry{}
	}

	order := sortedOrder(primaryValues(runs, metric.Name), metric.Direction)
	entries := make([]models.RankedEntry, len(order))
	for pos, idx := range order {
		entries[pos] = models.RankedEntry{
			EvaluationRun: runs[idx].Clone(),
			Rank:          pos + 1,
		}
	}
	return entries
}
