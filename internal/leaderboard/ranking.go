package leaderboard

import (
	"sort"

	"github.com/spboyer/benchboard/internal/models"
)

// primaryValues returns each run's value for metric, defaulting to 0.
func primaryValues(runs []models.EvaluationRun, metric string) []float64 {
	values := make([]float64, len(runs))
	for i, r := range runs {
		values[i] = r.MetricValue(metric)
	}
	return values
}

// sortedOrder returns the indexes of values ordered best first. Equal
// values keep their input order.
func sortedOrder(values []float64, dir models.Direction) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dir.Better(values[order[a]], values[order[b]])
	})
	return order
}

// competitionRanks assigns "1,1,3" style ranks to values visited in the
// given order. The result is indexed like values.
func competitionRanks(values []float64, order []int) []int {
	ranks := make([]int, len(values))
	for pos, idx := range order {
		if pos > 0 && values[idx] == values[order[pos-1]] {
			ranks[idx] = ranks[order[pos-1]]
			continue
		}
		ranks[idx] = pos + 1
	}
	return ranks
}

// positionRanks assigns ranks by sorted position without collapsing ties.
// The result is indexed like the values order was built from.
func positionRanks(order []int) []int {
	ranks := make([]int, len(order))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// normalize maps score into [0,1] relative to the task's spread, where 1
// is best. A task with no spread normalizes every score to 1.
func normalize(score, lo, hi float64, dir models.Direction) float64 {
	if hi <= lo {
		return 1.0
	}
	if dir == models.DirectionMaximize {
		return (score - lo) / (hi - lo)
	}
	return (hi - score) / (hi - lo)
}
