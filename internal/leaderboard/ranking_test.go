package leaderboard

import (
	"testing"

	"github.com/spboyer/benchboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCompetitionRanks(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		dir    models.Direction
		want   []int
	}{
		{"tie at top", []float64{10, 10, 7}, models.DirectionMaximize, []int{1, 1, 3}},
		{"unsorted input", []float64{7, 10, 10}, models.DirectionMaximize, []int{3, 1, 1}},
		{"minimize pairs", []float64{5, 3, 9, 3, 5}, models.DirectionMinimize, []int{3, 1, 5, 1, 3}},
		{"all tied", []float64{2, 2, 2}, models.DirectionMaximize, []int{1, 1, 1}},
		{"no ties", []float64{1, 3, 2}, models.DirectionMaximize, []int{3, 1, 2}},
		{"empty", nil, models.DirectionMaximize, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := competitionRanks(tt.values, sortedOrder(tt.values, tt.dir))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositionRanksDoNotCollapseTies(t *testing.T) {
	values := []float64{10, 10, 7}
	assert.Equal(t, []int{1, 2, 3}, positionRanks(sortedOrder(values, models.DirectionMaximize)))
}

func TestSortedOrderIsStable(t *testing.T) {
	values := []float64{1, 5, 1, 5}
	assert.Equal(t, []int{1, 3, 0, 2}, sortedOrder(values, models.DirectionMaximize))
	assert.Equal(t, []int{0, 2, 1, 3}, sortedOrder(values, models.DirectionMinimize))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		lo, hi float64
		dir    models.Direction
		want   float64
	}{
		{"maximize best", 90, 50, 90, models.DirectionMaximize, 1},
		{"maximize worst", 50, 50, 90, models.DirectionMaximize, 0},
		{"maximize middle", 70, 50, 90, models.DirectionMaximize, 0.5},
		{"minimize best", 50, 50, 90, models.DirectionMinimize, 1},
		{"minimize worst", 90, 50, 90, models.DirectionMinimize, 0},
		{"minimize quarter", 80, 50, 90, models.DirectionMinimize, 0.25},
		{"no spread", 3, 3, 3, models.DirectionMaximize, 1},
		{"no spread minimize", 3, 3, 3, models.DirectionMinimize, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, normalize(tt.score, tt.lo, tt.hi, tt.dir), 1e-9)
		})
	}
}
