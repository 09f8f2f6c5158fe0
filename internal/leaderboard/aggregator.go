package leaderboard

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spboyer/benchboard/internal/metrics"
	"github.com/spboyer/benchboard/internal/models"
)

// Aggregator builds cross-task leaderboards from a task catalog and a
// submission store.
type Aggregator struct {
	catalog TaskCatalog
	runs    SubmissionStore
	logger  *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used to report skipped tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates an Aggregator reading tasks from catalog and runs
// from runs.
func NewAggregator(catalog TaskCatalog, runs SubmissionStore, opts ...Option) *Aggregator {
	a := &Aggregator{
		catalog: catalog,
		runs:    runs,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate ranks models across the given tasks.
//
// Ids that do not resolve to a task, tasks without metrics and tasks
// without runs are skipped. Only models with at least one run on every
// remaining task are ranked; their per-task ranks are computed among
// themselves with ties sharing a rank, and the leaderboard is ordered by
// mean per-task rank, lowest first.
//
// The returned error is non-nil only when the catalog or the store fails.
func (a *Aggregator) Aggregate(ctx context.Context, taskIDs []string) ([]models.AggregateEntry, error) {
	t := newTally()
	seen := make(map[string]bool, len(taskIDs))

	for _, id := range taskIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		task, err := a.catalog.GetTask(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("looking up task %q: %w", id, err)
		}
		if task == nil {
			a.logger.Debug("skipping unknown task", "task_id", id)
			continue
		}
		metric, ok := task.PrimaryMetric()
		if !ok {
			a.logger.Debug("skipping task without metrics", "task_id", id)
			continue
		}

		runs, err := a.runs.ListEvaluationRuns(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading runs for task %q: %w", id, err)
		}
		if len(runs) == 0 {
			a.logger.Debug("skipping task without runs", "task_id", id)
			continue
		}

		t.addTask(task, metric, runs)
	}

	eligible := t.eligible()
	rerank(eligible)
	board := summarize(eligible, t.resolved)

	a.logger.Debug("aggregate leaderboard built",
		"requested", len(taskIDs),
		"resolved", t.resolved,
		"models", len(t.order),
		"eligible", len(board))
	return board, nil
}

// modelTally accumulates one model's contributions across tasks.
type modelTally struct {
	model       string
	normalized  []float64
	raw         []float64
	tasks       map[string]struct{}
	submitters  []string
	submissions map[string]struct{}
	runs        []models.TaskContribution
}

func (m *modelTally) addSubmitter(s string) {
	if s == "" || slices.Contains(m.submitters, s) {
		return
	}
	m.submitters = append(m.submitters, s)
}

type tally struct {
	resolved int
	order    []string
	models   map[string]*modelTally
}

func newTally() *tally {
	return &tally{models: make(map[string]*modelTally)}
}

func (t *tally) model(name string) *modelTally {
	if m, ok := t.models[name]; ok {
		return m
	}
	m := &modelTally{
		model:       name,
		tasks:       make(map[string]struct{}),
		submissions: make(map[string]struct{}),
	}
	t.models[name] = m
	t.order = append(t.order, name)
	return m
}

// addTask normalizes a task's runs and credits them to their models. The
// ranks recorded here cover every run of the task and are replaced once
// the eligible models are known.
func (t *tally) addTask(task *models.Task, metric models.Metric, runs []models.EvaluationRun) {
	t.resolved++

	values := primaryValues(runs, metric.Name)
	lo, hi := metrics.MinMax(values)
	provisional := positionRanks(sortedOrder(values, metric.Direction))

	for i, run := range runs {
		name := run.ModelName
		if name == "" {
			name = models.UnknownModel
		}
		score := values[i]
		normalized := normalize(score, lo, hi, metric.Direction)

		m := t.model(name)
		m.normalized = append(m.normalized, normalized)
		m.raw = append(m.raw, score)
		m.tasks[task.ID] = struct{}{}
		m.addSubmitter(run.Submitter)
		if run.SubmissionID != "" {
			m.submissions[run.SubmissionID] = struct{}{}
		}
		m.runs = append(m.runs, models.TaskContribution{
			TaskID:          task.ID,
			TaskName:        task.Name,
			Metric:          metric.Name,
			Direction:       metric.Direction,
			Score:           score,
			NormalizedScore: normalized,
			Rank:            provisional[i],
			Submitter:       run.Submitter,
			SubmissionID:    run.SubmissionID,
		})
	}
}

// eligible returns the models that contributed to every resolved task, in
// first-seen order.
func (t *tally) eligible() []*modelTally {
	if t.resolved == 0 {
		return nil
	}
	var out []*modelTally
	for _, name := range t.order {
		if m := t.models[name]; len(m.tasks) == t.resolved {
			out = append(out, m)
		}
	}
	return out
}

// rerank recomputes every per-task rank among the eligible models only,
// with equal scores sharing a rank.
func rerank(eligible []*modelTally) {
	byTask := make(map[string][]*models.TaskContribution)
	var taskOrder []string
	for _, m := range eligible {
		for i := range m.runs {
			c := &m.runs[i]
			if _, ok := byTask[c.TaskID]; !ok {
				taskOrder = append(taskOrder, c.TaskID)
			}
			byTask[c.TaskID] = append(byTask[c.TaskID], c)
		}
	}

	for _, id := range taskOrder {
		group := byTask[id]
		values := make([]float64, len(group))
		for i, c := range group {
			values[i] = c.Score
		}
		ranks := competitionRanks(values, sortedOrder(values, group[0].Direction))
		for i, c := range group {
			c.Rank = ranks[i]
		}
	}
}

func summarize(eligible []*modelTally, resolved int) []models.AggregateEntry {
	board := make([]models.AggregateEntry, 0, len(eligible))
	for _, m := range eligible {
		ranks := make([]int, len(m.runs))
		wins := 0
		for i, c := range m.runs {
			ranks[i] = c.Rank
			if c.Rank == 1 {
				wins++
			}
		}
		board = append(board, models.AggregateEntry{
			Model:              m.model,
			Submitter:          strings.Join(m.submitters, ", "),
			AvgRawMetric:       metrics.Mean(m.raw),
			AvgNormalizedScore: metrics.Mean(m.normalized),
			Wins:               wins,
			AvgRank:            metrics.MeanInt(ranks),
			NumTasks:           len(m.tasks),
			TotalTasks:         resolved,
			NumSubmissions:     len(m.submissions),
			Runs:               m.runs,
		})
	}

	slices.SortStableFunc(board, func(a, b models.AggregateEntry) int {
		return cmp.Compare(a.AvgRank, b.AvgRank)
	})
	for i := range board {
		board[i].Rank = i + 1
	}
	return board
}
