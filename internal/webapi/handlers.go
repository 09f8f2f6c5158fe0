package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spboyer/benchboard/internal/leaderboard"
	"github.com/spboyer/benchboard/internal/models"
	"github.com/spboyer/benchboard/internal/store"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// DataStore is the read side of the benchmark data used by the API.
type DataStore interface {
	leaderboard.TaskCatalog
	leaderboard.SubmissionStore
	Facets(ctx context.Context) (store.Facets, error)
	Stats(ctx context.Context) (*store.Stats, error)
	SelectTaskIDs(ctx context.Context, sel store.Selection) ([]string, error)
	MatchTasks(ctx context.Context, sel store.Selection) ([]models.Task, error)
	TaskSummaries(ctx context.Context, tasks []models.Task) ([]store.TaskSummary, error)
	View(ctx context.Context) (*store.View, error)
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store   DataStore
	metrics *Metrics
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers with the given store. metrics may be nil.
func NewHandlers(ds DataStore, metrics *Metrics, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		store:   ds,
		metrics: metrics,
		logger:  logger,
	}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleTasks lists tasks sorted by name. The family, tag and doc_type
// query parameters narrow the list; all given filters must match.
func (h *Handlers) HandleTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.MatchTasks(r.Context(), SelectionFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries, err := h.store.TaskSummaries(r.Context(), tasks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TasksResponse(summaries))
}

// HandleTaskLeaderboard returns the leaderboard of a single task.
func (h *Handlers) HandleTaskLeaderboard(w http.ResponseWriter, r *http.Request) {
	resp, err := TaskLeaderboard(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// TaskLeaderboard builds the leaderboard of one task. It returns
// store.ErrTaskNotFound for unknown IDs.
func TaskLeaderboard(ctx context.Context, ds DataStore, id string) (*TaskLeaderboardResponse, error) {
	view, err := ds.View(ctx)
	if err != nil {
		return nil, err
	}
	task, err := view.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, store.ErrTaskNotFound
	}
	runs, err := view.ListEvaluationRuns(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TaskLeaderboardResponse{
		Task:             *task,
		Leaderboard:      leaderboard.RankTask(task, runs),
		TotalSubmissions: len(runs),
	}, nil
}

// HandleAggregate returns the cross-task leaderboard. Tasks are picked by
// family, then tag, then doc_type, then repeated tasks parameters, and
// default to every task.
func (h *Handlers) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	sel := SelectionFromQuery(r)
	ids, err := h.store.SelectTaskIDs(r.Context(), sel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	start := time.Now()
	board, err := AggregateView(r.Context(), h.store, ids, h.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.metrics.observeAggregate(len(ids), time.Since(start))

	writeJSON(w, http.StatusOK, AggregateResponse{TaskIDs: ids, Leaderboard: board})
}

// AggregateView ranks models across ids using a single view of the data,
// so a reload during the computation cannot mix two versions.
func AggregateView(ctx context.Context, ds DataStore, ids []string, logger *slog.Logger) ([]models.AggregateEntry, error) {
	view, err := ds.View(ctx)
	if err != nil {
		return nil, err
	}
	return leaderboard.NewAggregator(view, view, leaderboard.WithLogger(logger)).Aggregate(ctx, ids)
}

// SelectionFromQuery reads the aggregate task selection from r.
func SelectionFromQuery(r *http.Request) store.Selection {
	q := r.URL.Query()
	return store.Selection{
		Family:       q.Get("family"),
		Tag:          q.Get("tag"),
		DocumentType: q.Get("doc_type"),
		TaskIDs:      q["tasks"],
	}
}

// HandleFacets returns the available filter values.
func (h *Handlers) HandleFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.store.Facets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

// HandleStats returns data set statistics.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/tasks", h.HandleTasks)
	mux.HandleFunc("GET /api/tasks/{id}/leaderboard", h.HandleTaskLeaderboard)
	mux.HandleFunc("GET /api/task/{id}/leaderboard", h.HandleTaskLeaderboard)
	mux.HandleFunc("GET /api/aggregate", h.HandleAggregate)
	mux.HandleFunc("GET /api/facets", h.HandleFacets)
	mux.HandleFunc("GET /api/stats", h.HandleStats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
