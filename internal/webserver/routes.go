package webserver

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spboyer/benchboard/internal/models"
	"github.com/spboyer/benchboard/internal/store"
	"github.com/spboyer/benchboard/internal/webapi"
)

// registerRoutes sets up API, metrics and page routes on the given mux.
func (s *Server) registerRoutes(mux *http.ServeMux, api *webapi.Handlers) {
	webapi.RegisterRoutes(mux, api)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /tasks", s.handleTasks)
	mux.HandleFunc("GET /task/{id}", s.handleTask)
	mux.HandleFunc("GET /aggregate", s.handleAggregate)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("serving page", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, http.StatusOK, "index", indexPage{Stats: stats})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := webapi.SelectionFromQuery(r)

	tasks, err := s.store.MatchTasks(ctx, filter)
	if err != nil {
		s.fail(w, err)
		return
	}
	summaries, err := s.store.TaskSummaries(ctx, tasks)
	if err != nil {
		s.fail(w, err)
		return
	}
	facets, err := s.store.Facets(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, http.StatusOK, "tasks", tasksPage{Tasks: summaries, Facets: facets, Filter: filter})
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	resp, err := webapi.TaskLeaderboard(r.Context(), s.store, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		s.fail(w, err)
		return
	}

	desc, err := renderMarkdown(resp.Task.Description)
	if err != nil {
		s.logger.Warn("rendering task description", "task_id", resp.Task.ID, "error", err)
	}
	page := taskPage{
		Task:             resp.Task,
		Description:      desc,
		Leaderboard:      resp.Leaderboard,
		TotalSubmissions: resp.TotalSubmissions,
	}
	if m, ok := resp.Task.PrimaryMetric(); ok {
		page.Metric = &m
	}
	s.render(w, http.StatusOK, "task", page)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sel := webapi.SelectionFromQuery(r)

	ids, err := s.store.SelectTaskIDs(ctx, sel)
	if err != nil {
		s.fail(w, err)
		return
	}
	board, err := webapi.AggregateView(ctx, s.store, ids, s.logger)
	if err != nil {
		s.fail(w, err)
		return
	}
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}
	facets, err := s.store.Facets(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}

	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	var selectedTasks []models.Task
	for _, t := range tasks {
		if selected[t.ID] {
			selectedTasks = append(selectedTasks, t)
		}
	}

	s.render(w, http.StatusOK, "aggregate", aggregatePage{
		Tasks:         tasks,
		Facets:        facets,
		Selection:     sel,
		Selected:      selected,
		SelectedTasks: selectedTasks,
		Leaderboard:   board,
	})
}
