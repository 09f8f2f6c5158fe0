// Package store loads benchmark tasks and evaluation runs from a directory
// tree and serves them to the leaderboard engine and the web layer.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	validator "github.com/go-playground/validator/v10"
	"github.com/spboyer/benchboard/internal/leaderboard"
	"github.com/spboyer/benchboard/internal/models"
	"github.com/spboyer/benchboard/internal/validation"
	"golang.org/x/sync/errgroup"
)

// ErrTaskNotFound is returned when a task ID does not match any loaded task.
var ErrTaskNotFound = errors.New("task not found")

// maxParallelLoads bounds how many run directories are read at once.
const maxParallelLoads = 8

// Options configures a FileStore.
type Options struct {
	// TasksDir holds one task definition per file.
	TasksDir string
	// RunsDir holds one sub-directory of run files per task ID.
	RunsDir string
	// Strict makes any unreadable or invalid file fail the load instead of
	// being skipped.
	Strict bool
	Logger *slog.Logger
}

// snapshot is an immutable view of the data on disk.
type snapshot struct {
	tasks []models.Task
	byID  map[string]int
	runs  map[string][]models.EvaluationRun
}

// FileStore reads tasks and runs from disk on first use and keeps them in
// memory until Reload is called.
type FileStore struct {
	opts     Options
	logger   *slog.Logger
	validate *validator.Validate

	mu     sync.RWMutex
	data   *snapshot
	loaded bool
}

// New creates a FileStore for the given directories.
func New(opts Options) *FileStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		opts:     opts,
		logger:   logger,
		validate: validation.NewValidator(),
		data:     emptySnapshot(),
	}
}

func emptySnapshot() *snapshot {
	return &snapshot{
		byID: make(map[string]int),
		runs: make(map[string][]models.EvaluationRun),
	}
}

// Reload forces a fresh read of every task and run file. On failure the
// previously loaded data is kept.
func (fs *FileStore) Reload(ctx context.Context) error {
	snap, err := fs.load(ctx)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	fs.data = snap
	fs.loaded = true
	fs.mu.Unlock()
	return nil
}

// current returns the loaded snapshot, loading it on first use.
func (fs *FileStore) current(ctx context.Context) (*snapshot, error) {
	fs.mu.RLock()
	if fs.loaded {
		snap := fs.data
		fs.mu.RUnlock()
		return snap, nil
	}
	fs.mu.RUnlock()

	if err := fs.Reload(ctx); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.data, nil
}

func (fs *FileStore) load(ctx context.Context) (*snapshot, error) {
	snap := emptySnapshot()

	tasks, err := fs.loadTasks()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	snap.tasks = tasks
	for i, t := range tasks {
		snap.byID[t.ID] = i
	}

	results := make([][]models.EvaluationRun, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, t := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runs, err := fs.loadRuns(t.ID)
			if err != nil {
				return err
			}
			results[i] = runs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, t := range tasks {
		snap.runs[t.ID] = results[i]
	}

	fs.logger.Debug("loaded benchmark data",
		"tasks_dir", fs.opts.TasksDir,
		"runs_dir", fs.opts.RunsDir,
		"tasks", len(tasks))
	return snap, nil
}

func (fs *FileStore) loadTasks() ([]models.Task, error) {
	entries, err := readDir(fs.opts.TasksDir)
	if err != nil {
		return nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var tasks []models.Task
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !IsTaskFile(e.Name()) {
			continue
		}
		path := filepath.Join(fs.opts.TasksDir, e.Name())
		task, err := fs.readTask(path)
		if err == nil {
			if prev, dup := seen[task.ID]; dup {
				err = fmt.Errorf("duplicate task_id %q (also in %s)", task.ID, prev)
			}
		}
		if err != nil {
			if err := fs.skip(path, err); err != nil {
				return nil, err
			}
			continue
		}
		seen[task.ID] = e.Name()
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (fs *FileStore) readTask(path string) (models.Task, error) {
	task, err := ReadTaskFile(path)
	if err != nil {
		return task, err
	}
	if err := fs.validate.Struct(task); err != nil {
		return task, fmt.Errorf("invalid task: %w", err)
	}
	return task, nil
}

func (fs *FileStore) loadRuns(taskID string) ([]models.EvaluationRun, error) {
	dir := filepath.Join(fs.opts.RunsDir, taskID)
	entries, err := readDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading runs for task %q: %w", taskID, err)
	}

	runs := []models.EvaluationRun{}
	for _, e := range entries {
		if e.IsDir() || !IsRunFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		run, err := fs.readRun(taskID, path)
		if err != nil {
			if err := fs.skip(path, err); err != nil {
				return nil, err
			}
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (fs *FileStore) readRun(taskID, path string) (models.EvaluationRun, error) {
	data, err := ReadDataFile(path)
	if err != nil {
		return models.EvaluationRun{}, err
	}
	run, dropped, err := decodeRun(taskID, filepath.Base(path), data)
	if err != nil {
		return run, err
	}
	if len(dropped) > 0 {
		fs.logger.Warn("ignoring non-numeric metric values", "path", path, "metrics", dropped)
	}
	if err := fs.validate.Struct(run); err != nil {
		return run, fmt.Errorf("invalid run: %w", err)
	}
	return run, nil
}

// skip logs a bad file, or turns it into an error in strict mode.
func (fs *FileStore) skip(path string, err error) error {
	if fs.opts.Strict {
		return fmt.Errorf("%s: %w", path, err)
	}
	fs.logger.Warn("skipping unreadable file", "path", path, "error", err)
	return nil
}

// readDir lists dir sorted by name. A missing or unset directory is empty.
func readDir(dir string) ([]os.DirEntry, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// ListTasks returns every task sorted by name.
func (fs *FileStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	snap, err := fs.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.listTasks(), nil
}

// GetTask returns the task with the given ID, or nil when there is none.
func (fs *FileStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	snap, err := fs.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.getTask(id), nil
}

// Task is GetTask for callers that want ErrTaskNotFound instead of nil.
func (fs *FileStore) Task(ctx context.Context, id string) (*models.Task, error) {
	task, err := fs.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListEvaluationRuns returns copies of the runs submitted for a task, in
// file name order. Unknown tasks have no runs.
func (fs *FileStore) ListEvaluationRuns(ctx context.Context, taskID string) ([]models.EvaluationRun, error) {
	snap, err := fs.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.listRuns(taskID), nil
}

// View returns the currently loaded data as a read-only view. Later
// reloads do not change it, so a computation that reads through one View
// never mixes two versions of the data.
func (fs *FileStore) View(ctx context.Context) (*View, error) {
	snap, err := fs.current(ctx)
	if err != nil {
		return nil, err
	}
	return &View{snap: snap}, nil
}

// View is a FileStore pinned to one load of the data.
type View struct {
	snap *snapshot
}

// ListTasks returns every task sorted by name.
func (v *View) ListTasks(context.Context) ([]models.Task, error) {
	return v.snap.listTasks(), nil
}

// GetTask returns the task with the given ID, or nil when there is none.
func (v *View) GetTask(_ context.Context, id string) (*models.Task, error) {
	return v.snap.getTask(id), nil
}

// ListEvaluationRuns returns copies of the runs submitted for a task.
func (v *View) ListEvaluationRuns(_ context.Context, taskID string) ([]models.EvaluationRun, error) {
	return v.snap.listRuns(taskID), nil
}

func (s *snapshot) listTasks() []models.Task {
	return slices.Clone(s.tasks)
}

func (s *snapshot) getTask(id string) *models.Task {
	i, ok := s.byID[id]
	if !ok {
		return nil
	}
	task := s.tasks[i]
	return &task
}

func (s *snapshot) listRuns(taskID string) []models.EvaluationRun {
	src := s.runs[taskID]
	out := make([]models.EvaluationRun, len(src))
	for i, r := range src {
		out[i] = r.Clone()
	}
	return out
}

// Paths returns the task and run directories this store reads.
func (fs *FileStore) Paths() (tasksDir, runsDir string) {
	return fs.opts.TasksDir, fs.opts.RunsDir
}

var (
	_ leaderboard.TaskCatalog     = (*FileStore)(nil)
	_ leaderboard.SubmissionStore = (*FileStore)(nil)
	_ leaderboard.TaskCatalog     = (*View)(nil)
	_ leaderboard.SubmissionStore = (*View)(nil)
)
