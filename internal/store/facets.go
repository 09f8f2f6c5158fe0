package store

import (
	"context"
	"sort"

	"github.com/spboyer/benchboard/internal/models"
)

// featuredTaskCount is how many tasks Stats reports as featured.
const featuredTaskCount = 3

// Facets lists the distinct filter values found across all tasks.
type Facets struct {
	Tags          []string `json:"tags"`
	Families      []string `json:"families"`
	DocumentTypes []string `json:"document_types"`
}

// TaskSummary is a task together with how many runs were submitted for it.
type TaskSummary struct {
	models.Task
	SubmissionCount int `json:"submission_count"`
}

// Stats summarizes the whole data set.
type Stats struct {
	TaskCount        int           `json:"task_count"`
	TotalSubmissions int           `json:"total_submissions"`
	UniqueModels     int           `json:"unique_models"`
	Featured         []TaskSummary `json:"featured_tasks"`
}

// Selection picks the tasks of an aggregate leaderboard. The first
// non-empty of Family, Tag and DocumentType wins; otherwise TaskIDs is used,
// and an empty selection means every task.
type Selection struct {
	Family       string
	Tag          string
	DocumentType string
	TaskIDs      []string
}

// Facets returns the sorted distinct tags, families and document types.
func (fs *FileStore) Facets(ctx context.Context) (Facets, error) {
	snap, err := fs.current(ctx)
	if err != nil {
		return Facets{}, err
	}
	tags := map[string]struct{}{}
	families := map[string]struct{}{}
	docTypes := map[string]struct{}{}
	for _, t := range snap.tasks {
		for _, tag := range t.Tags {
			tags[tag] = struct{}{}
		}
		if t.Family != "" {
			families[t.Family] = struct{}{}
		}
		if t.DocumentType != "" {
			docTypes[t.DocumentType] = struct{}{}
		}
	}
	return Facets{
		Tags:          sortedKeys(tags),
		Families:      sortedKeys(families),
		DocumentTypes: sortedKeys(docTypes),
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TasksByFamily returns the tasks of one family, sorted by name.
func (fs *FileStore) TasksByFamily(ctx context.Context, family string) ([]models.Task, error) {
	return fs.filterTasks(ctx, func(t models.Task) bool { return t.Family == family })
}

// TasksByTag returns the tasks carrying tag, sorted by name.
func (fs *FileStore) TasksByTag(ctx context.Context, tag string) ([]models.Task, error) {
	return fs.filterTasks(ctx, func(t models.Task) bool { return t.HasTag(tag) })
}

// TasksByDocumentType returns the tasks of one document type, sorted by name.
func (fs *FileStore) TasksByDocumentType(ctx context.Context, docType string) ([]models.Task, error) {
	return fs.filterTasks(ctx, func(t models.Task) bool { return t.DocumentType == docType })
}

func (fs *FileStore) filterTasks(ctx context.Context, keep func(models.Task) bool) ([]models.Task, error) {
	snap, err := fs.current(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Task{}
	for _, t := range snap.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// MatchTasks returns the tasks matching every non-empty filter field of
// sel, sorted by name. TaskIDs is ignored.
func (fs *FileStore) MatchTasks(ctx context.Context, sel Selection) ([]models.Task, error) {
	return fs.filterTasks(ctx, func(t models.Task) bool {
		return (sel.Family == "" || t.Family == sel.Family) &&
			(sel.Tag == "" || t.HasTag(sel.Tag)) &&
			(sel.DocumentType == "" || t.DocumentType == sel.DocumentType)
	})
}

// SelectTaskIDs resolves a Selection to task IDs.
func (fs *FileStore) SelectTaskIDs(ctx context.Context, sel Selection) ([]string, error) {
	var (
		tasks []models.Task
		err   error
	)
	switch {
	case sel.Family != "":
		tasks, err = fs.TasksByFamily(ctx, sel.Family)
	case sel.Tag != "":
		tasks, err = fs.TasksByTag(ctx, sel.Tag)
	case sel.DocumentType != "":
		tasks, err = fs.TasksByDocumentType(ctx, sel.DocumentType)
	case len(sel.TaskIDs) > 0:
		return append([]string(nil), sel.TaskIDs...), nil
	default:
		tasks, err = fs.ListTasks(ctx)
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids, nil
}

// TaskSummaries pairs tasks with their submission counts.
func (fs *FileStore) TaskSummaries(ctx context.Context, tasks []models.Task) ([]TaskSummary, error) {
	snap, err := fs.current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TaskSummary, len(tasks))
	for i, t := range tasks {
		out[i] = TaskSummary{Task: t, SubmissionCount: len(snap.runs[t.ID])}
	}
	return out, nil
}

// Stats counts tasks, submissions and distinct models, and picks the tasks
// with the most submissions as featured.
func (fs *FileStore) Stats(ctx context.Context) (*Stats, error) {
	snap, err := fs.current(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TaskCount: len(snap.tasks)}
	modelSet := make(map[string]struct{})
	summaries := make([]TaskSummary, len(snap.tasks))
	for i, t := range snap.tasks {
		runs := snap.runs[t.ID]
		stats.TotalSubmissions += len(runs)
		for _, r := range runs {
			modelSet[r.ModelName] = struct{}{}
		}
		summaries[i] = TaskSummary{Task: t, SubmissionCount: len(runs)}
	}
	stats.UniqueModels = len(modelSet)

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].SubmissionCount > summaries[j].SubmissionCount
	})
	if len(summaries) > featuredTaskCount {
		summaries = summaries[:featuredTaskCount]
	}
	stats.Featured = summaries
	return stats, nil
}
