package webserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/spboyer/benchboard/internal/models"
	"github.com/spboyer/benchboard/internal/store"
	"github.com/yuin/goldmark"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

var printer = message.NewPrinter(language.English)

var funcs = template.FuncMap{
	"score": func(v float64) string { return printer.Sprintf("%.3f", v) },
}

// loadPages parses every page template together with the shared layout.
func loadPages() (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{"index", "tasks", "task", "aggregate"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// renderMarkdown converts a task description to HTML.
func renderMarkdown(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec
}

type indexPage struct {
	Stats *store.Stats
}

type tasksPage struct {
	Tasks  []store.TaskSummary
	Facets store.Facets
	Filter store.Selection
}

type taskPage struct {
	Task             models.Task
	Description      template.HTML
	Metric           *models.Metric
	Leaderboard      []models.RankedEntry
	TotalSubmissions int
}

type aggregatePage struct {
	Tasks         []models.Task
	Facets        store.Facets
	Selection     store.Selection
	Selected      map[string]bool
	SelectedTasks []models.Task
	Leaderboard   []models.AggregateEntry
}

// render executes a page into a buffer first so template errors do not
// produce half-written responses.
func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("rendering page", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck
}
