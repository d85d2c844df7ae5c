package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/julianstephens/habitlog/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "templates/layout.html"

// renderer holds one template set per page, each parsed with the shared layout
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	funcs := template.FuncMap{
		"hours": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &renderer{pages: make(map[string]*template.Template)}
	for _, f := range files {
		if f == layoutTemplate {
			continue
		}
		t, err := template.New(path.Base(f)).Funcs(funcs).ParseFS(templateFS, layoutTemplate, f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f, err)
		}
		r.pages[path.Base(f)] = t
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// pageData is the view model shared by every page
type pageData struct {
	Title     string
	Username  string
	Error     string
	Notice    string
	Form      map[string]string
	Habits    []models.Habit
	Habit     models.Habit
	Summaries []models.HabitSummary
	Stats     models.DashboardStats
	Today     string
}
