package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/server"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pages = []string{"index.html", "add.html", "select.html", "edit.html", "error.html"}

// movieCard is a ranked movie flattened for the templates.
type movieCard struct {
	ID          int64
	Rank        int
	Title       string
	Year        int
	Rating      string
	Review      string
	Description string
	ImgURL      string
}

func newMovieCard(m *models.Movie, rank int) movieCard {
	return movieCard{
		ID:          m.ID,
		Rank:        rank,
		Title:       m.Title,
		Year:        m.Year,
		Rating:      m.RatingText(),
		Review:      m.ReviewText(),
		Description: m.Description,
		ImgURL:      m.ImgURL,
	}
}

// page holds everything a template may render. Each page uses a subset.
type page struct {
	CSRFToken string
	Flashes   []server.Flash

	Movies  []movieCard
	Movie   movieCard
	Results []models.SearchResult

	Title  string
	Rating string
	Review string
	Errors FieldErrors

	Status     int
	StatusText string
	Message    string
}

// parseTemplates builds one template set per page, each combined with the base layout.
func parseTemplates() (map[string]*template.Template, error) {
	set := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl, err := template.ParseFS(templateFiles, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		set[name] = tmpl
	}
	return set, nil
}

// render writes a page with the session's CSRF token and pending flashes.
//
// The page is rendered to a buffer first so a template error still yields a clean 500.
func (a *App) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	tmpl, ok := a.templates[name]
	if !ok {
		a.logger.Error("unknown template", "name", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token, flashes, err := a.sessions.PageState(w, r)
	if err != nil {
		a.logger.Error("failed to load session", "error", err)
	}
	data.CSRFToken = token
	data.Flashes = flashes

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		a.logger.Error("failed to render template", "name", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
