package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/server"
	"github.com/desertthunder/topten/internal/shared"
	"github.com/desertthunder/topten/internal/tasks"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether the backing store is reachable. [*sql.DB] satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures an [App].
type Options struct {
	Library  tasks.Engine
	Sessions *server.Sessions
	DB       Pinger
	Logger   *log.Logger
}

// App serves the movie list pages.
type App struct {
	library   tasks.Engine
	sessions  *server.Sessions
	db        Pinger
	templates map[string]*template.Template
	logger    *log.Logger
}

var _ server.Handler = (*App)(nil)

// New creates an [App] and parses its templates.
func New(opts Options) (*App, error) {
	if opts.Library == nil {
		return nil, fmt.Errorf("%w: library", shared.ErrMissingArgument)
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("%w: sessions", shared.ErrMissingArgument)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &App{
		library:   opts.Library,
		sessions:  opts.Sessions,
		db:        opts.DB,
		templates: templates,
		logger:    logger,
	}, nil
}

// Routes implements [server.Handler].
func (a *App) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodGet, Path: "/", Handler: http.HandlerFunc(a.Home)},
		{Method: http.MethodGet, Path: "/add", Handler: http.HandlerFunc(a.AddForm)},
		{Method: http.MethodPost, Path: "/add", Handler: http.HandlerFunc(a.Search)},
		{Method: http.MethodGet, Path: "/add_movie/{id}", Handler: http.HandlerFunc(a.AddMovie)},
		{Method: http.MethodGet, Path: "/edit", Handler: http.HandlerFunc(a.EditForm)},
		{Method: http.MethodPost, Path: "/edit", Handler: http.HandlerFunc(a.Edit)},
		{Method: http.MethodGet, Path: "/delete", Handler: http.HandlerFunc(a.Delete)},
		{Method: http.MethodGet, Path: "/healthz", Handler: http.HandlerFunc(a.Health)},
	}
}

// Handler returns the full router: request ids, logging, panic recovery and CSRF checks around the routes.
func (a *App) Handler() http.Handler {
	r := server.NewBasicRouter()
	r.Use(
		server.RequestID(),
		middleware.RealIP,
		server.Logger(a.logger),
		server.Recoverer(a.logger),
		middleware.SetHeader("X-Content-Type-Options", "nosniff"),
		a.sessions.CSRF(),
	)
	r.Handler(a)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.fail(w, r, http.StatusNotFound, "The requested page does not exist.")
	})
	return r
}

// Home renders every movie, rank 1 first. Ranks are computed here and never stored.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	ranked, err := a.library.Ranked(r.Context())
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	cards := make([]movieCard, 0, len(ranked))
	for _, rm := range ranked {
		cards = append(cards, newMovieCard(rm.Movie, rm.Rank))
	}
	a.render(w, r, http.StatusOK, "index.html", page{Movies: cards})
}

func (a *App) AddForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "add.html", page{})
}

// Search validates the title and lists TMDB candidates. An invalid form never reaches TMDB.
func (a *App) Search(w http.ResponseWriter, r *http.Request) {
	form, errs := ParseAddForm(r)
	if errs.Any() {
		a.render(w, r, http.StatusUnprocessableEntity, "add.html", page{Title: form.Title, Errors: errs})
		return
	}

	results, err := a.library.Search(r.Context(), form.Title)
	if err != nil {
		a.handleError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "select.html", page{Title: form.Title, Results: results})
}

// AddMovie imports a TMDB movie and sends the user to rate it.
func (a *App) AddMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(server.Param(r, "id"))
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	movie, err := a.library.Import(r.Context(), id)
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	a.flash(w, r, server.FlashSuccess, fmt.Sprintf("Added %s.", movie))
	http.Redirect(w, r, editPath(movie.ID), http.StatusFound)
}

// EditForm renders the rating form, pre-filled when the movie has been rated.
func (a *App) EditForm(w http.ResponseWriter, r *http.Request) {
	movie, ok := a.movieFromQuery(w, r)
	if !ok {
		return
	}

	a.render(w, r, http.StatusOK, "edit.html", page{
		Movie:  newMovieCard(movie, 0),
		Rating: movie.RatingText(),
		Review: movie.ReviewText(),
	})
}

// Edit stores a rating and review. On validation failure the store is left untouched.
func (a *App) Edit(w http.ResponseWriter, r *http.Request) {
	movie, ok := a.movieFromQuery(w, r)
	if !ok {
		return
	}

	form, errs := ParseEditForm(r)
	if errs.Any() {
		a.render(w, r, http.StatusUnprocessableEntity, "edit.html", page{
			Movie:  newMovieCard(movie, 0),
			Rating: form.Rating,
			Review: form.Review,
			Errors: errs,
		})
		return
	}

	movie, err := a.library.Review(r.Context(), movie.ID, form.Value(), form.Review)
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	a.flash(w, r, server.FlashSuccess, fmt.Sprintf("Updated %s.", movie))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	movie, err := a.library.Remove(r.Context(), id)
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	a.flash(w, r, server.FlashInfo, fmt.Sprintf("Removed %s.", movie))
	http.Redirect(w, r, "/", http.StatusFound)
}

// Health pings the store.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.PingContext(r.Context()); err != nil {
			a.logger.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (a *App) movieFromQuery(w http.ResponseWriter, r *http.Request) (*models.Movie, bool) {
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		a.handleError(w, r, err)
		return nil, false
	}

	movie, err := a.library.Get(r.Context(), id)
	if err != nil {
		a.handleError(w, r, err)
		return nil, false
	}
	return movie, true
}

func (a *App) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	if err := a.sessions.AddFlash(w, r, category, message); err != nil {
		a.logger.Warn("failed to save flash", "error", err)
	}
}

// handleError maps sentinel errors to a status and renders the error page.
func (a *App) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Something went wrong."
	}
	a.fail(w, r, status, msg)
}

func (a *App) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	a.render(w, r, status, "error.html", page{
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    message,
	})
}

// StatusFor maps an error from the library to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrMovieNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAPIRequest),
		errors.Is(err, shared.ErrMalformedResponse),
		errors.Is(err, shared.ErrServiceUnavailable),
		errors.Is(err, shared.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseID accepts a positive decimal id.
func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func editPath(id int64) string {
	return "/edit?id=" + strconv.FormatInt(id, 10)
}
