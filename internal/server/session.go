package server

import (
	"crypto/subtle"
	"encoding/gob"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topten/internal/shared"
	"github.com/gorilla/sessions"
)

const (
	// SessionName is the cookie holding the signed session.
	SessionName = "topten-session"
	// CSRFField is the hidden form field carrying the token.
	CSRFField = "csrf_token"
	// CSRFHeader may carry the token instead of the form field.
	CSRFHeader = "X-CSRF-Token"

	csrfKey = "csrf_token"
)

// Flash categories, matching the bootstrap alert classes used by the templates.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// Sessions stores flash messages and the CSRF token in a signed cookie.
type Sessions struct {
	store  *sessions.CookieStore
	logger *log.Logger
}

// NewSessions creates a cookie-backed session store signed with secret.
func NewSessions(secret string, secure bool, logger *log.Logger) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Sessions{store: store, logger: shared.WithLogger(logger, "component", "sessions")}
}

// session returns the request's session. A cookie that fails verification
// (e.g. after a secret change) yields a fresh session.
func (s *Sessions) session(r *http.Request) *sessions.Session {
	sess, err := s.store.Get(r, SessionName)
	if err != nil {
		s.logger.Debug("discarding unreadable session", "error", err)
	}
	return sess
}

// AddFlash queues a message for the next page render.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	sess := s.session(r)
	sess.AddFlash(Flash{Category: category, Message: message})
	return sess.Save(r, w)
}

// PageState returns the session's CSRF token, creating it if needed, and drains pending flashes.
// The session is saved at most once.
func (s *Sessions) PageState(w http.ResponseWriter, r *http.Request) (string, []Flash, error) {
	sess := s.session(r)
	dirty := false

	token, _ := sess.Values[csrfKey].(string)
	if token == "" {
		token = shared.GenerateID()
		sess.Values[csrfKey] = token
		dirty = true
	}

	var flashes []Flash
	for _, v := range sess.Flashes() {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
		dirty = true
	}

	if dirty {
		if err := sess.Save(r, w); err != nil {
			return "", nil, err
		}
	}
	return token, flashes, nil
}

// CSRF rejects unsafe requests whose token does not match the session's with 403.
func (s *Sessions) CSRF() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			expected, _ := s.session(r).Values[csrfKey].(string)
			got := r.Header.Get(CSRFHeader)
			if got == "" {
				got = r.PostFormValue(CSRFField)
			}

			if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
				s.logger.Warn("rejected request with invalid CSRF token", "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()))
				http.Error(w, "The CSRF token is missing or invalid.", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
