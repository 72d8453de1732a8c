package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"weekendlog/internal/adapters/http/middleware"
	"weekendlog/internal/application/orchestrators"
	"weekendlog/internal/application/prompt"
	userDomain "weekendlog/internal/domain/user"
	weekendDomain "weekendlog/internal/domain/weekend"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorStatus maps known domain errors to HTTP status codes.
// Returns 0 for unknown errors (handled as internal).
func errorStatus(err error) int {
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCredentials),
		errors.Is(err, orchestrators.ErrCurrentPasswordWrong):
		return http.StatusUnauthorized
	case errors.Is(err, orchestrators.ErrUserNotFound),
		errors.Is(err, orchestrators.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrators.ErrPSIDExists),
		errors.Is(err, orchestrators.ErrEmailExists),
		errors.Is(err, orchestrators.ErrDuplicateEntry),
		errors.Is(err, prompt.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, orchestrators.ErrPasswordMismatch),
		errors.Is(err, orchestrators.ErrNewPasswordSame),
		errors.Is(err, userDomain.ErrWeakPassword),
		errors.Is(err, userDomain.ErrEmptyPSID),
		errors.Is(err, userDomain.ErrEmptyName),
		errors.Is(err, userDomain.ErrEmptyEmail),
		errors.Is(err, userDomain.ErrInvalidEmail),
		errors.Is(err, userDomain.ErrInvalidTheme),
		errors.Is(err, userDomain.ErrEmptyPassword),
		errors.Is(err, weekendDomain.ErrMissingUser),
		errors.Is(err, weekendDomain.ErrMissingDate),
		errors.Is(err, weekendDomain.ErrBadDate),
		errors.Is(err, weekendDomain.ErrFutureDate),
		errors.Is(err, weekendDomain.ErrBadCompOffDate),
		errors.Is(err, weekendDomain.ErrBadFlag):
		return http.StatusBadRequest
	}
	return 0
}

// apiError writes a known domain error as JSON, or falls back to internalError.
func apiError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == 0 {
		internalError(w, err)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// templatesDir can be overridden via env so the binary works from any cwd.
var templatesDir = func() string {
	if dir := os.Getenv("WEEKENDLOG_TEMPLATES_DIR"); dir != "" {
		return dir
	}
	return "internal/adapters/http/templates"
}()

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// isFormRequest reports whether the request body is a form submission.
func isFormRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())

	theme := userDomain.ThemeLight
	if t, err := stores.ThemeStore.Get(r.Context()); err == nil {
		theme = t
	}

	funcMap := template.FuncMap{
		"currentPSID": func() string { return sess.PSID },
		"currentName": func() string { return sess.Name },
		"isLoggedIn":  func() bool { return loggedIn },
		"isAdmin":     func() bool { return loggedIn && sess.IsAdmin },
		"theme":       func() string { return theme },
		"csrfToken":   func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"fmtDate": func(date string) string {
			t, err := time.Parse(weekendDomain.DateLayout, date)
			if err != nil {
				return date
			}
			return t.Format("Mon, 02 Jan 2006")
		},
		"fmtDateTime": func(t *time.Time) string {
			if t == nil {
				return "Never"
			}
			return t.Format("02 Jan 2006 15:04")
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleDashboard handles GET /
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "dashboard.html", map[string]any{
		"User": sess,
	})
}

// handleHelp handles GET /help. The page body is markdown rendered
// server-side via goldmark.
func handleHelp(w http.ResponseWriter, r *http.Request) {
	md, err := os.ReadFile(filepath.Join(templatesDir, "help.md"))
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "help.html", map[string]any{
		"Markdown": string(md),
	})
}
