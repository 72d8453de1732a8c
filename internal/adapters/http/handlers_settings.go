package web

import (
	"net/http"

	"github.com/gorilla/csrf"

	"weekendlog/internal/adapters/http/middleware"
	"weekendlog/internal/application/orchestrators"
)

// handleSettingsPage handles GET /settings
func handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "settings.html", map[string]any{
		"CSRFToken": csrf.Token(r),
	})
}

// handleChangePassword handles POST /api/password
// A successful change destroys the session: the client is expected to land
// back on /login.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	isForm := isFormRequest(r)

	input := orchestrators.ChangePasswordInput{PSID: sess.PSID}
	if isForm {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.CurrentPassword = r.FormValue("CurrentPassword")
		input.NewPassword = r.FormValue("NewPassword")
		input.ConfirmPassword = r.FormValue("ConfirmPassword")
	} else {
		var body struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
			ConfirmPassword string `json:"confirmPassword"`
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		input.CurrentPassword = body.CurrentPassword
		input.NewPassword = body.NewPassword
		input.ConfirmPassword = body.ConfirmPassword
	}

	deps := orchestrators.ChangePasswordDeps{
		UserStore:    stores.UserStore,
		SessionStore: stores.SessionStore,
		EmailSender:  emailSender,
		From:         emailFromAddress,
	}
	if err := orchestrators.ExecuteChangePassword(r.Context(), input, deps); err != nil {
		if isForm {
			renderTemplate(w, r, "settings.html", map[string]any{
				"CSRFToken":     csrf.Token(r),
				"PasswordError": err.Error(),
			})
			return
		}
		apiError(w, err)
		return
	}

	// Forced logout: the persisted session is gone, drop the cookie too.
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)

	if isForm {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loggedOut": true})
}

// handleTheme handles POST /api/theme (toggle) and GET /api/theme.
func handleTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		theme, err := stores.ThemeStore.Get(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
		return
	}

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, _ := middleware.GetSessionFromContext(ctx)

	var theme string
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		theme = r.FormValue("Theme")
	} else {
		var body struct {
			Theme string `json:"theme"`
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		theme = body.Theme
	}

	deps := orchestrators.ChangeThemeDeps{
		UserStore:  stores.UserStore,
		ThemeStore: stores.ThemeStore,
	}
	input := orchestrators.ChangeThemeInput{PSID: sess.PSID, Theme: theme}
	if err := orchestrators.ExecuteChangeTheme(ctx, input, deps); err != nil {
		apiError(w, err)
		return
	}

	if isFormRequest(r) {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}
