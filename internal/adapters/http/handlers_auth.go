package web

import (
	"net/http"

	"github.com/gorilla/csrf"

	"weekendlog/internal/adapters/http/middleware"
	"weekendlog/internal/application/orchestrators"
)

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, go straight to the dashboard
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		isForm := isFormRequest(r)

		input := orchestrators.LoginInput{}
		if isForm {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.PSID = r.FormValue("PSID")
			input.Password = r.FormValue("Password")
		} else {
			var body struct {
				PSID     string `json:"psId"`
				Password string `json:"password"`
			}
			if err := strictDecode(r, &body); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.PSID = body.PSID
			input.Password = body.Password
		}

		deps := orchestrators.LoginDeps{
			UserStore:    stores.UserStore,
			SessionStore: stores.SessionStore,
			ThemeStore:   stores.ThemeStore,
			Now:          timeNow,
		}
		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			if isForm {
				renderTemplate(w, r, "login.html", map[string]any{
					"CSRFToken": csrf.Token(r),
					"Error":     err.Error(),
					"PSID":      input.PSID,
				})
				return
			}
			apiError(w, err)
			return
		}

		token, err := sessions.Create(result.Snapshot.PSID)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}
		middleware.SetSessionCookie(w, token)

		if isForm {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user":      result.Snapshot,
			"expiresAt": result.ExpiresAt.UnixMilli(),
			"theme":     result.Theme,
		})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleRegister handles POST /register (self-signup)
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	isForm := isFormRequest(r)

	input := orchestrators.RegisterInput{}
	if isForm {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.PSID = r.FormValue("PSID")
		input.Name = r.FormValue("Name")
		input.Email = r.FormValue("Email")
		input.Password = r.FormValue("Password")
		input.ConfirmPassword = r.FormValue("ConfirmPassword")
	} else {
		var body struct {
			PSID            string `json:"psId"`
			Name            string `json:"name"`
			Email           string `json:"email"`
			Password        string `json:"password"`
			ConfirmPassword string `json:"confirmPassword"`
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		input = orchestrators.RegisterInput{
			PSID:            body.PSID,
			Name:            body.Name,
			Email:           body.Email,
			Password:        body.Password,
			ConfirmPassword: body.ConfirmPassword,
		}
	}

	deps := orchestrators.RegisterDeps{UserStore: stores.UserStore}
	if err := orchestrators.ExecuteRegister(r.Context(), input, deps); err != nil {
		if isForm {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken":   csrf.Token(r),
				"SignupError": err.Error(),
				"ShowSignup":  true,
				"SignupPSID":  input.PSID,
				"SignupName":  input.Name,
				"SignupEmail": input.Email,
			})
			return
		}
		apiError(w, err)
		return
	}

	if isForm {
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Notice":    "Account created. Please log in.",
		})
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	deps := orchestrators.LogoutDeps{SessionStore: stores.SessionStore}
	if err := orchestrators.ExecuteLogout(r.Context(), deps); err != nil {
		internalError(w, err)
		return
	}

	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)

	if isFormRequest(r) || isHTMLRequest(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSession handles GET /api/session: the current snapshot, if valid.
func handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": sess})
}
