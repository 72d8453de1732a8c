package web

import (
	"net/http"

	"weekendlog/internal/adapters/http/middleware"
	"weekendlog/internal/application/orchestrators"
	"weekendlog/internal/application/projections"
	"weekendlog/internal/application/prompt"
)

// handleUsersPage handles GET /users (management page)
func handleUsersPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	query := projections.GetUserListQuery{
		ViewerPSID:    sess.PSID,
		ViewerIsAdmin: sess.IsAdmin,
	}
	deps := projections.GetUserListDeps{UserStore: stores.UserStore}
	cards, err := projections.QueryGetUserList(r.Context(), query, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "users.html", map[string]any{
		"Users": cards,
	})
}

// handleUsers handles GET (list), POST (create), and PUT (edit) for /api/users
func handleUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := middleware.GetSessionFromContext(ctx)

	if r.Method == "GET" {
		query := projections.GetUserListQuery{
			ViewerPSID:    sess.PSID,
			ViewerIsAdmin: sess.IsAdmin,
		}
		deps := projections.GetUserListDeps{UserStore: stores.UserStore}
		cards, err := projections.QueryGetUserList(ctx, query, deps)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": cards})
		return
	}

	if r.Method == "POST" && r.FormValue("_method") != "PUT" {
		input := orchestrators.CreateUserInput{}
		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.PSID = r.FormValue("PSID")
			input.Name = r.FormValue("Name")
			input.Email = r.FormValue("Email")
			input.Password = r.FormValue("Password")
			input.IsAdmin = r.FormValue("IsAdmin") == "on" || r.FormValue("IsAdmin") == "true"
		} else {
			var body struct {
				PSID     string `json:"psId"`
				Name     string `json:"name"`
				Email    string `json:"email"`
				Password string `json:"password"`
				IsAdmin  bool   `json:"isAdmin"`
			}
			if err := strictDecode(r, &body); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input = orchestrators.CreateUserInput{
				PSID:     body.PSID,
				Name:     body.Name,
				Email:    body.Email,
				Password: body.Password,
				IsAdmin:  body.IsAdmin,
			}
		}

		deps := orchestrators.CreateUserDeps{UserStore: stores.UserStore}
		if err := orchestrators.ExecuteCreateUser(ctx, input, deps); err != nil {
			apiError(w, err)
			return
		}

		if isFormRequest(r) {
			http.Redirect(w, r, "/users", http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusCreated)
		return
	}

	if r.Method == "PUT" || (r.Method == "POST" && r.FormValue("_method") == "PUT") {
		input := orchestrators.EditUserInput{}
		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.PSID = r.FormValue("PSID")
			input.Name = r.FormValue("Name")
			input.Email = r.FormValue("Email")
			input.IsAdmin = r.FormValue("IsAdmin") == "on" || r.FormValue("IsAdmin") == "true"
			input.NewPassword = r.FormValue("NewPassword")
		} else {
			var body struct {
				PSID        string `json:"psId"`
				Name        string `json:"name"`
				Email       string `json:"email"`
				IsAdmin     bool   `json:"isAdmin"`
				NewPassword string `json:"newPassword"`
			}
			if err := strictDecode(r, &body); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input = orchestrators.EditUserInput{
				PSID:        body.PSID,
				Name:        body.Name,
				Email:       body.Email,
				IsAdmin:     body.IsAdmin,
				NewPassword: body.NewPassword,
			}
		}

		deps := orchestrators.EditUserDeps{UserStore: stores.UserStore}
		if err := orchestrators.ExecuteEditUser(ctx, input, deps); err != nil {
			apiError(w, err)
			return
		}

		if isFormRequest(r) {
			http.Redirect(w, r, "/users", http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method == "DELETE" {
		handleDeleteUser(w, r)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleDeleteUser handles DELETE /api/users?psId=<id>
// Without a `confirmed` parameter the request suspends on the shared modal
// until /api/prompt resolves it; with one, the answer travels with the request.
func handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	psID := r.FormValue("psId")
	if psID == "" {
		http.Error(w, "psId is required", http.StatusBadRequest)
		return
	}

	var asker prompt.Asker = modal
	if v := r.FormValue("confirmed"); v != "" {
		asker = prompt.Answered(v == "true")
	}

	deps := orchestrators.DeleteUserDeps{
		UserStore: stores.UserStore,
		Prompter:  asker,
	}
	deleted, err := orchestrators.ExecuteDeleteUser(r.Context(), orchestrators.DeleteUserInput{PSID: psID}, deps)
	if err != nil {
		apiError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
