package web

import (
	"net/http"

	"weekendlog/internal/adapters/http/middleware"
	"weekendlog/internal/application/orchestrators"
	"weekendlog/internal/application/projections"
	"weekendlog/internal/application/prompt"
)

// handleWeekendPage handles GET /weekend (tracker page)
func handleWeekendPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	deps := projections.GetWeekendLogDeps{EntryStore: stores.EntryStore}
	entries, err := projections.QueryGetWeekendLog(r.Context(), projections.GetWeekendLogQuery{UserID: sess.PSID}, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "weekend.html", map[string]any{
		"Entries": entries,
	})
}

// entryInput is the JSON body shared by add and edit.
type entryInput struct {
	WeekendDate    string `json:"weekendDate"`
	OriginalDate   string `json:"originalDate,omitempty"`
	CompOffEarned  string `json:"compOffEarned"`
	CompOffDate    string `json:"compOffDate"`
	ExpenseClaimed string `json:"expenseClaimed"`
}

func decodeEntryInput(r *http.Request) (entryInput, error) {
	var in entryInput
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return in, err
		}
		in.WeekendDate = r.FormValue("WeekendDate")
		in.OriginalDate = r.FormValue("OriginalDate")
		in.CompOffEarned = r.FormValue("CompOffEarned")
		in.CompOffDate = r.FormValue("CompOffDate")
		in.ExpenseClaimed = r.FormValue("ExpenseClaimed")
		return in, nil
	}
	err := strictDecode(r, &in)
	return in, err
}

// handleEntries handles GET (list), POST (add), PUT (edit), and DELETE for
// /api/entries. Entries always belong to the logged-in user; there is no way
// to address another user's log.
func handleEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := middleware.GetSessionFromContext(ctx)

	if r.Method == "GET" {
		deps := projections.GetWeekendLogDeps{EntryStore: stores.EntryStore}
		entries, err := projections.QueryGetWeekendLog(ctx, projections.GetWeekendLogQuery{UserID: sess.PSID}, deps)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
		return
	}

	if r.Method == "POST" && r.FormValue("_method") != "PUT" {
		in, err := decodeEntryInput(r)
		if err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		deps := orchestrators.AddEntryDeps{
			EntryStore: stores.EntryStore,
			GenerateID: generateID,
			Now:        timeNow,
		}
		entry, err := orchestrators.ExecuteAddEntry(ctx, orchestrators.AddEntryInput{
			UserID:         sess.PSID,
			WeekendDate:    in.WeekendDate,
			CompOffEarned:  in.CompOffEarned,
			CompOffDate:    in.CompOffDate,
			ExpenseClaimed: in.ExpenseClaimed,
		}, deps)
		if err != nil {
			apiError(w, err)
			return
		}

		if isFormRequest(r) {
			http.Redirect(w, r, "/weekend", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
		return
	}

	if r.Method == "PUT" || r.Method == "POST" {
		in, err := decodeEntryInput(r)
		if err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if in.OriginalDate == "" {
			in.OriginalDate = in.WeekendDate
		}

		deps := orchestrators.EditEntryDeps{
			EntryStore: stores.EntryStore,
			Now:        timeNow,
		}
		entry, err := orchestrators.ExecuteEditEntry(ctx, orchestrators.EditEntryInput{
			UserID:         sess.PSID,
			OriginalDate:   in.OriginalDate,
			WeekendDate:    in.WeekendDate,
			CompOffEarned:  in.CompOffEarned,
			CompOffDate:    in.CompOffDate,
			ExpenseClaimed: in.ExpenseClaimed,
		}, deps)
		if err != nil {
			apiError(w, err)
			return
		}

		if isFormRequest(r) {
			http.Redirect(w, r, "/weekend", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
		return
	}

	if r.Method == "DELETE" {
		handleDeleteEntry(w, r)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleDeleteEntry handles DELETE /api/entries?weekendDate=<date>
// Confirmation works like user deletion: suspend on the shared modal, or
// accept the answer carried by the request.
func handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	date := r.FormValue("weekendDate")
	if date == "" {
		http.Error(w, "weekendDate is required", http.StatusBadRequest)
		return
	}

	var asker prompt.Asker = modal
	if v := r.FormValue("confirmed"); v != "" {
		asker = prompt.Answered(v == "true")
	}

	deps := orchestrators.DeleteEntryDeps{
		EntryStore: stores.EntryStore,
		Prompter:   asker,
	}
	deleted, err := orchestrators.ExecuteDeleteEntry(r.Context(), orchestrators.DeleteEntryInput{
		UserID:      sess.PSID,
		WeekendDate: date,
	}, deps)
	if err != nil {
		apiError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
