package web

import (
	"errors"
	"net/http"
	"time"

	"weekendlog/internal/application/prompt"
)

// handlePrompt serves the shared modal surface.
// GET returns the dialog awaiting resolution (204 when there is none);
// POST delivers the human's answer and unblocks the suspended operation.
func handlePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		req, ok := modal.Pending()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, req)
		return
	}

	if r.Method == "POST" {
		var body struct {
			ID        string `json:"id"`
			Confirmed bool   `json:"confirmed"`
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if err := modal.Resolve(body.ID, body.Confirmed); err != nil {
			if errors.Is(err, prompt.ErrNoPending) {
				writeJSON(w, http.StatusGone, map[string]string{"error": err.Error()})
				return
			}
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handlePerf handles GET /api/perf (admin): aggregated timing snapshot.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			window = d
		}
	}

	snap := perfCollector.Snapshot(timeNow().Add(-window), 10)
	writeJSON(w, http.StatusOK, snap)
}

// handleAdminPerfPage handles GET /admin/perf (admin): timing dashboard.
func handleAdminPerfPage(w http.ResponseWriter, r *http.Request) {
	snap := perfCollector.Snapshot(timeNow().Add(-time.Hour), 10)
	renderTemplate(w, r, "admin_perf.html", map[string]any{
		"Snapshot": snap,
	})
}
