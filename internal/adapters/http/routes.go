package web

import (
	"net/http"

	"weekendlog/internal/adapters/http/middleware"
)

// registerRoutes wires all application routes onto the mux.
// Auth middleware runs globally; per-route guards are applied here.
func registerRoutes(mux *http.ServeMux) {
	// Pages
	mux.Handle("/", middleware.RequireAuth(http.HandlerFunc(handleDashboard)))
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/register", handleRegister)
	mux.HandleFunc("/logout", handleLogout)
	mux.Handle("/settings", middleware.RequireAuth(http.HandlerFunc(handleSettingsPage)))
	mux.Handle("/weekend", middleware.RequireAuth(http.HandlerFunc(handleWeekendPage)))
	mux.Handle("/users", middleware.RequireAuth(http.HandlerFunc(handleUsersPage)))
	mux.HandleFunc("/help", handleHelp)
	mux.Handle("/admin/perf", middleware.RequireAdmin(http.HandlerFunc(handleAdminPerfPage)))

	// JSON API
	mux.HandleFunc("/api/session", handleSession)
	mux.Handle("/api/password", middleware.RequireAuth(http.HandlerFunc(handleChangePassword)))
	mux.Handle("/api/theme", middleware.RequireAuth(http.HandlerFunc(handleTheme)))
	mux.Handle("/api/users", middleware.RequireAdmin(http.HandlerFunc(handleUsers)))
	mux.Handle("/api/entries", middleware.RequireAuth(http.HandlerFunc(handleEntries)))
	mux.Handle("/api/prompt", middleware.RequireAuth(http.HandlerFunc(handlePrompt)))
	mux.Handle("/api/perf", middleware.RequireAdmin(http.HandlerFunc(handlePerf)))

	// Static assets are served under /static/ by NewMux.
}
