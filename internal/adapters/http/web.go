package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"weekendlog/internal/adapters/email"
	"weekendlog/internal/adapters/http/middleware"
	"weekendlog/internal/adapters/http/perf"
	sessionStore "weekendlog/internal/adapters/storage/session"
	themeStore "weekendlog/internal/adapters/storage/theme"
	userStore "weekendlog/internal/adapters/storage/user"
	weekendStore "weekendlog/internal/adapters/storage/weekend"
	"weekendlog/internal/application/prompt"
)

// Stores holds all storage dependencies.
type Stores struct {
	UserStore    userStore.Store
	EntryStore   weekendStore.Store
	ThemeStore   themeStore.Store
	SessionStore sessionStore.Store
}

// loadCSRFKey reads the CSRF secret from WEEKENDLOG_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("WEEKENDLOG_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("WEEKENDLOG_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("WEEKENDLOG_ENV") == "production" {
		log.Fatal("WEEKENDLOG_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set WEEKENDLOG_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global modal surface for confirm/alert dialogs (set by NewMux)
var modal *prompt.Modal

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from string) {
	emailSender = sender
	emailFromAddress = from
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector, m *prompt.Modal) http.Handler {
	stores = s
	perfCollector = collector
	modal = m
	sessions = middleware.NewSessionStore(s.SessionStore)
	middleware.SecureCookies = os.Getenv("WEEKENDLOG_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
