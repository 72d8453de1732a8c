package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "weekendlog/internal/adapters/email"
	web "weekendlog/internal/adapters/http"
	"weekendlog/internal/adapters/http/perf"
	"weekendlog/internal/adapters/storage"
	sessionStore "weekendlog/internal/adapters/storage/session"
	themeStore "weekendlog/internal/adapters/storage/theme"
	userStore "weekendlog/internal/adapters/storage/user"
	weekendStore "weekendlog/internal/adapters/storage/weekend"
	"weekendlog/internal/application/orchestrators"
	"weekendlog/internal/application/prompt"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	if os.Getenv("WEEKENDLOG_DEBUG") != "" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Initialize database with WAL mode and busy timeout
	dbPath := envOrDefault("WEEKENDLOG_DB", "weekendlog.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap the KV with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	kv := storage.NewTimedKV(storage.NewSQLiteKV(db), collector)

	users := userStore.NewKVStore(kv)
	stores := &web.Stores{
		UserStore:    users,
		EntryStore:   weekendStore.NewKVStore(kv),
		ThemeStore:   themeStore.NewKVStore(kv),
		SessionStore: sessionStore.NewKVStore(kv),
	}

	// Seed the default administrator if no users exist
	seed := orchestrators.SeedAdminInput{
		PSID:     envOrDefault("WEEKENDLOG_ADMIN_PSID", "admin"),
		Name:     envOrDefault("WEEKENDLOG_ADMIN_NAME", "Admin User"),
		Email:    envOrDefault("WEEKENDLOG_ADMIN_EMAIL", "admin@example.com"),
		Password: envOrDefault("WEEKENDLOG_ADMIN_PASSWORD", "admin123"),
	}
	seedDeps := orchestrators.RegisterDeps{UserStore: users}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seed, seedDeps); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("WEEKENDLOG_RESEND_KEY")
	emailFrom := envOrDefault("WEEKENDLOG_RESEND_FROM", "Weekend Log <noreply@example.com>")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom)
		if os.Getenv("WEEKENDLOG_ENV") == "production" {
			log.Println("WARNING: WEEKENDLOG_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set WEEKENDLOG_RESEND_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux("static", stores, collector, prompt.NewModal())

	addr := envOrDefault("WEEKENDLOG_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Weekend Log %s starting on %s (env=%s)", version, addr, envOrDefault("WEEKENDLOG_ENV", "development"))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
