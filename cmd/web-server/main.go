// B200 Landing Distance Web Server
// Provides the REST API and WebSocket endpoint for landing distance calculations
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/unklstewy/b200-landing/internal/auth"
	"github.com/unklstewy/b200-landing/internal/db"
	"github.com/unklstewy/b200-landing/internal/logging"
	"github.com/unklstewy/b200-landing/pkg/config"
	"github.com/unklstewy/b200-landing/pkg/tables"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	port       = flag.String("port", "", "HTTP server port (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	logFile, err := logging.Setup(cfg.Logging, true)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	log.Println("🚀 Starting B200 Landing Distance Web Server...")

	cache, err := tables.NewCache(cfg.Tables.CacheSize)
	if err != nil {
		log.Fatalf("Failed to create table cache: %v", err)
	}

	authSvc := auth.NewService(auth.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenDuration: time.Duration(cfg.Auth.TokenHours) * time.Hour,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := Options{Config: cfg, Auth: authSvc, Tables: cache}

	if cfg.Database.Enabled {
		database, err := db.ReconnectWithRetry(ctx, cfg.Database, 5, 2*time.Second)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.InitSchema(ctx); err != nil {
			log.Printf("Warning: Schema initialization failed: %v", err)
		}

		userRepo := db.NewUserRepository(database.DB)
		if err := ensureAdmin(ctx, userRepo, cfg.Auth); err != nil {
			log.Printf("Warning: Could not create admin account: %v", err)
		}

		opts.Users = userRepo
		opts.Accounts = userRepo
		opts.Stats = database.GetStats
		opts.History = db.NewCalculationRepository(database.DB)
		opts.Health = func(ctx context.Context) bool { return db.HealthCheck(ctx, database) }

		go pruneHistory(ctx, database, cfg.Database.HistoryRetentionDays)
		log.Printf("🗄️  Calculation history enabled (%s@%s/%s)", cfg.Database.Username, cfg.Database.Host, cfg.Database.Database)
	} else {
		if cfg.Auth.AdminPasswordHash == "" {
			log.Println("⚠️  Database disabled and no admin password hash configured; logins will fail")
		}
		log.Println("🗄️  Database disabled; calculation history unavailable")
	}

	srv, err := NewServer(opts)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	go srv.limiterJanitor(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("📡 Server listening on http://%s", httpServer.Addr)
		log.Printf("📊 Tables loaded (dataset %s)", srv.dataset())
		if tables.IsSample(cfg.Tables) {
			log.Printf("⚠️  %s", tables.SampleNotice)
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("👋 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv.closeSockets()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped")
}

// ensureAdmin creates the configured admin account on an empty user table.
func ensureAdmin(ctx context.Context, users *db.UserRepository, cfg config.AuthConfig) error {
	if cfg.AdminPasswordHash == "" {
		return nil
	}
	n, err := users.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	admin := &db.User{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		Role:         auth.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil && err != db.ErrUserExists {
		return err
	}
	log.Printf("👤 Created admin account %q", admin.Username)
	return nil
}

// pruneHistory deletes expired calculations once a day.
func pruneHistory(ctx context.Context, database *db.DB, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	maxAge := time.Duration(retentionDays) * 24 * time.Hour

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		n, err := database.PruneHistory(ctx, maxAge)
		if err != nil {
			log.Printf("History pruning failed: %v", err)
		} else if n > 0 {
			log.Printf("🧹 Pruned %d calculations older than %d days", n, retentionDays)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
