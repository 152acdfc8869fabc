package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unklstewy/b200-landing/internal/auth"
	"github.com/unklstewy/b200-landing/internal/db"
	"github.com/unklstewy/b200-landing/internal/ratelimit"
	"github.com/unklstewy/b200-landing/pkg/config"
	"github.com/unklstewy/b200-landing/pkg/landing"
	"github.com/unklstewy/b200-landing/pkg/tables"
)

// UserStore looks up accounts for login.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*db.User, error)
	UpdateLastLogin(ctx context.Context, userID int) error
}

// HistoryStore persists calculations.
type HistoryStore interface {
	Save(ctx context.Context, c *db.Calculation) error
	GetByID(ctx context.Context, userID int, id int64) (*db.Calculation, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]*db.Calculation, error)
	Count(ctx context.Context, userID int) (int, error)
}

// UserDirectory manages accounts on behalf of administrators.
type UserDirectory interface {
	GetByID(ctx context.Context, id int) (*db.User, error)
	Create(ctx context.Context, user *db.User) error
	Update(ctx context.Context, user *db.User) error
	SetPassword(ctx context.Context, userID int, passwordHash string) error
	Delete(ctx context.Context, userID int) error
	List(ctx context.Context, limit, offset int) ([]*db.User, error)
	Count(ctx context.Context) (int, error)
}

// Options holds the server's dependencies. Everything after Tables is
// optional: without Users the configured admin account is the only login,
// and without History or Accounts those endpoints answer 503.
type Options struct {
	Config   *config.Config
	Auth     *auth.Service
	Tables   *tables.Cache
	Users    UserStore
	Accounts UserDirectory
	History  HistoryStore
	Health   func(ctx context.Context) bool
	Stats    func(ctx context.Context) (map[string]interface{}, error)
}

// Server holds the HTTP router and its dependencies
type Server struct {
	router  *chi.Mux
	cfg     *config.Config
	authSvc *auth.Service
	cache   *tables.Cache
	users    UserStore
	accounts UserDirectory
	history  HistoryStore
	health   func(ctx context.Context) bool
	stats    func(ctx context.Context) (map[string]interface{}, error)
	limiter  *ratelimit.Limiter

	mu   sync.RWMutex
	set  *tables.Set
	calc *landing.Calculator

	sockets *socketHub
}

// NewServer loads the configured tables and builds the router.
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Auth == nil || opts.Tables == nil {
		return nil, errors.New("config, auth service and table cache are required")
	}

	s := &Server{
		router:  chi.NewRouter(),
		cfg:     opts.Config,
		authSvc: opts.Auth,
		cache:   opts.Tables,
		users:    opts.Users,
		accounts: opts.Accounts,
		history:  opts.History,
		health:   opts.Health,
		stats:    opts.Stats,
		limiter:  ratelimit.New(opts.Config.RateLimit.RequestsPerSecond, opts.Config.RateLimit.Burst),
		sockets:  newSocketHub(),
	}
	if s.users == nil {
		s.users = configUsers{cfg: opts.Config.Auth}
	}

	if _, _, err := s.reloadTables(); err != nil {
		return nil, err
	}

	s.setupRoutes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.With(s.limiter.Middleware).Post("/auth/login", s.handleLogin)

		// WebSocket authenticates with a token query parameter
		r.With(s.limiter.Middleware).Get("/ws", s.handleWebSocket)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleGetCurrentUser)
			r.Get("/limits", s.handleGetLimits)

			r.Get("/tables", s.handleListTables)
			r.Get("/tables/{name}", s.handleGetTable)
			r.With(s.requireRole(auth.CanReloadTables)).Post("/tables/reload", s.handleReloadTables)

			r.Route("/landing", func(r chi.Router) {
				r.Use(s.requireRole(auth.CanCalculate))
				r.With(s.limiter.Middleware).Post("/calculate", s.handleCalculate)
				r.Get("/history", s.handleListHistory)
				r.Get("/history/{id}", s.handleGetHistory)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireRole(auth.CanManageUsers))
				r.Use(s.requireAccounts)
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Get("/{id}", s.handleGetUser)
				r.Put("/{id}", s.handleUpdateUser)
				r.Post("/{id}/password", s.handleSetPassword)
				r.Delete("/{id}", s.handleDeleteUser)
			})
		})
	})
}

type claimsKey struct{}

// authMiddleware validates the bearer token and stores its claims in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := s.authSvc.ValidateToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole rejects requests whose role fails check.
func (s *Server) requireRole(check func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r.Context())
			if claims == nil || !check(claims.Role) {
				respondError(w, http.StatusForbidden, auth.ErrUnauthorized.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// current returns the active table set and calculator.
func (s *Server) current() (*tables.Set, *landing.Calculator) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set, s.calc
}

func (s *Server) dataset() string {
	set, _ := s.current()
	return set.ID()
}

// reloadTables reads the configured tables and swaps them in. The previous
// tables stay active when loading fails.
func (s *Server) reloadTables() (*tables.Set, bool, error) {
	set, err := s.cache.LoadConfig(s.cfg.Tables)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load tables: %w", err)
	}
	calc, err := landing.NewCalculator(set.Tables)
	if err != nil {
		return nil, false, err
	}
	calc = calc.WithLimits(s.cfg.Inputs.Limits)

	s.mu.Lock()
	changed := s.set == nil || s.set.Fingerprint != set.Fingerprint
	s.set, s.calc = set, calc
	s.mu.Unlock()

	return set, changed, nil
}

// limiterJanitor drops idle rate limit buckets.
func (s *Server) limiterJanitor(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Cleanup(10 * time.Minute); n > 0 {
				log.Printf("Rate limiter: dropped %d idle clients", n)
			}
		}
	}
}

// configUsers serves the single admin account from the config file when
// no database is configured.
type configUsers struct {
	cfg config.AuthConfig
}

func (u configUsers) GetByUsername(_ context.Context, username string) (*db.User, error) {
	if u.cfg.AdminPasswordHash == "" || username != u.cfg.AdminUsername {
		return nil, db.ErrUserNotFound
	}
	return &db.User{
		ID:           0,
		Username:     u.cfg.AdminUsername,
		PasswordHash: u.cfg.AdminPasswordHash,
		Role:         auth.RoleAdmin,
		IsActive:     true,
	}, nil
}

func (configUsers) UpdateLastLogin(context.Context, int) error { return nil }
