package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unklstewy/b200-landing/internal/auth"
	"github.com/unklstewy/b200-landing/internal/db"
	"github.com/unklstewy/b200-landing/pkg/landing"
	"github.com/unklstewy/b200-landing/pkg/report"
	"github.com/unklstewy/b200-landing/pkg/tables"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// calculationResponse is returned by the calculate endpoint and the WebSocket.
type calculationResponse struct {
	ID      int64          `json:"id,omitempty"`
	Dataset string         `json:"dataset"`
	Sample  bool           `json:"sample_data,omitempty"`
	Summary report.Summary `json:"summary"`
	Text    string         `json:"text"`
}

// handleLogin handles user login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, db.ErrUserNotFound) {
			log.Printf("Error looking up user %q: %v", req.Username, err)
		}
		respondError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	if err := s.authSvc.ComparePassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	if !user.IsActive {
		respondError(w, http.StatusForbidden, "Account is disabled")
		return
	}

	token, err := s.authSvc.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := s.users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		log.Printf("Error updating last login for %s: %v", user.Username, err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"token":      token,
		"expires_in": int(s.authSvc.TokenDuration().Seconds()),
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// handleGetCurrentUser returns the currently authenticated user
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":            claims.UserID,
		"username":      claims.Username,
		"role":          claims.Role,
		"store_history": s.history != nil && auth.CanStoreHistory(claims.Role),
	})
}

// handleGetLimits returns the input envelope, default inputs and stage order
func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	_, calc := s.current()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"limits":   calc.Limits(),
		"defaults": s.cfg.Inputs.Defaults,
		"stages":   calc.Stages(),
	})
}

// handleCalculate runs the landing distance pipeline
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var in landing.Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, trace, err := s.calculate(in)
	if err != nil {
		respondCalcError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	if s.history != nil && auth.CanStoreHistory(claims.Role) {
		rec := db.NewCalculation(claims.UserID, resp.Dataset, trace)
		if err := s.history.Save(r.Context(), rec); err != nil {
			// The result is still valid; history is best effort.
			log.Printf("Error saving calculation for %s: %v", claims.Username, err)
		} else {
			resp.ID = rec.ID
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// calculate runs in against the active tables.
func (s *Server) calculate(in landing.Input) (*calculationResponse, *landing.Trace, error) {
	set, calc := s.current()
	trace, err := calc.Run(in)
	if err != nil {
		return nil, nil, err
	}
	return &calculationResponse{
		Dataset: set.ID(),
		Sample:  tables.IsSample(s.cfg.Tables),
		Summary: report.Summarize(trace),
		Text:    report.Text(trace),
	}, trace, nil
}

// handleListHistory returns the caller's stored calculations
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusServiceUnavailable, "Calculation history is not enabled")
		return
	}
	claims := claimsFrom(r.Context())

	limit := queryInt(r, "limit", defaultHistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	calcs, err := s.history.ListByUser(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		log.Printf("Error listing history: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}
	total, err := s.history.Count(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("Error counting history: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}
	if calcs == nil {
		calcs = []*db.Calculation{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"calculations": calcs,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

// handleGetHistory returns one stored calculation
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusServiceUnavailable, "Calculation history is not enabled")
		return
	}
	claims := claimsFrom(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid calculation ID")
		return
	}

	calc, err := s.history.GetByID(r.Context(), claims.UserID, id)
	if errors.Is(err, db.ErrCalculationNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("Error getting calculation %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to get calculation")
		return
	}

	respondJSON(w, http.StatusOK, calc)
}

// handleListTables returns every table
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	set, _ := s.current()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"dataset":     set.ID(),
		"sample_data": tables.IsSample(s.cfg.Tables),
		"tables":      set.Views(),
	})
}

// handleGetTable returns one table by slug
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	set, _ := s.current()

	view, ok := set.View(chi.URLParam(r, "name"))
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown table; expected one of pressure-oat, weight, wind, obstacle")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// handleReloadTables re-reads the table files
func (s *Server) handleReloadTables(w http.ResponseWriter, r *http.Request) {
	set, changed, err := s.reloadTables()
	if err != nil {
		log.Printf("Table reload failed: %v", err)
		respondCalcError(w, err)
		return
	}

	if changed {
		log.Printf("📊 Tables reloaded (dataset %s)", set.ID())
		s.sockets.broadcast(socketMessage{Type: msgTablesReloaded, Dataset: set.ID()})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"dataset": set.ID(),
		"changed": changed,
		"tables":  tables.Slugs,
	})
}

// handleHealth reports server and database health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	database := "disabled"
	if s.health != nil {
		database = "ok"
		if !s.health(r.Context()) {
			database = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	body := map[string]interface{}{
		"status":   http.StatusText(status),
		"dataset":  s.dataset(),
		"database": database,
	}
	if s.stats != nil && status == http.StatusOK {
		stats, err := s.stats(r.Context())
		if err != nil {
			log.Printf("Error reading database stats: %v", err)
		} else {
			body["stats"] = stats
		}
	}

	respondJSON(w, status, body)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// apiError is the JSON error body.
type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Stage string `json:"stage,omitempty"`
}

// classify maps pipeline and table errors to an HTTP status and error kind.
func classify(err error) (int, apiError) {
	body := apiError{Error: err.Error()}

	var stageErr *landing.StageError
	if errors.As(err, &stageErr) {
		body.Stage = stageErr.Stage
	}

	var (
		rangeErr  *landing.InputRangeError
		colErr    *landing.UnknownColumnError
		axisErr   *landing.TableAxisEmptyError
		malformed *landing.MalformedTableError
	)
	switch {
	case errors.As(err, &rangeErr):
		body.Kind = "input_range"
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &colErr):
		body.Kind = "unknown_column"
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &axisErr):
		body.Kind = "table_axis_empty"
	case errors.As(err, &malformed):
		body.Kind = "malformed_table"
	}
	return http.StatusInternalServerError, body
}

func respondCalcError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	respondJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, apiError{Error: msg})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
