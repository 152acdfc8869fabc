package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/unklstewy/b200-landing/internal/auth"
	"github.com/unklstewy/b200-landing/internal/db"
)

const (
	defaultUserLimit  = 50
	maxUserLimit      = 200
	minPasswordLength = 8
)

// handleListUsers returns user accounts, newest first
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultUserLimit)
	if limit < 1 || limit > maxUserLimit {
		limit = defaultUserLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := s.accounts.List(r.Context(), limit, offset)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	total, err := s.accounts.Count(r.Context())
	if err != nil {
		log.Printf("Error counting users: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	if users == nil {
		users = []*db.User{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// handleCreateUser adds an account
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondError(w, http.StatusBadRequest, "Username is required")
		return
	}
	if req.Role == "" {
		req.Role = auth.RoleViewer
	}
	if !auth.ValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "Unknown role "+strconv.Quote(req.Role))
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hash, err := s.authSvc.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &db.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.accounts.Create(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrUserExists) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("Error creating user %q: %v", req.Username, err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	log.Printf("👤 %s created user %q (%s)", claimsFrom(r.Context()).Username, user.Username, user.Role)
	respondJSON(w, http.StatusCreated, user)
}

// handleGetUser returns one account
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleUpdateUser changes the fields present in the request body
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	if req.Role != nil && !auth.ValidRole(*req.Role) {
		respondError(w, http.StatusBadRequest, "Unknown role "+strconv.Quote(*req.Role))
		return
	}

	// Admins cannot lock themselves out.
	if user.ID == claimsFrom(r.Context()).UserID {
		if (req.Role != nil && *req.Role != user.Role) || (req.IsActive != nil && !*req.IsActive) {
			respondError(w, http.StatusBadRequest, "Cannot change your own role or disable your own account")
			return
		}
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			respondError(w, http.StatusBadRequest, "Username is required")
			return
		}
		user.Username = name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.accounts.Update(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, db.ErrUserExists):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, db.ErrUserNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("Error updating user %d: %v", user.ID, err)
			respondError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// handleSetPassword replaces an account's password
func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hash, err := s.authSvc.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	if err := s.accounts.SetPassword(r.Context(), id, hash); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Error setting password for user %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to set password")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handleDeleteUser removes an account and its calculation history
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	if id == claimsFrom(r.Context()).UserID {
		respondError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := s.accounts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Error deleting user %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requireAccounts answers 503 when no user store is configured.
func (s *Server) requireAccounts(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.accounts == nil {
			respondError(w, http.StatusServiceUnavailable, "User management requires a database")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) lookupUser(w http.ResponseWriter, r *http.Request) (*db.User, bool) {
	id, ok := userIDParam(w, r)
	if !ok {
		return nil, false
	}

	user, err := s.accounts.GetByID(r.Context(), id)
	if errors.Is(err, db.ErrUserNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		log.Printf("Error getting user %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to get user")
		return nil, false
	}
	return user, true
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}
