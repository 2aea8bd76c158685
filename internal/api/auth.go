package api

import (
	"errors"
	"net/http"

	"github.com/hearthwise/hearth-core/internal/auth"
)

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// handleRegister creates a new account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidUsername):
			writeBadRequest(w, "username must be 1-64 characters: letters, digits, dots, hyphens, underscores")
		case errors.Is(err, auth.ErrWeakPassword):
			writeBadRequest(w, "password must be at least 8 characters")
		case errors.Is(err, auth.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		default:
			s.logger.Error("registering user", "error", err)
			writeInternalError(w, "could not create account")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// handleLogin verifies credentials and issues a token pair.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	pair, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("logging in", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh rotates a refresh token and issues a fresh pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil || req.Refresh == "" {
		writeBadRequest(w, "refresh token required")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenInvalid),
			errors.Is(err, auth.ErrTokenExpired),
			errors.Is(err, auth.ErrTokenRevoked):
			writeUnauthorized(w, "invalid refresh token")
		default:
			s.logger.Error("refreshing token", "error", err)
			writeInternalError(w, "refresh failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// handleLogout revokes the presented refresh token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil || req.Refresh == "" {
		writeBadRequest(w, "refresh token required")
		return
	}

	if err := s.auth.Logout(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) {
			writeBadRequest(w, "unknown refresh token")
			return
		}
		s.logger.Error("logging out", "error", err)
		writeInternalError(w, "logout failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
