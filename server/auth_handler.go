package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"KPlayer/core/auth"
	"KPlayer/logger"
)

type contextKey string

const identityKey contextKey = "identity"

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterHandler handles user registration requests
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, err := h.auth.SignUp(r.Context(), req.DisplayName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			logger.Error("[Register] failed to create user", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, identity)
}

// LoginHandler handles user login requests
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			logger.Error("[Login] sign-in failed", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	logger.Info("[Login] signed in", logger.String("uid", identity.UID))
	writeJSON(w, http.StatusOK, identity)
}

// LogoutHandler revokes the bearer token of the request.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Authorization header is required")
		return
	}
	if err := h.auth.SignOut(r.Context(), token); err != nil {
		logger.Error("[Logout] failed to revoke session", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware rejects requests without a live session token.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		identity, err := h.auth.Verify(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				logger.Error("failed to verify token", logger.ErrorField(err))
			}
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// tokenFromRequest reads a Bearer token, falling back to the token query
// parameter browsers use for websocket handshakes.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return r.URL.Query().Get("token")
}

// GetIdentityFromContext extracts the signed-in user from the request context
func GetIdentityFromContext(ctx context.Context) (*auth.Identity, error) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	if !ok || identity == nil {
		return nil, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}
