package http

import (
	"encoding/json"
	"net/http"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/pkg/httpx"
)

// gateRefreshToken reads the refresh token from the body and validates it
// against both the codec and the stored session. Writes the error response
// itself; callers stop when ok is false.
func gateRefreshToken(w http.ResponseWriter, r *http.Request, accounts *service.AccountService) (LogoutRequest, bool) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, msgRefreshTokenRequired)
		return LogoutRequest{}, false
	}

	if _, err := accounts.CheckRefreshToken(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return LogoutRequest{}, false
	}
	return req, true
}

// gateResetToken validates the forgot-password token from an
// already-decoded body value and returns the owning user.
func gateResetToken(w http.ResponseWriter, r *http.Request, accounts *service.AccountService, token string) (domain.User, bool) {
	if token == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, msgForgotTokenRequired)
		return domain.User{}, false
	}

	user, err := accounts.CheckResetToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return domain.User{}, false
	}
	return user, true
}
