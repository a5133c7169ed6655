package http

import (
	"net/http"

	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/pkg/httpx"
)

// AuthHandler serves registration, login, and logout.
type AuthHandler struct {
	Accounts *service.AccountService
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	_, pair, err := h.Accounts.Register(r.Context(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: parseDate(req.DateOfBirth),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteResult(w, http.StatusOK, msgRegisterSuccess, pair)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	_, pair, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteResult(w, http.StatusOK, msgLoginSuccess, pair)
}

// Logout runs behind the access token gate and additionally requires a
// live refresh token in the body.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	req, ok := gateRefreshToken(w, r, h.Accounts)
	if !ok {
		return
	}

	if err := h.Accounts.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, msgLogoutSuccess)
}
