package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/pkg/httpx"
	"github.com/chirpnet/chirp/pkg/jwtx"
)

// VerifyEmailHandler serves the email verification flow.
type VerifyEmailHandler struct {
	Accounts *service.AccountService
	Codec    *jwtx.Codec
}

// Verify is reached from the link in the verification email, so it carries
// its own token rather than running behind the access token gate.
func (h *VerifyEmailHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EmailVerifyToken == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, msgVerifyTokenRequired)
		return
	}

	claims, err := h.Codec.Verify(req.EmailVerifyToken, jwtx.KindEmailVerify)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, jwtx.Reason(err))
		return
	}

	_, pair, err := h.Accounts.VerifyEmail(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyVerified) {
			httpx.WriteMessage(w, http.StatusOK, msgEmailAlreadyVerified)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteResult(w, http.StatusOK, msgEmailVerifySuccess, pair)
}

// Resend runs behind the access token gate.
func (h *VerifyEmailHandler) Resend(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	if err := h.Accounts.ResendVerifyEmail(r.Context(), userID); err != nil {
		if errors.Is(err, service.ErrAlreadyVerified) {
			httpx.WriteMessage(w, http.StatusOK, msgEmailAlreadyVerified)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, msgResendVerifySuccess)
}
