package http

import (
	"net/http"

	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/pkg/httpx"
)

// PasswordResetHandler serves the forgot-password flow.
type PasswordResetHandler struct {
	Accounts *service.AccountService
}

func (h *PasswordResetHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, msgCheckEmailToReset)
}

// VerifyToken lets the client check a reset link before showing the form.
func (h *PasswordResetHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req VerifyForgotPasswordRequest
	_ = decodeBody(r, &req)

	if _, ok := gateResetToken(w, r, h.Accounts, req.ForgotPasswordToken); !ok {
		return
	}

	httpx.WriteMessage(w, http.StatusOK, msgVerifyForgotSuccess)
}

func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, ok := gateResetToken(w, r, h.Accounts, req.ForgotPasswordToken)
	if !ok {
		return
	}

	if err := h.Accounts.ResetPassword(r.Context(), user.ID, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, msgResetPwSuccess)
}
