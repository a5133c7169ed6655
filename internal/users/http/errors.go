package http

import (
	"errors"
	"net/http"

	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/pkg/httpx"
	"github.com/chirpnet/chirp/pkg/jwtx"
	"github.com/chirpnet/chirp/pkg/slogx"
)

// writeServiceError maps service sentinels to HTTP responses. Anything
// unshaped is logged and surfaces as a generic 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteMessage(w, http.StatusBadRequest, msgBadCredentials)
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteMessage(w, http.StatusConflict, msgEmailTaken)
	case errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteMessage(w, http.StatusConflict, msgUsernameTaken)
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteMessage(w, http.StatusUnauthorized, msgUsedRefreshToken)
	case errors.Is(err, service.ErrInvalidResetToken):
		httpx.WriteMessage(w, http.StatusUnauthorized, msgInvalidForgotToken)
	case errors.Is(err, service.ErrSelfFollow):
		httpx.WriteMessage(w, http.StatusBadRequest, msgCannotFollowSelf)
	case errors.Is(err, jwtx.ErrExpired), errors.Is(err, jwtx.ErrMalformed):
		httpx.WriteMessage(w, http.StatusUnauthorized, jwtx.Reason(err))
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, msgInternalError)
	}
}
