package http

import (
	"net/http"

	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/pkg/httpx"
)

// ProfileHandler serves public profiles by username.
type ProfileHandler struct {
	Accounts *service.AccountService
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Accounts.GetProfile(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteResult(w, http.StatusOK, msgGetProfileSuccess, profile)
}
