package http

import (
	"net/http"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/pkg/httpx"
)

// MeHandler serves the authenticated user's own profile.
type MeHandler struct {
	Accounts *service.AccountService
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Accounts.GetMe(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteResult(w, http.StatusOK, msgGetMeSuccess, profile)
}

func (h *MeHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patch := domain.UserPatch{
		Name:       req.Name,
		Bio:        req.Bio,
		Location:   req.Location,
		Website:    req.Website,
		Username:   req.Username,
		Avatar:     req.Avatar,
		CoverPhoto: req.CoverPhoto,
	}
	if req.DateOfBirth != nil {
		patch.DateOfBirth = parseDate(*req.DateOfBirth)
	}

	userID := httpx.UserIDFromContext(r.Context())
	if _, err := h.Accounts.UpdateMe(r.Context(), userID, patch); err != nil {
		writeServiceError(w, r, err)
		return
	}

	profile, err := h.Accounts.GetMe(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteResult(w, http.StatusOK, msgUpdateMeSuccess, profile)
}
