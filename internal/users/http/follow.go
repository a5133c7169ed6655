package http

import (
	"net/http"

	"github.com/chirpnet/chirp/internal/users/service"
	"github.com/chirpnet/chirp/pkg/httpx"
)

// FollowHandler serves the follow graph. Both operations are idempotent;
// repeating one reports the already-done case as success.
type FollowHandler struct {
	Follows *service.FollowService
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	already, err := h.Follows.Follow(r.Context(), httpx.UserIDFromContext(r.Context()), req.FollowedUserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if already {
		httpx.WriteMessage(w, http.StatusOK, msgAlreadyFollowed)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, msgFollowSuccess)
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	already, err := h.Follows.Unfollow(r.Context(), httpx.UserIDFromContext(r.Context()), r.PathValue("user_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if already {
		httpx.WriteMessage(w, http.StatusOK, msgAlreadyUnfollowed)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, msgUnfollowSuccess)
}
