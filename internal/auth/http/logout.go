package http

import (
	"net/http"

	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/pkg/httpx"
)

// LogoutHandler handles POST /api/auth/logout.
type LogoutHandler struct {
	AuthService *service.AuthService
}

type LogoutResponse struct {
	Detail string `json:"detail"`
}

// ServeHTTP handles POST /api/auth/logout
//
//	@Summary		Log out
//	@Description	Revokes the bearer access token and the cookie-delivered refresh token, each until its own expiry, and clears the refresh cookie.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	LogoutResponse
//	@Failure		401	{object}	ErrorResponse	"Missing or invalid access token"
//	@Router			/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accessToken := bearerToken(r)
	if accessToken == "" {
		writeServiceError(w, r, service.ErrInvalidToken)
		return
	}

	detail, err := h.AuthService.Logout(r.Context(), accessToken, refreshTokenFromCookie(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearRefreshCookie(w)
	httpx.WriteJSON(w, http.StatusOK, LogoutResponse{Detail: detail})
}
