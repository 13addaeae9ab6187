package http

import (
	"net/http"

	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/pkg/httpx"
)

// RefreshHandler handles POST /api/auth/refresh.
type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles POST /api/auth/refresh
//
//	@Summary		Mint a new access token
//	@Description	Reads the refresh token from the cookie and returns a fresh access token. The refresh token itself is not rotated.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	LoginResponse
//	@Failure		401	{object}	ErrorResponse	"Missing, invalid or revoked refresh token"
//	@Router			/api/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromCookie(r)
	if refreshToken == "" {
		writeServiceError(w, r, service.ErrInvalidToken)
		return
	}

	accessToken, err := h.AuthService.RefreshTokens(r.Context(), refreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{AccessToken: accessToken})
}
