package http

import (
	"net/http"
	"time"

	"github.com/slavborworld/auth/internal/auth/domain"
	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/pkg/httpx"
	"github.com/slavborworld/auth/pkg/jwtx"
)

// UserInfoHandler handles GET /api/users/me.
type UserInfoHandler struct {
	AuthService *service.AuthService
}

// UserResponse is the public rendering of an account. The password hash and
// OTP secret never leave the service.
type UserResponse struct {
	ID               int64       `json:"id"`
	Username         string      `json:"username"`
	Email            string      `json:"email"`
	Role             domain.Role `json:"role"`
	TwoFactorEnabled bool        `json:"is_2fa_enabled"`
	LastLogin        *time.Time  `json:"last_login,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             u.Role,
		TwoFactorEnabled: u.TwoFactorEnabled,
		LastLogin:        u.LastLogin,
		CreatedAt:        u.CreatedAt,
	}
}

// ServeHTTP handles GET /api/users/me
//
//	@Summary		Current account
//	@Description	Resolves the bearer access token to the account it belongs to.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	ErrorResponse	"Invalid or revoked token"
//	@Failure		404	{object}	ErrorResponse	"Account no longer exists"
//	@Router			/api/users/me [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := h.AuthService.ResolveIdentity(r.Context(), bearerToken(r), jwtx.TokenTypeAccess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
