package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/slavborworld/auth/internal/auth/domain"
	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/pkg/httpx"
	"github.com/slavborworld/auth/pkg/jwtx"
	"github.com/slavborworld/auth/pkg/slogx"
)

// UsersHandler handles the admin user-management endpoints.
type UsersHandler struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

type CreateUserRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// HandleList handles GET /api/users
//
//	@Summary		List accounts
//	@Description	Paginated account listing. Requires the keeper or found_father role.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Zero-based page"
//	@Param			size	query		int	false	"Page size (max 100)"
//	@Success		200		{array}		UserResponse
//	@Failure		401		{object}	ErrorResponse	"Invalid or revoked token"
//	@Failure		403		{object}	ErrorResponse	"Insufficient role"
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.AuthService.ResolveIdentity(ctx, bearerToken(r), jwtx.TokenTypeAccess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := service.RequireAdminTier(user); err != nil {
		writeServiceError(w, r, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	users, err := h.UserService.ListUsers(ctx, page, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /api/users
//
//	@Summary		Create an account
//	@Description	Creates an account with a hashed password. Requires the found_father role. The new account goes through 2FA setup on its first login.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUserRequest	true	"New account"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse	"Validation failure or duplicate"
//	@Failure		401		{object}	ErrorResponse	"Invalid or revoked token"
//	@Failure		403		{object}	ErrorResponse	"Insufficient role"
//	@Router			/api/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	caller, err := h.AuthService.ResolveIdentity(ctx, bearerToken(r), jwtx.TokenTypeAccess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := service.RequireFounder(caller); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid JSON body")
		return
	}

	user, err := h.UserService.CreateUser(ctx, service.CreateUserParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("user created", "user_id", user.ID, "role", user.Role, "created_by", caller.ID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}
