package http

import (
	"errors"
	"net/http"

	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/pkg/httpx"
	"github.com/slavborworld/auth/pkg/slogx"
)

// ErrorResponse is the uniform error body: a stable machine-readable tag
// plus a human-readable message.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// serviceErrors maps each service sentinel to its transport rendering. The
// sentinel text itself is the tag.
var serviceErrors = []struct {
	err    error
	status int
	detail string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Could not validate credentials"},
	{service.ErrInvalidCode, http.StatusUnauthorized, "Invalid one-time code"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Could not validate credentials"},
	{service.ErrTokenBlacklisted, http.StatusUnauthorized, "Token has been revoked"},
	{service.ErrUserNotFound, http.StatusNotFound, "User is not found"},
	{service.ErrAdminAccess, http.StatusForbidden, "Only keeper or found father have access"},
	{service.ErrFounderAccess, http.StatusForbidden, "Only found father have access"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "Invalid email address"},
	{service.ErrInvalidRole, http.StatusBadRequest, "Invalid role"},
	{service.ErrEmailTaken, http.StatusBadRequest, "User with this email already exists"},
	{service.ErrUsernameTaken, http.StatusBadRequest, "User with this name already exists"},
}

// writeServiceError translates a service failure into the uniform error
// body. Anything outside the sentinel set is internal: logged in full,
// rendered opaque.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			httpx.WriteJSON(w, m.status, ErrorResponse{Error: m.err.Error(), Detail: m.detail})
			return
		}
	}

	slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
	httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:  "server_error",
		Detail: "Internal server error",
	})
}

func writeInvalidRequest(w http.ResponseWriter, detail string) {
	httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Detail: detail})
}
