package http

import (
	"encoding/json"
	"net/http"

	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/pkg/httpx"
	"github.com/slavborworld/auth/pkg/slogx"
)

// LoginHandler handles POST /api/auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the direct-success shape; the refresh token travels in
// the cookie, never the body.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// TwoFASetupResponse is returned on first login, before 2FA is confirmed.
type TwoFASetupResponse struct {
	OTPURI    string `json:"otp_uri"`
	TempToken string `json:"temp_token"`
}

// TwoFARequiredResponse is returned once 2FA is enabled.
type TwoFARequiredResponse struct {
	TempToken string `json:"temp_token"`
}

// ServeHTTP handles POST /api/auth/login
//
//	@Summary		Password login
//	@Description	Verifies the password and returns one of three shapes: an access token (2FA-exempt account, refresh cookie set), a 2FA setup response (otp_uri + temp_token), or a 2FA challenge response (temp_token only).
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse	"One of LoginResponse, TwoFASetupResponse, TwoFARequiredResponse"
//	@Failure		401		{object}	ErrorResponse	"Invalid credentials"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid JSON body")
		return
	}

	result, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	switch {
	case result.Tokens != nil:
		setRefreshCookie(w, result.Tokens.RefreshToken)
		httpx.WriteJSON(w, http.StatusOK, LoginResponse{AccessToken: result.Tokens.AccessToken})
	case result.Setup != nil:
		httpx.WriteJSON(w, http.StatusOK, TwoFASetupResponse{
			OTPURI:    result.Setup.OTPURI,
			TempToken: result.Setup.TempToken,
		})
	case result.Challenge != nil:
		httpx.WriteJSON(w, http.StatusOK, TwoFARequiredResponse{TempToken: result.Challenge.TempToken})
	default:
		log.Error("login produced no outcome")
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "server_error",
			Detail: "Internal server error",
		})
	}
}
