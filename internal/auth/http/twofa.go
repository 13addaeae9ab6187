package http

import (
	"encoding/json"
	"net/http"

	"github.com/slavborworld/auth/internal/auth/service"
	"github.com/slavborworld/auth/pkg/httpx"
)

// TwoFAVerifyHandler handles POST /api/auth/2fa/verify.
type TwoFAVerifyHandler struct {
	AuthService *service.AuthService
}

type TwoFAVerifyRequest struct {
	OTPCode   string `json:"otp_code"`
	TempToken string `json:"temp_token"`
}

// ServeHTTP handles POST /api/auth/2fa/verify
//
//	@Summary		Complete the 2FA challenge
//	@Description	Exchanges a temp token plus the current TOTP code for an access token. The first successful verification enables 2FA on the account. Sets the refresh cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TwoFAVerifyRequest	true	"Temp token and one-time code"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	ErrorResponse	"Invalid code or temp token"
//	@Router			/api/auth/2fa/verify [post].
func (h *TwoFAVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req TwoFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid JSON body")
		return
	}

	pair, err := h.AuthService.VerifyTwoFactor(r.Context(), req.TempToken, req.OTPCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setRefreshCookie(w, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{AccessToken: pair.AccessToken})
}
