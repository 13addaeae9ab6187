package domain

// TokenPair is what a completed authentication yields. The refresh token
// travels back to the client only as an httpOnly cookie; the access token in
// the JSON body.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TwoFactorSetup is returned on first login before 2FA has been confirmed:
// the client renders OTPURI as a QR code and comes back with a code plus the
// temp token.
type TwoFactorSetup struct {
	OTPURI    string
	TempToken string
}

// TwoFactorChallenge is returned when 2FA is fully enabled; only the temp
// token is needed.
type TwoFactorChallenge struct {
	TempToken string
}

// LoginResult is the union of the three login outcomes. Exactly one field is
// non-nil.
type LoginResult struct {
	Tokens    *TokenPair          // 2FA-exempt account, direct success
	Setup     *TwoFactorSetup     // 2FA not yet confirmed
	Challenge *TwoFactorChallenge // 2FA enabled, code required
}
