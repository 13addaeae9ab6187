package service

import "errors"

// Terminal, user-visible failures. The tags double as the machine-readable
// "error" field in HTTP responses; the boundary layer maps each to a status
// code. Anything else propagating out of the service is an internal error
// and surfaces as a 500.
var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidCode reports a TOTP mismatch.
	ErrInvalidCode = errors.New("invalid_code")

	// ErrInvalidToken reports a malformed, unsigned, wrong-type, or expired
	// token.
	ErrInvalidToken = errors.New("invalid_token")

	// ErrTokenBlacklisted reports a structurally valid token that has been
	// explicitly revoked.
	ErrTokenBlacklisted = errors.New("token_blacklisted")

	// ErrUserNotFound means a valid token resolved to an account that no
	// longer exists. Distinct from ErrInvalidCredentials: the token itself
	// was fine.
	ErrUserNotFound = errors.New("user_not_found")

	// Role-tier violations.
	ErrAdminAccess   = errors.New("admin_access_required")
	ErrFounderAccess = errors.New("founder_access_required")

	// User management failures.
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrEmailTaken    = errors.New("email_already_exists")
	ErrUsernameTaken = errors.New("username_already_exists")
)
