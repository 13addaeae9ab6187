package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/slavborworld/auth/internal/auth/domain"
	"github.com/slavborworld/auth/internal/auth/store"
	"github.com/slavborworld/auth/pkg/cryptox"
	"github.com/slavborworld/auth/pkg/jwtx"
	"github.com/slavborworld/auth/pkg/otpx"
	"github.com/slavborworld/auth/pkg/slogx"
)

// Logout confirmation messages. Both are 200-level outcomes, not errors.
const (
	LogoutDone           = "Successful logout"
	LogoutAlreadyExpired = "Token is already expired"
)

// AuthService orchestrates login, the 2FA challenge, token refresh and
// logout. It holds no mutable state of its own; the user store and the
// blacklist carry everything between calls.
type AuthService struct {
	Store     store.Store
	Blacklist store.Blacklist
	Codec     *jwtx.Codec
	OTP       *otpx.Provisioner

	// TwoFactorExempt lists account emails allowed to skip 2FA entirely
	// (the bootstrap administrator). Empty means nobody is exempt.
	TwoFactorExempt []string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	TempTTL    time.Duration
}

// Login checks the password and routes the attempt to one of three outcomes:
// direct tokens for a 2FA-exempt account, a setup response (provisioning URI
// plus temp token) when 2FA has not been confirmed yet, or a challenge
// response (temp token only) when it has.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResult{}, ErrInvalidCredentials
		}
		return domain.LoginResult{}, err
	}

	if err := cryptox.VerifyPassword(password, user.HashedPassword); err != nil {
		l.Info("login password verification failed", "user_id", user.ID)
		return domain.LoginResult{}, ErrInvalidCredentials
	}

	if s.isTwoFactorExempt(user.Email) {
		if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
			return domain.LoginResult{}, err
		}
		pair, err := s.issueTokenPair(user.Email)
		if err != nil {
			return domain.LoginResult{}, err
		}
		l.Info("2fa-exempt login", "user_id", user.ID)
		return domain.LoginResult{Tokens: &pair}, nil
	}

	if !user.TwoFactorEnabled {
		secret := ""
		if user.OTPSecret != nil {
			secret = *user.OTPSecret
		}
		if secret == "" {
			secret, err = s.OTP.GenerateSecret()
			if err != nil {
				return domain.LoginResult{}, err
			}
			if err := s.Store.Users().SetOTPSecret(ctx, user.ID, secret); err != nil {
				return domain.LoginResult{}, err
			}
		}

		uri, err := s.OTP.ProvisioningURI(user.Email, secret)
		if err != nil {
			return domain.LoginResult{}, err
		}

		tempToken, err := s.issueTempToken(user.ID)
		if err != nil {
			return domain.LoginResult{}, err
		}

		return domain.LoginResult{Setup: &domain.TwoFactorSetup{
			OTPURI:    uri,
			TempToken: tempToken,
		}}, nil
	}

	tempToken, err := s.issueTempToken(user.ID)
	if err != nil {
		return domain.LoginResult{}, err
	}

	return domain.LoginResult{Challenge: &domain.TwoFactorChallenge{TempToken: tempToken}}, nil
}

// VerifyTwoFactor consumes a temp token and an OTP code and completes the
// login. The first successful verification flips the user's 2FA flag.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, tempToken, otpCode string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.Decode(tempToken)
	if err != nil || claims.TokenType != jwtx.TokenTypeTemp {
		return domain.TokenPair{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if user.OTPSecret == nil || !s.OTP.Verify(*user.OTPSecret, otpCode) {
		l.Info("otp verification failed", "user_id", user.ID)
		return domain.TokenPair{}, ErrInvalidCode
	}

	now := time.Now().UTC()
	if !user.TwoFactorEnabled {
		// First confirmed code: enable 2FA and stamp the login together.
		if err := s.Store.Users().EnableTwoFactor(ctx, user.ID, now); err != nil {
			return domain.TokenPair{}, err
		}
		l.Info("2fa enabled", "user_id", user.ID)
	} else {
		if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
			return domain.TokenPair{}, err
		}
	}

	return s.issueTokenPair(user.Email)
}

// RefreshTokens mints a new access token from a live refresh token. The
// refresh token is only read, never rotated: it stays valid until its own
// expiry or an explicit logout.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (string, error) {
	revoked, err := s.Blacklist.IsRevoked(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrTokenBlacklisted
	}

	claims, err := s.Codec.Decode(refreshToken)
	if err != nil || claims.TokenType != jwtx.TokenTypeRefresh {
		return "", ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	return s.Codec.Issue(user.Email, jwtx.TokenTypeAccess, s.AccessTTL)
}

// Logout revokes the access token, and the refresh token when present, each
// until its own natural expiry. Returns a confirmation message; an access
// token that had already expired yields LogoutAlreadyExpired, still a
// success.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) (string, error) {
	l := slogx.FromContext(ctx)

	accessExpiry, err := s.Codec.ExpiryOf(accessToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	revoked, err := s.Blacklist.Revoke(ctx, accessToken, accessExpiry)
	if err != nil {
		return "", err
	}

	if refreshToken != "" {
		// Decode the refresh token for its own expiry; revoking it with the
		// access token's expiry would leave it usable again within the hour.
		refreshExpiry, err := s.Codec.ExpiryOf(refreshToken)
		if err != nil {
			l.Warn("logout: refresh token not revocable", "err", err)
		} else if _, err := s.Blacklist.Revoke(ctx, refreshToken, refreshExpiry); err != nil {
			return "", err
		}
	}

	if !revoked {
		return LogoutAlreadyExpired, nil
	}
	return LogoutDone, nil
}

func (s *AuthService) isTwoFactorExempt(email string) bool {
	return slices.ContainsFunc(s.TwoFactorExempt, func(exempt string) bool {
		return strings.EqualFold(strings.TrimSpace(exempt), email)
	})
}

func (s *AuthService) issueTokenPair(email string) (domain.TokenPair, error) {
	access, err := s.Codec.Issue(email, jwtx.TokenTypeAccess, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Codec.Issue(email, jwtx.TokenTypeRefresh, s.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Temp tokens carry the user id, not the email: the 2FA handshake must not
// hand the client a token that protected endpoints could mistake for an
// identity, and the id keeps the email out of the intermediate credential.
func (s *AuthService) issueTempToken(userID int64) (string, error) {
	return s.Codec.Issue(strconv.FormatInt(userID, 10), jwtx.TokenTypeTemp, s.TempTTL)
}
