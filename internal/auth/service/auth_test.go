package service

import (
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/slavborworld/auth/internal/auth/domain"
	"github.com/slavborworld/auth/internal/auth/store/drivers/memory"
	"github.com/slavborworld/auth/internal/auth/store/drivers/sqlite"
	"github.com/slavborworld/auth/pkg/cryptox"
	"github.com/slavborworld/auth/pkg/jwtx"
	"github.com/slavborworld/auth/pkg/otpx"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "auth_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec("test-secret-key", "HS256", "slavbor-auth")
	require.NoError(t, err)

	return &AuthService{
		Store:      st,
		Blacklist:  memory.NewBlacklist(),
		Codec:      codec,
		OTP:        &otpx.Provisioner{Issuer: "Slavbor World"},
		AccessTTL:  jwtx.AccessTokenTTL,
		RefreshTTL: jwtx.RefreshTokenTTL,
		TempTTL:    jwtx.TempTokenTTL,
	}
}

func createTestUser(t *testing.T, s *AuthService, email, password string, role domain.Role) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user, err := s.Store.Users().CreateUser(t.Context(), domain.User{
		Username:       email[:len(email)-len("@example.com")],
		Email:          email,
		HashedPassword: hash,
		Role:           role,
	})
	require.NoError(t, err)
	return user
}

func secretFromURI(t *testing.T, uri string) string {
	t.Helper()

	parsed, err := url.Parse(uri)
	require.NoError(t, err)
	secret := parsed.Query().Get("secret")
	require.NotEmpty(t, secret)
	return secret
}

func TestLoginEnumerationResistance(t *testing.T) {
	t.Parallel()
	s := newTestAuthService(t)
	createTestUser(t, s, "alice@example.com", "Secret123!", domain.RolePlayer)

	_, errUnknown := s.Login(t.Context(), "nobody@example.com", "Secret123!")
	_, errWrongPwd := s.Login(t.Context(), "alice@example.com", "wrong-password")

	// Same error for "no such user" and "wrong password".
	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPwd, ErrInvalidCredentials)
}

func TestLoginTwoFactorProgression(t *testing.T) {
	t.Parallel()
	s := newTestAuthService(t)
	ctx := t.Context()
	user := createTestUser(t, s, "alice@example.com", "Secret123!", domain.RolePlayer)

	// First login: no secret yet, so the result is a setup response.
	result, err := s.Login(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	require.Nil(t, result.Tokens)
	require.Nil(t, result.Challenge)
	require.NotNil(t, result.Setup)
	require.NotEmpty(t, result.Setup.OTPURI)
	require.NotEmpty(t, result.Setup.TempToken)

	secret := secretFromURI(t, result.Setup.OTPURI)

	// Second login before confirmation: still setup, same secret.
	again, err := s.Login(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	require.NotNil(t, again.Setup)
	require.Equal(t, secret, secretFromURI(t, again.Setup.OTPURI))

	// Submit the current code: tokens issued, 2FA flipped on.
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	pair, err := s.VerifyTwoFactor(ctx, result.Setup.TempToken, code)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	stored, err := s.Store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.TwoFactorEnabled)
	require.NotNil(t, stored.LastLogin)

	// Subsequent logins go through the challenge path, never setup again.
	challenge, err := s.Login(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	require.Nil(t, challenge.Setup)
	require.NotNil(t, challenge.Challenge)

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	pair, err = s.VerifyTwoFactor(ctx, challenge.Challenge.TempToken, code)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
}

func TestLoginTwoFactorExempt(t *testing.T) {
	t.Parallel()
	s := newTestAuthService(t)
	s.TwoFactorExempt = []string{"founder@example.com"}
	ctx := t.Context()

	user := createTestUser(t, s, "founder@example.com", "Secret123!", domain.RoleFoundFather)
	createTestUser(t, s, "alice@example.com", "Secret123!", domain.RolePlayer)

	result, err := s.Login(ctx, "founder@example.com", "Secret123!")
	require.NoError(t, err)
	require.NotNil(t, result.Tokens, "exempt account skips 2FA entirely")
	require.NotEmpty(t, result.Tokens.AccessToken)
	require.NotEmpty(t, result.Tokens.RefreshToken)

	stored, err := s.Store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	// Non-exempt accounts still get the setup path.
	other, err := s.Login(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	require.Nil(t, other.Tokens)
	require.NotNil(t, other.Setup)
}

func TestVerifyTwoFactorFailures(t *testing.T) {
	t.Parallel()
	s := newTestAuthService(t)
	ctx := t.Context()
	createTestUser(t, s, "alice@example.com", "Secret123!", domain.RolePlayer)

	result, err := s.Login(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	secret := secretFromURI(t, result.Setup.OTPURI)

	t.Run("wrong code", func(t *testing.T) {
		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		_, err = s.VerifyTwoFactor(ctx, result.Setup.TempToken, wrong)
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("garbage temp token", func(t *testing.T) {
		_, err := s.VerifyTwoFactor(ctx, "not-a-token", "123456")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired temp token", func(t *testing.T) {
		expired, err := s.Codec.Issue("1", jwtx.TokenTypeTemp, -time.Second)
		require.NoError(t, err)
		_, err = s.VerifyTwoFactor(ctx, expired, "123456")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("access token where temp is required", func(t *testing.T) {
		access, err := s.Codec.Issue("alice@example.com", jwtx.TokenTypeAccess, time.Minute)
		require.NoError(t, err)
		_, err = s.VerifyTwoFactor(ctx, access, "123456")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("temp token for a deleted account", func(t *testing.T) {
		orphan, err := s.Codec.Issue("99999", jwtx.TokenTypeTemp, time.Minute)
		require.NoError(t, err)
		_, err = s.VerifyTwoFactor(ctx, orphan, "123456")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshTokens(t *testing.T) {
	t.Parallel()
	s := newTestAuthService(t)
	s.TwoFactorExempt = []string{"founder@example.com"}
	ctx := t.Context()
	createTestUser(t, s, "founder@example.com", "Secret123!", domain.RoleFoundFather)

	result, err := s.Login(ctx, "founder@example.com", "Secret123!")
	require.NoError(t, err)

	t.Run("mints a new access token", func(t *testing.T) {
		access, err := s.RefreshTokens(ctx, result.Tokens.RefreshToken)
		require.NoError(t, err)

		claims, err := s.Codec.Decode(access)
		require.NoError(t, err)
		require.Equal(t, jwtx.TokenTypeAccess, claims.TokenType)
		require.Equal(t, "founder@example.com", claims.Subject)
	})

	t.Run("not rotated: the same refresh token keeps working", func(t *testing.T) {
		_, err := s.RefreshTokens(ctx, result.Tokens.RefreshToken)
		require.NoError(t, err)
		_, err = s.RefreshTokens(ctx, result.Tokens.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		_, err := s.RefreshTokens(ctx, result.Tokens.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired refresh token", func(t *testing.T) {
		expired, err := s.Codec.Issue("founder@example.com", jwtx.TokenTypeRefresh, -time.Second)
		require.NoError(t, err)
		_, err = s.RefreshTokens(ctx, expired)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a refresh token for an unknown subject", func(t *testing.T) {
		orphan, err := s.Codec.Issue("ghost@example.com", jwtx.TokenTypeRefresh, time.Minute)
		require.NoError(t, err)
		_, err = s.RefreshTokens(ctx, orphan)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects a revoked refresh token", func(t *testing.T) {
		expiry, err := s.Codec.ExpiryOf(result.Tokens.RefreshToken)
		require.NoError(t, err)
		_, err = s.Blacklist.Revoke(ctx, result.Tokens.RefreshToken, expiry)
		require.NoError(t, err)

		_, err = s.RefreshTokens(ctx, result.Tokens.RefreshToken)
		require.ErrorIs(t, err, ErrTokenBlacklisted)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	s := newTestAuthService(t)
	s.TwoFactorExempt = []string{"founder@example.com"}
	ctx := t.Context()
	createTestUser(t, s, "founder@example.com", "Secret123!", domain.RoleFoundFather)

	t.Run("revokes both tokens for their full lifetimes", func(t *testing.T) {
		result, err := s.Login(ctx, "founder@example.com", "Secret123!")
		require.NoError(t, err)
		pair := result.Tokens

		detail, err := s.Logout(ctx, pair.AccessToken, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, LogoutDone, detail)

		// The revoked access token reports blacklisted, not invalid.
		_, err = s.ResolveIdentity(ctx, pair.AccessToken, jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, ErrTokenBlacklisted)

		_, err = s.RefreshTokens(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrTokenBlacklisted)
	})

	t.Run("already-expired access token", func(t *testing.T) {
		expired, err := s.Codec.Issue("founder@example.com", jwtx.TokenTypeAccess, -time.Second)
		require.NoError(t, err)

		detail, err := s.Logout(ctx, expired, "")
		require.NoError(t, err)
		require.Equal(t, LogoutAlreadyExpired, detail)
	})

	t.Run("garbage access token is a hard failure", func(t *testing.T) {
		_, err := s.Logout(ctx, "not-a-token", "")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		result, err := s.Login(ctx, "founder@example.com", "Secret123!")
		require.NoError(t, err)

		_, err = s.Logout(ctx, result.Tokens.AccessToken, result.Tokens.RefreshToken)
		require.NoError(t, err)
		detail, err := s.Logout(ctx, result.Tokens.AccessToken, result.Tokens.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, LogoutDone, detail)
	})
}

func TestResolveIdentity(t *testing.T) {
	t.Parallel()
	s := newTestAuthService(t)
	ctx := t.Context()
	user := createTestUser(t, s, "alice@example.com", "Secret123!", domain.RoleKeeper)

	access, err := s.Codec.Issue("alice@example.com", jwtx.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	t.Run("resolves the account", func(t *testing.T) {
		got, err := s.ResolveIdentity(ctx, access, jwtx.TokenTypeAccess)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.Equal(t, domain.RoleKeeper, got.Role)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := s.ResolveIdentity(ctx, "", jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("type mismatch both directions", func(t *testing.T) {
		refresh, err := s.Codec.Issue("alice@example.com", jwtx.TokenTypeRefresh, time.Minute)
		require.NoError(t, err)

		_, err = s.ResolveIdentity(ctx, refresh, jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = s.ResolveIdentity(ctx, access, jwtx.TokenTypeRefresh)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("valid token for a deleted account", func(t *testing.T) {
		ghost, err := s.Codec.Issue("ghost@example.com", jwtx.TokenTypeAccess, time.Minute)
		require.NoError(t, err)
		_, err = s.ResolveIdentity(ctx, ghost, jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRoleGuards(t *testing.T) {
	t.Parallel()

	player := domain.User{Role: domain.RolePlayer}
	keeper := domain.User{Role: domain.RoleKeeper}
	founder := domain.User{Role: domain.RoleFoundFather}

	require.ErrorIs(t, RequireAdminTier(player), ErrAdminAccess)
	require.NoError(t, RequireAdminTier(keeper))
	require.NoError(t, RequireAdminTier(founder))

	require.ErrorIs(t, RequireFounder(player), ErrFounderAccess)
	require.ErrorIs(t, RequireFounder(keeper), ErrFounderAccess)
	require.NoError(t, RequireFounder(founder))
}
