package service

import (
	"context"
	"errors"

	"github.com/slavborworld/auth/internal/auth/domain"
	"github.com/slavborworld/auth/internal/auth/store"
	"github.com/slavborworld/auth/pkg/jwtx"
)

// ResolveIdentity validates a bearer token of the required type and returns
// the account it belongs to. Every protected endpoint goes through here.
//
// Order matters: the blacklist is consulted before decoding so a revoked
// token reports token_blacklisted rather than collapsing into invalid_token
// once it also expires.
func (s *AuthService) ResolveIdentity(ctx context.Context, raw string, required jwtx.TokenType) (domain.User, error) {
	if raw == "" {
		return domain.User{}, ErrInvalidToken
	}

	revoked, err := s.Blacklist.IsRevoked(ctx, raw)
	if err != nil {
		return domain.User{}, err
	}
	if revoked {
		return domain.User{}, ErrTokenBlacklisted
	}

	claims, err := s.Codec.Decode(raw)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}
	if claims.TokenType != required || claims.Subject == "" {
		return domain.User{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	return user, nil
}

// RequireAdminTier passes users whose role is keeper or found_father.
func RequireAdminTier(user domain.User) error {
	if !user.Role.AdminTier() {
		return ErrAdminAccess
	}
	return nil
}

// RequireFounder passes only the found_father role.
func RequireFounder(user domain.User) error {
	if user.Role != domain.RoleFoundFather {
		return ErrFounderAccess
	}
	return nil
}
