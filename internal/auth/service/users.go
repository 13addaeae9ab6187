package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/slavborworld/auth/internal/auth/domain"
	"github.com/slavborworld/auth/internal/auth/store"
	"github.com/slavborworld/auth/pkg/cryptox"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserService covers the small user-management surface the auth service
// owns: the caller's own profile, the admin listing, and founder-tier
// account creation.
type UserService struct {
	Store store.Store
}

type CreateUserParams struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// CreateUser validates, hashes the password and inserts the account. New
// accounts start with 2FA unconfigured; setup begins on their first login.
func (s *UserService) CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error) {
	if !emailPattern.MatchString(p.Email) {
		return domain.User{}, ErrInvalidEmail
	}
	if p.Username == "" || p.Password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if !p.Role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	// Pre-check for a friendlier error than the UNIQUE constraint gives;
	// the constraint still backstops races.
	if _, err := s.Store.Users().GetUserByEmail(ctx, p.Email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:       p.Username,
		Email:          p.Email,
		HashedPassword: hash,
		Role:           p.Role,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

// ListUsers returns one page of accounts, ordered by id.
func (s *UserService) ListUsers(ctx context.Context, page, size int) ([]domain.User, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	return s.Store.Users().ListUsers(ctx, page*size, size)
}
