package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/slavborworld/auth/internal/auth/domain"
)

const userColumns = `id, username, email, hashed_password, role,
	is_2fa_enabled, otp_secret, last_login, created_at, updated_at`

type usersRepo struct {
	db *sql.DB
}

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var r userRow
	err := row.Scan(
		&r.id, &r.username, &r.email, &r.hashedPassword, &r.role,
		&r.twoFAEnabled, &r.otpSecret, &r.lastLogin, &r.createdAt, &r.updatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return r.toDomain(), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, hashed_password, role, is_2fa_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		u.Username, u.Email, u.HashedPassword, string(u.Role), now, now,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}

	return r.GetUserByID(ctx, id)
}

func (r *usersRepo) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.exec(ctx,
		`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), userID)
}

func (r *usersRepo) SetOTPSecret(ctx context.Context, userID int64, secret string) error {
	return r.exec(ctx,
		`UPDATE users SET otp_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID)
}

func (r *usersRepo) EnableTwoFactor(ctx context.Context, userID int64, at time.Time) error {
	return r.exec(ctx,
		`UPDATE users SET is_2fa_enabled = 1, last_login = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), userID)
}

func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
