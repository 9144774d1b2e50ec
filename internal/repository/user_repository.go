package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/job-application-tracker/internal/model"
)

// UserRepo manages persistence for the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,email,password_hash,two_factor_secret,created_at,updated_at"

// Create inserts a user with a server-assigned uuid and returns the stored
// row.  The email must already be normalized; the password must already be
// hashed.  A unique-key collision on email maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (model.User, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?,?,?)",
		id, email, passwordHash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a user by normalized email.  Returns ErrUserNotFound
// when no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.  Returns ErrUserNotFound when no row matches.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.get(ctx, "SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
}

// SetTwoFactorSecret stores a freshly generated TOTP secret on the user,
// overwriting any previous one.
func (r *UserRepo) SetTwoFactorSecret(ctx context.Context, id, secret string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET two_factor_secret=? WHERE id=?", secret, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	var secret sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &secret, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if secret.Valid {
		u.TwoFactorSecret = &secret.String
	}
	return u, nil
}
