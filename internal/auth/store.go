package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound is returned when no account matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// StoredUser is one row of the users table. PasswordHash is null for
// OAuth-only accounts.
type StoredUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash pgtype.Text
	DisplayName  string
	Metadata     []byte
}

// CreateUserParams for inserting a new account.
type CreateUserParams struct {
	Email        string
	PasswordHash pgtype.Text
	DisplayName  string
	Metadata     []byte
}

// Store persists user accounts in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (StoredUser, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, display_name, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING user_id, email, password_hash, display_name, metadata`,
		params.Email, params.PasswordHash, params.DisplayName, params.Metadata)
	return scanUser(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (StoredUser, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT user_id, email, password_hash, display_name, metadata
		 FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (StoredUser, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT user_id, email, password_hash, display_name, metadata
		 FROM users WHERE user_id = $1`, id)
	return scanUser(row)
}

func (s *Store) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE user_id = $1`, id)
	return err
}

func scanUser(row pgx.Row) (StoredUser, error) {
	var u StoredUser
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Metadata); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredUser{}, ErrUserNotFound
		}
		return StoredUser{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
