package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/verte-zerg/typrr/internal/model"
)

// CreateUser inserts a new account. Email and username must both be unused.
func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (model.User, error) {
	var exists int
	err := s.queryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`, email, username).Scan(&exists)
	if err != nil {
		return model.User{}, err
	}
	if exists > 0 {
		return model.User{}, ErrDuplicate
	}

	createdAt := s.timestamp()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.User{}, err
	}
	_, err = s.exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.PasswordHash, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UserByEmail looks up an account by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.scanUser(s.queryRow(ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE email = ?`, email))
}

// UserByID looks up an account by id.
func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	return s.scanUser(s.queryRow(ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (s *Store) scanUser(row *sql.Row) (model.User, error) {
	var user model.User
	var createdAt string
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return model.User{}, err
	}
	user.CreatedAt = parsed
	return user, nil
}
