package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/smartspend/smartspend/internal/domain"
)

// CreateUser inserts a user.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, mobile_number) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.MobileNumber)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, mobile_number FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.MobileNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users. The scheduler iterates these for budget and
// report runs.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, mobile_number FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.MobileNumber); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}
