package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/smartspend/smartspend/internal/domain"
)

// CreateAccount inserts an account. When the account is marked default, any
// previous default of the same user is demoted in the same transaction.
func (s *Store) CreateAccount(ctx context.Context, a *domain.Account) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE accounts SET is_default = 0 WHERE user_id = ?`, a.UserID); err != nil {
				return fmt.Errorf("demoting previous default account: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, user_id, name, type, balance, is_default)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.UserID, a.Name, a.Type, a.Balance, a.IsDefault)
		if err != nil {
			return fmt.Errorf("inserting account: %w", err)
		}
		return nil
	})
}

// GetAccount fetches one account, scoped to its owner. A wrong user id looks
// identical to a missing account.
func (s *Store) GetAccount(ctx context.Context, id, userID string) (*domain.Account, error) {
	var a domain.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, balance, is_default
		 FROM accounts WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}
	return &a, nil
}

// DefaultAccount returns the user's default account, or ErrAccountNotFound
// when none is marked.
func (s *Store) DefaultAccount(ctx context.Context, userID string) (*domain.Account, error) {
	var a domain.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, balance, is_default
		 FROM accounts WHERE user_id = ? AND is_default = 1`, userID).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying default account: %w", err)
	}
	return &a, nil
}

// ListAccounts returns the user's accounts, default first.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, balance, is_default
		 FROM accounts WHERE user_id = ? ORDER BY is_default DESC, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// applyBalanceDelta adjusts an account balance inside an existing database
// transaction. A zero rows-affected result means the account vanished, which
// must abort the surrounding commit.
func applyBalanceDelta(ctx context.Context, tx *sql.Tx, accountID string, delta float64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + ? WHERE id = ?`, delta, accountID)
	if err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking balance update: %w", err)
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}
