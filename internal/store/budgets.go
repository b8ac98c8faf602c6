package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smartspend/smartspend/internal/domain"
)

// UpsertBudget creates or replaces the user's monthly budget.
func (s *Store) UpsertBudget(ctx context.Context, b *domain.Budget) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, amount, last_alert_sent)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET amount = excluded.amount`,
		b.ID, b.UserID, b.Amount, nullTime(b.LastAlertSent))
	if err != nil {
		return fmt.Errorf("upserting budget: %w", err)
	}
	return nil
}

// GetBudget returns the user's budget, or nil when none is set.
func (s *Store) GetBudget(ctx context.Context, userID string) (*domain.Budget, error) {
	var (
		b    domain.Budget
		last sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, last_alert_sent FROM budgets WHERE user_id = ?`, userID).
		Scan(&b.ID, &b.UserID, &b.Amount, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying budget: %w", err)
	}
	if b.LastAlertSent, err = parseNullTime(last); err != nil {
		return nil, err
	}
	return &b, nil
}

// MarkBudgetAlerted records when an overrun alert went out, for throttling.
func (s *Store) MarkBudgetAlerted(ctx context.Context, budgetID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET last_alert_sent = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), budgetID)
	if err != nil {
		return fmt.Errorf("marking budget alerted: %w", err)
	}
	return nil
}
