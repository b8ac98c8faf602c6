package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smartspend/smartspend/internal/domain"
)

const dateLayout = "2006-01-02"

// CommitImport persists a batch of transactions and applies the net balance
// delta to the account atomically. Either every row lands and the balance
// moves, or nothing changes.
func (s *Store) CommitImport(ctx context.Context, accountID string, txns []*domain.Transaction, delta float64) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if err := insertTransactions(ctx, tx, txns); err != nil {
			return err
		}
		return applyBalanceDelta(ctx, tx, accountID, delta)
	})
}

// CreateTransaction persists a single transaction and moves the account
// balance in the same database transaction.
func (s *Store) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if err := insertTransactions(ctx, tx, []*domain.Transaction{t}); err != nil {
			return err
		}
		return applyBalanceDelta(ctx, tx, t.AccountID, t.Type.Signed(t.Amount))
	})
}

// InsertTransactionTx inserts one transaction inside a caller-managed
// database transaction, for flows that bundle further writes with it.
func InsertTransactionTx(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	return insertTransactions(ctx, tx, []*domain.Transaction{t})
}

// ApplyBalanceDeltaTx adjusts an account balance inside a caller-managed
// database transaction.
func ApplyBalanceDeltaTx(ctx context.Context, tx *sql.Tx, accountID string, delta float64) error {
	return applyBalanceDelta(ctx, tx, accountID, delta)
}

func insertTransactions(ctx context.Context, tx *sql.Tx, txns []*domain.Transaction) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions
		 (id, user_id, account_id, type, amount, description, date, category, status,
		  is_recurring, recurring_interval, last_processed, next_recurring_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		_, err := stmt.ExecContext(ctx,
			t.ID, t.UserID, t.AccountID, string(t.Type), t.Amount, t.Description,
			t.Date.Format(dateLayout), t.Category, string(t.Status),
			t.IsRecurring, string(t.RecurringInterval),
			nullTime(t.LastProcessed), nullTime(t.NextRecurringDate),
			t.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

// ListTransactions returns a user's transactions, newest first, optionally
// restricted to one account and an inclusive date range.
func (s *Store) ListTransactions(ctx context.Context, userID, accountID string, from, to time.Time) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.Format(dateLayout))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.Format(dateLayout))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// MonthlyStats aggregates a user's income and expenses per category for the
// month containing the given date.
type MonthlyStats struct {
	TotalIncome   float64
	TotalExpenses float64
	ByCategory    map[string]float64 // expense totals per category
	Count         int
}

// MonthStats computes aggregate totals for the calendar month of ref.
func (s *Store) MonthStats(ctx context.Context, userID string, ref time.Time) (*MonthlyStats, error) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	rows, err := s.db.QueryContext(ctx,
		`SELECT type, category, amount FROM transactions
		 WHERE user_id = ? AND date >= ? AND date <= ?`,
		userID, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying month stats: %w", err)
	}
	defer rows.Close()

	stats := &MonthlyStats{ByCategory: make(map[string]float64)}
	for rows.Next() {
		var txType, category string
		var amount float64
		if err := rows.Scan(&txType, &category, &amount); err != nil {
			return nil, fmt.Errorf("scanning month stats: %w", err)
		}
		stats.Count++
		if txType == string(domain.TypeExpense) {
			stats.TotalExpenses += amount
			stats.ByCategory[category] += amount
		} else {
			stats.TotalIncome += amount
		}
	}
	return stats, rows.Err()
}

// MonthToDateExpenses sums a user's expenses on one account from the start of
// the month of ref up to ref.
func (s *Store) MonthToDateExpenses(ctx context.Context, userID, accountID string, ref time.Time) (float64, error) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM transactions
		 WHERE user_id = ? AND account_id = ? AND type = 'EXPENSE' AND date >= ? AND date <= ?`,
		userID, accountID, start.Format(dateLayout), ref.Format(dateLayout)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("querying month-to-date expenses: %w", err)
	}
	return total.Float64, nil
}

// DueRecurring returns recurring templates whose next occurrence is on or
// before now.
func (s *Store) DueRecurring(ctx context.Context, now time.Time) ([]*domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE is_recurring = 1 AND next_recurring_date IS NOT NULL AND next_recurring_date <= ?`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying due recurring transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// UpdateRecurringSchedule records a processed occurrence and the next due
// date on the template row.
func (s *Store) UpdateRecurringSchedule(ctx context.Context, tx *sql.Tx, id string, processed, next time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE transactions SET last_processed = ?, next_recurring_date = ? WHERE id = ?`,
		processed.UTC().Format(time.RFC3339), next.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating recurring schedule: %w", err)
	}
	return nil
}

const transactionColumns = `id, user_id, account_id, type, amount, description, date, category,
	status, is_recurring, recurring_interval, last_processed, next_recurring_date, created_at`

func scanTransactions(rows *sql.Rows) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for rows.Next() {
		var (
			t                      domain.Transaction
			txType, status, ival   string
			dateStr, createdStr    string
			lastProc, nextRecurStr sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &txType, &t.Amount,
			&t.Description, &dateStr, &t.Category, &status, &t.IsRecurring,
			&ival, &lastProc, &nextRecurStr, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Type = domain.TransactionType(txType)
		t.Status = domain.TransactionStatus(status)
		t.RecurringInterval = domain.RecurringInterval(ival)

		var err error
		if t.Date, err = time.Parse(dateLayout, dateStr); err != nil {
			return nil, fmt.Errorf("parsing transaction date %q: %w", dateStr, err)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdStr, err)
		}
		if t.LastProcessed, err = parseNullTime(lastProc); err != nil {
			return nil, err
		}
		if t.NextRecurringDate, err = parseNullTime(nextRecurStr); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", s.String, err)
	}
	return &t, nil
}
