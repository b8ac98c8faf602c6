package domain

import "time"

// TransactionType tells whether money left or entered the account. The
// amount itself is always a positive magnitude; the sign lives here.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Signed applies the type's sign to a positive amount, so a batch delta can
// be computed as the plain sum of Signed values.
func (t TransactionType) Signed(amount float64) float64 {
	if t == TypeExpense {
		return -amount
	}
	return amount
}

// TransactionStatus is the lifecycle state of a transaction. Statement
// imports always persist COMPLETED rows.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusPending   TransactionStatus = "PENDING"
)

// RecurringInterval is the cadence of a recurring transaction template.
type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
	IntervalYearly  RecurringInterval = "YEARLY"
)

// Next returns the occurrence that follows the given date.
func (i RecurringInterval) Next(from time.Time) time.Time {
	switch i {
	case IntervalDaily:
		return from.AddDate(0, 0, 1)
	case IntervalWeekly:
		return from.AddDate(0, 0, 7)
	case IntervalMonthly:
		return from.AddDate(0, 1, 0)
	case IntervalYearly:
		return from.AddDate(1, 0, 0)
	}
	return from
}

// Transaction is the canonical transaction shape every source (manual entry,
// bank CSV export, PDF statement) is normalized into before persistence.
type Transaction struct {
	ID          string
	UserID      string
	AccountID   string
	Type        TransactionType
	Amount      float64 // positive magnitude; sign carried by Type
	Description string
	Date        time.Time // calendar date, no time component
	Category    string    // category identifier from the catalog
	Status      TransactionStatus

	IsRecurring       bool
	RecurringInterval RecurringInterval
	LastProcessed     *time.Time
	NextRecurringDate *time.Time

	CreatedAt time.Time
}
