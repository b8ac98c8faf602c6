package domain

import "time"

// Account is a user-owned money account. Its balance must always equal the
// sum of its persisted transactions applied to the opening balance; the
// import reconciler and the recurring processor both update it only inside
// the same database transaction that writes the transaction rows.
type Account struct {
	ID        string
	UserID    string
	Name      string
	Type      string // e.g. CURRENT, SAVINGS
	Balance   float64
	IsDefault bool
}

// User identifies an account owner and the destinations alerts go to.
type User struct {
	ID           string
	Email        string
	Name         string
	MobileNumber string // E.164, empty when the user never set one
}

// Budget is a monthly spending cap checked against the user's default
// account. LastAlertSent throttles overrun alerts.
type Budget struct {
	ID            string
	UserID        string
	Amount        float64
	LastAlertSent *time.Time // nil when never alerted
}
