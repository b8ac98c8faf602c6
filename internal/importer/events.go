package importer

import "time"

// ImportEvent describes a completed statement import. It is published after
// the commit succeeds; notification delivery is a listener concern and can
// never affect the import outcome.
type ImportEvent struct {
	UserID      string
	AccountID   string
	AccountName string
	Count       int
	Delta       float64 // net signed change applied to the balance
	At          time.Time
}

// EventPublisher receives import events. Implementations must not block the
// caller for long and must swallow their own failures.
type EventPublisher interface {
	Publish(event ImportEvent)
}
