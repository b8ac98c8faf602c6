package notify

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/domain"
	"github.com/smartspend/smartspend/internal/importer"
)

// UserLookup resolves the owner of an import event.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// ImportListener turns import events into notifications. Delivery runs on
// its own goroutine so a slow provider cannot delay the API response that
// triggered the import.
type ImportListener struct {
	users      UserLookup
	dispatcher *Dispatcher
	timeout    time.Duration
	log        zerolog.Logger
}

// NewImportListener builds a listener delivering through the dispatcher.
func NewImportListener(users UserLookup, dispatcher *Dispatcher, log zerolog.Logger) *ImportListener {
	return &ImportListener{users: users, dispatcher: dispatcher, timeout: 30 * time.Second, log: log}
}

// Publish implements importer.EventPublisher.
func (l *ImportListener) Publish(event importer.ImportEvent) {
	go l.deliver(event)
}

func (l *ImportListener) deliver(event importer.ImportEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	user, err := l.users.GetUser(ctx, event.UserID)
	if err != nil {
		l.log.Warn().Err(err).Str("user_id", event.UserID).Msg("cannot notify: user lookup failed")
		return
	}

	direction := "added"
	if event.Delta < 0 {
		direction = "deducted"
	}
	msg := Message{
		Subject: "Statement import complete",
		Text: fmt.Sprintf("%d transactions were imported into %s. Net %.2f %s to the balance.",
			event.Count, event.AccountName, math.Abs(event.Delta), direction),
	}
	l.dispatcher.Notify(ctx, user, msg)
}
