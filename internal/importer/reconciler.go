package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/domain"
)

// ErrNoValidTransactions is returned when every candidate in a batch was
// dropped during validation. Nothing is persisted in that case.
var ErrNoValidTransactions = errors.New("no valid transactions in batch")

// CategoryResolver assigns a category identifier given a description and an
// optional declared category. It must always return a usable identifier.
type CategoryResolver interface {
	Resolve(ctx context.Context, description, declared string) string
}

// BatchStore is the persistence surface the reconciler needs: ownership
// checks up front and an atomic commit of rows plus balance delta.
type BatchStore interface {
	GetAccount(ctx context.Context, id, userID string) (*domain.Account, error)
	CommitImport(ctx context.Context, accountID string, txns []*domain.Transaction, delta float64) error
}

// Reconciler validates a batch of candidate transactions, resolves their
// categories, and commits them together with the account balance update.
type Reconciler struct {
	store      BatchStore
	categories CategoryResolver
	events     EventPublisher // nil disables notifications
	now        func() time.Time
	log        zerolog.Logger
}

// NewReconciler builds a reconciler. events may be nil.
func NewReconciler(store BatchStore, categories CategoryResolver, events EventPublisher, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:      store,
		categories: categories,
		events:     events,
		now:        time.Now,
		log:        log,
	}
}

// Import persists a batch of candidates against the account and returns how
// many rows were committed. The account must belong to userID. Invalid
// candidates are dropped; if none survive, ErrNoValidTransactions is
// returned and nothing changes.
func (r *Reconciler) Import(ctx context.Context, userID, accountID string, candidates []*domain.Transaction) (int, error) {
	account, err := r.store.GetAccount(ctx, accountID, userID)
	if err != nil {
		return 0, err
	}

	now := r.now().UTC()
	var (
		batch []*domain.Transaction
		delta float64
	)
	for _, c := range candidates {
		if !r.valid(c, now) {
			continue
		}

		t := *c
		t.ID = uuid.NewString()
		t.UserID = userID
		t.AccountID = account.ID
		t.Status = domain.StatusCompleted
		t.Category = r.categories.Resolve(ctx, t.Description, t.Category)
		t.CreatedAt = now

		batch = append(batch, &t)
		delta += t.Type.Signed(t.Amount)
	}

	if len(batch) == 0 {
		return 0, ErrNoValidTransactions
	}

	if err := r.store.CommitImport(ctx, account.ID, batch, delta); err != nil {
		return 0, fmt.Errorf("committing import of %d transactions: %w", len(batch), err)
	}

	r.log.Info().
		Str("account_id", account.ID).
		Int("count", len(batch)).
		Float64("delta", delta).
		Msg("import committed")

	if r.events != nil {
		r.events.Publish(ImportEvent{
			UserID:      userID,
			AccountID:   account.ID,
			AccountName: account.Name,
			Count:       len(batch),
			Delta:       delta,
			At:          now,
		})
	}
	return len(batch), nil
}

// valid drops candidates that would corrupt balances or the timeline:
// non-positive or non-finite amounts, unknown types, zero or future dates.
func (r *Reconciler) valid(c *domain.Transaction, now time.Time) bool {
	switch {
	case c == nil:
		return false
	case c.Amount <= 0 || math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0):
		r.log.Debug().Float64("amount", c.Amount).Msg("dropping candidate with bad amount")
		return false
	case !c.Type.Valid():
		r.log.Debug().Str("type", string(c.Type)).Msg("dropping candidate with unknown type")
		return false
	case c.Date.IsZero():
		r.log.Debug().Msg("dropping candidate without a date")
		return false
	case c.Date.After(now):
		r.log.Debug().Time("date", c.Date).Msg("dropping future-dated candidate")
		return false
	}
	return true
}
