package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/notify"
	"github.com/smartspend/smartspend/internal/store"
)

const (
	// budgetAlertThreshold is the fraction of the monthly budget at which
	// an overrun alert fires.
	budgetAlertThreshold = 0.8
	// budgetAlertCooldown throttles repeated alerts for the same budget.
	budgetAlertCooldown = 6 * time.Hour
)

// BudgetChecker compares month-to-date spending on each user's default
// account against their budget and alerts on overruns.
type BudgetChecker struct {
	store    *store.Store
	notifier *notify.Dispatcher
	now      func() time.Time
	log      zerolog.Logger
}

// NewBudgetChecker builds a checker.
func NewBudgetChecker(s *store.Store, notifier *notify.Dispatcher, log zerolog.Logger) *BudgetChecker {
	return &BudgetChecker{store: s, notifier: notifier, now: time.Now, log: log}
}

// CheckAll evaluates every user's budget. Per-user failures are logged and
// do not stop the run.
func (b *BudgetChecker) CheckAll(ctx context.Context) error {
	users, err := b.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	for _, u := range users {
		if err := b.checkUser(ctx, u.ID); err != nil {
			b.log.Error().Err(err).Str("user_id", u.ID).Msg("budget check failed")
		}
	}
	return nil
}

func (b *BudgetChecker) checkUser(ctx context.Context, userID string) error {
	budget, err := b.store.GetBudget(ctx, userID)
	if err != nil {
		return err
	}
	if budget == nil || budget.Amount <= 0 {
		return nil
	}

	account, err := b.store.DefaultAccount(ctx, userID)
	if errors.Is(err, store.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	now := b.now().UTC()
	spent, err := b.store.MonthToDateExpenses(ctx, userID, account.ID, now)
	if err != nil {
		return err
	}

	usage := spent / budget.Amount
	if usage < budgetAlertThreshold {
		return nil
	}
	if budget.LastAlertSent != nil && now.Sub(*budget.LastAlertSent) < budgetAlertCooldown {
		return nil
	}

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	b.notifier.Notify(ctx, user, notify.Message{
		Subject: "Budget alert",
		Text: fmt.Sprintf("You have used %.1f%% of your monthly budget (%.2f of %.2f spent on %s).",
			usage*100, spent, budget.Amount, account.Name),
	})

	if err := b.store.MarkBudgetAlerted(ctx, budget.ID, now); err != nil {
		return err
	}

	b.log.Info().
		Str("user_id", userID).
		Float64("usage", usage).
		Msg("budget alert sent")
	return nil
}
