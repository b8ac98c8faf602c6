package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/domain"
	"github.com/smartspend/smartspend/internal/jobs"
	"github.com/smartspend/smartspend/internal/notify"
	"github.com/smartspend/smartspend/internal/store"
)

// RecurringProcessor materializes due recurring transaction templates. The
// daily sweep fans templates out on the job queue; each job writes one
// occurrence plus the balance update in a single store transaction, then
// advances the template's schedule.
type RecurringProcessor struct {
	store     *store.Store
	publisher jobs.Publisher
	notifier  *notify.Dispatcher
	now       func() time.Time
	log       zerolog.Logger
}

// NewRecurringProcessor builds a processor. notifier may be nil.
func NewRecurringProcessor(s *store.Store, publisher jobs.Publisher, notifier *notify.Dispatcher, log zerolog.Logger) *RecurringProcessor {
	return &RecurringProcessor{store: s, publisher: publisher, notifier: notifier, now: time.Now, log: log}
}

// Sweep finds every due template and enqueues a job per template.
func (p *RecurringProcessor) Sweep(ctx context.Context) error {
	due, err := p.store.DueRecurring(ctx, p.now())
	if err != nil {
		return fmt.Errorf("listing due recurring transactions: %w", err)
	}

	for _, tpl := range due {
		job := &jobs.RecurringJob{
			TransactionID: tpl.ID,
			UserID:        tpl.UserID,
			AccountID:     tpl.AccountID,
		}
		if err := p.publisher.PublishRecurring(ctx, job); err != nil {
			p.log.Error().Err(err).Str("transaction_id", tpl.ID).Msg("enqueueing recurring job failed")
			continue
		}
	}

	p.log.Info().Int("due", len(due)).Msg("recurring sweep complete")
	return nil
}

// Handle is the queue handler: it re-reads the template, materializes one
// occurrence and advances the schedule. Re-reading makes the handler safe to
// retry; an already-advanced template simply is no longer due.
func (p *RecurringProcessor) Handle(ctx context.Context, job jobs.Job) error {
	rj, ok := job.(*jobs.RecurringJob)
	if !ok {
		return fmt.Errorf("unexpected job type %T", job)
	}
	return p.Process(ctx, rj.TransactionID)
}

// Process materializes one occurrence of the template with the given id.
func (p *RecurringProcessor) Process(ctx context.Context, templateID string) error {
	now := p.now().UTC()

	due, err := p.store.DueRecurring(ctx, now)
	if err != nil {
		return fmt.Errorf("re-checking due templates: %w", err)
	}
	var tpl *domain.Transaction
	for _, d := range due {
		if d.ID == templateID {
			tpl = d
			break
		}
	}
	if tpl == nil {
		// Already processed by an earlier attempt.
		return nil
	}

	occurrence := &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      tpl.UserID,
		AccountID:   tpl.AccountID,
		Type:        tpl.Type,
		Amount:      tpl.Amount,
		Description: tpl.Description + " (Recurring)",
		Date:        now,
		Category:    tpl.Category,
		Status:      domain.StatusCompleted,
		CreatedAt:   now,
	}
	next := tpl.RecurringInterval.Next(now)

	err = p.store.Transaction(func(tx *sql.Tx) error {
		if err := store.InsertTransactionTx(ctx, tx, occurrence); err != nil {
			return err
		}
		if err := store.ApplyBalanceDeltaTx(ctx, tx, tpl.AccountID, tpl.Type.Signed(tpl.Amount)); err != nil {
			return err
		}
		return p.store.UpdateRecurringSchedule(ctx, tx, tpl.ID, now, next)
	})
	if err != nil {
		return fmt.Errorf("materializing recurring transaction %s: %w", tpl.ID, err)
	}

	p.log.Info().
		Str("template_id", tpl.ID).
		Time("next", next).
		Msg("recurring transaction processed")

	if p.notifier != nil {
		if user, err := p.store.GetUser(ctx, tpl.UserID); err == nil {
			p.notifier.Notify(ctx, user, notify.Message{
				Subject: "Recurring transaction processed",
				Text: fmt.Sprintf("%s of %.2f was recorded automatically. Next occurrence: %s.",
					tpl.Description, tpl.Amount, next.Format("2006-01-02")),
			})
		}
	}
	return nil
}
