package schedule

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/domain"
	"github.com/smartspend/smartspend/internal/jobs"
	"github.com/smartspend/smartspend/internal/notify"
	"github.com/smartspend/smartspend/internal/store"
)

type recordingSink struct {
	mu  sync.Mutex
	got []notify.Message
}

func (r *recordingSink) Name() string { return "test" }

func (r *recordingSink) Send(_ context.Context, _ *domain.User, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, msg)
	return nil
}

func (r *recordingSink) messages() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.got...)
}

type capturePublisher struct{ jobs []*jobs.RecurringJob }

func (c *capturePublisher) PublishRecurring(_ context.Context, j *jobs.RecurringJob) error {
	c.jobs = append(c.jobs, j)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func newScheduleStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store, balance float64) (*domain.User, *domain.Account) {
	t.Helper()
	ctx := context.Background()
	u := &domain.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	a := &domain.Account{ID: uuid.NewString(), UserID: u.ID, Name: "Main", Type: "CURRENT", Balance: balance, IsDefault: true}
	if err := s.CreateAccount(ctx, a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return u, a
}

func TestRecurringSweepEnqueuesDueTemplates(t *testing.T) {
	s := newScheduleStore(t)
	u, a := seed(t, s, 100)
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	tpl := &domain.Transaction{
		ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID,
		Type: domain.TypeExpense, Amount: 9.99, Description: "Netflix",
		Date: past, Category: "entertainment", Status: domain.StatusCompleted,
		IsRecurring: true, RecurringInterval: domain.IntervalMonthly,
		NextRecurringDate: &past, CreatedAt: past,
	}
	if err := s.CreateTransaction(ctx, tpl); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	pub := &capturePublisher{}
	p := NewRecurringProcessor(s, pub, nil, zerolog.Nop())
	p.now = func() time.Time { return now }

	if err := p.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(pub.jobs) != 1 || pub.jobs[0].TransactionID != tpl.ID {
		t.Fatalf("enqueued %d jobs, want 1 for the due template", len(pub.jobs))
	}
}

func TestRecurringProcessMaterializesOnce(t *testing.T) {
	s := newScheduleStore(t)
	u, a := seed(t, s, 0)
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	tpl := &domain.Transaction{
		ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID,
		Type: domain.TypeExpense, Amount: 9.99, Description: "Netflix",
		Date: past, Category: "entertainment", Status: domain.StatusCompleted,
		IsRecurring: true, RecurringInterval: domain.IntervalMonthly,
		NextRecurringDate: &past, CreatedAt: past,
	}
	if err := s.CreateTransaction(ctx, tpl); err != nil {
		t.Fatal(err)
	}
	balanceAfterTemplate := -9.99

	sink := &recordingSink{}
	p := NewRecurringProcessor(s, &capturePublisher{}, notify.NewDispatcher(zerolog.Nop(), sink), zerolog.Nop())
	p.now = func() time.Time { return now }

	if err := p.Process(ctx, tpl.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	txns, _ := s.ListTransactions(ctx, u.ID, a.ID, time.Time{}, time.Time{})
	if len(txns) != 2 {
		t.Fatalf("got %d rows, want template + one occurrence", len(txns))
	}
	acc, _ := s.GetAccount(ctx, a.ID, u.ID)
	if want := balanceAfterTemplate - 9.99; acc.Balance != want {
		t.Errorf("balance = %v, want %v", acc.Balance, want)
	}

	// The template is no longer due; reprocessing is a no-op.
	if err := p.Process(ctx, tpl.ID); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	txns, _ = s.ListTransactions(ctx, u.ID, a.ID, time.Time{}, time.Time{})
	if len(txns) != 2 {
		t.Errorf("reprocessing materialized a duplicate occurrence")
	}

	if len(sink.messages()) != 1 {
		t.Errorf("got %d notifications, want 1", len(sink.messages()))
	}
}

func TestBudgetCheckerAlertsAndThrottles(t *testing.T) {
	s := newScheduleStore(t)
	u, a := seed(t, s, 1000)
	ctx := context.Background()

	now := time.Date(2024, time.June, 20, 10, 0, 0, 0, time.UTC)
	if err := s.UpsertBudget(ctx, &domain.Budget{ID: uuid.NewString(), UserID: u.ID, Amount: 500}); err != nil {
		t.Fatal(err)
	}
	// 450 of 500 spent this month: 90%, above the threshold.
	if err := s.CreateTransaction(ctx, &domain.Transaction{
		ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID,
		Type: domain.TypeExpense, Amount: 450, Description: "rent",
		Date: now.AddDate(0, 0, -5), Category: "housing",
		Status: domain.StatusCompleted, CreatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	b := NewBudgetChecker(s, notify.NewDispatcher(zerolog.Nop(), sink), zerolog.Nop())
	b.now = func() time.Time { return now }

	if err := b.CheckAll(ctx); err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if len(sink.messages()) != 1 {
		t.Fatalf("got %d alerts, want 1", len(sink.messages()))
	}
	if !strings.Contains(sink.messages()[0].Text, "90.0%") {
		t.Errorf("alert text = %q, want usage percentage", sink.messages()[0].Text)
	}

	// Within the cooldown window nothing fires again.
	b.now = func() time.Time { return now.Add(2 * time.Hour) }
	if err := b.CheckAll(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sink.messages()) != 1 {
		t.Errorf("alert fired again inside the cooldown window")
	}

	// After the cooldown it fires again.
	b.now = func() time.Time { return now.Add(7 * time.Hour) }
	if err := b.CheckAll(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sink.messages()) != 2 {
		t.Errorf("alert did not fire after the cooldown")
	}
}

func TestBudgetCheckerBelowThreshold(t *testing.T) {
	s := newScheduleStore(t)
	u, a := seed(t, s, 1000)
	ctx := context.Background()

	now := time.Date(2024, time.June, 20, 10, 0, 0, 0, time.UTC)
	if err := s.UpsertBudget(ctx, &domain.Budget{ID: uuid.NewString(), UserID: u.ID, Amount: 500}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateTransaction(ctx, &domain.Transaction{
		ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID,
		Type: domain.TypeExpense, Amount: 100, Description: "groceries",
		Date: now.AddDate(0, 0, -2), Category: "groceries",
		Status: domain.StatusCompleted, CreatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	b := NewBudgetChecker(s, notify.NewDispatcher(zerolog.Nop(), sink), zerolog.Nop())
	b.now = func() time.Time { return now }

	if err := b.CheckAll(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sink.messages()) != 0 {
		t.Errorf("alert fired at 20%% usage")
	}
}

type failingInsights struct{}

func (failingInsights) Insights(context.Context, *store.MonthlyStats, time.Time) ([]string, error) {
	return nil, errors.New("model unavailable")
}

func TestReporterFallsBackToCannedInsights(t *testing.T) {
	s := newScheduleStore(t)
	u, a := seed(t, s, 0)
	ctx := context.Background()

	now := time.Date(2024, time.July, 1, 0, 5, 0, 0, time.UTC)
	lastMonth := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	for _, tx := range []*domain.Transaction{
		{ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID, Type: domain.TypeIncome,
			Amount: 2000, Description: "salary", Date: lastMonth, Category: "salary",
			Status: domain.StatusCompleted, CreatedAt: lastMonth},
		{ID: uuid.NewString(), UserID: u.ID, AccountID: a.ID, Type: domain.TypeExpense,
			Amount: 300, Description: "rent", Date: lastMonth, Category: "housing",
			Status: domain.StatusCompleted, CreatedAt: lastMonth},
	} {
		if err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	sink := &recordingSink{}
	r := NewReporter(s, failingInsights{}, notify.NewDispatcher(zerolog.Nop(), sink), zerolog.Nop())
	r.now = func() time.Time { return now }

	if err := r.SendAll(ctx); err != nil {
		t.Fatalf("SendAll: %v", err)
	}
	msgs := sink.messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d reports, want 1", len(msgs))
	}
	if !strings.Contains(msgs[0].Subject, "June 2024") {
		t.Errorf("subject = %q, want previous month", msgs[0].Subject)
	}
	if !strings.Contains(msgs[0].Text, "Income: 2000.00") || !strings.Contains(msgs[0].Text, "housing: 300.00") {
		t.Errorf("report text = %q", msgs[0].Text)
	}
	if !strings.Contains(msgs[0].Text, "You saved 1700.00") {
		t.Errorf("canned insight missing from %q", msgs[0].Text)
	}
}

func TestReporterSkipsQuietUsers(t *testing.T) {
	s := newScheduleStore(t)
	seed(t, s, 0)

	sink := &recordingSink{}
	r := NewReporter(s, nil, notify.NewDispatcher(zerolog.Nop(), sink), zerolog.Nop())
	r.now = func() time.Time { return time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC) }

	if err := r.SendAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(sink.messages()) != 0 {
		t.Errorf("report sent to a user with no activity")
	}
}

func TestRecurringIntervalNext(t *testing.T) {
	from := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		interval domain.RecurringInterval
		want     time.Time
	}{
		{domain.IntervalDaily, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{domain.IntervalWeekly, time.Date(2024, time.February, 7, 0, 0, 0, 0, time.UTC)},
		{domain.IntervalMonthly, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{domain.IntervalYearly, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := tt.interval.Next(from); !got.Equal(tt.want) {
			t.Errorf("%s.Next(%s) = %s, want %s", tt.interval, from, got, tt.want)
		}
	}
}
