package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/notify"
	"github.com/smartspend/smartspend/internal/store"
)

// InsightGenerator produces short spending insights for a monthly report.
// Implementations may call an external model; failures fall back to canned
// insights.
type InsightGenerator interface {
	Insights(ctx context.Context, stats *store.MonthlyStats, month time.Time) ([]string, error)
}

// Reporter assembles and sends the previous month's report per user.
type Reporter struct {
	store    *store.Store
	insights InsightGenerator // nil falls back to canned insights
	notifier *notify.Dispatcher
	now      func() time.Time
	log      zerolog.Logger
}

// NewReporter builds a reporter. insights may be nil.
func NewReporter(s *store.Store, insights InsightGenerator, notifier *notify.Dispatcher, log zerolog.Logger) *Reporter {
	return &Reporter{store: s, insights: insights, notifier: notifier, now: time.Now, log: log}
}

// SendAll sends last month's report to every user with activity. Per-user
// failures are logged and do not stop the run.
func (r *Reporter) SendAll(ctx context.Context) error {
	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	month := r.now().UTC().AddDate(0, -1, 0)
	for _, u := range users {
		if err := r.sendUser(ctx, u.ID, month); err != nil {
			r.log.Error().Err(err).Str("user_id", u.ID).Msg("monthly report failed")
		}
	}
	return nil
}

func (r *Reporter) sendUser(ctx context.Context, userID string, month time.Time) error {
	stats, err := r.store.MonthStats(ctx, userID, month)
	if err != nil {
		return err
	}
	if stats.Count == 0 {
		return nil
	}

	insights := r.generateInsights(ctx, stats, month)

	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	r.notifier.Notify(ctx, user, notify.Message{
		Subject: "Your " + month.Format("January 2006") + " report",
		Text:    formatReport(stats, insights),
	})
	return nil
}

func (r *Reporter) generateInsights(ctx context.Context, stats *store.MonthlyStats, month time.Time) []string {
	if r.insights != nil {
		out, err := r.insights.Insights(ctx, stats, month)
		if err == nil && len(out) > 0 {
			return out
		}
		if err != nil {
			r.log.Warn().Err(err).Msg("insight generation failed, using fallback")
		}
	}
	return cannedInsights(stats)
}

// cannedInsights is the deterministic fallback when no generator is wired or
// the model call fails.
func cannedInsights(stats *store.MonthlyStats) []string {
	net := stats.TotalIncome - stats.TotalExpenses
	first := "Your spending exceeded your income this month. Review your largest expense categories."
	if net >= 0 {
		first = fmt.Sprintf("You saved %.2f this month. Keep it up!", net)
	}
	return []string{
		first,
		"Setting a monthly budget helps you catch overspending early.",
		"Review recurring charges periodically; forgotten subscriptions add up.",
	}
}

func formatReport(stats *store.MonthlyStats, insights []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Income: %.2f\nExpenses: %.2f\nNet: %.2f\n",
		stats.TotalIncome, stats.TotalExpenses, stats.TotalIncome-stats.TotalExpenses)

	if len(stats.ByCategory) > 0 {
		b.WriteString("\nTop expense categories:\n")
		type entry struct {
			category string
			amount   float64
		}
		var entries []entry
		for c, v := range stats.ByCategory {
			entries = append(entries, entry{c, v})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].amount > entries[j].amount })
		if len(entries) > 5 {
			entries = entries[:5]
		}
		for _, e := range entries {
			fmt.Fprintf(&b, "  %s: %.2f\n", e.category, e.amount)
		}
	}

	b.WriteString("\nInsights:\n")
	for _, in := range insights {
		b.WriteString("  - " + in + "\n")
	}
	return b.String()
}
