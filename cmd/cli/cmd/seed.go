package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/smartspend/smartspend/internal/domain"
)

var seedMonths int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo user, account and sample transactions",
	Long: `Create a demo user with a default account, a monthly budget and a
few months of sample transactions, then print the generated ids.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedMonths, "months", 3, "months of sample history to generate")
}

// seedSamples are the recurring shapes the demo history draws from.
var seedSamples = []struct {
	txType      domain.TransactionType
	description string
	category    string
	min, max    float64
}{
	{domain.TypeIncome, "Monthly salary", "salary", 2500, 2500},
	{domain.TypeExpense, "Rent payment", "housing", 900, 900},
	{domain.TypeExpense, "Grocery run", "groceries", 30, 120},
	{domain.TypeExpense, "Zomato order", "food", 10, 45},
	{domain.TypeExpense, "Uber ride", "transportation", 5, 30},
	{domain.TypeExpense, "Electricity bill", "utilities", 40, 90},
	{domain.TypeExpense, "Netflix subscription", "entertainment", 9.99, 9.99},
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	user := &domain.User{
		ID:    uuid.NewString(),
		Email: "demo@smartspend.app",
		Name:  "Demo User",
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("creating demo user: %w", err)
	}

	account := &domain.Account{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      "Everyday",
		Type:      "CURRENT",
		Balance:   1000,
		IsDefault: true,
	}
	if err := st.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("creating demo account: %w", err)
	}

	if err := st.UpsertBudget(ctx, &domain.Budget{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Amount: 1500,
	}); err != nil {
		return fmt.Errorf("creating demo budget: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()
	created := 0
	for m := 0; m < seedMonths; m++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -m, 0)
		for _, sample := range seedSamples {
			day := rng.Intn(27) + 1
			date := monthStart.AddDate(0, 0, day-1)
			if date.After(now) {
				continue
			}
			amount := sample.min
			if sample.max > sample.min {
				amount = sample.min + rng.Float64()*(sample.max-sample.min)
			}
			tx := &domain.Transaction{
				ID:          uuid.NewString(),
				UserID:      user.ID,
				AccountID:   account.ID,
				Type:        sample.txType,
				Amount:      float64(int(amount*100)) / 100,
				Description: sample.description,
				Date:        date,
				Category:    sample.category,
				Status:      domain.StatusCompleted,
				CreatedAt:   now,
			}
			if err := st.CreateTransaction(ctx, tx); err != nil {
				return fmt.Errorf("creating sample transaction: %w", err)
			}
			created++
		}
	}

	fmt.Printf("Seeded demo data:\n  user:    %s\n  account: %s\n  transactions: %d\n",
		user.ID, account.ID, created)
	return nil
}
