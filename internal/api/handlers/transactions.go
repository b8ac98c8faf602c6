package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/api/middleware"
	"github.com/smartspend/smartspend/internal/domain"
)

// TransactionReader lists persisted transactions.
type TransactionReader interface {
	ListTransactions(ctx context.Context, userID, accountID string, from, to time.Time) ([]*domain.Transaction, error)
}

// TransactionsHandler serves the transaction listing endpoint.
type TransactionsHandler struct {
	txns TransactionReader
	log  zerolog.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(txns TransactionReader, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{txns: txns, log: log}
}

// transactionJSON is the wire shape of a transaction.
type transactionJSON struct {
	ID          string  `json:"id,omitempty"`
	AccountID   string  `json:"account_id,omitempty"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Category    string  `json:"category,omitempty"`
	Status      string  `json:"status"`
	IsRecurring bool    `json:"is_recurring,omitempty"`
}

func toTransactionJSON(t *domain.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		Category:    t.Category,
		Status:      string(t.Status),
		IsRecurring: t.IsRecurring,
	}
}

// List handles GET /api/transactions with optional account_id, from and to
// (YYYY-MM-DD) query parameters.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	var from, to time.Time
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid from date")
			return
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid to date")
			return
		}
		to = t
	}

	txns, err := h.txns.ListTransactions(ctx, userID, r.URL.Query().Get("account_id"), from, to)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	out := make([]transactionJSON, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionJSON(t))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": out,
		"count":        len(out),
	})
}
