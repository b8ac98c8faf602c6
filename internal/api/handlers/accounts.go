package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/api/middleware"
	"github.com/smartspend/smartspend/internal/domain"
)

// AccountLister lists a user's accounts.
type AccountLister interface {
	ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error)
}

// AccountsHandler serves the account listing endpoint.
type AccountsHandler struct {
	accounts AccountLister
	log      zerolog.Logger
}

// NewAccountsHandler creates an accounts handler.
func NewAccountsHandler(accounts AccountLister, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, log: log}
}

type accountJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Balance   float64 `json:"balance"`
	IsDefault bool    `json:"is_default"`
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := h.accounts.ListAccounts(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountJSON{
			ID:        a.ID,
			Name:      a.Name,
			Type:      a.Type,
			Balance:   a.Balance,
			IsDefault: a.IsDefault,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": out,
		"count":    len(out),
	})
}
