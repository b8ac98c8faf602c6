// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/api/middleware"
	"github.com/smartspend/smartspend/internal/domain"
	"github.com/smartspend/smartspend/internal/importer"
	"github.com/smartspend/smartspend/internal/store"
)

// maxStatementSize bounds uploaded statement files.
const maxStatementSize = 10 << 20 // 10 MiB

// Importer runs the validate-resolve-commit flow for a parsed batch.
type Importer interface {
	Import(ctx context.Context, userID, accountID string, candidates []*domain.Transaction) (int, error)
}

// AccountReader checks account ownership before any parsing work starts.
type AccountReader interface {
	GetAccount(ctx context.Context, id, userID string) (*domain.Account, error)
}

// ImportsHandler handles statement upload and preview endpoints.
type ImportsHandler struct {
	parser     *importer.StatementParser
	reconciler Importer
	accounts   AccountReader
	log        zerolog.Logger
}

// NewImportsHandler creates an imports handler.
func NewImportsHandler(parser *importer.StatementParser, reconciler Importer, accounts AccountReader, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{parser: parser, reconciler: reconciler, accounts: accounts, log: log}
}

// Import handles POST /api/imports: multipart statement file plus account_id.
func (h *ImportsHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	data, filename, accountID, ok := h.readUpload(w, r, true)
	if !ok {
		return
	}

	// Ownership is checked before the file is parsed so an attacker cannot
	// probe foreign accounts with expensive uploads.
	if _, err := h.accounts.GetAccount(ctx, accountID, userID); err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Account not found")
			return
		}
		h.log.Error().Err(err).Msg("Account lookup failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to import statement")
		return
	}

	candidates, skipped, err := h.parser.Parse(data, filename)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			middleware.WriteError(w, http.StatusBadRequest, "Unsupported file format")
			return
		}
		h.log.Error().Err(err).Str("filename", filename).Msg("Statement parse failed")
		middleware.WriteError(w, http.StatusBadRequest, "Could not parse statement file")
		return
	}

	count, err := h.reconciler.Import(ctx, userID, accountID, candidates)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrNoValidTransactions):
			middleware.WriteError(w, http.StatusBadRequest, "No valid transactions found in the statement")
		case errors.Is(err, store.ErrAccountNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Account not found")
		default:
			h.log.Error().Err(err).Msg("Import failed")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to import statement")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   count,
		"skipped": skipped,
	})
}

// Preview handles POST /api/imports/preview: parse-only, nothing persisted.
func (h *ImportsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	data, filename, _, ok := h.readUpload(w, r, false)
	if !ok {
		return
	}

	candidates, skipped, err := h.parser.Parse(data, filename)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			middleware.WriteError(w, http.StatusBadRequest, "Unsupported file format")
			return
		}
		h.log.Error().Err(err).Str("filename", filename).Msg("Statement parse failed")
		middleware.WriteError(w, http.StatusBadRequest, "Could not parse statement file")
		return
	}

	out := make([]transactionJSON, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, toTransactionJSON(c))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": out,
		"skipped":      skipped,
	})
}

// readUpload extracts the multipart file and, when required, the account_id
// form value. It writes the error response itself on failure.
func (h *ImportsHandler) readUpload(w http.ResponseWriter, r *http.Request, needAccount bool) (data []byte, filename, accountID string, ok bool) {
	if err := r.ParseMultipartForm(maxStatementSize); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return nil, "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A statement file is required")
		return nil, "", "", false
	}
	defer file.Close()

	accountID = r.FormValue("account_id")
	if needAccount && accountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return nil, "", "", false
	}

	data, err = io.ReadAll(io.LimitReader(file, maxStatementSize+1))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Could not read uploaded file")
		return nil, "", "", false
	}
	if len(data) > maxStatementSize {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Statement file too large")
		return nil, "", "", false
	}
	return data, header.Filename, accountID, true
}
