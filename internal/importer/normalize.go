package importer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smartspend/smartspend/internal/domain"
)

// ErrInvalidRow marks a row that cannot become a canonical transaction
// (missing date, no positive amount, unknown type). Rows failing this way
// are dropped, not surfaced.
var ErrInvalidRow = errors.New("invalid row")

// RawRow is one untyped record from a statement file: column name to string
// value. The shape varies per bank export and is consumed exactly once.
type RawRow map[string]string

// SourceKind declares how a RawRow's columns are named.
type SourceKind string

const (
	// SourceManual rows carry the canonical field names directly:
	// date, description, amount, type and optionally category.
	SourceManual SourceKind = "manual"
	// SourceBankExport rows use bank-specific column names resolved
	// through the alias table.
	SourceBankExport SourceKind = "bank-export"
)

// FieldAliases maps each canonical field to an ordered list of known column
// headers; the first present alias wins. New bank formats are added here (or
// via YAML) rather than in code.
type FieldAliases struct {
	Date        []string `yaml:"date"`
	Description []string `yaml:"description"`
	Debit       []string `yaml:"debit"`
	Credit      []string `yaml:"credit"`
	Amount      []string `yaml:"amount"`
}

// DefaultFieldAliases returns the alias table covering the bank exports seen
// so far.
func DefaultFieldAliases() FieldAliases {
	return FieldAliases{
		Date:        []string{"Txn Date", "Transaction Date", "Date", "Value Date", "DATE", "date"},
		Description: []string{"Narration", "Details", "Description", "Particulars", "Transaction Description", "description"},
		Debit:       []string{"Debit", "Withdrawal Amt", "Dr", "debit"},
		Credit:      []string{"Credit", "Deposit Amt", "Cr", "credit"},
		Amount:      []string{"Amount", "amount"},
	}
}

// ParseFieldAliases loads an alias table override from YAML.
func ParseFieldAliases(data []byte) (FieldAliases, error) {
	var fa FieldAliases
	if err := yaml.Unmarshal(data, &fa); err != nil {
		return FieldAliases{}, fmt.Errorf("parsing field aliases: %w", err)
	}
	return fa, nil
}

func (fa FieldAliases) lookup(row RawRow, aliases []string) (string, bool) {
	for _, name := range aliases {
		if v, ok := row[name]; ok {
			v = strings.TrimSpace(v)
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// RowNormalizer maps a RawRow into a canonical transaction shell (category
// left unset). Rows it cannot resolve are reported as ErrInvalidRow or
// ErrMalformedDate; callers drop them silently and count them.
type RowNormalizer struct {
	Dates   *DateNormalizer
	Aliases FieldAliases
}

// NewRowNormalizer builds a normalizer with the default alias table.
func NewRowNormalizer(dates *DateNormalizer) *RowNormalizer {
	return &RowNormalizer{Dates: dates, Aliases: DefaultFieldAliases()}
}

// Normalize converts one raw row into a transaction shell.
func (rn *RowNormalizer) Normalize(row RawRow, kind SourceKind) (*domain.Transaction, error) {
	switch kind {
	case SourceManual:
		return rn.normalizeManual(row)
	case SourceBankExport:
		return rn.normalizeBankExport(row)
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", ErrInvalidRow, kind)
	}
}

func (rn *RowNormalizer) normalizeManual(row RawRow) (*domain.Transaction, error) {
	dateStr := strings.TrimSpace(manualField(row, "date"))
	if dateStr == "" {
		return nil, fmt.Errorf("%w: missing date", ErrInvalidRow)
	}
	date, err := rn.Dates.Normalize(dateStr)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(manualField(row, "amount"))
	if err != nil {
		return nil, err
	}

	// An absent or unknown type is a validation failure, not a silent
	// EXPENSE default.
	rawType := manualField(row, "type")
	txType := domain.TransactionType(strings.ToUpper(strings.TrimSpace(rawType)))
	if !txType.Valid() {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidRow, rawType)
	}

	return &domain.Transaction{
		Type:        txType,
		Amount:      amount,
		Description: strings.TrimSpace(manualField(row, "description")),
		Date:        date,
		Category:    strings.ToLower(strings.TrimSpace(manualField(row, "category"))),
		Status:      domain.StatusCompleted,
	}, nil
}

// manualField resolves a canonical column name against the row the same way
// source detection does: header case is not significant.
func manualField(row RawRow, key string) string {
	if v, ok := row[key]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (rn *RowNormalizer) normalizeBankExport(row RawRow) (*domain.Transaction, error) {
	dateStr, ok := rn.Aliases.lookup(row, rn.Aliases.Date)
	if !ok {
		return nil, fmt.Errorf("%w: no date column", ErrInvalidRow)
	}
	date, err := rn.Dates.Normalize(dateStr)
	if err != nil {
		return nil, err
	}

	description, _ := rn.Aliases.lookup(row, rn.Aliases.Description)

	debit := parseOptionalAmount(rn.Aliases, row, rn.Aliases.Debit)
	credit := parseOptionalAmount(rn.Aliases, row, rn.Aliases.Credit)
	single := parseOptionalAmount(rn.Aliases, row, rn.Aliases.Amount)

	// Separate debit/credit columns win; exports with a single signed
	// amount column fall through to it.
	var amount float64
	var txType domain.TransactionType
	switch {
	case debit > 0:
		amount, txType = debit, domain.TypeExpense
	case credit > 0:
		amount, txType = credit, domain.TypeIncome
	case single > 0:
		amount, txType = single, domain.TypeIncome
	case single < 0:
		amount, txType = -single, domain.TypeExpense
	default:
		return nil, fmt.Errorf("%w: no usable amount column", ErrInvalidRow)
	}

	return &domain.Transaction{
		Type:        txType,
		Amount:      round2(amount),
		Description: description,
		Date:        date,
		Status:      domain.StatusCompleted,
	}, nil
}

// parseAmount parses a required positive decimal magnitude.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: missing amount", ErrInvalidRow)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidRow, s)
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: amount %q not positive", ErrInvalidRow, s)
	}
	return round2(v), nil
}

// parseOptionalAmount resolves an aliased numeric column, treating absent or
// unparseable values as zero.
func parseOptionalAmount(fa FieldAliases, row RawRow, aliases []string) float64 {
	s, ok := fa.lookup(row, aliases)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
