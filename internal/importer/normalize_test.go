package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/smartspend/smartspend/internal/domain"
)

func TestNormalizeManualRoundTrip(t *testing.T) {
	rn := NewRowNormalizer(&DateNormalizer{})

	tx, err := rn.Normalize(RawRow{
		"date":        "2024-01-10",
		"description": "Coffee",
		"amount":      "4.50",
		"type":        "expense",
	}, SourceManual)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if !tx.Date.Equal(date(2024, time.January, 10)) {
		t.Errorf("date = %s, want 2024-01-10", tx.Date)
	}
	if tx.Description != "Coffee" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.Amount != 4.50 {
		t.Errorf("amount = %v, want 4.50", tx.Amount)
	}
	if tx.Type != domain.TypeExpense {
		t.Errorf("type = %q, want EXPENSE", tx.Type)
	}
	if tx.Status != domain.StatusCompleted {
		t.Errorf("status = %q, want COMPLETED", tx.Status)
	}
	if tx.Category != "" {
		t.Errorf("category should be unset, got %q", tx.Category)
	}
}

func TestNormalizeManualDeclaredCategory(t *testing.T) {
	rn := NewRowNormalizer(&DateNormalizer{})

	tx, err := rn.Normalize(RawRow{
		"date":     "2024-01-10",
		"amount":   "12",
		"type":     "INCOME",
		"category": "  Salary ",
	}, SourceManual)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tx.Category != "salary" {
		t.Errorf("category = %q, want %q", tx.Category, "salary")
	}
}

func TestNormalizeManualRejects(t *testing.T) {
	rn := NewRowNormalizer(&DateNormalizer{})

	tests := []struct {
		name string
		row  RawRow
		want error
	}{
		{"missing date", RawRow{"amount": "5", "type": "EXPENSE"}, ErrInvalidRow},
		{"bad date", RawRow{"date": "32-13-2024", "amount": "5", "type": "EXPENSE"}, ErrMalformedDate},
		{"missing amount", RawRow{"date": "2024-01-10", "type": "EXPENSE"}, ErrInvalidRow},
		{"zero amount", RawRow{"date": "2024-01-10", "amount": "0", "type": "EXPENSE"}, ErrInvalidRow},
		{"negative amount", RawRow{"date": "2024-01-10", "amount": "-5", "type": "EXPENSE"}, ErrInvalidRow},
		{"missing type", RawRow{"date": "2024-01-10", "amount": "5"}, ErrInvalidRow},
		{"unknown type", RawRow{"date": "2024-01-10", "amount": "5", "type": "TRANSFER"}, ErrInvalidRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := rn.Normalize(tt.row, SourceManual); !errors.Is(err, tt.want) {
				t.Errorf("Normalize() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalizeBankExportAliases(t *testing.T) {
	rn := NewRowNormalizer(&DateNormalizer{})

	tx, err := rn.Normalize(RawRow{
		"Txn Date":       "01-02-2024",
		"Narration":      "ATM",
		"Withdrawal Amt": "200",
	}, SourceBankExport)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if !tx.Date.Equal(date(2024, time.February, 1)) {
		t.Errorf("date = %s, want 2024-02-01 (day-month-year reading)", tx.Date)
	}
	if tx.Description != "ATM" {
		t.Errorf("description = %q, want ATM", tx.Description)
	}
	if tx.Amount != 200 || tx.Type != domain.TypeExpense {
		t.Errorf("got %v %s, want 200 EXPENSE", tx.Amount, tx.Type)
	}
}

func TestNormalizeBankExportCredit(t *testing.T) {
	rn := NewRowNormalizer(&DateNormalizer{})

	tx, err := rn.Normalize(RawRow{
		"Transaction Date": "2024-02-01",
		"Details":          "NEFT SALARY",
		"Deposit Amt":      "1,500.50",
	}, SourceBankExport)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tx.Type != domain.TypeIncome {
		t.Errorf("type = %s, want INCOME", tx.Type)
	}
	if tx.Amount != 1500.50 {
		t.Errorf("amount = %v, want 1500.50", tx.Amount)
	}
}

func TestNormalizeBankExportSingleAmountColumn(t *testing.T) {
	rn := NewRowNormalizer(&DateNormalizer{})

	tests := []struct {
		name       string
		row        RawRow
		wantAmount float64
		wantType   domain.TransactionType
	}{
		{
			"positive amount is income",
			RawRow{"Txn Date": "01-02-2024", "Narration": "ATM", "Amount": "200"},
			200, domain.TypeIncome,
		},
		{
			"negative amount is expense",
			RawRow{"Txn Date": "01-02-2024", "Narration": "Card payment", "Amount": "-45.50"},
			45.50, domain.TypeExpense,
		},
		{
			"debit column outranks amount",
			RawRow{"Txn Date": "01-02-2024", "Debit": "30", "Amount": "30"},
			30, domain.TypeExpense,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := rn.Normalize(tt.row, SourceBankExport)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if tx.Amount != tt.wantAmount || tx.Type != tt.wantType {
				t.Errorf("got %v %s, want %v %s", tx.Amount, tx.Type, tt.wantAmount, tt.wantType)
			}
		})
	}
}

func TestNormalizeBankExportAliasPriority(t *testing.T) {
	rn := NewRowNormalizer(&DateNormalizer{})

	// "Txn Date" outranks "Date" in the alias order.
	tx, err := rn.Normalize(RawRow{
		"Txn Date": "2024-03-01",
		"Date":     "2020-01-01",
		"Debit":    "10",
	}, SourceBankExport)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !tx.Date.Equal(date(2024, time.March, 1)) {
		t.Errorf("date = %s, want alias-priority date 2024-03-01", tx.Date)
	}
}

func TestNormalizeBankExportRejects(t *testing.T) {
	rn := NewRowNormalizer(&DateNormalizer{})

	tests := []struct {
		name string
		row  RawRow
	}{
		{"no date column", RawRow{"Narration": "x", "Debit": "5"}},
		{"no amount", RawRow{"Txn Date": "2024-01-01", "Narration": "x"}},
		{"zero debit and credit", RawRow{"Txn Date": "2024-01-01", "Debit": "0", "Credit": "0"}},
		{"negative debit only", RawRow{"Txn Date": "2024-01-01", "Debit": "-20"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := rn.Normalize(tt.row, SourceBankExport); err == nil {
				t.Errorf("Normalize() accepted an invalid row")
			}
		})
	}
}

func TestParseFieldAliasesYAML(t *testing.T) {
	data := []byte(`
date: ["Booking Date"]
description: ["Reference"]
debit: ["Out"]
credit: ["In"]
`)
	fa, err := ParseFieldAliases(data)
	if err != nil {
		t.Fatalf("ParseFieldAliases: %v", err)
	}

	rn := &RowNormalizer{Dates: &DateNormalizer{}, Aliases: fa}
	tx, err := rn.Normalize(RawRow{
		"Booking Date": "2024-04-02",
		"Reference":    "CARD 1234",
		"Out":          "42.00",
	}, SourceBankExport)
	if err != nil {
		t.Fatalf("Normalize with custom aliases: %v", err)
	}
	if tx.Amount != 42 || tx.Type != domain.TypeExpense {
		t.Errorf("got %v %s, want 42 EXPENSE", tx.Amount, tx.Type)
	}
}
