package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/domain"
)

func newTestParser() *StatementParser {
	return NewStatementParser(NewRowNormalizer(&DateNormalizer{}), zerolog.Nop())
}

func TestParseManualCSV(t *testing.T) {
	p := newTestParser()

	data := []byte("date,description,amount,type,category\n" +
		"2024-01-10,Coffee,4.50,expense,\n" +
		"2024-01-11,Salary,1500,income,Salary\n")

	txns, skipped, err := p.Parse(data, "statement.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}

	if txns[0].Description != "Coffee" || txns[0].Amount != 4.50 || txns[0].Type != domain.TypeExpense {
		t.Errorf("first transaction = %+v", txns[0])
	}
	if txns[1].Category != "salary" {
		t.Errorf("declared category = %q, want salary", txns[1].Category)
	}
}

func TestParseBankExportCSV(t *testing.T) {
	p := newTestParser()

	data := []byte("Txn Date,Narration,Withdrawal Amt,Deposit Amt\n" +
		"01-02-2024,ATM,200,\n" +
		"02-02-2024,NEFT SALARY,,1500\n" +
		"garbage-date,Broken,50,\n" +
		",,,\n")

	txns, skipped, err := p.Parse(data, "export.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2 (skipped=%d)", len(txns), skipped)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1 (the garbage-date row)", skipped)
	}

	if !txns[0].Date.Equal(date(2024, time.February, 1)) || txns[0].Type != domain.TypeExpense {
		t.Errorf("first transaction = %+v", txns[0])
	}
	if txns[1].Type != domain.TypeIncome || txns[1].Amount != 1500 {
		t.Errorf("second transaction = %+v", txns[1])
	}
}

func TestParseBankExportAmountColumnCSV(t *testing.T) {
	p := newTestParser()

	data := []byte("Txn Date,Narration,Amount\n" +
		"01-02-2024,ATM,200\n")

	txns, skipped, err := p.Parse(data, "export.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txns) != 1 || skipped != 0 {
		t.Fatalf("got %d txns, %d skipped; want 1 and 0", len(txns), skipped)
	}
	if txns[0].Type != domain.TypeIncome || txns[0].Amount != 200 {
		t.Errorf("transaction = %+v, want 200 INCOME", txns[0])
	}
	if txns[0].Description != "ATM" {
		t.Errorf("description = %q, want ATM", txns[0].Description)
	}
}

func TestParseManualCSVCapitalizedHeaders(t *testing.T) {
	p := newTestParser()

	data := []byte("Date,Description,Amount,Type\n" +
		"2024-01-10,Coffee,4.50,EXPENSE\n")

	txns, skipped, err := p.Parse(data, "statement.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txns) != 1 || skipped != 0 {
		t.Fatalf("got %d txns, %d skipped; want 1 and 0", len(txns), skipped)
	}
	if txns[0].Description != "Coffee" || txns[0].Amount != 4.50 || txns[0].Type != domain.TypeExpense {
		t.Errorf("transaction = %+v, want Coffee 4.50 EXPENSE", txns[0])
	}
	if !txns[0].Date.Equal(date(2024, time.January, 10)) {
		t.Errorf("date = %s, want 2024-01-10", txns[0].Date)
	}
}

func TestParseCSVPreservesSourceOrder(t *testing.T) {
	p := newTestParser()

	data := []byte("date,description,amount,type\n" +
		"2024-01-03,third,3,expense\n" +
		"2024-01-01,first,1,expense\n" +
		"2024-01-02,second,2,expense\n")

	txns, _, err := p.Parse(data, "s.csv")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"third", "first", "second"}
	for i, tx := range txns {
		if tx.Description != want[i] {
			t.Errorf("txns[%d] = %q, want %q", i, tx.Description, want[i])
		}
	}
}

func TestParseStatementText(t *testing.T) {
	p := newTestParser()

	text := "MegaBank Statement\n" +
		"Account: 12345678 Period: July 2025\n" +
		"02/07/2025 Uber Ride -150.00\n" +
		"03/07/2025 Salary Credit ACME 2500.00\n" +
		"continuation of a wrapped description line\n" +
		"Closing balance 4850.00\n"

	txns, skipped, err := p.parseStatementText(text)
	if err != nil {
		t.Fatalf("parseStatementText: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	if skipped == 0 {
		t.Errorf("expected non-matching lines to be counted as skipped")
	}

	if txns[0].Type != domain.TypeExpense || txns[0].Amount != 150 {
		t.Errorf("negative amount must become EXPENSE with absolute value, got %+v", txns[0])
	}
	if txns[0].Description != "Uber Ride" {
		t.Errorf("description = %q, want %q", txns[0].Description, "Uber Ride")
	}
	if !txns[0].Date.Equal(date(2025, time.July, 2)) {
		t.Errorf("date = %s, want 2025-07-02", txns[0].Date)
	}
	if txns[1].Type != domain.TypeIncome || txns[1].Amount != 2500 {
		t.Errorf("second transaction = %+v", txns[1])
	}
}

func TestParseStatementTextSkipsBadDates(t *testing.T) {
	p := newTestParser()

	// Matches the line shape but the date has an impossible month/day pair.
	txns, skipped, err := p.parseStatementText("45/45/2025 Mystery -10.00\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 0 || skipped != 1 {
		t.Errorf("got %d txns, %d skipped; want 0 and 1", len(txns), skipped)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	p := newTestParser()

	if _, _, err := p.Parse([]byte("x"), "statement.xlsx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Parse(.xlsx) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	p := newTestParser()

	txns, skipped, err := p.Parse([]byte("date,description,amount,type\n"), "empty.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txns) != 0 || skipped != 0 {
		t.Errorf("got %d txns, %d skipped; want 0 and 0", len(txns), skipped)
	}
}
