package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/domain"
)

// ErrUnsupportedFormat is returned for file kinds the parser does not
// understand. Accepted kinds are CSV, TXT (CSV-shaped) and PDF.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// pdfLinePattern matches statement lines of the shape
// "02/07/2025 Uber Ride -150.00" anchored at line start. Lines that do not
// match (headers, footers, wrapped descriptions) are skipped.
var pdfLinePattern = regexp.MustCompile(`^(\d{2}[/-]\d{2}[/-]\d{4})\s+(.*?)\s+(-?\d+(?:\.\d+)?)`)

// StatementParser turns raw statement file bytes into canonical transaction
// shells, in source order. Rows and lines that cannot be parsed are skipped
// silently and only counted; a structural failure of the whole file (broken
// CSV framing, unreadable PDF) aborts the batch.
type StatementParser struct {
	rows *RowNormalizer
	log  zerolog.Logger
}

// NewStatementParser builds a parser around the given row normalizer.
func NewStatementParser(rows *RowNormalizer, log zerolog.Logger) *StatementParser {
	return &StatementParser{rows: rows, log: log}
}

// Parse dispatches on the file kind declared by the filename extension.
// It returns the candidates plus the number of rows/lines skipped.
func (p *StatementParser) Parse(data []byte, filename string) ([]*domain.Transaction, int, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return p.parseCSV(data)
	case ".pdf":
		return p.parsePDF(data)
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// parseCSV reads a header row and normalizes every following record. When
// the header already carries the canonical field names the rows are treated
// as manual entries (including a declared category column); otherwise the
// bank-export alias table applies.
func (p *StatementParser) parseCSV(data []byte) ([]*domain.Transaction, int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	kind := detectSourceKind(header)

	var (
		txns    []*domain.Transaction
		skipped int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("reading csv record: %w", err)
		}

		row := make(RawRow, len(header))
		empty := true
		for i, field := range record {
			if i >= len(header) {
				break
			}
			if strings.TrimSpace(field) != "" {
				empty = false
			}
			row[header[i]] = field
		}
		if empty {
			continue
		}

		tx, err := p.rows.Normalize(row, kind)
		if err != nil {
			skipped++
			p.log.Debug().Err(err).Msg("skipping statement row")
			continue
		}
		txns = append(txns, tx)
	}

	return txns, skipped, nil
}

// detectSourceKind treats a header as manual when it already names the
// canonical date/amount/type fields.
func detectSourceKind(header []string) SourceKind {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[strings.ToLower(h)] = true
	}
	if seen["date"] && seen["amount"] && seen["type"] {
		return SourceManual
	}
	return SourceBankExport
}

// parsePDF extracts the statement text and matches transaction-shaped lines.
func (p *StatementParser) parsePDF(data []byte) ([]*domain.Transaction, int, error) {
	text, err := extractPDFText(data)
	if err != nil {
		return nil, 0, fmt.Errorf("extracting pdf text: %w", err)
	}
	return p.parseStatementText(text)
}

// parseStatementText applies the line pattern to every line of extracted
// text. The sign of the trailing decimal determines the type; the stored
// amount is always the absolute value.
func (p *StatementParser) parseStatementText(text string) ([]*domain.Transaction, int, error) {
	var (
		txns    []*domain.Transaction
		skipped int
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := pdfLinePattern.FindStringSubmatch(line)
		if m == nil {
			skipped++
			continue
		}

		date, err := p.rows.Dates.Normalize(m[1])
		if err != nil {
			skipped++
			p.log.Debug().Err(err).Str("line", line).Msg("skipping pdf line")
			continue
		}

		amount, err := strconv.ParseFloat(m[3], 64)
		if err != nil || amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			skipped++
			continue
		}

		txType := domain.TypeIncome
		if amount < 0 {
			txType = domain.TypeExpense
		}

		txns = append(txns, &domain.Transaction{
			Type:        txType,
			Amount:      round2(math.Abs(amount)),
			Description: strings.TrimSpace(m[2]),
			Date:        date,
			Status:      domain.StatusCompleted,
		})
	}
	return txns, skipped, nil
}

// extractPDFText pulls plain text out of the PDF, preferring the row-based
// extraction which preserves line structure best.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader crashed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n"), nil
	}

	// Fallback: whole-document plain text.
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
