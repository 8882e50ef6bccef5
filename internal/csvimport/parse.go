// Package csvimport turns raw delimited text into validated transaction
// creation requests. Rows are processed independently: a malformed row
// produces an error naming its 1-based data row and never aborts the rest
// of the batch.
package csvimport

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
)

// Row is one validated record-creation request produced from a CSV line.
// The ledger assigns ids and timestamps when the batch is appended.
type Row struct {
	Date        string
	Description string
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Category    domain.Category
	Tags        []string
}

// descriptionPlaceholder is used when a row carries no description at all.
const descriptionPlaceholder = "Imported transaction"

// Recognized headers, matched case-insensitively after trimming. Column
// order is not fixed; "statement description" is the fallback source for
// the description field.
const (
	headerDate        = "date"
	headerDescription = "description"
	headerType        = "type"
	headerAmount      = "amount"
	headerCategory    = "category"
	headerTags        = "tags"
	headerStmtDesc    = "statement description"
)

// Fallback layouts for dates that are not already canonical. Canonical
// dates pass through verbatim to avoid time-zone shifts from re-parsing.
var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

var amountCleaner = strings.NewReplacer("$", "", "£", "", "€", "", ",", "", " ", "")

// Parse converts raw CSV text (header row plus data rows) into creation
// requests. Each returned error names the 1-based data row it came from.
func Parse(raw string, mapper *domain.CategoryMapper) ([]Row, []string) {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil, []string{"empty input"}
	}
	if len(lines) == 1 {
		return nil, []string{"no data rows"}
	}

	headers := splitFields(lines[0])
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var (
		rows []Row
		errs []string
	)
	for i, line := range lines[1:] {
		rowNum := i + 1
		row, err := parseRow(line, headers, index, mapper)
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %s", rowNum, err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, errs
}

func parseRow(line string, headers []string, index map[string]int, mapper *domain.CategoryMapper) (Row, error) {
	fields := splitFields(line)
	if len(fields) < len(headers) {
		return Row{}, fmt.Errorf("not enough columns")
	}

	field := func(name string) string {
		idx, ok := index[name]
		if !ok || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	rawDate := field(headerDate)
	rawType := field(headerType)
	rawAmount := field(headerAmount)
	if rawDate == "" || rawType == "" || rawAmount == "" {
		return Row{}, fmt.Errorf("missing required fields")
	}

	date, err := normalizeDate(rawDate)
	if err != nil {
		return Row{}, err
	}

	amount, err := decimal.NewFromString(amountCleaner.Replace(rawAmount))
	if err != nil {
		return Row{}, fmt.Errorf("invalid amount %q", rawAmount)
	}

	txType, err := domain.ParseTransactionType(rawType)
	if err != nil {
		return Row{}, err
	}

	row := Row{
		Date:   date,
		Type:   txType,
		Amount: amount,
	}

	// Expense amounts are stored positive regardless of the source sign;
	// income and transfer amounts keep their parsed sign. A negative
	// income can never pass record validation, so it is rejected here as
	// a row error instead of poisoning the whole batch downstream.
	if txType == domain.TypeExpense {
		row.Amount = amount.Abs()
	}
	if txType == domain.TypeIncome && amount.IsNegative() {
		return Row{}, fmt.Errorf("negative amount %s for income", amount)
	}

	var originalTag string
	if txType == domain.TypeExpense {
		if src := field(headerCategory); src != "" {
			mapped, ok := mapper.Map(src)
			if !ok {
				mapped = domain.CategoryOther
			}
			row.Category = mapped
			// Keep the source text when it is not already the canonical
			// category value, so nothing is lost in normalization.
			if !strings.EqualFold(src, string(mapped)) {
				originalTag = domain.OriginalCategoryTagPrefix + src
			}
		}
	}

	if rawTags := field(headerTags); rawTags != "" {
		for _, tag := range strings.Split(rawTags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				row.Tags = append(row.Tags, tag)
			}
		}
	}
	if originalTag != "" {
		row.Tags = append(row.Tags, originalTag)
	}

	row.Description = field(headerDescription)
	if row.Description == "" {
		row.Description = field(headerStmtDesc)
	}
	if row.Description == "" {
		row.Description = descriptionPlaceholder
	}

	return row, nil
}

// normalizeDate returns the canonical form of a source date. Already
// canonical values are used verbatim; everything else goes through the
// fallback layouts and is re-rendered from local calendar fields.
func normalizeDate(s string) (string, error) {
	if domain.CanonicalDate(s) {
		if !domain.ValidDate(s) {
			return "", fmt.Errorf("invalid date %q", s)
		}
		return s, nil
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.DateFormat), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// splitLines breaks raw text into non-empty lines, tolerating CRLF.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitFields splits one CSV line on commas, honoring double quotes:
// quote characters toggle an in-quotes mode and are stripped from the
// output, and commas inside quotes do not separate fields. Unlike
// encoding/csv this never fails, so one mangled row cannot take down the
// batch it arrived in.
func splitFields(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}
