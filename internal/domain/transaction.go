package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical textual form for calendar dates. Ledger dates
// are plain calendar days with no time-zone component; re-parsing them
// through time.Time is avoided wherever a string comparison suffices.
const DateFormat = "2006-01-02"

// OriginalCategoryTagPrefix marks a reserved tag that preserves the source
// category text of an imported transaction when it differs from the fixed
// category it was normalized to.
const OriginalCategoryTagPrefix = "_originalCategory:"

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// ParseTransactionType normalizes free-text input into a TransactionType.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TypeIncome, nil
	case "expense":
		return TypeExpense, nil
	case "transfer":
		return TypeTransfer, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

var canonicalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CanonicalDate reports whether s matches the YYYY-MM-DD shape exactly.
// It does not check that the date is a real calendar day; see ValidDate.
func CanonicalDate(s string) bool {
	return canonicalDateRe.MatchString(s)
}

// ValidDate reports whether s is a real calendar date in canonical form.
func ValidDate(s string) bool {
	if !CanonicalDate(s) {
		return false
	}
	_, err := time.Parse(DateFormat, s)
	return err == nil
}

// Transaction is one ledger entry. Amount is non-negative for income and
// expense entries; transfers carry a signed amount (negative = outgoing,
// positive = incoming). Category is meaningful only on expenses.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category,omitempty"`
	Date        string          `json:"date"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Validate checks the field-level invariants of a fully assembled
// transaction. The ledger calls this before a record enters the collection.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction: missing id")
	}
	switch t.Type {
	case TypeIncome, TypeExpense, TypeTransfer:
	default:
		return fmt.Errorf("transaction %s: unknown type %q", t.ID, t.Type)
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction %s: empty description", t.ID)
	}
	if !ValidDate(t.Date) {
		return fmt.Errorf("transaction %s: invalid date %q", t.ID, t.Date)
	}
	if t.Type != TypeTransfer && t.Amount.IsNegative() {
		return fmt.Errorf("transaction %s: negative amount %s for type %s", t.ID, t.Amount, t.Type)
	}
	if t.Category != "" {
		if t.Type != TypeExpense {
			return fmt.Errorf("transaction %s: category %q on non-expense type %s", t.ID, t.Category, t.Type)
		}
		if !t.Category.Valid() {
			return fmt.Errorf("transaction %s: unknown category %q", t.ID, t.Category)
		}
	}
	return nil
}
