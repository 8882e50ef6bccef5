package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the recurrence of a spending ceiling.
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Budget is a spending ceiling for one expense category. EndDate is
// optional; an empty value means the budget is open-ended.
type Budget struct {
	ID        string          `json:"id"`
	Category  Category        `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Period    BudgetPeriod    `json:"period"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate,omitempty"`
}

// Validate checks the field-level invariants of a budget.
func (b *Budget) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("budget: missing id")
	}
	if !b.Category.Valid() {
		return fmt.Errorf("budget %s: unknown category %q", b.ID, b.Category)
	}
	if !b.Limit.IsPositive() {
		return fmt.Errorf("budget %s: limit must be positive, got %s", b.ID, b.Limit)
	}
	switch b.Period {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
	default:
		return fmt.Errorf("budget %s: unknown period %q", b.ID, b.Period)
	}
	if !ValidDate(b.StartDate) {
		return fmt.Errorf("budget %s: invalid start date %q", b.ID, b.StartDate)
	}
	if b.EndDate != "" {
		if !ValidDate(b.EndDate) {
			return fmt.Errorf("budget %s: invalid end date %q", b.ID, b.EndDate)
		}
		// Canonical dates order lexicographically.
		if b.EndDate < b.StartDate {
			return fmt.Errorf("budget %s: end date %s before start date %s", b.ID, b.EndDate, b.StartDate)
		}
	}
	return nil
}

// Covers reports whether the given canonical date falls inside the budget's
// window: on or after StartDate and, when EndDate is set, on or before it.
func (b *Budget) Covers(date string) bool {
	if date < b.StartDate {
		return false
	}
	return b.EndDate == "" || date <= b.EndDate
}
