package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
)

// Period is an inclusive date window in canonical form.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary aggregates the ledger over a period. Balance is income minus
// expenses; transfers are excluded from every figure.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Balance       decimal.Decimal `json:"balance"`
	Period        Period          `json:"period"`
}

// Summarize totals income and expenses over the inclusive [start, end]
// window. Canonical dates compare correctly as strings, so the window test
// is a plain string comparison.
func (l *Ledger) Summarize(start, end string) (Summary, error) {
	if !domain.ValidDate(start) || !domain.ValidDate(end) {
		return Summary{}, fmt.Errorf("Summarize: invalid period %q..%q", start, end)
	}
	if end < start {
		return Summary{}, fmt.Errorf("Summarize: period end %q before start %q", end, start)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{Period: Period{Start: start, End: end}}
	for _, t := range l.txs {
		if t.Date < start || t.Date > end {
			continue
		}
		switch t.Type {
		case domain.TypeIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case domain.TypeExpense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s, nil
}

// SpentByCategory totals expense amounts per category over the inclusive
// [start, end] window. Categories with no spending are absent from the map.
func (l *Ledger) SpentByCategory(start, end string) (map[domain.Category]decimal.Decimal, error) {
	if !domain.ValidDate(start) || !domain.ValidDate(end) {
		return nil, fmt.Errorf("SpentByCategory: invalid period %q..%q", start, end)
	}
	if end < start {
		return nil, fmt.Errorf("SpentByCategory: period end %q before start %q", end, start)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	spent := make(map[domain.Category]decimal.Decimal)
	for _, t := range l.txs {
		if t.Type != domain.TypeExpense || t.Date < start || t.Date > end {
			continue
		}
		spent[t.Category] = spent[t.Category].Add(t.Amount)
	}
	return spent, nil
}

// BudgetStatus pairs a budget with the spending recorded inside its window.
type BudgetStatus struct {
	Budget    domain.Budget   `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Over      bool            `json:"over"`
}

// BudgetProgress reports, for every budget, how much of its limit the
// matching expense transactions have consumed. A transaction matches when
// its category equals the budget's and its date falls inside the budget's
// window.
func (l *Ledger) BudgetProgress() []BudgetStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]BudgetStatus, 0, len(l.budgets))
	for _, b := range l.budgets {
		spent := decimal.Zero
		for _, t := range l.txs {
			if t.Type != domain.TypeExpense || t.Category != b.Category {
				continue
			}
			if !b.Covers(t.Date) {
				continue
			}
			spent = spent.Add(t.Amount)
		}
		out = append(out, BudgetStatus{
			Budget:    b,
			Spent:     spent,
			Remaining: b.Limit.Sub(spent),
			Over:      spent.GreaterThan(b.Limit),
		})
	}
	return out
}
