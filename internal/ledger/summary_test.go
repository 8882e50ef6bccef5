package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
)

func seedSummaryData(t *testing.T) *Ledger {
	t.Helper()
	l, _ := newTestLedger(t)

	_, err := l.AddTransactions(context.Background(), []NewTransaction{
		income(100, "2024-01-01"),
		expense(30, "2024-01-15"),
		expense(10, "2024-02-01"),
	})
	require.NoError(t, err)
	return l
}

func TestLedger_Summarize(t *testing.T) {
	l := seedSummaryData(t)

	s, err := l.Summarize("2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.True(t, s.TotalIncome.Equal(decimal.NewFromInt(100)), "income = %s", s.TotalIncome)
	assert.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(30)), "expenses = %s", s.TotalExpenses)
	assert.True(t, s.Balance.Equal(decimal.NewFromInt(70)), "balance = %s", s.Balance)
	assert.Equal(t, Period{Start: "2024-01-01", End: "2024-01-31"}, s.Period)
}

func TestLedger_Summarize_WindowIsInclusive(t *testing.T) {
	l := seedSummaryData(t)

	// Both boundary days fall inside the window.
	s, err := l.Summarize("2024-01-15", "2024-02-01")
	require.NoError(t, err)
	assert.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(40)), "expenses = %s", s.TotalExpenses)
	assert.True(t, s.TotalIncome.IsZero())
}

func TestLedger_Summarize_ExcludesTransfers(t *testing.T) {
	l := seedSummaryData(t)

	_, err := l.AddTransaction(context.Background(), NewTransaction{
		Type:        domain.TypeTransfer,
		Amount:      decimal.NewFromInt(-500),
		Description: "To savings",
		Date:        "2024-01-10",
	})
	require.NoError(t, err)

	s, err := l.Summarize("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.True(t, s.Balance.Equal(decimal.NewFromInt(70)), "transfers must not move the balance")
}

func TestLedger_Summarize_BadPeriod(t *testing.T) {
	l := seedSummaryData(t)

	_, err := l.Summarize("2024-01-31", "2024-01-01")
	assert.Error(t, err, "end before start")

	_, err = l.Summarize("01/01/2024", "2024-01-31")
	assert.Error(t, err, "non-canonical start")
}

func TestLedger_SpentByCategory(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.AddTransactions(context.Background(), []NewTransaction{
		expense(30, "2024-01-15"),
		expense(12, "2024-01-20"),
		{
			Type:        domain.TypeExpense,
			Amount:      decimal.NewFromInt(80),
			Description: "Train pass",
			Category:    domain.CategoryTransport,
			Date:        "2024-01-10",
		},
		income(100, "2024-01-01"),
	})
	require.NoError(t, err)

	spent, err := l.SpentByCategory("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, spent, 2)
	assert.True(t, spent[domain.CategoryFood].Equal(decimal.NewFromInt(42)))
	assert.True(t, spent[domain.CategoryTransport].Equal(decimal.NewFromInt(80)))
}

func TestLedger_BudgetProgress(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.AddBudget(context.Background(), NewBudget{
		Category:  domain.CategoryFood,
		Limit:     decimal.NewFromInt(100),
		Period:    domain.PeriodMonthly,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
	})
	require.NoError(t, err)

	_, err = l.AddTransactions(context.Background(), []NewTransaction{
		expense(60, "2024-01-10"),
		expense(55, "2024-01-20"),
		expense(40, "2024-02-05"), // outside the window
	})
	require.NoError(t, err)

	progress := l.BudgetProgress()
	require.Len(t, progress, 1)

	p := progress[0]
	assert.True(t, p.Spent.Equal(decimal.NewFromInt(115)), "spent = %s", p.Spent)
	assert.True(t, p.Remaining.Equal(decimal.NewFromInt(-15)), "remaining = %s", p.Remaining)
	assert.True(t, p.Over)
}

func TestLedger_BudgetProgress_UnderLimit(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.AddBudget(context.Background(), NewBudget{
		Category:  domain.CategoryFood,
		Limit:     decimal.NewFromInt(100),
		Period:    domain.PeriodMonthly,
		StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	_, err = l.AddTransaction(context.Background(), expense(25, "2024-01-10"))
	require.NoError(t, err)

	progress := l.BudgetProgress()
	require.Len(t, progress, 1)
	assert.True(t, progress[0].Remaining.Equal(decimal.NewFromInt(75)))
	assert.False(t, progress[0].Over)
}
