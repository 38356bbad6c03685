package service

import (
	"context"
	"testing"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	tracker   *ExpenseTracker
	food, fun *model.Category
	pix       *model.PaymentMethod
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	tracker := NewExpenseTracker(repo, zerolog.Nop())

	food, err := tracker.AddCategory(ctx, "Alimentacao", decimal.NewNullDecimal(decimal.NewFromInt(100)))
	require.NoError(t, err)
	fun, err := tracker.AddCategory(ctx, "Lazer", decimal.NullDecimal{})
	require.NoError(t, err)
	pix, err := tracker.EnsurePaymentMethod(ctx, "Pix")
	require.NoError(t, err)

	for _, e := range []model.Expense{
		{Amount: decimal.NewFromInt(80), CategoryID: food.ID, PaymentMethodID: pix.ID, Date: date(2025, 6, 10)},
		{Amount: decimal.NewFromInt(70), CategoryID: food.ID, PaymentMethodID: pix.ID, Date: date(2025, 7, 2)},
		{Amount: decimal.NewFromInt(50), CategoryID: food.ID, Date: date(2025, 7, 5)},
		{Amount: decimal.NewFromInt(30), CategoryID: fun.ID, PaymentMethodID: pix.ID, Date: date(2025, 7, 20)},
	} {
		e := e
		require.NoError(t, repo.CreateExpense(ctx, &e))
	}
	for _, i := range []model.Income{
		{Amount: decimal.NewFromInt(1000), Description: "Salario", Date: date(2025, 6, 5)},
		{Amount: decimal.NewFromInt(1200), Description: "Salario", Date: date(2025, 7, 5)},
	} {
		i := i
		require.NoError(t, repo.CreateIncome(ctx, &i))
	}
	return fixture{tracker: tracker, food: food, fun: fun, pix: pix}
}

func TestBalanceByMonth(t *testing.T) {
	f := newFixture(t)

	months, err := f.tracker.BalanceByMonth(context.Background(), model.Period{})
	require.NoError(t, err)
	require.Len(t, months, 2)

	assert.Equal(t, time.June, months[0].Month.Month())
	assert.Equal(t, "920", months[0].Balance().String())
	assert.Equal(t, time.July, months[1].Month.Month())
	assert.Equal(t, "150", months[1].Expenses.String())
	assert.Equal(t, "1050", months[1].Balance().String())
}

func TestSpendingByCategory(t *testing.T) {
	f := newFixture(t)
	start, end := model.MonthRange(date(2025, 7, 1))

	spending, err := f.tracker.SpendingByCategory(context.Background(), ReportFilter{Period: model.Period{Start: &start, End: &end}})
	require.NoError(t, err)
	require.Len(t, spending, 2)
	assert.Equal(t, "Alimentacao", spending[0].Name)
	assert.Equal(t, "120", spending[0].Total.String())
	assert.True(t, spending[0].OverLimit())
	assert.False(t, spending[1].OverLimit())

	byPix, err := f.tracker.SpendingByCategory(context.Background(), ReportFilter{Period: model.Period{Start: &start, End: &end}, PaymentMethodID: f.pix.ID})
	require.NoError(t, err)
	assert.Equal(t, "70", byPix[0].Total.String())
}

func TestSpendingByPaymentMethod(t *testing.T) {
	f := newFixture(t)

	spending, err := f.tracker.SpendingByPaymentMethod(context.Background(), ReportFilter{CategoryID: f.food.ID})
	require.NoError(t, err)
	require.Len(t, spending, 2)
	assert.Equal(t, "Pix", spending[0].Name)
	assert.Equal(t, "150", spending[0].Total.String())
	assert.Equal(t, UnspecifiedPaymentLabel, spending[1].Name)
}

func TestMonthlyCombined(t *testing.T) {
	f := newFixture(t)

	months, err := f.tracker.MonthlyCombined(context.Background(), model.Period{})
	require.NoError(t, err)
	require.Len(t, months, 2)
	require.Len(t, months[1].Cells, 3)
	first := months[1].Cells[0]
	assert.Equal(t, "Alimentacao", first.Category)
	assert.Equal(t, UnspecifiedPaymentLabel, first.PaymentMethod)
	assert.Equal(t, "50", first.Total.String())
}

func TestExpenseLines(t *testing.T) {
	f := newFixture(t)

	lines, total, err := f.tracker.ExpenseLines(context.Background(), ReportFilter{CategoryID: f.fun.ID})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Lazer", lines[0].Category)
	assert.Equal(t, "Pix", lines[0].PaymentMethod)
	assert.Equal(t, "30", total.String())
}

func TestCategoryMonthTotal(t *testing.T) {
	f := newFixture(t)

	current, previous, err := f.tracker.CategoryMonthTotal(context.Background(), f.food.ID, date(2025, 7, 25))
	require.NoError(t, err)
	assert.Equal(t, "120", current.String())
	assert.Equal(t, "80", previous.String())
	assert.Equal(t, " (+50.0%⬆️)", FormatChange(current, previous))
}

func TestFormatChange(t *testing.T) {
	assert.Empty(t, FormatChange(decimal.NewFromInt(10), decimal.Zero))
	assert.Equal(t, " (-50.0%⬇️)", FormatChange(decimal.NewFromInt(50), decimal.NewFromInt(100)))
	assert.Equal(t, " (+1000.0%⬆️)", FormatChange(decimal.NewFromInt(100000), decimal.NewFromInt(1)))
}
