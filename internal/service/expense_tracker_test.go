package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyRepo позволяет включать ошибки отдельных операций поверх памяти
type flakyRepo struct {
	*repository.MemoryRepository
	failExpense bool
	failAliases bool
	expenseCall int
}

func (f *flakyRepo) CreateExpense(ctx context.Context, e *model.Expense) error {
	f.expenseCall++
	if f.failExpense {
		return errors.New("store unavailable")
	}
	return f.MemoryRepository.CreateExpense(ctx, e)
}

func (f *flakyRepo) UpdateCategoryAliases(ctx context.Context, id string, aliases []string) error {
	if f.failAliases {
		return errors.New("store unavailable")
	}
	return f.MemoryRepository.UpdateCategoryAliases(ctx, id, aliases)
}

var day = time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*ExpenseTracker, *flakyRepo, *model.Category) {
	t.Helper()
	repo := &flakyRepo{MemoryRepository: repository.NewMemoryRepository()}
	tracker := NewExpenseTracker(repo, zerolog.Nop())
	food, err := tracker.AddCategory(context.Background(), "alimentacao", decimal.NullDecimal{})
	require.NoError(t, err)
	return tracker, repo, food
}

func expenseDraft(c *model.Category, text string) *model.Draft {
	d := model.NewExpenseDraft(model.ExpenseIntent{
		Amount:   decimal.NewFromInt(50),
		Category: text,
		Date:     day,
	})
	d.SetCategory(*c)
	return d
}

func TestCommit_LearnsAliasOnce(t *testing.T) {
	ctx := context.Background()
	tracker, _, food := setup(t)

	res, err := tracker.Commit(ctx, expenseDraft(food, "Mercado"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.TransactionID)
	assert.Equal(t, "mercado", res.LearnedAlias)
	assert.NoError(t, res.AliasErr)

	res, err = tracker.Commit(ctx, expenseDraft(food, "mercado"))
	require.NoError(t, err)
	assert.Empty(t, res.LearnedAlias)

	cats, _ := tracker.Categories(ctx)
	assert.Equal(t, []string{"mercado"}, cats[0].Aliases)
}

func TestCommit_NoAliasForCanonicalWording(t *testing.T) {
	tracker, _, food := setup(t)

	res, err := tracker.Commit(context.Background(), expenseDraft(food, "ALIMENTACAO"))
	require.NoError(t, err)
	assert.Empty(t, res.LearnedAlias)
}

func TestCommit_RequiresCategory(t *testing.T) {
	tracker, repo, _ := setup(t)
	d := model.NewExpenseDraft(model.ExpenseIntent{Amount: decimal.NewFromInt(10), Category: "x", Date: day})

	_, err := tracker.Commit(context.Background(), d)
	assert.ErrorIs(t, err, model.ErrCategoryRequired)
	assert.Zero(t, repo.expenseCall, "store must not be called without category")
}

func TestCommit_StoreFailure(t *testing.T) {
	tracker, repo, food := setup(t)
	repo.failExpense = true

	_, err := tracker.Commit(context.Background(), expenseDraft(food, "mercado"))
	assert.Error(t, err)
}

func TestCommit_AliasFailureKeepsTransaction(t *testing.T) {
	ctx := context.Background()
	tracker, repo, food := setup(t)
	repo.failAliases = true

	res, err := tracker.Commit(ctx, expenseDraft(food, "mercado"))
	require.NoError(t, err)
	assert.Error(t, res.AliasErr)
	assert.Empty(t, res.LearnedAlias)

	expenses, _ := repo.GetExpenses(ctx, repository.TransactionFilter{})
	assert.Len(t, expenses, 1)
}

func TestCommit_Income(t *testing.T) {
	ctx := context.Background()
	tracker, repo, _ := setup(t)
	d := model.NewIncomeDraft(model.IncomeIntent{Amount: decimal.NewFromInt(1000), Description: "salário", Date: day})

	res, err := tracker.Commit(ctx, d)
	require.NoError(t, err)
	assert.NotEmpty(t, res.TransactionID)

	incomes, _ := repo.GetIncomes(ctx, repository.TransactionFilter{})
	require.Len(t, incomes, 1)
	assert.Equal(t, "Salário", incomes[0].Description)
}

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := setup(t)

	_, err := tracker.AddCategory(ctx, "Alimentação ", decimal.NullDecimal{})
	require.NoError(t, err, "accented name is a different canonical name")

	_, err = tracker.AddCategory(ctx, "ALIMENTACAO", decimal.NullDecimal{})
	assert.ErrorIs(t, err, repository.ErrCategoryExists)

	_, err = tracker.AddCategory(ctx, "  ", decimal.NullDecimal{})
	assert.ErrorIs(t, err, model.ErrEmptyName)

	_, err = tracker.AddCategory(ctx, "Pets", decimal.NewNullDecimal(decimal.NewFromInt(-1)))
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	c, err := tracker.AddCategory(ctx, "viagem de ferias", decimal.NewNullDecimal(decimal.NewFromInt(800)))
	require.NoError(t, err)
	assert.Equal(t, "ViagemDeFerias", c.Name)
	assert.True(t, c.MonthlyLimit.Valid)
}

func TestEnsureCategory_ReusesExisting(t *testing.T) {
	ctx := context.Background()
	tracker, _, food := setup(t)

	got, err := tracker.EnsureCategory(ctx, "alimentacao")
	require.NoError(t, err)
	assert.Equal(t, food.ID, got.ID)

	created, err := tracker.EnsureCategory(ctx, "lazer")
	require.NoError(t, err)
	assert.Equal(t, "Lazer", created.Name)

	cats, _ := tracker.Categories(ctx)
	assert.Len(t, cats, 2)
}

func TestEnsurePaymentMethod(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := setup(t)

	pix, err := tracker.EnsurePaymentMethod(ctx, "pix")
	require.NoError(t, err)
	assert.Equal(t, "Pix", pix.Name)

	again, err := tracker.EnsurePaymentMethod(ctx, "PIX")
	require.NoError(t, err)
	assert.Equal(t, pix.ID, again.ID)

	_, err = tracker.EnsurePaymentMethod(ctx, "")
	assert.ErrorIs(t, err, model.ErrEmptyName)
}

func TestEnsureNamedPaymentMethod(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := setup(t)

	pm, err := tracker.EnsureNamedPaymentMethod(ctx, " NaoInformado ")
	require.NoError(t, err)
	assert.Equal(t, "NaoInformado", pm.Name)

	again, err := tracker.EnsurePaymentMethod(ctx, "naoinformado")
	require.NoError(t, err)
	assert.Equal(t, pm.ID, again.ID)

	_, err = tracker.EnsureNamedPaymentMethod(ctx, "  ")
	assert.ErrorIs(t, err, model.ErrEmptyName)
}

func TestSetCategoryLimit(t *testing.T) {
	ctx := context.Background()
	tracker, _, food := setup(t)

	require.NoError(t, tracker.SetCategoryLimit(ctx, food.ID, decimal.NewFromInt(500)))
	cats, _ := tracker.Categories(ctx)
	assert.True(t, cats[0].MonthlyLimit.Valid)

	require.NoError(t, tracker.SetCategoryLimit(ctx, food.ID, decimal.Zero))
	cats, _ = tracker.Categories(ctx)
	assert.False(t, cats[0].MonthlyLimit.Valid, "zero removes the limit")

	assert.ErrorIs(t, tracker.SetCategoryLimit(ctx, food.ID, decimal.NewFromInt(-5)), model.ErrInvalidAmount)
}

func TestAddAliases(t *testing.T) {
	ctx := context.Background()
	tracker, _, food := setup(t)

	added, err := tracker.AddAliases(ctx, food.ID, []string{"Mercado", "padaria", "mercado", " "})
	require.NoError(t, err)
	assert.Equal(t, []string{"mercado", "padaria"}, added)

	added, err = tracker.AddAliases(ctx, food.ID, []string{"padaria"})
	require.NoError(t, err)
	assert.Empty(t, added)

	_, err = tracker.AddAliases(ctx, "missing", []string{"x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
