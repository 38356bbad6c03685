package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrCategoryExists      = errors.New("category already exists")
	ErrPaymentMethodExists = errors.New("payment method already exists")
	ErrNotFound            = errors.New("not found")
)

type Repository interface {
	// Категории
	GetCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategoryLimit(ctx context.Context, id string, limit decimal.NullDecimal) error
	UpdateCategoryAliases(ctx context.Context, id string, aliases []string) error

	// Способы оплаты
	GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, method *model.PaymentMethod) error

	// Транзакции
	CreateExpense(ctx context.Context, expense *model.Expense) error
	CreateIncome(ctx context.Context, income *model.Income) error
	GetExpenses(ctx context.Context, filter TransactionFilter) ([]model.Expense, error)
	GetIncomes(ctx context.Context, filter TransactionFilter) ([]model.Income, error)
}

// TransactionFilter ограничивает выборку транзакций. Фильтры по категории
// и способу оплаты применяются только к расходам.
type TransactionFilter struct {
	StartDate       *time.Time
	EndDate         *time.Time
	CategoryID      string
	PaymentMethodID string
}

// FilterForPeriod строит фильтр по периоду отчета
func FilterForPeriod(p model.Period) TransactionFilter {
	return TransactionFilter{StartDate: p.Start, EndDate: p.End}
}

func (f TransactionFilter) matchesDate(t time.Time) bool {
	return model.Period{Start: f.StartDate, End: f.EndDate}.Contains(t)
}

func (f TransactionFilter) matchesExpense(e model.Expense) bool {
	if !f.matchesDate(e.Date) {
		return false
	}
	if f.CategoryID != "" && e.CategoryID != f.CategoryID {
		return false
	}
	if f.PaymentMethodID != "" && e.PaymentMethodID != f.PaymentMethodID {
		return false
	}
	return true
}
