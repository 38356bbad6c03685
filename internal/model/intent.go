package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Intent - результат разбора сообщения пользователя. Набор вариантов закрыт:
// реализовать интерфейс могут только типы из этого пакета.
type Intent interface {
	isIntent()
}

// Period - необязательный диапазон дат для отчетов
type Period struct {
	Start *time.Time
	End   *time.Time
}

// IsZero сообщает, что период не ограничен
func (p Period) IsZero() bool {
	return p.Start == nil && p.End == nil
}

// Contains проверяет попадание даты в период (границы включительно)
func (p Period) Contains(t time.Time) bool {
	if p.Start != nil && t.Before(*p.Start) {
		return false
	}
	if p.End != nil && t.After(*p.End) {
		return false
	}
	return true
}

type ExpenseIntent struct {
	Amount        decimal.Decimal
	Category      string
	Date          time.Time
	PaymentMethod string
	Description   string
}

type IncomeIntent struct {
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

type AddCategoryIntent struct {
	Name         string
	MonthlyLimit decimal.NullDecimal
}

type ShowBalanceIntent struct {
	Period Period
}

// ShowCategoryChartIntent - траты по категориям, опционально по одному способу оплаты
type ShowCategoryChartIntent struct {
	PaymentMethod string
	Period        Period
}

// ShowPaymentChartIntent - траты по способам оплаты, опционально по одной категории
type ShowPaymentChartIntent struct {
	Category string
	Period   Period
}

type ShowCombinedChartIntent struct {
	Period Period
}

type ListExpensesIntent struct {
	Category string
	Period   Period
}

type EditExpenseIntent struct {
	Text string
}

type UnknownIntent struct {
	Raw string
}

func (ExpenseIntent) isIntent()           {}
func (IncomeIntent) isIntent()            {}
func (AddCategoryIntent) isIntent()       {}
func (ShowBalanceIntent) isIntent()       {}
func (ShowCategoryChartIntent) isIntent() {}
func (ShowPaymentChartIntent) isIntent()  {}
func (ShowCombinedChartIntent) isIntent() {}
func (ListExpensesIntent) isIntent()      {}
func (EditExpenseIntent) isIntent()       {}
func (UnknownIntent) isIntent()           {}
