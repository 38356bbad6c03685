package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind - вид транзакции
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Label возвращает название вида транзакции для пользователя
func (k Kind) Label() string {
	switch k {
	case KindExpense:
		return "Gasto"
	case KindIncome:
		return "Ganho"
	default:
		return string(k)
	}
}

// Expense - зарегистрированный расход
type Expense struct {
	ID              string
	Amount          decimal.Decimal
	CategoryID      string
	PaymentMethodID string
	Date            time.Time
	Description     string
	CreatedAt       time.Time
}

// GenerateID генерирует новый UUID для расхода, если он еще не установлен
func (e *Expense) GenerateID() {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
}

// Income - зарегистрированный доход
type Income struct {
	ID          string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// GenerateID генерирует новый UUID для дохода, если он еще не установлен
func (i *Income) GenerateID() {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
}
